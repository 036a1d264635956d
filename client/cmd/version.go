package cmd

import (
	"github.com/spf13/cobra"

	"github.com/netbirdio/allowedips/version"
)

var (
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "prints the allowedips version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.SetOut(cmd.OutOrStdout())
			cmd.Println(version.NetbirdVersion())
		},
	}
)
