package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/netbirdio/allowedips/client/internal"
)

type localNetworksFlags struct {
	IPv6                bool
	ExtraIFaceBlackList []string
	JSON                bool
}

func newLocalNetworksCmd() *cobra.Command {
	flags := &localNetworksFlags{}

	cmd := &cobra.Command{
		Use:   "local-networks",
		Short: "Print the local networks kept out of the tunnel by LAN passthrough",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return localNetworksFunc(cmd, flags)
		},
	}

	cmd.PersistentFlags().BoolVar(&flags.IPv6, ipv6Flag, false, "Include IPv6 networks")
	cmd.PersistentFlags().StringSliceVar(&flags.ExtraIFaceBlackList, extraIFaceBlackListFlag, nil,
		"Extra interface name prefixes to ignore")
	cmd.PersistentFlags().BoolVar(&flags.JSON, jsonFlag, false, "Print the result as JSON")

	return cmd
}

func localNetworksFunc(cmd *cobra.Command, flags *localNetworksFlags) error {
	if err := prepareCommand(cmd); err != nil {
		return fmt.Errorf("failed initializing log %v", err)
	}

	cfg, err := internal.ReadInMemoryConfig(internal.ConfigInput{
		ConfigPath:          configPath,
		ExtraIFaceBlackList: flags.ExtraIFaceBlackList,
	})
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	subnets, err := newLocalNetworkSource(cfg.InterfaceBlacklist).LocalSubnets(cmd.Context(), flags.IPv6)
	if err != nil {
		return fmt.Errorf("detect local networks: %w", err)
	}

	if flags.JSON {
		return printJSON(cmd, orEmpty(subnets))
	}

	if len(subnets) == 0 {
		cmd.PrintErrln("no local networks found")
		return nil
	}
	for _, subnet := range subnets {
		cmd.Println(subnet.String())
	}
	return nil
}
