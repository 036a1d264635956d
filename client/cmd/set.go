package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/netbirdio/allowedips/client/internal"
)

func newSetCmd() *cobra.Command {
	flags := &settingsFlags{}

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update the allowed IPs settings",
		Long:  `Update the allowed IPs settings file. Uses the same flags as 'compute' but only updates the settings file.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return setFunc(cmd, flags)
		},
	}

	addSettingsFlags(cmd, flags)
	return cmd
}

func setFunc(cmd *cobra.Command, flags *settingsFlags) error {
	if err := prepareCommand(cmd); err != nil {
		return fmt.Errorf("failed initializing log %v", err)
	}

	changed := false
	cmd.PersistentFlags().Visit(func(*pflag.Flag) {
		changed = true
	})
	if !changed {
		return errors.New("no settings given, see 'set --help'")
	}

	if _, err := internal.UpdateOrCreateConfig(flags.configInput(cmd)); err != nil {
		return fmt.Errorf("update settings: %w", err)
	}

	cmd.Println("Settings updated successfully")
	return nil
}
