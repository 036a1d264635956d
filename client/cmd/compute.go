package cmd

import (
	"encoding/json"
	"fmt"
	"net/netip"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/netbirdio/allowedips/client/internal"
	"github.com/netbirdio/allowedips/client/internal/allowedips"
	"github.com/netbirdio/allowedips/client/internal/localnet"
)

const jsonFlag = "json"

// newLocalNetworkSource is replaced in tests
var newLocalNetworkSource = func(blacklist []string) localnet.Source {
	return localnet.NewSystemSource(blacklist)
}

type computeFlags struct {
	settingsFlags
	JSON bool
}

type computeOutput struct {
	IPv4 []netip.Prefix `json:"ipv4"`
	IPv6 []netip.Prefix `json:"ipv6"`
}

func newComputeCmd() *cobra.Command {
	flags := &computeFlags{}

	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Print the address blocks routed through the tunnel",
		Long: "Print the address blocks routed through the tunnel. Settings are read from the config file " +
			"and can be overridden with flags; overrides are not written back.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return computeFunc(cmd, flags)
		},
	}

	addSettingsFlags(cmd, &flags.settingsFlags)
	cmd.PersistentFlags().BoolVar(&flags.JSON, jsonFlag, false, "Print the result as JSON")

	return cmd
}

func computeFunc(cmd *cobra.Command, flags *computeFlags) error {
	if err := prepareCommand(cmd); err != nil {
		return fmt.Errorf("failed initializing log %v", err)
	}

	cfg, err := internal.ReadInMemoryConfig(flags.configInput(cmd))
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	req, err := cfg.Request()
	if err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	calculator := allowedips.NewCalculator(newLocalNetworkSource(cfg.InterfaceBlacklist))
	result := calculator.Compute(cmd.Context(), req)
	log.Debugf("allowed IPs: %s", result)

	if flags.JSON {
		return printJSON(cmd, computeOutput{
			IPv4: orEmpty(result.IPv4()),
			IPv6: orEmpty(result.IPv6()),
		})
	}

	for _, prefix := range result.Prefixes {
		cmd.Println(prefix.String())
	}
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func orEmpty(prefixes []netip.Prefix) []netip.Prefix {
	if prefixes == nil {
		return []netip.Prefix{}
	}
	return prefixes
}
