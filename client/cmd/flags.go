package cmd

import (
	"github.com/spf13/cobra"

	"github.com/netbirdio/allowedips/client/internal"
)

const (
	ipv6Flag                = "ipv6"
	splitTunnelingFlag      = "split-tunneling"
	splitModeFlag           = "split-mode"
	includeFlag             = "include"
	excludeFlag             = "exclude"
	lanFlag                 = "lan"
	lanDirectFlag           = "lan-direct"
	alwaysTunneledFlag      = "always-tunneled"
	extraIFaceBlackListFlag = "extra-iface-blacklist"
)

// settingsFlags holds the flags shared by the commands that change settings
type settingsFlags struct {
	IPv6Enabled         bool
	SplitTunneling      bool
	SplitMode           string
	Included            []string
	Excluded            []string
	LANPassthrough      bool
	LANDirect           bool
	AlwaysTunneled      []string
	ExtraIFaceBlackList []string
}

func addSettingsFlags(cmd *cobra.Command, flags *settingsFlags) {
	cmd.PersistentFlags().BoolVar(&flags.IPv6Enabled, ipv6Flag, false, "Route IPv6 traffic through the tunnel")
	cmd.PersistentFlags().BoolVar(&flags.SplitTunneling, splitTunnelingFlag, false, "Enable split tunneling")
	cmd.PersistentFlags().StringVar(&flags.SplitMode, splitModeFlag, "exclude",
		`Split tunneling mode. "exclude" tunnels everything but the excluded ranges, `+
			`"include" tunnels only the included ranges`)
	cmd.PersistentFlags().StringSliceVar(&flags.Included, includeFlag, nil,
		`Ranges tunneled in include mode. Accepts CIDR blocks, single addresses and from-to ranges. `+
			`An empty string "" clears the previous configuration. `+
			`E.g. --include 10.0.0.0/24,192.168.5.10 or --include ""`)
	cmd.PersistentFlags().StringSliceVar(&flags.Excluded, excludeFlag, nil,
		`Ranges kept out of the tunnel in exclude mode. Accepts CIDR blocks, single addresses and from-to ranges. `+
			`An empty string "" clears the previous configuration. `+
			`E.g. --exclude 192.168.1.0/24,10.0.0.5-10.0.0.20`)
	cmd.PersistentFlags().BoolVar(&flags.LANPassthrough, lanFlag, false, "Keep local network traffic out of the tunnel")
	cmd.PersistentFlags().BoolVar(&flags.LANDirect, lanDirectFlag, false,
		"Exclude the well known private ranges instead of the networks detected on the device interfaces")
	cmd.PersistentFlags().StringSliceVar(&flags.AlwaysTunneled, alwaysTunneledFlag, nil,
		`Addresses routed through the tunnel under every configuration (default "`+internal.DefaultAlwaysTunneled+`")`)
	cmd.PersistentFlags().StringSliceVar(&flags.ExtraIFaceBlackList, extraIFaceBlackListFlag, nil,
		"Extra interface name prefixes ignored when detecting local networks")
}

// configInput turns the flags given on the command line into a config input
func (flags *settingsFlags) configInput(cmd *cobra.Command) internal.ConfigInput {
	input := internal.ConfigInput{
		ConfigPath: configPath,
	}

	if cmd.Flag(ipv6Flag).Changed {
		input.IPv6Enabled = &flags.IPv6Enabled
	}

	if cmd.Flag(splitTunnelingFlag).Changed {
		input.SplitTunneling = &flags.SplitTunneling
	}

	if cmd.Flag(splitModeFlag).Changed {
		input.SplitMode = &flags.SplitMode
	}

	if cmd.Flag(includeFlag).Changed {
		input.IncludedRanges = nonEmpty(flags.Included)
	}

	if cmd.Flag(excludeFlag).Changed {
		input.ExcludedRanges = nonEmpty(flags.Excluded)
	}

	if cmd.Flag(lanFlag).Changed {
		input.LANPassthrough = &flags.LANPassthrough
	}

	if cmd.Flag(lanDirectFlag).Changed {
		input.LANDirect = &flags.LANDirect
	}

	if cmd.Flag(alwaysTunneledFlag).Changed {
		input.AlwaysTunneled = nonEmpty(flags.AlwaysTunneled)
	}

	if cmd.Flag(extraIFaceBlackListFlag).Changed {
		input.ExtraIFaceBlackList = flags.ExtraIFaceBlackList
	}

	return input
}

// nonEmpty drops blank entries. The result is never nil, so a flag given
// as "" clears the stored list.
func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
