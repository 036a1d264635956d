package cmd

import (
	"os"
	"runtime"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/netbirdio/allowedips/util"
)

var (
	configPath           string
	defaultConfigPathDir string
	defaultConfigPath    string
	logLevel             string
	logFile              string
	rootCmd              = &cobra.Command{
		Use:          "allowedips",
		Short:        "Computes the address blocks routed through the VPN tunnel",
		Long:         "Computes the WireGuard AllowedIPs list from the split tunneling, IPv6 and LAN passthrough settings.",
		SilenceUsage: true,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	defaultConfigPathDir = "/etc/netbird/"
	if runtime.GOOS == "windows" {
		defaultConfigPathDir = os.Getenv("PROGRAMDATA") + "\\Netbird\\"
	}
	defaultConfigPath = defaultConfigPathDir + "allowedips.json"

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "Settings file location")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "sets log level")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", util.ConsoleLog, "sets log path. If console is specified the log will be output to stderr")

	rootCmd.AddCommand(newComputeCmd())
	rootCmd.AddCommand(newSetCmd())
	rootCmd.AddCommand(newLocalNetworksCmd())
	rootCmd.AddCommand(versionCmd)
}

// SetFlagsFromEnvVars reads and updates flag values from environment variables with prefix NB_
func SetFlagsFromEnvVars(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.VisitAll(func(f *pflag.Flag) {
		oldEnvVar := FlagNameToEnvVar(f.Name, "WT_")

		if value, present := os.LookupEnv(oldEnvVar); present {
			err := flags.Set(f.Name, value)
			if err != nil {
				log.Infof("unable to configure flag %s using variable %s, err: %v", f.Name, oldEnvVar, err)
			}
		}

		newEnvVar := FlagNameToEnvVar(f.Name, "NB_")

		if value, present := os.LookupEnv(newEnvVar); present {
			err := flags.Set(f.Name, value)
			if err != nil {
				log.Infof("unable to configure flag %s using variable %s, err: %v", f.Name, newEnvVar, err)
			}
		}
	})
}

// FlagNameToEnvVar converts flag name to environment var name adding a prefix,
// replacing dashes and making all uppercase (e.g. split-mode is converted to NB_SPLIT_MODE according to the input prefix)
func FlagNameToEnvVar(cmdFlag string, prefix string) string {
	parsed := strings.ReplaceAll(cmdFlag, "-", "_")
	upper := strings.ToUpper(parsed)
	return prefix + upper
}

// prepareCommand applies environment overrides and initializes logging
// before a command runs
func prepareCommand(cmd *cobra.Command) error {
	SetFlagsFromEnvVars(rootCmd)
	SetFlagsFromEnvVars(cmd)

	cmd.SetOut(cmd.OutOrStdout())

	return util.InitLog(logLevel, logFile)
}
