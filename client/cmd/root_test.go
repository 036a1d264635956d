package cmd

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netbirdio/allowedips/util"
)

// setupTestConfig points the persistent flags at a fresh settings file
func setupTestConfig(t *testing.T) string {
	t.Helper()

	oldConfigPath, oldLogLevel, oldLogFile := configPath, logLevel, logFile
	t.Cleanup(func() {
		configPath, logLevel, logFile = oldConfigPath, oldLogLevel, oldLogFile
	})

	configPath = filepath.Join(t.TempDir(), "allowedips.json")
	logLevel = "info"
	logFile = util.ConsoleLog
	return configPath
}

func runCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	// a nil slice makes cobra fall back to os.Args
	cmd.SetArgs(append([]string{}, args...))
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	err := cmd.Execute()
	return out.String(), err
}

func TestInitCommands(t *testing.T) {
	helpFlag := "-h"
	commandArgs := [][]string{{"root", helpFlag}}
	for _, command := range rootCmd.Commands() {
		commandArgs = append(commandArgs, []string{command.Name(), command.Name(), helpFlag})
		for _, subcommand := range command.Commands() {
			commandArgs = append(commandArgs, []string{command.Name() + " " + subcommand.Name(), command.Name(), subcommand.Name(), helpFlag})
		}
	}

	for _, args := range commandArgs {
		t.Run(fmt.Sprintf("Testing Command %s", args[0]), func(t *testing.T) {
			defer func() {
				err := recover()
				if err != nil {
					t.Fatalf("got an panic error while running the command: %s -h. Error: %s", args[0], err)
				}
			}()

			rootCmd.SetArgs(args[1:])
			rootCmd.SetOut(io.Discard)
			if err := rootCmd.Execute(); err != nil {
				t.Errorf("expected no error while running %s command, got %v", args[0], err)
				return
			}
		})
	}
}

func TestSetFlagsFromEnvVars(t *testing.T) {
	flags := &settingsFlags{}
	var cmd = &cobra.Command{
		Use:          "allowedips",
		Long:         "test",
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			SetFlagsFromEnvVars(cmd)
		},
	}
	addSettingsFlags(cmd, flags)

	t.Setenv("NB_EXCLUDE", "192.168.1.0/24,10.0.0.0/8")
	t.Setenv("NB_SPLIT_MODE", "include")
	t.Setenv("NB_IPV6", "true")
	t.Setenv("WT_LAN", "true")

	cmd.SetArgs([]string{})
	err := cmd.Execute()
	require.NoError(t, err, "should run without errors")

	assert.Equal(t, []string{"192.168.1.0/24", "10.0.0.0/8"}, flags.Excluded, "excluded ranges should match")
	assert.Equal(t, "include", flags.SplitMode, "split mode should match")
	assert.True(t, flags.IPv6Enabled, "ipv6 should be enabled")
	assert.True(t, flags.LANPassthrough, "legacy WT_ prefix should still be honored")
	assert.False(t, flags.LANDirect)
}

func TestFlagNameToEnvVar(t *testing.T) {
	assert.Equal(t, "NB_SPLIT_MODE", FlagNameToEnvVar(splitModeFlag, "NB_"))
	assert.Equal(t, "NB_EXTRA_IFACE_BLACKLIST", FlagNameToEnvVar(extraIFaceBlackListFlag, "NB_"))
	assert.Equal(t, "WT_LOG_LEVEL", FlagNameToEnvVar("log-level", "WT_"))
}

func TestVersionCommand(t *testing.T) {
	out, err := runCommand(t, rootCmd, "version")
	require.NoError(t, err)
	assert.Equal(t, "development\n", out)
}
