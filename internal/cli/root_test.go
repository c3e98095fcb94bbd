package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "packstage", cmd.Use)
	assert.Contains(t, cmd.Long, "staging")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"manage", "resolve"} {
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{name})
			require.NoError(t, err, "Command %s should exist", name)
			require.NotNil(t, subCmd)
			assert.Equal(t, name, subCmd.Name())
		})
	}
}

func TestManageSubcommands(t *testing.T) {
	cmd := NewRootCommand()
	subcommands := []string{"init", "install", "uninstall", "list", "deploy", "history"}

	for _, name := range subcommands {
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{"manage", name})
			require.NoError(t, err, "Subcommand %s should exist", name)
			require.NotNil(t, subCmd)
			assert.Equal(t, name, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
}

func TestInstallCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	installCmd, _, err := cmd.Find([]string{"manage", "install"})
	require.NoError(t, err)

	contextFlag := installCmd.Flags().Lookup("context")
	require.NotNil(t, contextFlag)
	assert.Equal(t, "c", contextFlag.Shorthand)

	stepFlag := installCmd.Flags().Lookup("step")
	require.NotNil(t, stepFlag)
	assert.Equal(t, "s", stepFlag.Shorthand)

	require.NotNil(t, installCmd.Flags().Lookup("software"))
	require.NotNil(t, installCmd.Flags().Lookup("force"))
	require.NotNil(t, installCmd.Flags().Lookup("uninstall"))
}

func TestResolveCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	resolveCmd, _, err := cmd.Find([]string{"resolve"})
	require.NoError(t, err)

	stagingFlag := resolveCmd.Flags().Lookup("staging")
	require.NotNil(t, stagingFlag)
	assert.Equal(t, "false", stagingFlag.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--format", "xml", "manage", "history"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(NewExitError(ExitFailure, "declined")))
	assert.Equal(t, ExitCommandError, GetExitCode(assert.AnError))
}
