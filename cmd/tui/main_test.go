package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCmd_Flags(t *testing.T) {
	t.Setenv("APP_ENVIRONMENT", "")

	cmd := newRootCmd()

	for name, want := range map[string]string{
		"profile":  "local",
		"base-url": "",
		"log-file": "./logs/tui.log",
	} {
		f := cmd.Flags().Lookup(name)
		require.NotNil(t, f, "missing flag %s", name)
		assert.Equal(t, want, f.DefValue, name)
	}

	assert.Equal(t, "p", cmd.Flags().Lookup("profile").Shorthand)
}

func TestNewRootCmd_ProfileFromEnvironment(t *testing.T) {
	t.Setenv("APP_ENVIRONMENT", "test")

	assert.Equal(t, "test", newRootCmd().Flags().Lookup("profile").DefValue)
}

func TestNewRootCmd_RejectsArgs(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"extra"})

	assert.Error(t, cmd.Execute())
}

func TestRun_InvalidConfig(t *testing.T) {
	err := run(t.Context(), &options{profile: "missing", baseURL: "not a url", logFile: t.TempDir() + "/tui.log"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}
