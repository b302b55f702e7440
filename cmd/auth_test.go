package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/lingomeet/lingomeet/credentials"
)

func TestAuthSetKeyAndStatus(t *testing.T) {
	keyring.MockInit()
	deps, out := testDeps(t)
	deps.Secrets = credentials.NewStore()

	cmd := NewAuthCommand(deps)
	cmd.SetArgs([]string{"set-key", "--key", "sk-test-1234567890"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "API key stored.")

	out.Reset()
	cmd = NewAuthCommand(deps)
	cmd.SetArgs([]string{"status"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "sk-t...7890")
	assert.NotContains(t, out.String(), "sk-test-1234567890")
}

func TestAuthSetKeyPromptsFromInput(t *testing.T) {
	keyring.MockInit()
	deps, out := testDeps(t)
	deps.Secrets = credentials.NewStore()
	deps.In = strings.NewReader("sk-piped-key\n")

	cmd := NewAuthCommand(deps)
	cmd.SetArgs([]string{"set-key"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "API key stored.")

	got, err := deps.Secrets.Get(credentials.SecretOpenAIKey)
	require.NoError(t, err)
	assert.Equal(t, "sk-piped-key", got)
}

func TestAuthSetKeyRejectsEmpty(t *testing.T) {
	keyring.MockInit()
	deps, _ := testDeps(t)
	deps.Secrets = credentials.NewStore()
	deps.In = strings.NewReader("\n")

	cmd := NewAuthCommand(deps)
	cmd.SetArgs([]string{"set-key"})
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no API key provided")
}

func TestAuthClear(t *testing.T) {
	keyring.MockInit()
	deps, out := testDeps(t)
	deps.Secrets = credentials.NewStore()
	require.NoError(t, deps.Secrets.Set(credentials.SecretOpenAIKey, "sk-x"))

	cmd := NewAuthCommand(deps)
	cmd.SetArgs([]string{"clear"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "API key removed.")

	out.Reset()
	cmd = NewAuthCommand(deps)
	cmd.SetArgs([]string{"status"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "No API key stored.")
}
