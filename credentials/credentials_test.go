package credentials

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestStoreRoundTrip(t *testing.T) {
	keyring.MockInit()
	s := NewStore()

	require.NoError(t, s.Set(SecretOpenAIKey, "sk-test-123"))

	got, err := s.Get(SecretOpenAIKey)
	require.NoError(t, err)
	assert.Equal(t, "sk-test-123", got)

	require.NoError(t, s.Delete(SecretOpenAIKey))
	_, err = s.Get(SecretOpenAIKey)
	assert.True(t, errors.Is(err, ErrNotStored))
}

func TestDeleteAbsentSecretIsNoop(t *testing.T) {
	keyring.MockInit()
	s := NewStore()
	assert.NoError(t, s.Delete("never-stored"))
}

func TestSetRejectsEmptyValue(t *testing.T) {
	keyring.MockInit()
	s := NewStore()
	assert.Error(t, s.Set(SecretOpenAIKey, ""))
}

func TestEnvironmentOverrideWins(t *testing.T) {
	keyring.MockInit()
	s := NewStore()

	require.NoError(t, s.Set(SecretOpenAIKey, "from-keyring"))
	t.Setenv("LINGOMEET_OPENAI_API_KEY", "from-env")

	got, err := s.Get(SecretOpenAIKey)
	require.NoError(t, err)
	assert.Equal(t, "from-env", got)
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "LINGOMEET_OPENAI_API_KEY", envName("openai-api-key"))
}
