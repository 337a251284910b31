package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAPIKeyFirstNonEmptyWins(t *testing.T) {
	key, err := ResolveAPIKey(
		StaticAPIKey(""),
		StaticAPIKey("second"),
		StaticAPIKey("third"),
	)
	require.NoError(t, err)
	assert.Equal(t, "second", key)
}

func TestResolveAPIKeyExhausted(t *testing.T) {
	_, err := ResolveAPIKey(StaticAPIKey(""), StaticAPIKey(""))
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestAPIKeyFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "secrets.yaml")
	require.NoError(t, os.WriteFile(path, []byte("groq_api_key: gsk_from_file\n"), 0600))

	assert.Equal(t, "gsk_from_file", APIKeyFromFile(path)())
	assert.Equal(t, "", APIKeyFromFile(filepath.Join(tmpDir, "missing.yaml"))())
	assert.Equal(t, "", APIKeyFromFile("")())
}

func TestAPIKeyFromEnv(t *testing.T) {
	t.Setenv("ARTICLEQA_TEST_KEY", "gsk_from_env")
	assert.Equal(t, "gsk_from_env", APIKeyFromEnv("ARTICLEQA_TEST_KEY")())
	assert.Equal(t, "", APIKeyFromEnv("ARTICLEQA_TEST_KEY_UNSET")())
}

func TestDefaultProviderOrder(t *testing.T) {
	// Env loses to the secrets file, explicit value is last.
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "secrets.yaml")
	require.NoError(t, os.WriteFile(path, []byte("groq_api_key: gsk_file\n"), 0600))
	t.Setenv("ARTICLEQA_TEST_KEY", "gsk_env")

	key, err := ResolveAPIKey(
		APIKeyFromFile(path),
		APIKeyFromEnv("ARTICLEQA_TEST_KEY"),
		StaticAPIKey("gsk_explicit"),
	)
	require.NoError(t, err)
	assert.Equal(t, "gsk_file", key)
}
