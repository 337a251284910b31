package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrNoAPIKey means no provider in the chain produced a key. This is a
// fatal precondition for answering, not something to retry.
var ErrNoAPIKey = errors.New("no API key found: set GROQ_API_KEY, add it to the secrets file, or pass -api-key")

// CredentialProvider returns an API key or empty if this source has none.
type CredentialProvider func() string

// ResolveAPIKey walks the providers in order and returns the first
// non-empty key.
func ResolveAPIKey(providers ...CredentialProvider) (string, error) {
	for _, provide := range providers {
		if key := provide(); key != "" {
			return key, nil
		}
	}
	return "", ErrNoAPIKey
}

// DefaultProviders is the standard chain: secrets file, then environment,
// then the explicitly supplied value.
func DefaultProviders(explicit string) []CredentialProvider {
	return []CredentialProvider{
		APIKeyFromFile(DefaultSecretsPath()),
		APIKeyFromEnv("GROQ_API_KEY"),
		StaticAPIKey(explicit),
	}
}

func DefaultSecretsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "articleqa", "secrets.yaml")
}

// APIKeyFromFile reads a yaml secrets file with a groq_api_key entry.
// A missing or malformed file yields no key.
func APIKeyFromFile(path string) CredentialProvider {
	return func() string {
		if path == "" {
			return ""
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return ""
		}
		var secrets struct {
			GroqAPIKey string `yaml:"groq_api_key"`
		}
		if err := yaml.Unmarshal(data, &secrets); err != nil {
			return ""
		}
		return secrets.GroqAPIKey
	}
}

func APIKeyFromEnv(name string) CredentialProvider {
	return func() string {
		return os.Getenv(name)
	}
}

func StaticAPIKey(key string) CredentialProvider {
	return func() string {
		return key
	}
}
