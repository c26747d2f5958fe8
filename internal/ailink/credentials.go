package ailink

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultAPIKeyEnv is consulted when a credential names no variable.
const DefaultAPIKeyEnv = "API_KEY"

// ErrMissingCredential is returned when no credential source yields a key.
var ErrMissingCredential = errors.New("no api key available")

// envLookup and dotenvRead are swapped in tests.
var (
	envLookup  = os.LookupEnv
	dotenvRead = func(path string) (map[string]string, error) { return godotenv.Read(path) }
)

// resolveAPIKey reads the key for cred at call time. Sources, in order: the
// process environment, the dotenv file (re-read each call), the static value.
func resolveAPIKey(cred CredentialConfig) (string, error) {
	name := strings.TrimSpace(cred.APIKeyEnv)
	if name == "" {
		name = DefaultAPIKeyEnv
	}

	if value, ok := envLookup(name); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value), nil
	}

	if path := strings.TrimSpace(cred.DotenvFile); path != "" {
		values, err := dotenvRead(path)
		if err == nil {
			if value := strings.TrimSpace(values[name]); value != "" {
				return value, nil
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
	}

	if value := strings.TrimSpace(cred.APIKey); value != "" {
		return value, nil
	}
	return "", ErrMissingCredential
}

// usable reports whether a credential is eligible for selection. Unlabelled
// credentials are always usable so a bare api_key_env entry works without
// extra flags.
func (c CredentialConfig) usable() bool {
	return c.Enabled || strings.TrimSpace(c.Label) == ""
}

// credentialSource names where resolveAPIKey would find a key right now,
// without returning the key: "env:NAME", "dotenv:PATH" or "static".
func credentialSource(cred CredentialConfig) (string, error) {
	name := strings.TrimSpace(cred.APIKeyEnv)
	if name == "" {
		name = DefaultAPIKeyEnv
	}
	if value, ok := envLookup(name); ok && strings.TrimSpace(value) != "" {
		return "env:" + name, nil
	}
	if path := strings.TrimSpace(cred.DotenvFile); path != "" {
		values, err := dotenvRead(path)
		if err == nil && strings.TrimSpace(values[name]) != "" {
			return "dotenv:" + path, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
	}
	if strings.TrimSpace(cred.APIKey) != "" {
		return "static", nil
	}
	return "", ErrMissingCredential
}
