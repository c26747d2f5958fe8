// Package appid holds the application identity used for config paths,
// environment variable prefixes and version output.
package appid

import "strings"

// Identity names the application across config, env and telemetry.
type Identity struct {
	BinaryName  string
	Vendor      string
	ConfigName  string
	EnvPrefix   string
	Description string
}

var current = Identity{
	BinaryName:  "viralstrategist",
	Vendor:      "viralstrategist",
	ConfigName:  "viralstrategist",
	EnvPrefix:   "VIRALSTRATEGIST_",
	Description: "Viral short-form video strategist backed by generative AI",
}

// Get returns the application identity.
func Get() *Identity {
	id := current
	return &id
}

// Env returns the prefixed environment variable name for key.
func (i *Identity) Env(key string) string {
	key = strings.ToUpper(strings.TrimSpace(key))
	if strings.HasPrefix(key, i.EnvPrefix) {
		return key
	}
	return i.EnvPrefix + key
}
