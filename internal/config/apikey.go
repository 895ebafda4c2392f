package config

import (
	"fmt"
	"os"
)

// ResolveAPIKey resolves an API key based on the given source: "env" reads
// the named environment variable, "config" uses the inline config value.
// An empty source defaults to "env".
func ResolveAPIKey(source, configValue, envVar string) (string, error) {
	switch source {
	case "", "env":
		val := os.Getenv(envVar)
		if val == "" {
			return "", fmt.Errorf("environment variable %s is not set", envVar)
		}
		return val, nil
	case "config":
		if configValue == "" {
			return "", fmt.Errorf("api_key_source is 'config' but no api_key value provided")
		}
		return configValue, nil
	default:
		return "", fmt.Errorf("unknown api_key_source: %q", source)
	}
}
