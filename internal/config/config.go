package config

import (
	"os"
	"strings"
)

// Get returns the trimmed value of an environment variable, or fallback when unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
