package env

import "os"

// Get reads an environment variable, returning fallback when unset or empty.
// Structured configuration goes through pkg/config; this covers the few knobs
// read directly by the binaries.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
