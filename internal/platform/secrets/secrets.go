// Package secrets resolves credential values that may live in the
// environment directly or in a file referenced by a KEY_FILE variable, the
// convention used by container secret mounts.
package secrets

import (
	"fmt"
	"os"
	"strings"
)

const fileSuffix = "_FILE"

// Lookup resolves the secret for key: the environment variable itself wins,
// then the file named by KEY_FILE. Returns "" when neither is set.
func Lookup(key string) (string, error) {
	if v := os.Getenv(key); v != "" {
		return v, nil
	}

	path := os.Getenv(key + fileSuffix)
	if path == "" {
		return "", nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read secret file for %s: %w", key, err)
	}

	return strings.TrimSpace(string(raw)), nil
}

// Fill resolves each key and writes the value through the pointer when the
// current value is empty. Values already set (by env parsing or flags) are
// left alone.
func Fill(targets map[string]*string) error {
	for key, dst := range targets {
		if *dst != "" {
			continue
		}

		v, err := Lookup(key)
		if err != nil {
			return err
		}

		*dst = v
	}

	return nil
}
