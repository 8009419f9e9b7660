package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// expandPath resolves paths like "~/" to the user's home directory.
func expandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not get user home directory: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}

// loadAndUnmarshal reads a JSON config file and unmarshals it into v.
func loadAndUnmarshal(path string, v interface{}) error {
	full, err := expandPath(path)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return fmt.Errorf("could not read config file %s: %w", full, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("could not parse config file %s: %w", full, err)
	}

	return nil
}
