package main

import (
	"fmt"
	"os"
	"strings"
)

// expandPath expands a path with ~ to the user's home directory.
func expandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not get user home directory: %w", err)
	}

	return strings.Replace(path, "~", home, 1), nil
}
