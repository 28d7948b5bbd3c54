package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// HashUnit creates a unique hash for a compile unit and its settings
// The hash is based on:
// - Each source file's path and content, in list order
// - Classpath and module path entries
// - Raw compiler options
// - The destination directory
// - The module main class patched into the compiled descriptor
func HashUnit(sources, classpath, modulePath, options []string, destination, mainClass string) (string, error) {
	h := sha256.New()

	for _, source := range sources {
		h.Write([]byte(source))

		f, err := os.Open(source)
		if err != nil {
			return "", fmt.Errorf("failed to open source file: %w", err)
		}

		if _, err := io.Copy(h, f); err != nil {
			f.Close()
			return "", fmt.Errorf("failed to hash source file: %w", err)
		}

		f.Close()
	}

	h.Write([]byte(strings.Join(classpath, "|")))
	h.Write([]byte(strings.Join(modulePath, "|")))
	h.Write([]byte(strings.Join(options, "|")))
	h.Write([]byte(destination))
	h.Write([]byte(mainClass))

	return hex.EncodeToString(h.Sum(nil)), nil
}
