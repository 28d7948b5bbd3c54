package cache

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// LedgerEntry records the modification time observed for a local artifact
// file when the cache was written.
type LedgerEntry struct {
	Modified int64 // Unix milliseconds
	Path     string
}

// String returns the persisted timestamp:absolutePath form.
func (e LedgerEntry) String() string {
	return strconv.FormatInt(e.Modified, 10) + ":" + e.Path
}

// formatLedger builds the ledger blob from the current on-disk state of
// the given files. Files that do not exist or cannot be read are omitted;
// they will simply not protect the cache and the next fingerprint mismatch
// or ledger rewrite catches up with them.
func formatLedger(files []string) string {
	var blob strings.Builder

	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			continue
		}

		info, err := os.Stat(abs)
		if err != nil || info.IsDir() {
			continue
		}

		if !readable(abs) {
			continue
		}

		entry := LedgerEntry{Modified: info.ModTime().UnixMilli(), Path: abs}
		blob.WriteByte('\n')
		blob.WriteString(entry.String())
	}

	return blob.String()
}

// validateLedger checks that every ledger entry still refers to an
// existing, readable file with the exact recorded modification time. An
// empty ledger is valid. A malformed line invalidates the whole ledger.
func validateLedger(blob string) bool {
	for _, line := range strings.Split(blob, "\n") {
		if line == "" {
			continue
		}

		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			return false
		}

		modified, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return false
		}

		info, err := os.Stat(parts[1])
		if err != nil {
			return false
		}

		if !readable(parts[1]) {
			return false
		}

		if info.ModTime().UnixMilli() != modified {
			return false
		}
	}

	return true
}

// readable reports whether the file can actually be opened for reading,
// which a plain stat does not guarantee.
func readable(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}

	f.Close()

	return true
}
