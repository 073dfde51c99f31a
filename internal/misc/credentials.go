package misc

import (
	"fmt"
	"path/filepath"
)

// LogSavingCredentials emits a consistent message when persisting auth material.
// Only the destination path is printed, never the credential contents.
func LogSavingCredentials(path string) {
	if path == "" {
		return
	}
	// Use filepath.Clean so logs remain stable even if callers pass redundant separators.
	fmt.Printf("Saving credentials to %s\n", filepath.Clean(path))
}
