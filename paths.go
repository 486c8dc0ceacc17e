package tangle

import "path/filepath"

// MustAbs resolves path to an absolute path, panicking on failure — used at
// CLI boundaries where the working directory is known to be readable and a
// failure here indicates something is fundamentally wrong with the process
// environment, not with the document being processed.
func MustAbs(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		panic(err)
	}
	return abs
}
