// Package cleanup removes stale incremental-build caches left behind in an
// output directory by prior tangle runs or downstream toolchains.
package cleanup

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

const cacheFileName = "tsconfig.tsbuildinfo"

// Run walks dir and removes every cache file it finds, returning the count
// removed. Permission errors on individual files are logged and skipped
// rather than aborting the whole walk; a missing dir is not an error.
func Run(dir string) (int, error) {
	removed := 0

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() || !isCacheFile(d.Name()) {
			return nil
		}

		if err := os.Remove(path); err != nil {
			if os.IsPermission(err) {
				slog.Warn("cleanup: permission denied removing cache file", "path", path, "error", err)
				return nil
			}
			return err
		}
		slog.Debug("cleanup: removed cache file", "path", path)
		removed++
		return nil
	})
	if os.IsNotExist(err) {
		return removed, nil
	}
	return removed, err
}

func isCacheFile(name string) bool {
	if name == cacheFileName {
		return true
	}
	ext := filepath.Ext(name)
	return ext == ".tsbuildinfo"
}
