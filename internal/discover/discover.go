// Package discover walks a directory tree and finds literate source
// documents to tangle, honoring .gitignore patterns the way a checked-out
// repository would expect.
package discover

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

const sourceExtension = ".org"

// excludedDirs are always skipped, regardless of .gitignore content: build
// output and dependency directories that never hold hand-written sources.
var excludedDirs = map[string]bool{
	"node_modules": true,
	"scripts":      true,
	"dist":         true,
	".git":         true,
}

// Documents walks root and returns every .org file found, in the
// deterministic order filepath.Walk visits them (lexical, per directory).
// .gitignore patterns found at root are honored in addition to excludedDirs.
func Documents(root string) ([]string, error) {
	var patterns []gitignore.Pattern

	if data, err := os.ReadFile(filepath.Join(root, ".gitignore")); err == nil {
		for _, line := range strings.Split(string(data), "\n") {
			if line = strings.TrimSpace(line); line != "" && !strings.HasPrefix(line, "#") {
				patterns = append(patterns, gitignore.ParsePattern(line, nil))
			}
		}
	}
	matcher := gitignore.NewMatcher(patterns)

	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if path != root && excludedDirs[info.Name()] {
				return filepath.SkipDir
			}
			if isIgnored(matcher, root, path, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if isIgnored(matcher, root, path, false) {
			return nil
		}

		if strings.EqualFold(filepath.Ext(path), sourceExtension) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discovering documents under %s: %w", root, err)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no %s files found under %s", sourceExtension, root)
	}
	return files, nil
}

func isIgnored(matcher gitignore.Matcher, root, path string, isDir bool) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return false
	}
	components := strings.Split(rel, string(os.PathSeparator))
	return matcher.Match(components, isDir)
}
