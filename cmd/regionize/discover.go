package main

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/toejough/regionize"
)

// unexported variables.
var (
	skippedDirs = map[string]bool{
		"node_modules": true,
		"dist":         true,
		"vendor":       true,
	}
)

func discoverFiles(paths []string, excludePatterns []string) ([]string, error) {
	var files []string

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			// Explicit files only need a known extension
			if isSource(p) && !isExcluded(p, excludePatterns) {
				files = append(files, p)
			}

			continue
		}

		baseDir := p
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() {
				if path != baseDir && (skippedDirs[d.Name()] || strings.HasPrefix(d.Name(), ".")) {
					return filepath.SkipDir
				}

				return nil
			}

			if !isSource(path) || strings.HasSuffix(path, ".d.ts") {
				return nil
			}

			// Get relative path for pattern matching
			relPath, err := filepath.Rel(baseDir, path)
			if err != nil {
				relPath = path
			}

			if !isExcluded(relPath, excludePatterns) {
				files = append(files, path)
			}

			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}

// isExcluded checks if a path matches any of the exclude patterns.
func isExcluded(path string, patterns []string) bool {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, filepath.ToSlash(path))
		if err == nil && matched {
			return true
		}
		// Also check the base name for patterns like "*.spec.ts"
		if matched, err := doublestar.Match(pattern, filepath.Base(path)); err == nil && matched {
			return true
		}
	}

	return false
}

func isSource(path string) bool {
	_, err := regionize.LanguageForPath(path)
	return err == nil
}
