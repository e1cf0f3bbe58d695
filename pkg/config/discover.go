package config

import (
	"os"
	"path/filepath"
	"strings"
)

// optionFileExts are the extensions the loader understands.
var optionFileExts = map[string]bool{
	".json": true,
	".yaml": true,
	".yml":  true,
	".db":   true,
}

// DiscoverSources returns the configured option files followed by any option
// files found under the scan paths. Duplicates are dropped, keeping the
// first occurrence.
func DiscoverSources(cfg Config) []string {
	seen := make(map[string]bool)
	var result []string

	add := func(path string) {
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		if seen[abs] {
			return
		}
		seen[abs] = true
		result = append(result, path)
	}

	// Explicit files first, in config order
	for _, f := range cfg.Sources.Files {
		add(f)
	}

	for _, scanPath := range cfg.Sources.ScanPaths {
		maxDepth := cfg.Sources.MaxDepth
		if maxDepth <= 0 {
			maxDepth = 2
		}
		for _, f := range scanForOptionFiles(scanPath, maxDepth) {
			add(f)
		}
	}

	return result
}

// scanForOptionFiles walks a directory tree up to maxDepth levels deep,
// collecting files whose extension the loader understands.
func scanForOptionFiles(root string, maxDepth int) []string {
	root = expandHome(root)
	var results []string

	rootDepth := strings.Count(filepath.Clean(root), string(filepath.Separator))

	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		currentDepth := strings.Count(filepath.Clean(path), string(filepath.Separator)) - rootDepth
		name := d.Name()

		if d.IsDir() {
			if currentDepth > maxDepth {
				return filepath.SkipDir
			}
			// Skip hidden directories, but never the root itself
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if currentDepth > maxDepth || strings.HasPrefix(name, ".") {
			return nil
		}
		if optionFileExts[strings.ToLower(filepath.Ext(name))] {
			results = append(results, path)
		}
		return nil
	})

	return results
}
