package cli

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/devbush/vidtitle/internal/domain"
)

// ParseInputFile reads a file listing videos, one path per line.
// Blank lines and lines starting with # are ignored, as are lines that do
// not name a supported video. Relative paths are resolved against the
// directory of the list file.
func ParseInputFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	base := filepath.Dir(path)

	var paths []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := cleanPath(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !domain.IsVideoFile(line) {
			continue
		}
		if !filepath.IsAbs(line) {
			line = filepath.Join(base, line)
		}

		paths = append(paths, filepath.Clean(line))
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return paths, nil
}

// CollectInputs combines already known paths with the entries of filePath,
// deduplicating. Paths are kept in order of first appearance.
func CollectInputs(paths []string, filePath string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string

	add := func(p string) {
		key := p
		if abs, err := filepath.Abs(p); err == nil {
			key = abs
		}
		if !seen[key] {
			seen[key] = true
			out = append(out, p)
		}
	}

	for _, p := range paths {
		add(p)
	}

	if filePath != "" {
		filePaths, err := ParseInputFile(filePath)
		if err != nil {
			return nil, err
		}
		for _, p := range filePaths {
			add(p)
		}
	}

	return out, nil
}
