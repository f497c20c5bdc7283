package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
)

// RunPlaceholder marks where the run index goes in a log path template.
const RunPlaceholder = "{}"

// MakeDir creates a directory with all parent directories
func MakeDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// RunPaths expands a template such as "logs/touchosc_slider_{}.log" into one
// path per run index 0..numRuns-1.
func RunPaths(template string, numRuns int) ([]string, error) {
	if !strings.Contains(template, RunPlaceholder) {
		return nil, fmt.Errorf("path template %q has no %s placeholder", template, RunPlaceholder)
	}
	if numRuns < 1 {
		return nil, fmt.Errorf("number of runs must be at least 1, got %d", numRuns)
	}

	paths := make([]string, numRuns)
	for i := range paths {
		paths[i] = strings.ReplaceAll(template, RunPlaceholder, strconv.Itoa(i))
	}
	return paths, nil
}
