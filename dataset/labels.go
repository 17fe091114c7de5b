package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// loadLabelsConcurrency caps how many label files are read at once.
const loadLabelsConcurrency = 8

// loadLabelsDir reads every regular file in dir as a label record: the first
// whitespace-separated token of the first line is the ground-truth category
// index, the filename stem is the lookup key.
func loadLabelsDir(dir string) (map[string]int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read labels directory: %w", err)
	}

	labels := make(map[string]int, len(entries))
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(loadLabelsConcurrency)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		g.Go(func() error {
			data, err := os.ReadFile(filepath.Join(dir, name))
			if err != nil {
				return fmt.Errorf("read label file %q: %w", name, err)
			}
			index, err := parseLabel(data)
			if err != nil {
				return fmt.Errorf("label file %q: %w", name, err)
			}
			mu.Lock()
			labels[Stem(name)] = index
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(labels) == 0 {
		return nil, fmt.Errorf("labels directory %q contains no label files", dir)
	}
	return labels, nil
}

func parseLabel(data []byte) (int, error) {
	line, _, _ := strings.Cut(string(data), "\n")
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return 0, fmt.Errorf("first line holds no label token")
	}
	index, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, fmt.Errorf("invalid label token %q: %w", fields[0], err)
	}
	return index, nil
}

// Stem strips any directory and extension from a file identifier, so that
// "val/123.jpg", "123.txt" and "123" all map to the same key.
func Stem(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
