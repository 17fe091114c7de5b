package dataset

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/curious-broccoli/ufo-hackathon/storage"
)

// LoadFromStore builds a Dataset from an object store instead of the local
// filesystem. The store must hold the dataset description under
// "dataset.yaml" and the label records under "labels/". Layout and parsing
// match Load.
func LoadFromStore(ctx context.Context, store storage.FileStore) (*Dataset, error) {
	data, err := store.Get(ctx, DescriptionFile)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset description: %w", err)
	}

	categories, oneHot, err := parseDescription(data)
	if err != nil {
		return nil, err
	}

	keys, err := store.List(ctx, LabelsDir+"/")
	if err != nil {
		return nil, fmt.Errorf("list label records: %w", err)
	}

	labels := make(map[string]int, len(keys))
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(loadLabelsConcurrency)
	for _, key := range keys {
		if strings.HasSuffix(key, "/") {
			continue
		}
		key := key
		g.Go(func() error {
			data, err := store.Get(gCtx, key)
			if err != nil {
				return fmt.Errorf("fetch label record %q: %w", key, err)
			}
			index, err := parseLabel(data)
			if err != nil {
				return fmt.Errorf("label record %q: %w", key, err)
			}
			mu.Lock()
			labels[Stem(key)] = index
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(labels) == 0 {
		return nil, fmt.Errorf("store holds no label records under %q", LabelsDir+"/")
	}
	if err := validateLabels(labels, oneHot); err != nil {
		return nil, err
	}
	return &Dataset{Categories: categories, OneHot: oneHot, Labels: labels}, nil
}
