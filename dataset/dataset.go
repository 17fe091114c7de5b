package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Dataset holds the fixed evaluation data the scoring engine is built on: the
// valid category indices with their one-hot encodings, and the ground-truth
// label for every evaluation file. It is assembled once at startup and must
// not be mutated afterwards; concurrent reads are safe.
type Dataset struct {
	Categories []int
	OneHot     map[int][]float64
	Labels     map[string]int
}

// DescriptionFile is the dataset description expected inside the data
// directory, a YOLO-style YAML file whose "names" map lists the categories.
const DescriptionFile = "dataset.yaml"

// LabelsDir is the subdirectory holding one label file per evaluation item.
const LabelsDir = "labels"

type description struct {
	Names map[int]string `yaml:"names"`
}

// Load reads the dataset description and the labels directory from dir.
// Any missing or malformed input is returned as an error; the caller is
// expected to treat this as fatal since the process cannot score without it.
func Load(dir string) (*Dataset, error) {
	data, err := os.ReadFile(filepath.Join(dir, DescriptionFile))
	if err != nil {
		return nil, fmt.Errorf("read dataset description: %w", err)
	}

	categories, oneHot, err := parseDescription(data)
	if err != nil {
		return nil, err
	}

	labels, err := loadLabelsDir(filepath.Join(dir, LabelsDir))
	if err != nil {
		return nil, err
	}
	if err := validateLabels(labels, oneHot); err != nil {
		return nil, err
	}

	return &Dataset{Categories: categories, OneHot: oneHot, Labels: labels}, nil
}

// validateLabels rejects label records pointing at a category the description
// does not list. Without this check such a record would score as a permanent
// zero-loss pair instead of failing at startup.
func validateLabels(labels map[string]int, oneHot map[int][]float64) error {
	for name, index := range labels {
		if _, ok := oneHot[index]; !ok {
			return fmt.Errorf("label %q references unknown category index %d", name, index)
		}
	}
	return nil
}

// CategoryCount returns the number of valid categories, which is also the
// length every prediction vector must have.
func (d *Dataset) CategoryCount() int {
	return len(d.Categories)
}

// LabelCount returns the size of the fixed evaluation set.
func (d *Dataset) LabelCount() int {
	return len(d.Labels)
}

func parseDescription(data []byte) ([]int, map[int][]float64, error) {
	var desc description
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return nil, nil, fmt.Errorf("parse dataset description: %w", err)
	}
	if len(desc.Names) == 0 {
		return nil, nil, fmt.Errorf("dataset description lists no categories")
	}

	categories := make([]int, 0, len(desc.Names))
	for index := range desc.Names {
		categories = append(categories, index)
	}
	sort.Ints(categories)

	oneHot, err := buildOneHot(categories)
	if err != nil {
		return nil, nil, err
	}
	return categories, oneHot, nil
}

// buildOneHot maps each category index to a vector with a 1.0 at the index's
// own position. Indices must therefore fall inside [0, category count).
func buildOneHot(categories []int) (map[int][]float64, error) {
	depth := len(categories)
	oneHot := make(map[int][]float64, depth)
	for _, index := range categories {
		if index < 0 || index >= depth {
			return nil, fmt.Errorf("category index %d outside [0, %d)", index, depth)
		}
		vector := make([]float64, depth)
		vector[index] = 1.0
		oneHot[index] = vector
	}
	return oneHot, nil
}
