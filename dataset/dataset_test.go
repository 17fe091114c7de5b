package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDataDir(t *testing.T, description string, labels map[string]string) string {
	t.Helper()
	dir := t.TempDir()

	if description != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, DescriptionFile), []byte(description), 0o644))
	}

	labelsDir := filepath.Join(dir, LabelsDir)
	require.NoError(t, os.Mkdir(labelsDir, 0o755))
	for name, content := range labels {
		require.NoError(t, os.WriteFile(filepath.Join(labelsDir, name), []byte(content), 0o644))
	}
	return dir
}

func TestLoad(t *testing.T) {
	t.Run("well-formed data directory", func(t *testing.T) {
		dir := writeDataDir(t, "names:\n  0: saucer\n  1: balloon\n  2: bird\n", map[string]string{
			"img1.txt": "2 0.5 0.5 0.1 0.1\n",
			"img2.txt": "0\nsecond line is ignored\n",
			"img3.txt": "1 trailing words\n",
		})

		ds, err := Load(dir)
		require.NoError(t, err)

		assert.Equal(t, []int{0, 1, 2}, ds.Categories)
		assert.Equal(t, 3, ds.CategoryCount())
		assert.Equal(t, map[string]int{"img1": 2, "img2": 0, "img3": 1}, ds.Labels)
	})

	t.Run("one-hot table", func(t *testing.T) {
		dir := writeDataDir(t, "names:\n  0: saucer\n  1: balloon\n", map[string]string{
			"img1.txt": "0\n",
		})

		ds, err := Load(dir)
		require.NoError(t, err)

		assert.Equal(t, []float64{1, 0}, ds.OneHot[0])
		assert.Equal(t, []float64{0, 1}, ds.OneHot[1])
	})

	t.Run("missing description file", func(t *testing.T) {
		dir := writeDataDir(t, "", map[string]string{"img1.txt": "0\n"})

		_, err := Load(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dataset description")
	})

	t.Run("description with no categories", func(t *testing.T) {
		dir := writeDataDir(t, "names: {}\n", map[string]string{"img1.txt": "0\n"})

		_, err := Load(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no categories")
	})

	t.Run("malformed description", func(t *testing.T) {
		dir := writeDataDir(t, "names: [not: a: mapping\n", map[string]string{"img1.txt": "0\n"})

		_, err := Load(dir)
		require.Error(t, err)
	})

	t.Run("category index outside the vector length", func(t *testing.T) {
		dir := writeDataDir(t, "names:\n  0: saucer\n  7: balloon\n", map[string]string{
			"img1.txt": "0\n",
		})

		_, err := Load(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "category index 7")
	})

	t.Run("missing labels directory", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, DescriptionFile), []byte("names:\n  0: saucer\n"), 0o644))

		_, err := Load(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "labels directory")
	})

	t.Run("empty labels directory", func(t *testing.T) {
		dir := writeDataDir(t, "names:\n  0: saucer\n", nil)

		_, err := Load(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no label files")
	})

	t.Run("label file without an integer token", func(t *testing.T) {
		dir := writeDataDir(t, "names:\n  0: saucer\n", map[string]string{
			"img1.txt": "saucer 0.5\n",
		})

		_, err := Load(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "img1.txt")
	})

	t.Run("label referencing an unknown category", func(t *testing.T) {
		dir := writeDataDir(t, "names:\n  0: saucer\n  1: balloon\n", map[string]string{
			"img1.txt": "0\n",
			"img2.txt": "5\n",
		})

		_, err := Load(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "img2")
		assert.Contains(t, err.Error(), "unknown category index 5")
	})

	t.Run("empty label file", func(t *testing.T) {
		dir := writeDataDir(t, "names:\n  0: saucer\n", map[string]string{
			"img1.txt": "",
		})

		_, err := Load(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no label token")
	})
}

func TestStem(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"123.jpg", "123"},
		{"123", "123"},
		{"labels/123.txt", "123"},
		{"archive.tar.gz", "archive.tar"},
		{"0a4e61b5-efc8-44e8-9a82-65dbba7280ef.jpg", "0a4e61b5-efc8-44e8-9a82-65dbba7280ef"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Stem(tt.in), "stem of %q", tt.in)
	}
}
