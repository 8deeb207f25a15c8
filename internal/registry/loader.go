package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"textgend/internal/common/fsutil"
	"textgend/pkg/types"
)

const ggufExt = ".gguf"

// LoadDir scans a directory for *.gguf files and builds a registry from filenames.
// ID is the full filename (including extension); Path is the absolute file path.
func LoadDir(dir string) ([]types.Model, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var models []types.Model
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(strings.ToLower(name), ggufExt) {
			continue
		}
		models = append(models, types.Model{ID: name, Name: strings.TrimSuffix(name, filepath.Ext(name)), Path: filepath.Join(abs, name)})
	}
	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
	return models, nil
}

// Find returns the model whose ID matches id. The .gguf suffix is optional and
// the comparison ignores case.
func Find(models []types.Model, id string) (types.Model, bool) {
	want := strings.ToLower(strings.TrimSpace(id))
	if want == "" {
		return types.Model{}, false
	}
	for _, m := range models {
		got := strings.ToLower(m.ID)
		if got == want || strings.TrimSuffix(got, ggufExt) == want {
			return m, true
		}
	}
	return types.Model{}, false
}
