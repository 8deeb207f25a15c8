package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gomlx/go-huggingface/hub"

	"textgend/internal/common/fsutil"
	"textgend/internal/registry"
)

// downloadFromHub fetches file from a Hugging Face repo into cacheDir and
// returns the local path. Replaced in tests.
var downloadFromHub = func(repoID, file, cacheDir, token string) (string, error) {
	if cacheDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("home dir: %w", err)
		}
		cacheDir = filepath.Join(home, ".cache", "huggingface", "hub")
	}
	repo := hub.New(repoID).WithCacheDir(cacheDir)
	if token != "" {
		repo = repo.WithAuth(token)
	}
	return repo.DownloadFile(file)
}

// resolveModelPath finds the GGUF file for cfg.Model. Order: explicit
// ModelPath, a file in ModelsDir named after the model, then ModelFile from
// the Hugging Face repo named by the model.
func resolveModelPath(cfg Config) (string, int64, error) {
	if strings.TrimSpace(cfg.ModelPath) != "" {
		p, size, err := fsutil.RegularFile(cfg.ModelPath)
		if err != nil {
			return "", 0, ErrModelNotFound(cfg.ModelPath, err.Error())
		}
		return p, size, nil
	}
	if strings.TrimSpace(cfg.ModelsDir) != "" {
		models, err := registry.LoadDir(cfg.ModelsDir)
		if err != nil {
			return "", 0, ErrModelNotFound(cfg.Model, err.Error())
		}
		if m, ok := registry.Find(models, cfg.Model); ok {
			return fsutil.RegularFile(m.Path)
		}
		if cfg.ModelFile == "" {
			return "", 0, ErrModelNotFound(cfg.Model, "no matching .gguf in "+cfg.ModelsDir)
		}
	}
	if strings.TrimSpace(cfg.Model) == "" || strings.TrimSpace(cfg.ModelFile) == "" {
		return "", 0, ErrModelNotFound(cfg.Model, "set model_path, models_dir, or model and model_file")
	}
	logger.Info().Str("repo", cfg.Model).Str("file", cfg.ModelFile).Msg("fetching model from Hugging Face Hub")
	p, err := downloadFromHub(cfg.Model, cfg.ModelFile, cfg.HFCacheDir, cfg.HFToken)
	if err != nil {
		return "", 0, ErrModelNotFound(cfg.Model+"/"+cfg.ModelFile, err.Error())
	}
	return fsutil.RegularFile(p)
}
