package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrSourceNotFound = errors.New("import source not found")
	ErrSourceOutside  = errors.New("import source escapes base directory")
)

type LocalSource struct {
	BaseDir string
}

func NewLocalSource(baseDir string) *LocalSource {
	if baseDir == "" {
		baseDir = "."
	}
	return &LocalSource{BaseDir: baseDir}
}

func (s *LocalSource) Open(ctx context.Context, sourceKey string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.resolve(sourceKey)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, sourceKey)
		}
		return nil, fmt.Errorf("open file %s: %w", path, err)
	}
	return file, nil
}

// resolve maps a source key to a path under BaseDir.
func (s *LocalSource) resolve(sourceKey string) (string, error) {
	path := filepath.Join(s.BaseDir, filepath.FromSlash(strings.TrimPrefix(sourceKey, "/")))
	rel, err := filepath.Rel(s.BaseDir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrSourceOutside, sourceKey)
	}
	return path, nil
}
