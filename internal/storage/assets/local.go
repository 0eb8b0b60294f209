package assets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage writes assets under a root directory and builds URLs against a
// public base; the router serves the root under /media/ when this backend is
// active. Used for development and tests.
type LocalStorage struct {
	rootPath string
	baseURL  string
}

func NewLocal(rootPath, baseURL string) (*LocalStorage, error) {
	// Use filepath.Clean to prevent path traversal issues like "media/../"
	p := filepath.Clean(rootPath)

	if err := os.MkdirAll(p, 0755); err != nil {
		return nil, fmt.Errorf("failed to create root storage directory %s: %w", p, err)
	}

	return &LocalStorage{rootPath: p, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (s *LocalStorage) Root() string {
	return s.rootPath
}

func (s *LocalStorage) Upload(_ context.Context, data []byte, destPath, _ string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty payload for %s", ErrUpload, destPath)
	}

	relPath := filepath.Clean(destPath)
	if strings.HasPrefix(relPath, "..") || filepath.IsAbs(relPath) {
		return "", fmt.Errorf("%w: invalid destination path %s", ErrUpload, destPath)
	}
	fullPath := filepath.Join(s.rootPath, relPath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("%w: failed to create subdirectories: %v", ErrUpload, err)
	}

	// Write to a temp file first so a failed write never leaves a partial
	// asset reachable under the final path.
	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".upload_*")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}

	return s.baseURL + "/media/" + filepath.ToSlash(relPath), nil
}
