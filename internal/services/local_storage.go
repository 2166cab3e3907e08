package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage keeps media blobs on local disk, served back under baseURL.
// Used for development and tests; deployments set STORAGE_BUCKET and get
// GCSStorage instead.
type LocalStorage struct {
	dir     string
	baseURL string
}

func NewLocalStorage(dir, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStorage{
		dir:     dir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

func (l *LocalStorage) Put(_ context.Context, objectPath, _ string, r io.Reader) (string, int64, error) {
	full := filepath.Join(l.dir, filepath.FromSlash(objectPath))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", 0, fmt.Errorf("create media dir: %w", err)
	}

	dst, err := os.Create(full)
	if err != nil {
		return "", 0, fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	n, err := io.Copy(dst, r)
	if err != nil {
		os.Remove(full)
		return "", 0, fmt.Errorf("save file: %w", err)
	}

	return l.baseURL + "/" + objectPath, n, nil
}

func (l *LocalStorage) Delete(_ context.Context, objectPath string) error {
	err := os.Remove(filepath.Join(l.dir, filepath.FromSlash(objectPath)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
