// FilePath: server/hub/internal/repository/files/files.storage.go
package files

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/plalog/plalog/server/hub/internal/errors"
	nuts "github.com/vaudience/go-nuts"
)

const defaultPermissions = 0755

// LocalStore writes export documents below a base directory
type LocalStore struct {
	basePath string
}

// NewLocalStore creates the base directory if needed
func NewLocalStore(basePath string) (*LocalStore, error) {
	if err := createDirectoryIfNotExists(basePath); err != nil {
		return nil, err
	}
	return &LocalStore{basePath: basePath}, nil
}

// Put stores body under key and returns the file path
func (s *LocalStore) Put(ctx context.Context, key string, body io.Reader) (string, error) {
	clean := filepath.Clean("/" + key)
	if strings.Contains(clean, "..") || clean == "/" {
		return "", errors.NewValidationError("invalid file key", nil)
	}
	path := filepath.Join(s.basePath, clean)

	if err := createDirectoryIfNotExists(filepath.Dir(path)); err != nil {
		return "", err
	}

	dst, err := os.Create(path)
	if err != nil {
		return "", errors.NewInternalError("failed to create destination file", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, body); err != nil {
		return "", errors.NewInternalError("failed to write file", err)
	}

	nuts.L.Infof("[LocalStore] Stored file: %s", path)
	return path, nil
}

func createDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		err := os.MkdirAll(path, defaultPermissions)
		if err != nil {
			return errors.NewInternalError("failed to create directory", err)
		}
	}
	return nil
}
