package filestorage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/logger"
)

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string // The root directory where files will be stored
	baseURL  string // The URL prefix the directory is served under
}

// NewLocalStorage creates a new LocalStorage instance, creating basePath if needed.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

// BasePath returns the directory files are written to.
func (ls *LocalStorage) BasePath() string {
	return ls.basePath
}

// Save writes obj to disk under a uuid name.
func (ls *LocalStorage) Save(ctx context.Context, obj Object) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := objectKey(obj)
	dstPath := filepath.Join(ls.basePath, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create subdirectory")
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, obj.Body); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	url := ls.baseURL + "/" + key
	logger.Debug().Str("saved_as", dstPath).Str("url", url).Msg("File saved successfully")
	return url, nil
}

// Delete removes a file saved by Save. Missing files are ignored.
func (ls *LocalStorage) Delete(ctx context.Context, fileURL string) error {
	physicalPath := ls.FullPath(fileURL)
	if physicalPath == "" {
		return nil
	}

	if err := os.Remove(physicalPath); err != nil {
		if os.IsNotExist(err) {
			logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
			return nil
		}
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// FullPath maps a URL returned by Save back to its filesystem path. It returns
// "" for URLs outside this storage.
func (ls *LocalStorage) FullPath(fileURL string) string {
	rel, ok := strings.CutPrefix(fileURL, ls.baseURL+"/")
	if !ok || rel == "" {
		return ""
	}
	rel = path.Clean("/" + rel)
	if rel == "/" {
		return ""
	}
	return filepath.Join(ls.basePath, filepath.FromSlash(rel))
}
