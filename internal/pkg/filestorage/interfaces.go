// Package filestorage stores uploaded profile images on the local filesystem
// or an S3 compatible bucket.
package filestorage

import (
	"context"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Object is an upload ready to be stored.
type Object struct {
	// Dir is an optional subdirectory or key prefix.
	Dir         string
	Ext         string
	ContentType string
	Size        int64
	Body        io.Reader
}

// FileStorage defines the interface for file storage operations
type FileStorage interface {
	// Save stores obj under a generated unique name and returns its public URL.
	Save(ctx context.Context, obj Object) (string, error)

	// Delete removes the object behind a URL previously returned by Save.
	// Unknown URLs are not an error.
	Delete(ctx context.Context, fileURL string) error
}

// objectKey builds a collision free slash separated key for obj.
func objectKey(obj Object) string {
	name := uuid.New().String() + strings.ToLower(obj.Ext)
	dir := strings.Trim(path.Clean("/"+filepath.ToSlash(obj.Dir)), "/")
	if dir == "" {
		return name
	}
	return dir + "/" + name
}
