// Package storage keeps uploaded blobs on local disk or in Cloudinary and
// normalises avatar images before they are stored.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidName = errors.New("invalid object name")

// BlobStore saves named objects.  Store returns the path callers persist;
// Delete and Exists accept that path back.
type BlobStore interface {
	Store(ctx context.Context, name string, r io.Reader) (string, error)
	Delete(ctx context.Context, name string) error
	Exists(ctx context.Context, name string) (bool, error)
}

// NewObjectName returns "<dir>/<uuid><ext>".
func NewObjectName(dir, ext string) string {
	name := uuid.NewString() + ext
	dir = strings.Trim(dir, "/")
	if dir == "" {
		return name
	}
	return dir + "/" + name
}

// cleanName rejects absolute paths and parent references.
func cleanName(name string) (string, error) {
	if name == "" || strings.HasPrefix(name, "/") || strings.Contains(name, "\\") {
		return "", ErrInvalidName
	}
	c := path.Clean(name)
	if c == "." || c == ".." || strings.HasPrefix(c, "../") {
		return "", ErrInvalidName
	}
	return c, nil
}
