package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/admin"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStore keeps objects in a Cloudinary account.  The stored path
// is the secure delivery URL.
type CloudinaryStore struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryStore connects with a cloudinary:// URL.
func NewCloudinaryStore(cloudinaryURL string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	return &CloudinaryStore{cld: cld}, nil
}

// Store uploads r under name and returns the secure URL.
func (s *CloudinaryStore) Store(ctx context.Context, name string, r io.Reader) (string, error) {
	c, err := cleanName(name)
	if err != nil {
		return "", err
	}
	resp, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		PublicID:  publicID(c),
		Overwrite: api.Bool(false),
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}
	return resp.SecureURL, nil
}

func (s *CloudinaryStore) Delete(ctx context.Context, name string) error {
	id, err := PublicIDFromURL(name)
	if err != nil {
		return err
	}
	if _, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: id}); err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	return nil
}

func (s *CloudinaryStore) Exists(ctx context.Context, name string) (bool, error) {
	id, err := PublicIDFromURL(name)
	if err != nil {
		return false, err
	}
	resp, err := s.cld.Admin.Asset(ctx, admin.AssetParams{PublicID: id})
	if err != nil {
		return false, err
	}
	return resp.PublicID != "", nil
}

// publicID drops the file extension; Cloudinary appends its own.
func publicID(name string) string {
	return strings.TrimSuffix(name, path.Ext(name))
}

// PublicIDFromURL extracts the public id from a delivery URL such as
// https://res.cloudinary.com/demo/image/upload/v123/images/a.jpg.  Plain
// object names are accepted as well.
func PublicIDFromURL(raw string) (string, error) {
	if !strings.Contains(raw, "://") {
		c, err := cleanName(raw)
		if err != nil {
			return "", err
		}
		return publicID(c), nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}
	parts := strings.Split(u.Path, "/")
	for i, part := range parts {
		if part != "upload" || i+1 >= len(parts) {
			continue
		}
		rest := parts[i+1:]
		if len(rest) > 1 && strings.HasPrefix(rest[0], "v") && isDigits(rest[0][1:]) {
			rest = rest[1:]
		}
		return publicID(strings.Join(rest, "/")), nil
	}
	return "", errors.New("failed to extract public ID from URL")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
