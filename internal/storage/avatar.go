package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/disintegration/imaging"
)

// AvatarSize is the edge of the square avatar in pixels.
const AvatarSize = 300

// NormalizeAvatar decodes any supported image, crops it to a centred
// AvatarSize square and re-encodes it as JPEG.
func NormalizeAvatar(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	img = imaging.Fill(img, AvatarSize, AvatarSize, imaging.Center, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// Avatars normalises uploads and stores them as "<dir>/<uuid>.jpg".
type Avatars struct {
	store BlobStore
}

// NewAvatars resizes images before handing them to store.
func NewAvatars(store BlobStore) *Avatars { return &Avatars{store: store} }

// Save crops data to a square JPEG and stores it under dir.
func (a *Avatars) Save(ctx context.Context, data []byte, dir string) (string, error) {
	jpg, err := NormalizeAvatar(data)
	if err != nil {
		return "", err
	}
	return a.store.Store(ctx, NewObjectName(dir, ".jpg"), bytes.NewReader(jpg))
}

func (a *Avatars) Remove(ctx context.Context, path string) error {
	return a.store.Delete(ctx, path)
}
