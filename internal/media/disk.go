package media

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// extByMime restricts uploads to image types.
var extByMime = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// DiskStore writes decoded data URIs to a local directory served under
// baseURL.
type DiskStore struct {
	dir     string
	baseURL string
}

func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Upload accepts a base64 image data URI and returns the stored file's URL.
// Payloads that are already hosted URLs pass through untouched.
func (s *DiskStore) Upload(_ context.Context, dataURI string) (string, error) {
	if strings.HasPrefix(dataURI, "http://") || strings.HasPrefix(dataURI, "https://") {
		return dataURI, nil
	}

	mime, payload, ok := splitDataURI(dataURI)
	if !ok {
		return "", ErrUnsupportedMedia
	}
	ext, ok := extByMime[mime]
	if !ok {
		return "", ErrUnsupportedMedia
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", ErrUnsupportedMedia
	}

	name := uuid.New().String() + ext
	if err := os.WriteFile(filepath.Join(s.dir, name), raw, 0o644); err != nil {
		return "", err
	}

	return s.baseURL + "/" + name, nil
}

// splitDataURI parses "data:<mime>;base64,<payload>".
func splitDataURI(uri string) (mime, payload string, ok bool) {
	rest, found := strings.CutPrefix(uri, "data:")
	if !found {
		return "", "", false
	}
	meta, payload, found := strings.Cut(rest, ",")
	if !found {
		return "", "", false
	}
	mime, found = strings.CutSuffix(meta, ";base64")
	if !found {
		return "", "", false
	}
	return mime, payload, true
}
