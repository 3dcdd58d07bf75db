// Package media stores user-submitted images and hands back servable URLs.
package media

import (
	"context"
	"errors"
)

var ErrUnsupportedMedia = errors.New("unsupported media payload")

// Store uploads an inline image and returns the URL to persist in its place.
type Store interface {
	Upload(ctx context.Context, dataURI string) (string, error)
}
