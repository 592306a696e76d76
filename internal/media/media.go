// Package media stores rendered ticket and receipt images and returns their public urls.
package media

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/homeloto/retail-api/internal/config"
)

const (
	FolderTickets  = "homeloto_tickets"
	FolderReceipts = "homeloto_receipts"
)

var ErrInvalidName = errors.New("media: invalid object name")

type Store interface {
	Put(ctx context.Context, folder, name string, png []byte) (string, error)
}

// New returns the store selected by conf.Driver.
func New(ctx context.Context, conf *config.MediaConfig) (Store, error) {
	switch conf.Driver {
	case config.MediaDriverGCS:
		s, err := NewGCS(ctx, conf.Bucket)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.MediaDriverLocal, "":
		s, err := NewLocal(conf.LocalDir, conf.PublicBaseURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("media: unknown driver %q", conf.Driver)
	}
}

// objectKey joins folder and name and rejects anything that would escape the folder.
func objectKey(folder, name string) (string, error) {
	if folder == "" || name == "" || strings.ContainsAny(folder+name, `\`) ||
		strings.Contains(name, "/") || strings.Contains(folder, "..") || strings.Contains(name, "..") {
		return "", fmt.Errorf("%w: %s/%s", ErrInvalidName, folder, name)
	}

	return path.Join(folder, name), nil
}
