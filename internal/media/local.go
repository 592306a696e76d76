package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Local writes images under a directory that the API serves at /media.
type Local struct {
	dir     string
	baseURL string
}

func NewLocal(dir, baseURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("os.MkdirAll -> %w", err)
	}

	return &Local{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (s *Local) Dir() string {
	return s.dir
}

func (s *Local) Put(ctx context.Context, folder, name string, png []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key, err := objectKey(folder, name)
	if err != nil {
		return "", err
	}

	target := filepath.Join(s.dir, filepath.FromSlash(key))
	if err = os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("os.MkdirAll -> %w", err)
	}

	// Write then rename so a reader never sees a half-written image.
	tmp := target + ".tmp"
	if err = os.WriteFile(tmp, png, 0o644); err != nil {
		return "", fmt.Errorf("os.WriteFile -> %w", err)
	}
	if err = os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("os.Rename -> %w", err)
	}

	return s.baseURL + "/" + key, nil
}
