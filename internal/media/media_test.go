package media

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homeloto/retail-api/internal/config"
)

func TestLocalPut(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocal(dir, "http://localhost:8080/media/")
	require.NoError(t, err)

	url, err := store.Put(context.Background(), FolderTickets, "105-001.png", []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/media/homeloto_tickets/105-001.png", url)

	data, err := os.ReadFile(filepath.Join(dir, FolderTickets, "105-001.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))

	_, err = store.Put(context.Background(), FolderTickets, "../escape.png", []byte("x"))
	assert.ErrorIs(t, err, ErrInvalidName)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = store.Put(ctx, FolderTickets, "late.png", []byte("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPublicURL(t *testing.T) {
	key, err := objectKey(FolderReceipts, "2026101912000011.png")
	require.NoError(t, err)
	assert.Equal(t, "https://storage.googleapis.com/loto-media/homeloto_receipts/2026101912000011.png", publicURL("loto-media", key))
}

func TestNewSelectsDriver(t *testing.T) {
	store, err := New(context.Background(), &config.MediaConfig{Driver: config.MediaDriverLocal, LocalDir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &Local{}, store)

	_, err = New(context.Background(), &config.MediaConfig{Driver: "ftp"})
	assert.Error(t, err)

	_, err = New(context.Background(), &config.MediaConfig{Driver: config.MediaDriverGCS})
	assert.Error(t, err)
}
