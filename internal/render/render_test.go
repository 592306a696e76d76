package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homeloto/retail-api/internal/domain"
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New("RUB")
	require.NoError(t, err)
	return r
}

func decode(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func sameColor(a, b color.Color) bool {
	r1, g1, b1, a1 := a.RGBA()
	r2, g2, b2, a2 := b.RGBA()
	return r1 == r2 && g1 == g2 && b1 == b2 && a1 == a2
}

func TestTicketImage(t *testing.T) {
	r := newRenderer(t)
	ticket := domain.Ticket{
		ID:            "105-007",
		DrawID:        "105",
		TicketNumber:  "007",
		Numbers:       domain.Numbers{3, 8, 15, 22, 31, 40, 47},
		Price:         100,
		DrawDate:      "2026-10-20",
		TransactionID: "2026101912000011",
	}

	data, err := r.Ticket(ticket, domain.Draw{ID: "105", BroadcastLink: "https://example.com/live"})
	require.NoError(t, err)

	img := decode(t, data)
	assert.Equal(t, image.Rect(0, 0, TicketWidth, TicketHeight), img.Bounds())
	assert.True(t, sameColor(colorBrand, img.At(5, 5)), "header band")
	assert.True(t, sameColor(color.White, img.At(5, TicketHeight-5)))

	unsold := ticket
	unsold.TransactionID = ""
	_, err = r.Ticket(unsold, domain.Draw{ID: "105"})
	assert.NoError(t, err)
}

func TestReceiptImage(t *testing.T) {
	r := newRenderer(t)
	tickets := []domain.Ticket{
		{ID: "105-001", DrawID: "105", TicketNumber: "001", Price: 100},
		{ID: "105-002", DrawID: "105", TicketNumber: "002", Price: 100},
		{ID: "105-003", DrawID: "105", TicketNumber: "003", Price: 100},
	}
	tr := domain.Transaction{
		ID:            "2026101912000011",
		PaymentMethod: domain.PaymentCash,
		CreatedAt:     time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
	}

	data, err := r.Receipt(tr, tickets, "Lenina st 1, Moscow", time.UTC)
	require.NoError(t, err)
	img := decode(t, data)
	assert.Equal(t, ReceiptWidth, img.Bounds().Dx())
	assert.Equal(t, 450+20*3, img.Bounds().Dy())

	long := strings.Repeat("Very long shop address line ", 6)
	data, err = r.Receipt(tr, tickets, long, nil)
	require.NoError(t, err)
	assert.Greater(t, decode(t, data).Bounds().Dy(), 450+20*3)
}

func TestWrap(t *testing.T) {
	assert.Nil(t, wrap("   ", 30))
	assert.Equal(t, []string{"Main st 1"}, wrap("Main st 1", 30))
	assert.Equal(t, []string{"aaaa bbbb", "cccc"}, wrap("aaaa bbbb cccc", 10))
	assert.Equal(t, []string{"abcdefghij", "klm x"}, wrap("abcdefghijklm x", 10))

	for _, line := range wrap("улица Ленина дом один корпус два строение три Москва", addressWrap) {
		assert.LessOrEqual(t, len([]rune(line)), addressWrap)
	}
}

func TestRotate90(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	src.Set(2, 0, colorBrand)

	dst := rotate90(src)
	assert.Equal(t, image.Rect(0, 0, 2, 3), dst.Bounds())
	// The top-right corner ends up top-left after a counter-clockwise turn.
	assert.True(t, sameColor(colorBrand, dst.At(0, 0)))
}
