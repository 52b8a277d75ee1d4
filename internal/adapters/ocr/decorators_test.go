package ocr

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"prescription-reminder/internal/platform/config"
	"prescription-reminder/internal/platform/logger"
	ocrport "prescription-reminder/internal/ports/ocr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingExtractor struct {
	calls atomic.Int32
	text  string
	err   error
}

func (c *countingExtractor) Extract(ctx context.Context, img ocrport.Image, prompt string) (string, error) {
	c.calls.Add(1)
	return c.text, c.err
}

func TestCached_ReturnsStoredText(t *testing.T) {
	next := &countingExtractor{text: "Dolo 650"}
	c, err := NewCached(next, 4)
	require.NoError(t, err)

	img := ocrport.Image{Data: []byte("photo"), MimeType: "image/jpeg"}
	for i := 0; i < 3; i++ {
		text, err := c.Extract(context.Background(), img, "p")
		require.NoError(t, err)
		assert.Equal(t, "Dolo 650", text)
	}
	assert.EqualValues(t, 1, next.calls.Load())

	// otro prompt es otra entrada
	_, err = c.Extract(context.Background(), img, "other")
	require.NoError(t, err)
	assert.EqualValues(t, 2, next.calls.Load())
	assert.Equal(t, 2, c.Len())
}

func TestCached_DoesNotStoreErrors(t *testing.T) {
	next := &countingExtractor{err: ocrport.ErrQuotaExceeded}
	c, err := NewCached(next, 4)
	require.NoError(t, err)

	img := ocrport.Image{Data: []byte("photo")}
	_, err = c.Extract(context.Background(), img, "p")
	assert.ErrorIs(t, err, ocrport.ErrQuotaExceeded)
	_, err = c.Extract(context.Background(), img, "p")
	assert.ErrorIs(t, err, ocrport.ErrQuotaExceeded)

	assert.EqualValues(t, 2, next.calls.Load())
	assert.Equal(t, 0, c.Len())
}

func TestNewCached_InvalidSize(t *testing.T) {
	_, err := NewCached(&countingExtractor{}, 0)
	assert.Error(t, err)
}

func TestRateLimited_WaitHonorsContext(t *testing.T) {
	next := &countingExtractor{text: "ok"}
	rl := NewRateLimited(next, 1, 1)

	_, err := rl.Extract(context.Background(), ocrport.Image{}, "p")
	require.NoError(t, err)

	// el segundo token llega en un minuto; un contexto cancelado no espera
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = rl.Extract(ctx, ocrport.Image{}, "p")
	assert.ErrorIs(t, err, ocrport.ErrUpstream)
	assert.EqualValues(t, 1, next.calls.Load())
}

func TestNew_SelectsProvider(t *testing.T) {
	cfg := &config.Config{
		OCRProvider:   config.OCRProviderHTTP,
		OCRBaseURL:    "http://127.0.0.1:1",
		OCRRatePerMin: 10,
		OCRCacheSize:  8,
	}
	ex, err := New(cfg, logger.Nop())
	require.NoError(t, err)
	_, isCached := ex.(*Cached)
	assert.True(t, isCached)

	// sin key, el error llega en la extracción
	_, err = ex.Extract(context.Background(), ocrport.Image{Data: []byte{1}}, "p")
	assert.True(t, errors.Is(err, ocrport.ErrMissingCredential))

	cfg.OCRProvider = config.OCRProviderGemini
	cfg.OCRCacheSize = 0
	cfg.OCRRatePerMin = 0
	ex, err = New(cfg, logger.Nop())
	require.NoError(t, err)
	_, err = ex.Extract(context.Background(), ocrport.Image{Data: []byte{1}}, "p")
	assert.ErrorIs(t, err, ocrport.ErrMissingCredential)

	cfg.OCRProvider = "tesseract"
	_, err = New(cfg, logger.Nop())
	assert.Error(t, err)
}
