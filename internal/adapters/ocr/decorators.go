package ocr

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	ocrport "prescription-reminder/internal/ports/ocr"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// Cached recuerda extracciones exitosas por (imagen, prompt).
// Re-escanear la misma foto no vuelve a gastar cuota.
type Cached struct {
	next  ocrport.Extractor
	cache *lru.Cache[string, string]
}

func NewCached(next ocrport.Extractor, size int) (*Cached, error) {
	c, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("ocr cache: %w", err)
	}
	return &Cached{next: next, cache: c}, nil
}

func (c *Cached) Extract(ctx context.Context, img ocrport.Image, prompt string) (string, error) {
	key := cacheKey(img, prompt)
	if text, ok := c.cache.Get(key); ok {
		return text, nil
	}

	text, err := c.next.Extract(ctx, img, prompt)
	if err != nil {
		return "", err
	}
	c.cache.Add(key, text)
	return text, nil
}

func (c *Cached) Len() int {
	return c.cache.Len()
}

func cacheKey(img ocrport.Image, prompt string) string {
	h := sha256.New()
	h.Write([]byte(img.MimeType))
	h.Write([]byte{0})
	h.Write(img.Data)
	h.Write([]byte{0})
	h.Write([]byte(prompt))
	return hex.EncodeToString(h.Sum(nil))
}

// RateLimited espera turno antes de cada llamada al proveedor.
type RateLimited struct {
	next    ocrport.Extractor
	limiter *rate.Limiter
}

// NewRateLimited: perMinute llamadas por minuto con ráfaga burst.
func NewRateLimited(next ocrport.Extractor, perMinute, burst int) *RateLimited {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(perMinute))
	}
	return &RateLimited{next: next, limiter: rate.NewLimiter(limit, burst)}
}

func (r *RateLimited) Extract(ctx context.Context, img ocrport.Image, prompt string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: rate limit wait: %v", ocrport.ErrUpstream, err)
	}
	return r.next.Extract(ctx, img, prompt)
}
