package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	ocrport "prescription-reminder/internal/ports/ocr"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.0-flash"

type Config struct {
	APIKey string
	Model  string

	// BaseURL opcional (tests / proxy).
	BaseURL string
	Timeout time.Duration
}

// Client usa la API de Gemini vía google.golang.org/genai.
// El cliente genai se crea perezosamente en la primera extracción.
type Client struct {
	cfg Config

	mu     sync.Mutex
	client *genai.Client
}

func NewClient(cfg Config) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{cfg: cfg}
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.cfg.APIKey != ""
}

func (c *Client) sdk(ctx context.Context) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		return c.client, nil
	}

	cc := &genai.ClientConfig{
		APIKey:  c.cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if c.cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: c.cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("%w: create genai client: %v", ocrport.ErrUpstream, err)
	}
	c.client = client
	return client, nil
}

func (c *Client) Extract(ctx context.Context, img ocrport.Image, prompt string) (string, error) {
	if !c.IsConfigured() {
		return "", ocrport.ErrMissingCredential
	}

	client, err := c.sdk(ctx)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	mime := img.MimeType
	if mime == "" {
		mime = "image/jpeg"
	}
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(prompt),
			genai.NewPartFromBytes(img.Data, mime),
		}, genai.RoleUser),
	}

	resp, err := client.Models.GenerateContent(ctx, c.cfg.Model, contents, &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
	})
	if err != nil {
		return "", mapError(err)
	}
	return strings.TrimSpace(resp.Text()), nil
}

func mapError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests,
			apiErr.Code == http.StatusPaymentRequired,
			apiErr.Status == "RESOURCE_EXHAUSTED":
			return fmt.Errorf("%w: %s", ocrport.ErrQuotaExceeded, apiErr.Message)
		case apiErr.Code == http.StatusUnauthorized,
			apiErr.Code == http.StatusForbidden,
			apiErr.Status == "PERMISSION_DENIED",
			apiErr.Status == "UNAUTHENTICATED":
			return fmt.Errorf("%w: %s", ocrport.ErrUnauthorized, apiErr.Message)
		}
	}
	return fmt.Errorf("%w: %v", ocrport.ErrUpstream, err)
}
