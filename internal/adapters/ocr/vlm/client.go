package vlm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"prescription-reminder/internal/platform/httpclient"
	ocrport "prescription-reminder/internal/ports/ocr"
)

const chatPath = "/v1/chat/completions"

// Config del endpoint de visión compatible con OpenAI (chat completions).
type Config struct {
	BaseURL string
	APIKey  string
	Model   string

	// Timeout HTTP; si es 0 se usan 60s (los modelos de visión son lentos).
	Timeout   time.Duration
	MaxTokens int
}

type Client struct {
	http      *httpclient.Client
	apiKey    string
	model     string
	maxTokens int
}

func NewClient(cfg Config) (*Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	hc, err := httpclient.NewWithBaseURL(strings.TrimSpace(cfg.BaseURL), timeout)
	if err != nil {
		return nil, err
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Client{
		http:      hc,
		apiKey:    strings.TrimSpace(cfg.APIKey),
		model:     strings.TrimSpace(cfg.Model),
		maxTokens: maxTokens,
	}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.apiKey != "" && c.http.BaseURL != ""
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Extract manda la imagen como data URL base64 junto al prompt.
func (c *Client) Extract(ctx context.Context, img ocrport.Image, prompt string) (string, error) {
	if !c.IsConfigured() {
		return "", ocrport.ErrMissingCredential
	}

	mime := img.MimeType
	if mime == "" {
		mime = "image/jpeg"
	}
	dataURL := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img.Data)

	req := chatRequest{
		Model:       c.model,
		Temperature: 0,
		MaxTokens:   c.maxTokens,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: prompt},
				{Type: "image_url", ImageURL: &imageURL{URL: dataURL}},
			},
		}},
	}

	var out chatResponse
	err := c.http.DoJSON(ctx, http.MethodPost, chatPath, map[string]string{
		"Authorization": "Bearer " + c.apiKey,
	}, req, &out)
	if err != nil {
		return "", mapError(err)
	}

	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", ocrport.ErrUpstream)
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

func mapError(err error) error {
	switch httpclient.StatusCode(err) {
	case http.StatusPaymentRequired, http.StatusTooManyRequests:
		return fmt.Errorf("%w: %v", ocrport.ErrQuotaExceeded, err)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %v", ocrport.ErrUnauthorized, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", ocrport.ErrUpstream, err)
}
