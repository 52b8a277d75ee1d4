package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"prescription-reminder/internal/platform/httpclient"
)

var (
	ErrPushNotConfigured = errors.New("push not configured")
	ErrPushUnauthorized  = errors.New("push unauthorized")
	ErrPushUpstream      = errors.New("push upstream error")
)

// PushConfig del endpoint de notificaciones de sistema (topic estilo ntfy).
type PushConfig struct {
	URL   string
	Token string

	// Timeout HTTP; si es 0 se usan 5s.
	Timeout time.Duration
}

// PushNotifier publica el mensaje como texto plano con headers Title / Click / Tags.
type PushNotifier struct {
	url   string
	token string
	http  *httpclient.Client
}

func NewPushNotifier(cfg PushConfig) *PushNotifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &PushNotifier{
		url:   strings.TrimSpace(cfg.URL),
		token: strings.TrimSpace(cfg.Token),
		http:  httpclient.New(timeout),
	}
}

func (p *PushNotifier) IsConfigured() bool {
	return p != nil && p.url != ""
}

func (p *PushNotifier) Push(ctx context.Context, msg Message) error {
	if !p.IsConfigured() {
		return ErrPushNotConfigured
	}

	headers := map[string]string{
		"Content-Type": "text/plain; charset=utf-8",
		"Title":        msg.Title,
		"Tags":         "pill",
		"Priority":     "high",
	}
	if strings.HasPrefix(msg.Link, "http://") || strings.HasPrefix(msg.Link, "https://") {
		headers["Click"] = msg.Link
	}
	if p.token != "" {
		headers["Authorization"] = "Bearer " + p.token
	}

	_, err := p.http.Do(ctx, http.MethodPost, p.url, headers, strings.NewReader(msg.Body))
	if err != nil {
		switch httpclient.StatusCode(err) {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %v", ErrPushUnauthorized, err)
		default:
			return fmt.Errorf("%w: %v", ErrPushUpstream, err)
		}
	}
	return nil
}
