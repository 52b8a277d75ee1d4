package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"time"

	"prescription-reminder/internal/platform/httpclient"
	"prescription-reminder/internal/platform/logger"
	"prescription-reminder/internal/platform/metrics"
)

var (
	ErrSpeechNotConfigured = errors.New("speech engine not configured")
	ErrSpeechFailed        = errors.New("speech failed")
)

// Speaker lee un texto en voz alta.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// CommandRunner ejecuta un comando local (inyectable en tests).
type CommandRunner func(ctx context.Context, name string, args ...string) error

func execRunner(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// RemoteSpeakerConfig: servicio TTS HTTP que devuelve audio + reproductor local.
type RemoteSpeakerConfig struct {
	URL    string
	APIKey string
	// Player es el comando que reproduce el archivo, p.ej. "mpv --really-quiet".
	Player  string
	Timeout time.Duration
}

type RemoteSpeaker struct {
	url    string
	apiKey string
	player []string
	http   *httpclient.Client
	run    CommandRunner
}

func NewRemoteSpeaker(cfg RemoteSpeakerConfig) *RemoteSpeaker {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RemoteSpeaker{
		url:    strings.TrimSpace(cfg.URL),
		apiKey: strings.TrimSpace(cfg.APIKey),
		player: strings.Fields(cfg.Player),
		http:   httpclient.New(timeout),
		run:    execRunner,
	}
}

func (s *RemoteSpeaker) IsConfigured() bool {
	return s != nil && s.url != "" && len(s.player) > 0
}

func (s *RemoteSpeaker) Speak(ctx context.Context, text string) error {
	if !s.IsConfigured() {
		return ErrSpeechNotConfigured
	}

	headers := map[string]string{
		"Content-Type": "application/json",
		"Accept":       "audio/mpeg",
	}
	if s.apiKey != "" {
		headers["Authorization"] = "Bearer " + s.apiKey
	}

	body, err := json.Marshal(map[string]string{"input": text, "format": "mp3"})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSpeechFailed, err)
	}
	audio, err := s.http.Do(ctx, http.MethodPost, s.url, headers, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: tts request: %v", ErrSpeechFailed, err)
	}
	if len(audio) == 0 {
		return fmt.Errorf("%w: empty audio", ErrSpeechFailed)
	}

	f, err := os.CreateTemp("", "reminder-*.mp3")
	if err != nil {
		return fmt.Errorf("%w: temp file: %v", ErrSpeechFailed, err)
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(audio); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: write audio: %v", ErrSpeechFailed, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close audio: %v", ErrSpeechFailed, err)
	}

	args := append(append([]string{}, s.player[1:]...), f.Name())
	if err := s.run(ctx, s.player[0], args...); err != nil {
		return fmt.Errorf("%w: player: %v", ErrSpeechFailed, err)
	}
	return nil
}

// CommandSpeaker usa un motor local (espeak, say, ...): el texto va como último argumento.
type CommandSpeaker struct {
	command []string
	run     CommandRunner
}

func NewCommandSpeaker(command string) *CommandSpeaker {
	return &CommandSpeaker{command: strings.Fields(command), run: execRunner}
}

func (s *CommandSpeaker) Speak(ctx context.Context, text string) error {
	if s == nil || len(s.command) == 0 {
		return ErrSpeechNotConfigured
	}
	args := append(append([]string{}, s.command[1:]...), text)
	if err := s.run(ctx, s.command[0], args...); err != nil {
		return fmt.Errorf("%w: %v", ErrSpeechFailed, err)
	}
	return nil
}

// FallbackSpeaker prueba el motor remoto y, si falla, el local.
type FallbackSpeaker struct {
	Remote  Speaker
	Local   Speaker
	Log     logger.Logger
	Metrics *metrics.Metrics
}

func (f *FallbackSpeaker) Speak(ctx context.Context, text string) error {
	log := f.Log
	if log == nil {
		log = logger.Nop()
	}

	if f.Remote != nil {
		err := f.Remote.Speak(ctx, text)
		if err == nil {
			f.Metrics.Spoke("remote", "ok")
			return nil
		}
		if !errors.Is(err, ErrSpeechNotConfigured) {
			f.Metrics.Spoke("remote", "error")
			log.Warn("remote speech failed, falling back to local engine", map[string]any{"error": err})
		}
	}

	if f.Local == nil {
		return ErrSpeechNotConfigured
	}
	if err := f.Local.Speak(ctx, text); err != nil {
		f.Metrics.Spoke("local", "error")
		return err
	}
	f.Metrics.Spoke("local", "ok")
	return nil
}
