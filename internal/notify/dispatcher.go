package notify

import (
	"context"
	"sync"
	"time"

	"prescription-reminder/internal/domain/reminders"
	"prescription-reminder/internal/platform/logger"
	"prescription-reminder/internal/platform/metrics"
)

const speechTimeout = 30 * time.Second

// Pusher es el canal de notificación de sistema.
type Pusher interface {
	IsConfigured() bool
	Push(ctx context.Context, msg Message) error
}

// Toaster es el canal in-app (siempre disponible).
type Toaster interface {
	Show(msg Message) Toast
}

type DispatcherConfig struct {
	Push       Pusher
	Toasts     Toaster
	Speaker    Speaker // nil => sin voz
	Permission *Permission
	BaseURL    string
	Log        logger.Logger
	Metrics    *metrics.Metrics
}

// Dispatcher entrega un reminder vencido: push si hay permiso, si no (o si falla) toast;
// en paralelo, voz. Ningún fallo llega al llamador.
type Dispatcher struct {
	push       Pusher
	toasts     Toaster
	speaker    Speaker
	permission *Permission
	baseURL    string
	log        logger.Logger
	metrics    *metrics.Metrics

	speaking sync.WaitGroup
}

func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	log := cfg.Log
	if log == nil {
		log = logger.Nop()
	}
	perm := cfg.Permission
	if perm == nil {
		perm = NewPermission(false)
	}
	return &Dispatcher{
		push:       cfg.Push,
		toasts:     cfg.Toasts,
		speaker:    cfg.Speaker,
		permission: perm,
		baseURL:    cfg.BaseURL,
		log:        log.With(map[string]any{"component": "notify"}),
		metrics:    cfg.Metrics,
	}
}

func (d *Dispatcher) Notify(ctx context.Context, r reminders.Reminder) {
	msg := BuildMessage(r, d.baseURL)

	if d.speaker != nil {
		d.speaking.Add(1)
		go d.speak(context.WithoutCancel(ctx), msg)
	}

	if d.pushAllowed() {
		err := d.push.Push(ctx, msg)
		if err == nil {
			d.metrics.Delivered("system")
			return
		}
		d.log.Warn("system notification failed, showing toast", map[string]any{
			"reminder_id": r.ID,
			"error":       err,
		})
	}

	if d.toasts != nil {
		d.toasts.Show(msg)
		d.metrics.Delivered("toast")
		return
	}
	d.log.Warn("no notification channel available", map[string]any{"reminder_id": r.ID})
}

func (d *Dispatcher) pushAllowed() bool {
	return d.push != nil && d.push.IsConfigured() && d.permission.Granted()
}

func (d *Dispatcher) speak(ctx context.Context, msg Message) {
	defer d.speaking.Done()

	ctx, cancel := context.WithTimeout(ctx, speechTimeout)
	defer cancel()

	if err := d.speaker.Speak(ctx, msg.SpeechText()); err != nil {
		d.log.Warn("speech failed", map[string]any{"reminder_id": msg.ReminderID, "error": err})
	}
}

// Wait espera a que terminen las locuciones en curso (shutdown, tests).
func (d *Dispatcher) Wait() {
	d.speaking.Wait()
}

func (d *Dispatcher) Permission() *Permission {
	return d.permission
}
