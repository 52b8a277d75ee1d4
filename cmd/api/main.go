package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ocradapter "prescription-reminder/internal/adapters/ocr"
	"prescription-reminder/internal/adapters/storage"
	"prescription-reminder/internal/domain/medicines"
	"prescription-reminder/internal/domain/reminders"
	"prescription-reminder/internal/domain/scans"
	"prescription-reminder/internal/notify"
	"prescription-reminder/internal/platform/config"
	"prescription-reminder/internal/platform/logger"
	"prescription-reminder/internal/platform/metrics"
	"prescription-reminder/internal/router"
	"prescription-reminder/internal/scheduler"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// @title Prescription Reminder API
// @version 1.0
// @description Escaneo de recetas y recordatorios de medicación.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.NewFromEnv().Error("invalid configuration", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}

func run(cfg *config.Config, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.MustNew(reg)

	// Storage
	repo, closer, err := storage.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := closer.Close(); err != nil {
			log.Warn("closing storage", map[string]any{"error": err.Error()})
		}
	}()

	// Services por módulo
	remindersSvc := reminders.NewService(repo, log, m)

	extractor, err := ocradapter.New(cfg, log)
	if err != nil {
		return err
	}
	scansSvc := scans.NewService(extractor, medicines.NewParser(), log, m)

	// Notificaciones
	hub := notify.NewHub(log)
	defer hub.Close()

	perm := notify.NewPermission(cfg.NotifyPermission)
	dispatcherCfg := notify.DispatcherConfig{
		Toasts:     hub,
		Permission: perm,
		BaseURL:    cfg.PublicBaseURL,
		Log:        log,
		Metrics:    m,
	}
	if cfg.PushURL != "" {
		dispatcherCfg.Push = notify.NewPushNotifier(notify.PushConfig{URL: cfg.PushURL, Token: cfg.PushToken})
	}
	if cfg.SpeechEnabled {
		sp := &notify.FallbackSpeaker{
			Local:   notify.NewCommandSpeaker(cfg.SpeechCommand),
			Log:     log,
			Metrics: m,
		}
		if cfg.TTSURL != "" {
			sp.Remote = notify.NewRemoteSpeaker(notify.RemoteSpeakerConfig{
				URL:    cfg.TTSURL,
				APIKey: cfg.TTSAPIKey,
				Player: cfg.TTSPlayer,
			})
		}
		dispatcherCfg.Speaker = sp
	}
	dispatcher := notify.NewDispatcher(dispatcherCfg)

	// Scheduler
	sched := scheduler.New(remindersSvc, dispatcher, log, m, cfg.SchedulerInterval)
	remindersSvc.OnChange(sched.Reschedule)
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer func() {
		sched.Stop()
		dispatcher.Wait()
	}()

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: router.NewRouter(router.Options{
			Reminders:  remindersSvc,
			Scans:      scansSvc,
			Hub:        hub,
			Permission: perm,
			Gatherer:   reg,
			Armed:      sched.Armed,
			Log:        log,
			Ctx:        ctx,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,  // uploads de fotos
		WriteTimeout:      120 * time.Second, // OCR lento
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{
			"addr":      srv.Addr,
			"env":       cfg.Env,
			"storage":   cfg.StorageBackend,
			"scheduler": cfg.SchedulerInterval.String(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
