package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"prescription-reminder/internal/domain/reminders"
	"prescription-reminder/internal/platform/logger"
	"prescription-reminder/internal/platform/metrics"
)

const (
	DefaultInterval = 30 * time.Second
	MaxInterval     = 60 * time.Second
)

var ErrAlreadyRunning = errors.New("scheduler already running")

// Store es lo que el scheduler necesita del dominio (lo cumple *reminders.Service).
type Store interface {
	List(ctx context.Context) ([]reminders.Reminder, error)
	GetByID(ctx context.Context, id string) (reminders.Reminder, error)
	MarkFired(ctx context.Context, id string, firedAt time.Time) (reminders.Reminder, error)
}

// Notifier no devuelve error: los fallos se resuelven con canales de menor fidelidad.
type Notifier interface {
	Notify(ctx context.Context, r reminders.Reminder)
}

// Scheduler mantiene un timer por reminder y un barrido periódico como red de seguridad.
type Scheduler struct {
	store    Store
	notifier Notifier
	log      logger.Logger
	metrics  *metrics.Metrics
	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	timers  map[string]*time.Timer
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	rescheduleMu sync.Mutex

	// fireMu serializa disparos (timers + barrido). notified guarda el due
	// ya notificado cuya persistencia falló, para no notificarlo dos veces.
	fireMu   sync.Mutex
	notified map[string]time.Time
}

func New(store Store, notifier Notifier, log logger.Logger, m *metrics.Metrics, interval time.Duration) *Scheduler {
	if log == nil {
		log = logger.Nop()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	if interval > MaxInterval {
		interval = MaxInterval
	}
	return &Scheduler{
		store:    store,
		notifier: notifier,
		log:      log.With(map[string]any{"component": "scheduler"}),
		metrics:  m,
		interval: interval,
		now:      time.Now,
		timers:   make(map[string]*time.Timer),
		ctx:      context.Background(),
		notified: make(map[string]time.Time),
	}
}

// Start arma los timers (los vencidos con delay 0) y lanza el barrido periódico.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.running = true
	loopCtx := s.ctx
	s.mu.Unlock()

	s.Reschedule()

	s.wg.Add(1)
	go s.loop(loopCtx)

	s.log.Info("scheduler started", map[string]any{"interval": s.interval.String()})
	return nil
}

// Stop desarma todo y espera al loop y a cualquier disparo en curso. Idempotente.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cancel()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()

	s.wg.Wait()

	s.fireMu.Lock()
	s.fireMu.Unlock() //nolint:staticcheck // espera a un fire en curso

	s.metrics.TimersArmed(0)
	s.log.Info("scheduler stopped", nil)
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	t := time.NewTicker(s.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.CheckDue(ctx)
			s.Reschedule()
		}
	}
}

// Reschedule reconstruye la tabla de timers desde un snapshot fresco.
// Se llama en cada cambio de la colección y desde el barrido.
func (s *Scheduler) Reschedule() {
	s.rescheduleMu.Lock()
	defer s.rescheduleMu.Unlock()

	ctx, ok := s.runningContext()
	if !ok {
		return
	}

	items, err := s.store.List(ctx)
	if err != nil {
		// se conservan los timers actuales; el próximo barrido reintenta
		s.log.Warn("reschedule: list reminders failed", map[string]any{"error": err})
		return
	}

	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	for _, r := range items {
		s.armLocked(r, now)
	}
	s.metrics.TimersArmed(len(s.timers))
}

// CheckDue dispara todos los reminders vencidos. Devuelve cuántos se procesaron.
// Dos llamadas seguidas sin avanzar el reloj no notifican dos veces.
func (s *Scheduler) CheckDue(ctx context.Context) int {
	items, err := s.store.List(ctx)
	if err != nil {
		s.log.Warn("check due: list reminders failed", map[string]any{"error": err})
		return 0
	}

	s.fireMu.Lock()
	defer s.fireMu.Unlock()

	now := s.now()
	fired := 0
	for _, r := range items {
		if !r.IsDue(now) {
			continue
		}
		// un timer pudo adelantarse entre el List y el lock
		cur, err := s.store.GetByID(ctx, r.ID)
		if err != nil {
			if !errors.Is(err, reminders.ErrNotFound) {
				s.log.Warn("check due: reload failed", map[string]any{"reminder_id": r.ID, "error": err})
			}
			continue
		}
		if s.fireLocked(ctx, cur, now) {
			fired++
		}
	}
	return fired
}

func (s *Scheduler) fire(id string) {
	ctx, ok := s.runningContext()
	if !ok {
		return
	}

	s.fireMu.Lock()
	defer s.fireMu.Unlock()

	r, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, reminders.ErrNotFound) {
			delete(s.notified, id)
			s.disarm(id)
			return
		}
		s.log.Warn("fire: reload failed", map[string]any{"reminder_id": id, "error": err})
		return
	}
	s.fireLocked(ctx, r, s.now())
}

// fireLocked requiere fireMu.
func (s *Scheduler) fireLocked(ctx context.Context, r reminders.Reminder, now time.Time) bool {
	if !r.IsDue(now) {
		s.arm(r, now)
		return false
	}

	if last, ok := s.notified[r.ID]; !ok || !last.Equal(r.NextDue) {
		s.notifier.Notify(ctx, r)
		s.notified[r.ID] = r.NextDue
		s.metrics.ReminderFired()
		s.log.Info("reminder fired", map[string]any{
			"reminder_id": r.ID,
			"medicine":    r.MedicineName,
			"due":         r.NextDue.Format(time.RFC3339),
		})
	}

	updated, err := s.store.MarkFired(ctx, r.ID, now)
	if err != nil {
		if errors.Is(err, reminders.ErrNotFound) {
			delete(s.notified, r.ID)
			s.disarm(r.ID)
			return true
		}
		// queda vencido; el barrido reintenta sólo la persistencia
		s.metrics.PersistFailed()
		s.log.Error("persist next due failed", map[string]any{"reminder_id": r.ID, "error": err})
		return true
	}

	delete(s.notified, r.ID)
	s.arm(updated, now)
	return true
}

func (s *Scheduler) arm(r reminders.Reminder, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.armLocked(r, now)
	s.metrics.TimersArmed(len(s.timers))
}

// armLocked requiere mu.
func (s *Scheduler) armLocked(r reminders.Reminder, now time.Time) {
	if t, ok := s.timers[r.ID]; ok {
		t.Stop()
	}
	delay := r.NextDue.Sub(now)
	if delay < 0 {
		delay = 0
	}
	id := r.ID
	s.timers[id] = time.AfterFunc(delay, func() { s.fire(id) })
}

func (s *Scheduler) disarm(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
	s.metrics.TimersArmed(len(s.timers))
}

// Armed devuelve cuántos timers hay armados.
func (s *Scheduler) Armed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *Scheduler) runningContext() (context.Context, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || s.ctx.Err() != nil {
		return nil, false
	}
	return s.ctx, true
}
