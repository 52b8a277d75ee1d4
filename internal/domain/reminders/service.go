package reminders

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"prescription-reminder/internal/domain/medicines"
	"prescription-reminder/internal/platform/logger"
	"prescription-reminder/internal/platform/metrics"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrStorage      = errors.New("reminder storage failed")
)

const (
	OriginManual = "manual"
	OriginScan   = "scan"

	completedBatches = 128
)

type Service struct {
	repo    Repository
	now     func() time.Time
	log     logger.Logger
	metrics *metrics.Metrics

	// a lo sumo un batch en vuelo por key; los terminados se recuerdan
	inflight singleflight.Group
	done     *lru.Cache[string, []Reminder]

	mu        sync.RWMutex
	listeners []func()
}

func NewService(repo Repository, log logger.Logger, m *metrics.Metrics) *Service {
	if log == nil {
		log = logger.Nop()
	}
	done, err := lru.New[string, []Reminder](completedBatches)
	if err != nil {
		panic(err) // solo falla con size <= 0
	}
	return &Service{
		repo:    repo,
		now:     time.Now,
		log:     log.With(map[string]any{"component": "reminders"}),
		metrics: m,
		done:    done,
	}
}

// OnChange registra un observer que se llama tras create/update/delete.
func (s *Service) OnChange(fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Service) changed() {
	s.mu.RLock()
	ls := append([]func(){}, s.listeners...)
	s.mu.RUnlock()
	for _, fn := range ls {
		fn()
	}
}

type CreateInput struct {
	MedicineName string
	Dosage       string
	Frequency    int // horas
	Duration     int // días
	Notes        *string
}

func (s *Service) CreateManual(ctx context.Context, in CreateInput) (Reminder, error) {
	r, err := s.build(in, s.clock())
	if err != nil {
		return Reminder{}, err
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return Reminder{}, s.storageErr("create", err)
	}

	s.metrics.RemindersCreated(OriginManual, 1)
	s.changed()
	return r, nil
}

// CreateFromDetails crea un reminder por cada medicamento parseado.
//
// key identifica el resultado de un scan: dos llamadas con la misma key (en paralelo
// o una tras otra) crean los reminders una sola vez. Repetir una key ya completada
// devuelve el estado actual de esos reminders, no el del momento de creación.
// Con key vacía se usa un hash del contenido: re-escanear la misma receta no crea
// nada nuevo mientras la key siga en memoria (Delete y DeleteAll la olvidan).
// Si una escritura falla, se borran las ya hechas y la key queda libre para reintentar.
func (s *Service) CreateFromDetails(ctx context.Context, key string, details []medicines.MedicineDetails) ([]Reminder, error) {
	if len(details) == 0 {
		return nil, ErrInvalidInput
	}
	key = strings.TrimSpace(key)
	if key == "" {
		key = contentKey(details)
	}

	if out, ok := s.done.Get(key); ok {
		return s.current(ctx, out)
	}

	v, err, shared := s.inflight.Do(key, func() (any, error) {
		if out, ok := s.done.Get(key); ok {
			return s.current(ctx, out)
		}
		// el batch termina aunque el que lo pidió se vaya
		out, err := s.createBatch(context.WithoutCancel(ctx), details)
		if err != nil {
			return nil, err
		}
		s.done.Add(key, out)
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.log.Debug("batch creation joined in-flight request", map[string]any{"key": key})
	}
	return cloneReminders(v.([]Reminder)), nil
}

// current relee un batch ya creado. Los que ya no existen se omiten.
func (s *Service) current(ctx context.Context, batch []Reminder) ([]Reminder, error) {
	out := make([]Reminder, 0, len(batch))
	for _, r := range batch {
		cur, err := s.repo.GetByID(ctx, r.ID)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, s.storageErr("get batch", err)
		}
		out = append(out, cur.Clone())
	}
	return out, nil
}

func (s *Service) createBatch(ctx context.Context, details []medicines.MedicineDetails) ([]Reminder, error) {
	now := s.clock()

	// primero validar todo, después escribir
	batch := make([]Reminder, 0, len(details))
	for i, d := range details {
		r, err := s.build(fromDetails(d), now)
		if err != nil {
			return nil, fmt.Errorf("medicine %d: %w", i+1, err)
		}
		batch = append(batch, r)
	}

	for i, r := range batch {
		if err := s.repo.Create(ctx, r); err != nil {
			s.rollback(ctx, batch[:i])
			return nil, s.storageErr("create batch", err)
		}
	}

	s.metrics.RemindersCreated(OriginScan, len(batch))
	s.changed()
	return batch, nil
}

// rollback borra lo ya escrito de un batch fallido.
func (s *Service) rollback(ctx context.Context, written []Reminder) {
	if len(written) == 0 {
		return
	}
	left := 0
	for _, r := range written {
		if err := s.repo.Delete(ctx, r.ID); err != nil && !errors.Is(err, ErrNotFound) {
			left++
			s.log.Error("rollback batch reminder failed", map[string]any{"reminder_id": r.ID, "error": err})
		}
	}
	if left > 0 {
		// lo que quedó escrito igual debe tener timer
		s.changed()
	}
}

func fromDetails(d medicines.MedicineDetails) CreateInput {
	dosage := strings.TrimSpace(d.Dosage)
	if dosage == "" {
		dosage = medicines.DefaultDosage
	}
	duration := d.Duration
	if duration <= 0 {
		duration = medicines.DefaultDurationDays
	}
	var notes *string
	if n := strings.TrimSpace(d.Notes); n != "" {
		notes = &n
	}
	return CreateInput{
		MedicineName: d.Name,
		Dosage:       dosage,
		Frequency:    FrequencyLabelToHours(d.Frequency),
		Duration:     duration,
		Notes:        notes,
	}
}

func (s *Service) build(in CreateInput, now time.Time) (Reminder, error) {
	name := strings.TrimSpace(in.MedicineName)
	dosage := strings.TrimSpace(in.Dosage)
	if name == "" || dosage == "" || !ValidFrequency(in.Frequency) || in.Duration < 1 {
		return Reminder{}, ErrInvalidInput
	}

	return Reminder{
		ID:           uuid.NewString(),
		MedicineName: name,
		Dosage:       dosage,
		Frequency:    in.Frequency,
		NextDue:      NextDueFrom(now, in.Frequency),
		Duration:     in.Duration,
		Notes:        normalizeNotes(in.Notes),
		CreatedAt:    now,
	}, nil
}

// List devuelve los reminders ordenados por próxima toma.
func (s *Service) List(ctx context.Context) ([]Reminder, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.storageErr("list", err)
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].NextDue.Equal(items[j].NextDue) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].NextDue.Before(items[j].NextDue)
	})
	return items, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Reminder, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Reminder{}, ErrInvalidInput
	}
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Reminder{}, s.storageErr("get", err)
	}
	return r, nil
}

// UpdateInput: nil = no tocar. Notes con "" limpia la nota.
type UpdateInput struct {
	MedicineName *string
	Dosage       *string
	Frequency    *int
	Duration     *int
	Notes        *string
	NextDue      *time.Time
}

// Update aplica la edición. NextDue se recalcula como now + frecuencia (nueva o actual)
// salvo que la edición traiga su propio NextDue.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Reminder, error) {
	r, err := s.GetByID(ctx, id)
	if err != nil {
		return Reminder{}, err
	}

	if in.MedicineName != nil {
		r.MedicineName = strings.TrimSpace(*in.MedicineName)
	}
	if in.Dosage != nil {
		r.Dosage = strings.TrimSpace(*in.Dosage)
	}
	if in.Frequency != nil {
		r.Frequency = *in.Frequency
	}
	if in.Duration != nil {
		r.Duration = *in.Duration
	}
	if in.Notes != nil {
		r.Notes = normalizeNotes(in.Notes)
	}
	if r.MedicineName == "" || r.Dosage == "" || !ValidFrequency(r.Frequency) || r.Duration < 1 {
		return Reminder{}, ErrInvalidInput
	}

	if in.NextDue != nil {
		if in.NextDue.IsZero() {
			return Reminder{}, ErrInvalidInput
		}
		r.NextDue = in.NextDue.Truncate(time.Microsecond)
	} else {
		r.NextDue = NextDueFrom(s.clock(), r.Frequency)
	}

	if err := s.repo.Update(ctx, r); err != nil {
		return Reminder{}, s.storageErr("update", err)
	}
	s.changed()
	return r, nil
}

// MarkFired avanza NextDue desde el instante de disparo (no desde el NextDue anterior).
// No notifica observers: el scheduler re-arma su propio timer.
func (s *Service) MarkFired(ctx context.Context, id string, firedAt time.Time) (Reminder, error) {
	r, err := s.GetByID(ctx, id)
	if err != nil {
		return Reminder{}, err
	}
	r.NextDue = NextDueFrom(firedAt.Truncate(time.Microsecond), r.Frequency)
	if err := s.repo.Update(ctx, r); err != nil {
		return Reminder{}, s.storageErr("mark fired", err)
	}
	return r, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidInput
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.storageErr("delete", err)
	}
	s.done.Purge()
	s.changed()
	return nil
}

func (s *Service) DeleteAll(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		return s.storageErr("clear", err)
	}
	s.done.Purge()
	s.changed()
	return nil
}

// clock trunca a microsegundos: es la precisión de TIMESTAMPTZ y así todos los
// backends devuelven exactamente lo que se guardó.
func (s *Service) clock() time.Time {
	return s.now().Truncate(time.Microsecond)
}

func (s *Service) storageErr(op string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	s.log.Error("reminder storage failed", map[string]any{"op": op, "error": err})
	return fmt.Errorf("%w: %s: %v", ErrStorage, op, err)
}

func normalizeNotes(n *string) *string {
	if n == nil {
		return nil
	}
	v := strings.TrimSpace(*n)
	if v == "" {
		return nil
	}
	return &v
}

func contentKey(details []medicines.MedicineDetails) string {
	b, _ := json.Marshal(details)
	sum := sha256.Sum256(b)
	return "content:" + hex.EncodeToString(sum[:])
}

func cloneReminders(in []Reminder) []Reminder {
	out := make([]Reminder, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}
