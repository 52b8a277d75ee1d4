package reminders

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"prescription-reminder/internal/domain/medicines"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	mu      sync.Mutex
	byID    map[string]Reminder
	creates int
	failOn  string // "create" | "update" | "list" | "get" | "delete"

	// >0: falla el Create número createLimit+1
	createLimit int
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Reminder{}}
}

var errBoom = errors.New("disk full")

func (r *testRepo) List(ctx context.Context) ([]Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn == "list" {
		return nil, errBoom
	}
	out := make([]Reminder, 0, len(r.byID))
	for _, v := range r.byID {
		out = append(out, v)
	}
	return out, nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn == "get" {
		return Reminder{}, errBoom
	}
	v, ok := r.byID[id]
	if !ok {
		return Reminder{}, ErrNotFound
	}
	return v, nil
}

func (r *testRepo) Create(ctx context.Context, rem Reminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn == "create" || (r.createLimit > 0 && r.creates >= r.createLimit) {
		return errBoom
	}
	if _, ok := r.byID[rem.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.creates++
	r.byID[rem.ID] = rem
	return nil
}

func (r *testRepo) Update(ctx context.Context, rem Reminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn == "update" {
		return errBoom
	}
	if _, ok := r.byID[rem.ID]; !ok {
		return ErrNotFound
	}
	r.byID[rem.ID] = rem
	return nil
}

func (r *testRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn == "delete" {
		return errBoom
	}
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *testRepo) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID = map[string]Reminder{}
	return nil
}

func newTestService(now time.Time) (*Service, *testRepo) {
	repo := newTestRepo()
	svc := NewService(repo, nil, nil)
	svc.now = func() time.Time { return now }
	return svc, repo
}

// -------------------------
// Tests
// -------------------------

func TestFrequencyLabelToHours(t *testing.T) {
	cases := map[string]int{
		"every 6 hours":       6,
		"Every 8 Hours":       8,
		"twice daily":         12,
		"thrice daily":        8,
		"once daily":          24,
		"":                    24,
		"every 0 hours":       24,
		"when necessary":      24,
		"every 8784 hours":    MaxFrequencyHours,
		"every 8785 hours":    24,
		"every 9999999 hours": 24,
	}
	for in, want := range cases {
		if got := FrequencyLabelToHours(in); got != want {
			t.Fatalf("FrequencyLabelToHours(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestService_CreateManual_NextDueAndRoundTrip(t *testing.T) {
	now := time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)
	svc, _ := newTestService(now)

	notes := "  after food "
	r, err := svc.CreateManual(context.Background(), CreateInput{
		MedicineName: "Amoxicillin (500mg)",
		Dosage:       "1 capsule",
		Frequency:    24,
		Duration:     7,
		Notes:        &notes,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if r.ID == "" {
		t.Fatalf("expected id")
	}
	if !r.NextDue.Equal(now.Add(24 * time.Hour)) {
		t.Fatalf("expected nextDue=T+24h, got %v", r.NextDue)
	}
	if r.Notes == nil || *r.Notes != "after food" {
		t.Fatalf("expected trimmed notes, got %v", r.Notes)
	}

	got, err := svc.GetByID(context.Background(), r.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != r.ID || got.MedicineName != r.MedicineName || got.Dosage != r.Dosage ||
		got.Frequency != r.Frequency || got.Duration != r.Duration ||
		!got.NextDue.Equal(r.NextDue) || !got.CreatedAt.Equal(r.CreatedAt) ||
		*got.Notes != *r.Notes {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, r)
	}
}

func TestService_CreateManual_Invalid(t *testing.T) {
	svc, repo := newTestService(time.Now())

	bad := []CreateInput{
		{MedicineName: " ", Dosage: "1 tab", Frequency: 8, Duration: 5},
		{MedicineName: "X", Dosage: "", Frequency: 8, Duration: 5},
		{MedicineName: "X", Dosage: "1 tab", Frequency: 0, Duration: 5},
		{MedicineName: "X", Dosage: "1 tab", Frequency: 8, Duration: 0},
	}
	for i, in := range bad {
		if _, err := svc.CreateManual(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
	if repo.creates != 0 {
		t.Fatalf("nothing should be persisted")
	}
}

func TestService_CreateManual_StorageError(t *testing.T) {
	svc, repo := newTestService(time.Now())
	repo.failOn = "create"

	_, err := svc.CreateManual(context.Background(), CreateInput{MedicineName: "X", Dosage: "1", Frequency: 8, Duration: 1})
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
}

func TestService_CreateFromDetails_MapsLabelsAndDefaults(t *testing.T) {
	now := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	svc, _ := newTestService(now)

	out, err := svc.CreateFromDetails(context.Background(), "scan-1", []medicines.MedicineDetails{
		{Name: "PREXT (100)", Dosage: "1-0-1 tablet", Frequency: "twice daily", Duration: 30},
		{Name: "Syrup", Dosage: "", Frequency: "every 6 hours", Duration: 0, Notes: "shake well"},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 reminders, got %d", len(out))
	}

	if out[0].Frequency != 12 || !out[0].NextDue.Equal(now.Add(12*time.Hour)) || out[0].Duration != 30 {
		t.Fatalf("unexpected first reminder: %+v", out[0])
	}
	if out[1].Frequency != 6 || out[1].Dosage != medicines.DefaultDosage || out[1].Duration != medicines.DefaultDurationDays {
		t.Fatalf("unexpected second reminder: %+v", out[1])
	}
	if out[1].Notes == nil || *out[1].Notes != "shake well" {
		t.Fatalf("expected notes")
	}
}

func TestService_CreateFromDetails_SameKeyCreatesOnce(t *testing.T) {
	svc, repo := newTestService(time.Now())
	details := []medicines.MedicineDetails{{Name: "A", Dosage: "1", Frequency: "once daily", Duration: 3}}

	var wg sync.WaitGroup
	ids := make([]string, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := svc.CreateFromDetails(context.Background(), "scan-42", details)
			if err != nil {
				t.Errorf("unexpected err: %v", err)
				return
			}
			ids[i] = out[0].ID
		}(i)
	}
	wg.Wait()

	// reintento secuencial tras completar
	again, err := svc.CreateFromDetails(context.Background(), "scan-42", details)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if repo.creates != 1 {
		t.Fatalf("expected exactly one create, got %d", repo.creates)
	}
	for _, id := range ids {
		if id != again[0].ID {
			t.Fatalf("all callers should see the same reminder")
		}
	}
}

func TestService_CreateFromDetails_EmptyKeyUsesContent(t *testing.T) {
	svc, repo := newTestService(time.Now())
	details := []medicines.MedicineDetails{{Name: "A", Dosage: "1", Frequency: "once daily", Duration: 3}}

	if _, err := svc.CreateFromDetails(context.Background(), "", details); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := svc.CreateFromDetails(context.Background(), "", details); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if repo.creates != 1 {
		t.Fatalf("identical content should be created once, got %d", repo.creates)
	}
}

func TestService_CreateFromDetails_InvalidEntryWritesNothing(t *testing.T) {
	svc, repo := newTestService(time.Now())

	_, err := svc.CreateFromDetails(context.Background(), "k", []medicines.MedicineDetails{
		{Name: "A", Dosage: "1", Frequency: "once daily", Duration: 3},
		{Name: "", Dosage: "1", Frequency: "once daily", Duration: 3},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if repo.creates != 0 {
		t.Fatalf("batch must be validated before writing")
	}

	if _, err := svc.CreateFromDetails(context.Background(), "k", nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty batch, got %v", err)
	}
}

func TestService_Update_RecomputesNextDue(t *testing.T) {
	t0 := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t0)

	r, err := svc.CreateManual(context.Background(), CreateInput{MedicineName: "A", Dosage: "1", Frequency: 24, Duration: 5})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	t1 := t0.Add(3 * time.Hour)
	svc.now = func() time.Time { return t1 }

	freq := 8
	up, err := svc.Update(context.Background(), r.ID, UpdateInput{Frequency: &freq})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !up.NextDue.Equal(t1.Add(8 * time.Hour)) {
		t.Fatalf("expected nextDue = now + 8h, got %v", up.NextDue)
	}
	if !up.CreatedAt.Equal(t0) || up.ID != r.ID {
		t.Fatalf("id and createdAt are immutable")
	}

	explicit := t1.Add(30 * time.Minute)
	up, err = svc.Update(context.Background(), r.ID, UpdateInput{Frequency: &freq, NextDue: &explicit})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !up.NextDue.Equal(explicit) {
		t.Fatalf("explicit nextDue must win, got %v", up.NextDue)
	}

	empty := ""
	up, err = svc.Update(context.Background(), r.ID, UpdateInput{Notes: &empty})
	if err != nil || up.Notes != nil {
		t.Fatalf("empty notes should clear: %v %v", err, up.Notes)
	}
}

func TestService_Update_NotFoundAndInvalid(t *testing.T) {
	svc, _ := newTestService(time.Now())

	if _, err := svc.Update(context.Background(), "missing", UpdateInput{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	r, _ := svc.CreateManual(context.Background(), CreateInput{MedicineName: "A", Dosage: "1", Frequency: 24, Duration: 5})
	zero := 0
	if _, err := svc.Update(context.Background(), r.ID, UpdateInput{Duration: &zero}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_MarkFired_RecomputesFromFiringInstant(t *testing.T) {
	t0 := time.Date(2025, 5, 10, 7, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t0)

	r, _ := svc.CreateManual(context.Background(), CreateInput{MedicineName: "A", Dosage: "1", Frequency: 24, Duration: 5})
	if !r.NextDue.Equal(t0.Add(24 * time.Hour)) {
		t.Fatalf("expected T+24h")
	}

	firedAt := t0.Add(24*time.Hour + 7*time.Minute)
	fired, err := svc.MarkFired(context.Background(), r.ID, firedAt)
	if err != nil {
		t.Fatalf("mark fired: %v", err)
	}
	if !fired.NextDue.Equal(firedAt.Add(24 * time.Hour)) {
		t.Fatalf("nextDue must be firedAt + 24h, got %v", fired.NextDue)
	}
}

func TestService_MarkFired_DoesNotNotifyObservers(t *testing.T) {
	svc, _ := newTestService(time.Now())
	r, _ := svc.CreateManual(context.Background(), CreateInput{MedicineName: "A", Dosage: "1", Frequency: 1, Duration: 1})

	var calls int32
	svc.OnChange(func() { atomic.AddInt32(&calls, 1) })

	if _, err := svc.MarkFired(context.Background(), r.ID, time.Now()); err != nil {
		t.Fatalf("mark fired: %v", err)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Fatalf("MarkFired should not trigger observers")
	}
}

func TestService_DeleteAll_EmptiesAndNotifies(t *testing.T) {
	svc, _ := newTestService(time.Now())

	var calls int32
	svc.OnChange(func() { atomic.AddInt32(&calls, 1) })

	for i := 0; i < 3; i++ {
		if _, err := svc.CreateManual(context.Background(), CreateInput{MedicineName: "A", Dosage: "1", Frequency: 8, Duration: 1}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if err := svc.DeleteAll(context.Background()); err != nil {
		t.Fatalf("delete all: %v", err)
	}

	items, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty collection, got %d", len(items))
	}
	if atomic.LoadInt32(&calls) != 4 {
		t.Fatalf("expected 4 change notifications, got %d", calls)
	}
}

func TestService_Delete_NotFoundIsSurfaced(t *testing.T) {
	svc, _ := newTestService(time.Now())
	if err := svc.Delete(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_List_SortedByNextDue(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc, _ := newTestService(now)

	for _, f := range []int{24, 6, 12} {
		if _, err := svc.CreateManual(context.Background(), CreateInput{MedicineName: "A", Dosage: "1", Frequency: f, Duration: 1}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	items, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if items[0].Frequency != 6 || items[1].Frequency != 12 || items[2].Frequency != 24 {
		t.Fatalf("unexpected order: %d %d %d", items[0].Frequency, items[1].Frequency, items[2].Frequency)
	}
}

func TestService_FrequencyAboveMaxIsRejected(t *testing.T) {
	svc, repo := newTestService(time.Now())

	for _, freq := range []int{MaxFrequencyHours + 1, 3_000_000} {
		_, err := svc.CreateManual(context.Background(), CreateInput{MedicineName: "A", Dosage: "1", Frequency: freq, Duration: 1})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("frequency %d: expected ErrInvalidInput, got %v", freq, err)
		}
	}
	if repo.creates != 0 {
		t.Fatalf("nothing should be persisted")
	}

	r, err := svc.CreateManual(context.Background(), CreateInput{MedicineName: "A", Dosage: "1", Frequency: MaxFrequencyHours, Duration: 1})
	if err != nil {
		t.Fatalf("max frequency must be accepted: %v", err)
	}
	huge := 3_000_000
	if _, err := svc.Update(context.Background(), r.ID, UpdateInput{Frequency: &huge}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput on update, got %v", err)
	}
}

func TestNextDueFrom_NeverBeforeReference(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	if got := NextDueFrom(from, 3_000_000); !got.Equal(from.Add(MaxFrequencyHours * time.Hour)) {
		t.Fatalf("out of range frequency must be capped, got %v", got)
	}
	if got := NextDueFrom(from, 0); !got.Equal(from.Add(time.Hour)) {
		t.Fatalf("expected from+1h, got %v", got)
	}
}

func TestService_CreateFromDetails_FailedWriteRollsBack(t *testing.T) {
	svc, repo := newTestService(time.Now())
	repo.createLimit = 1

	details := []medicines.MedicineDetails{
		{Name: "A", Dosage: "1", Frequency: "once daily", Duration: 3},
		{Name: "B", Dosage: "1", Frequency: "twice daily", Duration: 3},
	}
	if _, err := svc.CreateFromDetails(context.Background(), "scan-7", details); !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
	if n := len(repo.byID); n != 0 {
		t.Fatalf("partial batch must be rolled back, %d left", n)
	}

	repo.createLimit = 0
	out, err := svc.CreateFromDetails(context.Background(), "scan-7", details)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if len(out) != 2 || len(repo.byID) != 2 {
		t.Fatalf("retry should store exactly the batch: returned=%d stored=%d", len(out), len(repo.byID))
	}
}

func TestService_CreateFromDetails_ReplayReturnsCurrentState(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	svc, repo := newTestService(t0)
	details := []medicines.MedicineDetails{{Name: "A", Dosage: "1", Frequency: "once daily", Duration: 3}}

	out, err := svc.CreateFromDetails(context.Background(), "scan-9", details)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	dosage := "2 tablets"
	if _, err := svc.Update(context.Background(), out[0].ID, UpdateInput{Dosage: &dosage}); err != nil {
		t.Fatalf("update: %v", err)
	}
	firedAt := t0.Add(30 * time.Hour)
	if _, err := svc.MarkFired(context.Background(), out[0].ID, firedAt); err != nil {
		t.Fatalf("mark fired: %v", err)
	}

	again, err := svc.CreateFromDetails(context.Background(), "scan-9", details)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if repo.creates != 1 {
		t.Fatalf("replay must not create, got %d creates", repo.creates)
	}
	if len(again) != 1 || again[0].Dosage != "2 tablets" || !again[0].NextDue.Equal(firedAt.Add(24*time.Hour)) {
		t.Fatalf("replay should reflect edits, got %+v", again)
	}
}

func TestService_TimestampsHaveMicrosecondPrecision(t *testing.T) {
	now := time.Date(2025, 2, 3, 4, 5, 6, 123456789, time.UTC)
	svc, _ := newTestService(now)

	r, err := svc.CreateManual(context.Background(), CreateInput{MedicineName: "A", Dosage: "1", Frequency: 8, Duration: 1})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if r.CreatedAt.Nanosecond()%1000 != 0 || r.NextDue.Nanosecond()%1000 != 0 {
		t.Fatalf("sub-microsecond component kept: %v %v", r.CreatedAt, r.NextDue)
	}
	if !r.CreatedAt.Equal(now.Truncate(time.Microsecond)) {
		t.Fatalf("unexpected createdAt %v", r.CreatedAt)
	}

	fired, err := svc.MarkFired(context.Background(), r.ID, now.Add(time.Nanosecond*999))
	if err != nil {
		t.Fatalf("mark fired: %v", err)
	}
	if fired.NextDue.Nanosecond()%1000 != 0 {
		t.Fatalf("sub-microsecond component kept: %v", fired.NextDue)
	}
}
