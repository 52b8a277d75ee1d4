package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "rx_reminder"

// Metrics agrupa los collectors de la app. Un nil *Metrics es válido:
// todos los métodos son no-op (tests, adapters sin instrumentar).
type Metrics struct {
	remindersFired   prometheus.Counter
	persistFailures  prometheus.Counter
	timersArmed      prometheus.Gauge
	notifications    *prometheus.CounterVec
	speech           *prometheus.CounterVec
	ocrRequests      *prometheus.CounterVec
	parseStrategy    *prometheus.CounterVec
	remindersCreated *prometheus.CounterVec
}

// MustNew registra los collectors en reg (nil => registry nuevo).
// Panics si hay colisión de nombres, igual que promauto.
func MustNew(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		remindersFired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "reminders_fired_total",
			Help:      "Reminders whose due time was reached and notified.",
		}),
		persistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "persist_failures_total",
			Help:      "Failures persisting a recomputed due time.",
		}),
		timersArmed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "timers_armed",
			Help:      "Per-reminder timers currently armed.",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "deliveries_total",
			Help:      "Notifications delivered per channel.",
		}, []string{"channel"}),
		speech: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "speech_total",
			Help:      "Speech attempts per engine and outcome.",
		}, []string{"engine", "outcome"}),
		ocrRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ocr",
			Name:      "requests_total",
			Help:      "OCR extraction requests per outcome.",
		}, []string{"outcome"}),
		parseStrategy: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "parser",
			Name:      "results_total",
			Help:      "Parse runs per winning strategy (none when nothing matched).",
		}, []string{"strategy"}),
		remindersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reminders",
			Name:      "created_total",
			Help:      "Reminders created per origin.",
		}, []string{"origin"}),
	}

	reg.MustRegister(
		m.remindersFired,
		m.persistFailures,
		m.timersArmed,
		m.notifications,
		m.speech,
		m.ocrRequests,
		m.parseStrategy,
		m.remindersCreated,
	)
	return m
}

func (m *Metrics) ReminderFired() {
	if m == nil {
		return
	}
	m.remindersFired.Inc()
}

func (m *Metrics) PersistFailed() {
	if m == nil {
		return
	}
	m.persistFailures.Inc()
}

func (m *Metrics) TimersArmed(n int) {
	if m == nil {
		return
	}
	m.timersArmed.Set(float64(n))
}

func (m *Metrics) Delivered(channel string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(channel).Inc()
}

func (m *Metrics) Spoke(engine, outcome string) {
	if m == nil {
		return
	}
	m.speech.WithLabelValues(engine, outcome).Inc()
}

func (m *Metrics) OCR(outcome string) {
	if m == nil {
		return
	}
	m.ocrRequests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Parsed(strategy string) {
	if m == nil {
		return
	}
	if strategy == "" {
		strategy = "none"
	}
	m.parseStrategy.WithLabelValues(strategy).Inc()
}

func (m *Metrics) RemindersCreated(origin string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.remindersCreated.WithLabelValues(origin).Add(float64(n))
}
