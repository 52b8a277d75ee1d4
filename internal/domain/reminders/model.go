package reminders

import "time"

// Reminder es la entidad persistida: una pauta de un medicamento.
// Los nombres JSON son los del array guardado bajo la key "reminders".
type Reminder struct {
	ID           string    `json:"id"`
	MedicineName string    `json:"medicineName"`
	Dosage       string    `json:"dosage"`
	Frequency    int       `json:"frequency"` // horas entre tomas
	NextDue      time.Time `json:"nextDue"`
	Duration     int       `json:"duration"` // días; informativo, no detiene el scheduler
	Notes        *string   `json:"notes"`
	CreatedAt    time.Time `json:"createdAt"`
}

// IsDue: vence en now o antes.
func (r Reminder) IsDue(now time.Time) bool {
	return !r.NextDue.After(now)
}

// Clone copia también Notes para que nadie comparta el puntero.
func (r Reminder) Clone() Reminder {
	if r.Notes != nil {
		n := *r.Notes
		r.Notes = &n
	}
	return r
}
