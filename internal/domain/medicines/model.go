package medicines

import "fmt"

// MedicineDetails es el resultado transitorio del parser: nunca se persiste,
// se convierte en Reminder (o lo edita el usuario antes de confirmar).
type MedicineDetails struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"` // once daily | twice daily | thrice daily | every N hours
	Duration  int    `json:"duration"`  // días
	Notes     string `json:"notes,omitempty"`
}

const (
	FrequencyOnceDaily   = "once daily"
	FrequencyTwiceDaily  = "twice daily"
	FrequencyThriceDaily = "thrice daily"

	DefaultDosage       = "As prescribed"
	DefaultDurationDays = 7
)

// EveryNHours arma la etiqueta "every N hours".
func EveryNHours(n int) string {
	return fmt.Sprintf("every %d hours", n)
}
