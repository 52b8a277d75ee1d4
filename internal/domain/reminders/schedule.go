package reminders

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"prescription-reminder/internal/domain/medicines"
)

// MaxFrequencyHours acota la frecuencia a un año (bisiesto): más allá, frecuencia*hora
// desborda time.Duration y el próximo vencimiento quedaría en el pasado.
const MaxFrequencyHours = 24 * 366

var everyHoursRe = regexp.MustCompile(`(?i)every\s+(\d+)\s*hours?`)

// ValidFrequency: entre 1 y MaxFrequencyHours horas.
func ValidFrequency(hours int) bool {
	return hours >= 1 && hours <= MaxFrequencyHours
}

// FrequencyLabelToHours: twice daily 12, thrice daily 8, every N hours N, resto 24.
// Un N fuera de rango cuenta como etiqueta desconocida.
func FrequencyLabelToHours(label string) int {
	l := strings.ToLower(strings.TrimSpace(label))
	switch l {
	case medicines.FrequencyTwiceDaily:
		return 12
	case medicines.FrequencyThriceDaily:
		return 8
	}
	if m := everyHoursRe.FindStringSubmatch(l); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && ValidFrequency(n) {
			return n
		}
	}
	return 24
}

// NextDueFrom calcula la próxima toma desde un instante de referencia.
// Siempre from + frecuencia: no se recuperan tomas perdidas.
// Datos guardados fuera de rango se acotan para que el resultado nunca quede antes de from.
func NextDueFrom(from time.Time, frequencyHours int) time.Time {
	switch {
	case frequencyHours < 1:
		frequencyHours = 1
	case frequencyHours > MaxFrequencyHours:
		frequencyHours = MaxFrequencyHours
	}
	return from.Add(time.Duration(frequencyHours) * time.Hour)
}
