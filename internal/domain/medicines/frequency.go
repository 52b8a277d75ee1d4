package medicines

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	hourlyRe = regexp.MustCompile(`(?i)\bevery\s+(\d{1,2})\s*(?:hours?|hrs?|h)\b|\b(\d{1,2})\s*-?\s*(?:hourly|hrly)\b|\bq\s?(\d{1,2})\s?h\b`)

	thriceRe = regexp.MustCompile(`(?i)\b(?:three|3)\s+times\b|\bthrice\b|\b(?:tds|tid)\b`)
	twiceRe  = regexp.MustCompile(`(?i)\b(?:two|2)\s+times\b|\btwice\b|\b(?:bd|bid)\b`)

	// mañana-tarde-noche, un dígito por toma (0 = no tomar)
	slotPatternRe = regexp.MustCompile(`(?:^|[^\d-])(\d)\s*-\s*(\d)\s*-\s*(\d)(?:[^\d-]|$)`)

	slotRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bmorning\b|\bmorn\b`),
		regexp.MustCompile(`(?i)\bafternoon\b|\baft\b|\bnoon\b`),
		regexp.MustCompile(`(?i)\bevening\b|\beve\b`),
		regexp.MustCompile(`(?i)\bnight\b|\bbedtime\b`),
	}

	hourlyLabelRe = regexp.MustCompile(`(?i)^every\s+(\d+)\s+hours?$`)
)

// DeriveFrequency traduce el texto de dosis a una etiqueta de frecuencia.
//
// Orden: intervalo explícito en horas, frases explícitas (three times / twice),
// patrón D-D-D, y por último conteo de franjas (morning/aft/eve/night).
func DeriveFrequency(dosage string) string {
	if n, ok := hourlyInterval(dosage); ok {
		return EveryNHours(n)
	}

	switch {
	case thriceRe.MatchString(dosage):
		return FrequencyThriceDaily
	case twiceRe.MatchString(dosage):
		return FrequencyTwiceDaily
	}

	switch n := activeSlots(dosage); {
	case n >= 3:
		return FrequencyThriceDaily
	case n == 2:
		return FrequencyTwiceDaily
	default:
		return FrequencyOnceDaily
	}
}

// DosesPerDay estima tomas diarias a partir de la etiqueta (mínimo 1).
func DosesPerDay(label string) int {
	label = strings.ToLower(strings.TrimSpace(label))
	switch label {
	case FrequencyTwiceDaily:
		return 2
	case FrequencyThriceDaily:
		return 3
	}
	if m := hourlyLabelRe.FindStringSubmatch(label); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil && n > 0 && n < 24 {
			return (24 + n - 1) / n
		}
	}
	return 1
}

func hourlyInterval(text string) (int, bool) {
	m := hourlyRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	for _, g := range m[1:] {
		if g == "" {
			continue
		}
		n, err := strconv.Atoi(g)
		if err != nil || n <= 0 {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func activeSlots(text string) int {
	if m := slotPatternRe.FindStringSubmatch(text); m != nil {
		n := 0
		for _, d := range m[1:] {
			if d != "0" {
				n++
			}
		}
		return n
	}

	n := 0
	for _, re := range slotRes {
		if re.MatchString(text) {
			n++
		}
	}
	return n
}
