package medicines

import (
	"regexp"
	"strconv"
	"strings"
)

const countPattern = `\d+|one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve`

var (
	// "a day" no cuenta: es frecuencia ("once a day"), no duración
	daysRe   = regexp.MustCompile(`(?i)\b(` + countPattern + `)\s*(?:days?|d)\b`)
	monthsRe = regexp.MustCompile(`(?i)\b(` + countPattern + `|an|a)\s*months?\b|\bmonths?\b`)
	weeksRe  = regexp.MustCompile(`(?i)\b(` + countPattern + `|an|a)\s*(?:weeks?|wks?)\b`)

	numberWords = map[string]int{
		"a": 1, "an": 1, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6,
		"seven": 7, "eight": 8, "nine": 9, "ten": 10, "eleven": 11, "twelve": 12,
	}
)

// DurationDays interpreta "8 Days", "one month", "2 weeks" como días.
// Prioridad: días explícitos, luego meses (30 x N, N=1 por defecto), luego semanas (7 x N).
func DurationDays(text string) (int, bool) {
	if m := daysRe.FindStringSubmatch(text); m != nil {
		if n := toCount(m[1]); n > 0 {
			return n, true
		}
	}
	if m := monthsRe.FindStringSubmatch(text); m != nil {
		n := 1
		if m[1] != "" {
			n = toCount(m[1])
		}
		if n > 0 {
			return 30 * n, true
		}
	}
	if m := weeksRe.FindStringSubmatch(text); m != nil {
		if n := toCount(m[1]); n > 0 {
			return 7 * n, true
		}
	}
	return 0, false
}

func durationOrDefault(text string) int {
	if n, ok := DurationDays(text); ok {
		return n
	}
	return DefaultDurationDays
}

func toCount(s string) int {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, ok := numberWords[s]; ok {
		return n
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
