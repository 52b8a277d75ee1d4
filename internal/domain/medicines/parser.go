package medicines

import (
	"regexp"
	"strings"
)

// Strategy es una capa del parser. Devuelve nil/vacío si el texto no tiene su forma.
type Strategy interface {
	Name() string
	Parse(text string) []MedicineDetails
}

// Parser prueba las estrategias en orden; la primera que produce resultados gana.
type Parser struct {
	strategies []Strategy
}

func NewParser(strategies ...Strategy) *Parser {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &Parser{strategies: strategies}
}

// DefaultStrategies: tarjetas markdown, bloques con labels, tablas, líneas sueltas.
func DefaultStrategies() []Strategy {
	return []Strategy{
		CardStrategy{},
		LabeledStrategy{},
		TableStrategy{},
		LooseStrategy{},
	}
}

// Parse nunca devuelve nil.
func (p *Parser) Parse(text string) []MedicineDetails {
	out, _ := p.ParseWithStrategy(text)
	return out
}

// ParseWithStrategy devuelve además el nombre de la estrategia ganadora ("" si ninguna).
func (p *Parser) ParseWithStrategy(text string) ([]MedicineDetails, string) {
	text = normalizeNewlines(text)
	if strings.TrimSpace(text) == "" {
		return []MedicineDetails{}, ""
	}

	for _, s := range p.strategies {
		if out := s.Parse(text); len(out) > 0 {
			return out, s.Name()
		}
	}
	return []MedicineDetails{}, ""
}

// ParseMedicines usa las estrategias por defecto.
func ParseMedicines(text string) []MedicineDetails {
	return NewParser().Parse(text)
}

// helpers compartidos

var (
	emphasisRe   = regexp.MustCompile("\\*\\*|__|`")
	spacesRe     = regexp.MustCompile(`[ \t]+`)
	numberingRe  = regexp.MustCompile(`^\s*(?:\d+\s*[.)]\s*|[-*•+]\s+)`)
	drugFormRe   = regexp.MustCompile(`(?i)\b(?:tab(?:let)?s?|cap(?:sule)?s?|susp(?:ension)?|drops?|syp|syrup|inj(?:ection)?)\b`)
	mealNoteRe   = regexp.MustCompile(`(?i)\b(?:before|after|with)\s+(?:food|meals?|breakfast|lunch|dinner)\b|\bempty\s+stomach\b`)
	valueTrimSet = " \t*_"
)

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// cleanText quita énfasis markdown, numeración/viñeta inicial y espacios sobrantes.
func cleanText(s string) string {
	s = emphasisRe.ReplaceAllString(s, "")
	s = numberingRe.ReplaceAllString(s, "")
	s = spacesRe.ReplaceAllString(s, " ")
	return strings.Trim(s, valueTrimSet)
}

func cleanValue(s string) string {
	return strings.Trim(strings.TrimSpace(s), valueTrimSet)
}

func mealNote(text string) string {
	return mealNoteRe.FindString(text)
}

func newDetails(name, dosage string, duration int, notes string) MedicineDetails {
	if dosage == "" {
		dosage = DefaultDosage
	}
	freq := FrequencyOnceDaily
	if dosage != DefaultDosage {
		freq = DeriveFrequency(dosage)
	}
	if duration <= 0 {
		duration = DefaultDurationDays
	}
	return MedicineDetails{
		Name:      name,
		Dosage:    dosage,
		Frequency: freq,
		Duration:  duration,
		Notes:     notes,
	}
}
