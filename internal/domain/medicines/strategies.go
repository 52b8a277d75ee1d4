package medicines

import (
	"regexp"
	"strings"
)

// ---- Card: bloque markdown **Nombre** con viñetas indentadas Dosage / Duration ----

var cardRe = regexp.MustCompile(
	`(?m)^[ \t]*(?:\d+[.)][ \t]*)?(?:[-*•+][ \t]+)?\*\*([^*\n]+?)\*\*[ \t]*(\([^)\n]*\))?[ \t]*:?[ \t]*\n` +
		`(?:[ \t]*\n)*` +
		`[ \t]+[-*•+][ \t]*` + fieldLabel(`dosage`) + `([^\n]*)\n` +
		`(?:[ \t]*\n)*` +
		`[ \t]+[-*•+][ \t]*` + fieldLabel(`duration`) + `([^\n]*)`)

func fieldLabel(name string) string {
	return `(?:\*\*)?(?i:` + name + `)(?:\*\*)?[ \t]*:[ \t]*(?:\*\*)?[ \t]*`
}

type CardStrategy struct{}

func (CardStrategy) Name() string { return "card" }

func (CardStrategy) Parse(text string) []MedicineDetails {
	var out []MedicineDetails
	for _, m := range cardRe.FindAllStringSubmatch(text, -1) {
		name := joinName(m[1], m[2])
		if name == "" {
			continue
		}
		dosage := cleanValue(m[3])
		out = append(out, newDetails(name, dosage, durationOrDefault(m[4]), mealNote(dosage)))
	}
	return out
}

// ---- Labeled: encabezado en negrita (o heading) seguido de líneas "Label: valor" ----

var (
	boldHeaderRe = regexp.MustCompile(`^\s*(?:\d+[.)]\s*)?(?:[-*•+]\s+)?\*\*\s*(?:\d+[.)]\s*)?([^*]+?)\s*\*\*\s*(\([^)]*\))?\s*:?\s*$`)
	mdHeadingRe  = regexp.MustCompile(`^\s*#{1,6}\s+(?:\d+[.)]\s*)?(.+?)\s*:?\s*$`)
	fieldLineRe  = regexp.MustCompile(`(?i)^\s*(?:[-*•+]\s*)?(?:\*\*)?\s*(dosage|dose|duration|frequency|timing|notes?|instructions?)\s*(?:\*\*)?\s*:\s*(?:\*\*)?\s*(.*)$`)
)

type LabeledStrategy struct{}

func (LabeledStrategy) Name() string { return "labeled" }

type labeledBlock struct {
	name      string
	dosage    string
	duration  string
	frequency string
	notes     string
	hasFields bool
}

func (b *labeledBlock) set(label, value string) {
	value = cleanValue(value)
	if value == "" {
		return
	}
	// la primera aparición de cada label gana
	switch strings.ToLower(label) {
	case "dosage", "dose":
		if b.dosage == "" {
			b.dosage = value
			b.hasFields = true
		}
	case "duration":
		if b.duration == "" {
			b.duration = value
			b.hasFields = true
		}
	case "frequency", "timing":
		if b.frequency == "" {
			b.frequency = value
		}
	default:
		if b.notes == "" {
			b.notes = value
		}
	}
}

func (b *labeledBlock) details() MedicineDetails {
	d := newDetails(b.name, b.dosage, durationOrDefault(b.duration), b.notes)
	if b.frequency != "" {
		hint := b.frequency
		if b.dosage != "" {
			hint = b.dosage + " " + b.frequency
		}
		d.Frequency = DeriveFrequency(hint)
	}
	if d.Notes == "" {
		d.Notes = mealNote(d.Dosage)
	}
	return d
}

func (LabeledStrategy) Parse(text string) []MedicineDetails {
	var (
		out []MedicineDetails
		cur *labeledBlock
	)

	flush := func() {
		if cur != nil && cur.hasFields {
			out = append(out, cur.details())
		}
		cur = nil
	}

	for _, line := range strings.Split(text, "\n") {
		if m := fieldLineRe.FindStringSubmatch(line); m != nil {
			if cur != nil {
				cur.set(m[1], m[2])
			}
			continue
		}
		if name, ok := headerName(line); ok {
			flush()
			cur = &labeledBlock{name: name}
		}
	}
	flush()
	return out
}

func headerName(line string) (string, bool) {
	var name string
	if m := boldHeaderRe.FindStringSubmatch(line); m != nil {
		name = joinName(m[1], m[2])
	} else if m := mdHeadingRe.FindStringSubmatch(line); m != nil {
		name = cleanText(m[1])
	}
	if name == "" || isFieldLabel(name) {
		return "", false
	}
	return name, true
}

func isFieldLabel(s string) bool {
	s = strings.ToLower(strings.TrimRight(strings.TrimSpace(s), ":"))
	switch s {
	case "dosage", "dose", "duration", "frequency", "timing", "note", "notes", "instruction", "instructions":
		return true
	}
	return false
}

func joinName(name, qualifier string) string {
	name = cleanText(name)
	qualifier = strings.TrimSpace(qualifier)
	if qualifier == "" {
		return name
	}
	if name == "" {
		return ""
	}
	return name + " " + qualifier
}

// ---- Table: filas con "|" donde una celda nombra una forma farmacéutica ----

var (
	tableSepRe    = regexp.MustCompile(`^[\s|:\-+=]+$`)
	tableHeaderRe = regexp.MustCompile(`(?i)^(?:#|no\.?|sr\.?(?:\s*no\.?)?|s\.?\s*no\.?|medicines?(?:\s+name)?|drugs?(?:\s+name)?|name|dosage|dose|frequency|timing|duration|days|instructions?|remarks?|qty|quantity)$`)
	dosageCellRe  = regexp.MustCompile(`(?i)\d\s*-\s*\d\s*-\s*\d|\b(?:morning|morn|afternoon|aft|noon|evening|eve|night|bedtime|daily|hourly|hours?|hrs?|once|twice|thrice|times|tabs?|tablets?|caps?|capsules?|ml|mg|mcg|drops?|puffs?|units?|sachets?|spoons?|tsp)\b`)
	totalUnitsRe  = regexp.MustCompile(`(?i)\btot(?:al)?\.?\s*(?:qty|quantity)?\s*[:=-]?\s*(\d+)`)

	// la celda del nombre empieza con la forma farmacéutica, con numeración "1)" opcional
	nameCellRe   = regexp.MustCompile(`(?i)^\s*(?:\d+\s*[.)]\s*)?(?:tab(?:let)?s?|cap(?:sule)?s?|susp(?:ension)?|drops?|syp|syrup|inj(?:ection)?)\b`)
	numberCellRe = regexp.MustCompile(`^\d+\s*[.)]?$`)
)

type TableStrategy struct{}

func (TableStrategy) Name() string { return "table" }

func (TableStrategy) Parse(text string) []MedicineDetails {
	var out []MedicineDetails
	for _, line := range strings.Split(text, "\n") {
		if !strings.Contains(line, "|") || tableSepRe.MatchString(line) {
			continue
		}
		cells := splitCells(line)
		if len(cells) < 2 || isHeaderRow(cells) {
			continue
		}
		if d, ok := parseTableRow(line, cells); ok {
			out = append(out, d)
		}
	}
	return out
}

func splitCells(line string) []string {
	var cells []string
	for _, c := range strings.Split(line, "|") {
		if c = cleanValue(c); c != "" {
			cells = append(cells, c)
		}
	}
	return cells
}

func isHeaderRow(cells []string) bool {
	for _, c := range cells {
		if !tableHeaderRe.MatchString(cleanText(c)) {
			return false
		}
	}
	return true
}

func parseTableRow(line string, cells []string) (MedicineDetails, bool) {
	nameIdx := nameCell(line, cells)
	if nameIdx < 0 {
		return MedicineDetails{}, false
	}
	name := cleanText(cells[nameIdx])
	if name == "" {
		return MedicineDetails{}, false
	}

	durIdx, days := -1, 0
	for i, c := range cells {
		if i == nameIdx {
			continue
		}
		if n, ok := DurationDays(c); ok {
			durIdx, days = i, n
			break
		}
	}

	dosage := ""
	for i, c := range cells {
		if i == nameIdx || i == durIdx {
			continue
		}
		if dosageCellRe.MatchString(c) {
			dosage = c
			break
		}
	}
	if dosage == "" && durIdx >= 0 && dosageCellRe.MatchString(cells[durIdx]) {
		dosage = cells[durIdx]
	}

	d := newDetails(name, dosage, 0, mealNote(line))
	switch {
	case days > 0:
		d.Duration = days
	default:
		// "Tot: 10 Tab" con 2 tomas diarias => 5 días
		if m := totalUnitsRe.FindStringSubmatch(line); m != nil {
			if units := toCount(m[1]); units > 0 {
				per := DosesPerDay(d.Frequency)
				d.Duration = (units + per - 1) / per
			}
		}
	}
	return d, true
}

// nameCell prefiere la celda que empieza con la forma farmacéutica. Si ninguna lo hace
// pero la fila menciona una, el nombre es la primera celda que no es numeración,
// dosis ni duración ("| 1 | Paracetamol 500 | 1 tab morning and night |").
func nameCell(line string, cells []string) int {
	for i, c := range cells {
		if nameCellRe.MatchString(c) {
			return i
		}
	}
	if !drugFormRe.MatchString(line) {
		return -1
	}
	for i, c := range cells {
		if numberCellRe.MatchString(c) || dosageCellRe.MatchString(c) {
			continue
		}
		if _, ok := DurationDays(c); ok {
			continue
		}
		return i
	}
	return -1
}

// ---- Loose: cualquier línea que mencione una forma farmacéutica ----

var looseSepRe = regexp.MustCompile(`[ \t]*:[ \t]*|[ \t]+[-–—]+[ \t]*|[-–—]+[ \t]+`)

type LooseStrategy struct{}

func (LooseStrategy) Name() string { return "loose" }

func (LooseStrategy) Parse(text string) []MedicineDetails {
	var out []MedicineDetails
	for _, raw := range strings.Split(text, "\n") {
		line := cleanText(strings.ReplaceAll(raw, "|", " "))
		if line == "" || !drugFormRe.MatchString(line) {
			continue
		}

		name, dosage := line, ""
		if loc := looseSepRe.FindStringIndex(line); loc != nil && loc[0] > 0 {
			name = strings.TrimSpace(line[:loc[0]])
			dosage = cleanValue(line[loc[1]:])
		}
		if name == "" || isFieldLabel(name) {
			continue
		}
		out = append(out, newDetails(name, dosage, durationOrDefault(line), mealNote(line)))
	}
	return out
}
