package lsr

import (
	"regexp"
	"strconv"
	"strings"
)

var magUnitsRe = regexp.MustCompile(`ACRE|INCHES|INCH|MILE|MPH|KTS|TRACE|FT|F|E|M|U`)

// Magnitude is the decoded magnitude column.
type Magnitude struct {
	Value     *float64
	Qualifier string // M, E or U
	Units     string
	Text      string
}

// ParseMagnitude splits a magnitude column such as "M1.00 INCH" or "E60 MPH".
// The second return is false when a residue remained that is not a number.
func ParseMagnitude(text string) (Magnitude, bool) {
	text = strings.ToUpper(strings.TrimSpace(text))
	m := Magnitude{Text: text}
	if text == "" {
		return m, true
	}
	tokens := magUnitsRe.FindAllString(text, -1)
	switch len(tokens) {
	case 0:
	case 1:
		m.Units = tokens[0]
	default:
		m.Qualifier = tokens[0]
		m.Units = tokens[1]
	}
	residue := strings.TrimSpace(magUnitsRe.ReplaceAllString(text, ""))
	if residue == "" {
		return m, true
	}
	v, err := strconv.ParseFloat(residue, 64)
	if err != nil {
		return m, false
	}
	m.Value = &v
	return m, true
}

var (
	fractionRe = regexp.MustCompile(`(?:\b([0-9]+)\s+)?\b([0-9]+)/([0-9]+)`)
	decimalRe  = regexp.MustCompile(`(?:^|[^0-9/])([0-9]*\.[0-9]+)`)
	wordsRe    = regexp.MustCompile(`\b(AN?|ONE|TWO|THREE|FOUR|FIVE|SIX|SEVEN|EIGHT|NINE|[0-9])\s+(TENTHS?|QUARTERS?|EIGHTHS?|HALF)\b`)
	halfRe     = regexp.MustCompile(`\bHALF\b`)
)

var numberWords = map[string]float64{
	"A": 1, "AN": 1, "ONE": 1, "TWO": 2, "THREE": 3, "FOUR": 4, "FIVE": 5,
	"SIX": 6, "SEVEN": 7, "EIGHT": 8, "NINE": 9,
}

var fractionWords = map[string]float64{
	"TENTH": 0.1, "TENTHS": 0.1, "QUARTER": 0.25, "QUARTERS": 0.25,
	"EIGHTH": 0.125, "EIGHTHS": 0.125, "HALF": 0.5,
}

// iceAccumulation mines a freezing rain remark for an ice thickness in
// inches. It only fires when the remark speaks of inches.
func iceAccumulation(remark string) (float64, bool) {
	text := strings.ToUpper(remark)
	if !strings.Contains(text, "INCH") {
		return 0, false
	}
	if m := fractionRe.FindStringSubmatch(text); m != nil {
		num, _ := strconv.ParseFloat(m[2], 64)
		den, _ := strconv.ParseFloat(m[3], 64)
		if den > 0 {
			v := num / den
			if m[1] != "" {
				whole, _ := strconv.ParseFloat(m[1], 64)
				v += whole
			}
			return v, true
		}
	}
	if m := decimalRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return v, true
		}
	}
	if m := wordsRe.FindStringSubmatch(text); m != nil {
		n, ok := numberWords[m[1]]
		if !ok {
			n, _ = strconv.ParseFloat(m[1], 64)
		}
		return n * fractionWords[m[2]], true
	}
	if halfRe.MatchString(text) {
		return 0.5, true
	}
	return 0, false
}

// iceTypes are the hazards whose remark is mined by iceAccumulation.
var iceTypes = map[string]bool{
	"FREEZING RAIN":    true,
	"FREEZING DRIZZLE": true,
	"ICE STORM":        true,
}
