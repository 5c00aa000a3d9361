package metar

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/couchcryptid/nws-text-ingest/internal/nws"
)

const maxAttempts = 5

var (
	anchorRe  = regexp.MustCompile(`(METAR|SPECI) `)
	controlRe = regexp.MustCompile(`[\x00-\x1f\x7f]+`)
	nilRe     = regexp.MustCompile(`\bNIL\b`)
)

// Collective is the set of observations decoded from one bulletin.
type Collective struct {
	Product      *nws.Product
	Observations []*Observation
}

// Parser decodes METAR collectives, enriching each report from a station
// provider.
type Parser struct {
	stations nws.LocationProvider
}

// NewParser creates a Parser. stations may be nil.
func NewParser(stations nws.LocationProvider) *Parser {
	return &Parser{stations: stations}
}

// Handles reports whether the product is a METAR or SPECI collective.
func Handles(prod *nws.Product) bool {
	switch {
	case strings.HasPrefix(prod.WMO, "SA"), strings.HasPrefix(prod.WMO, "SP"):
		return true
	case prod.AFOSPrefix() == "MTR":
		return true
	}
	return false
}

// Parse splits the collective and decodes every report. Reports that cannot
// be recovered are dropped with a product warning.
func (p *Parser) Parse(prod *nws.Product) (*Collective, error) {
	c := &Collective{Product: prod}
	for _, code := range SplitReports(prod) {
		r, err := p.decode(prod, code)
		if err != nil {
			prod.Warnf("METAR %q: %v", code, err)
			continue
		}
		c.Observations = append(c.Observations, p.observation(prod, r))
	}
	return c, nil
}

// SplitReports returns the sanitized report strings of the collective body,
// skipping the WMO, AFOS and bare METAR/SPECI header lines.
func SplitReports(prod *nws.Product) []string {
	lines := strings.Split(prod.Text, "\n")
	skip := 1
	if prod.AFOS != "" && len(lines) > skip && strings.TrimSpace(lines[skip]) == prod.AFOS {
		skip++
	}
	if len(lines) > skip {
		switch strings.TrimSpace(lines[skip]) {
		case "METAR", "SPECI":
			skip++
		}
	}
	if skip > len(lines) {
		skip = len(lines)
	}

	var out []string
	for _, seg := range strings.Split(strings.Join(lines[skip:], "\n"), "=") {
		if loc := anchorRe.FindStringIndex(seg); loc != nil {
			seg = seg[loc[1]:]
		}
		if nilRe.MatchString(seg) {
			continue
		}
		seg = controlRe.ReplaceAllString(seg, " ")
		seg = strings.Join(strings.Fields(seg), " ")
		if len(seg) < 10 {
			continue
		}
		out = append(out, seg)
	}
	return out
}

// decode runs the grammar, stripping unparsed groups and stepping back a
// month when the report day does not fit the product month.
func (p *Parser) decode(prod *nws.Product, code string) (*Report, error) {
	year, month := prod.Valid.Year(), prod.Valid.Month()
	var err error
	for range maxAttempts {
		var r *Report
		r, err = Decode(code, year, month)

		var unparsed *UnparsedError
		var dayRange *DayRangeError
		switch {
		case err == nil:
			return p.checkFuture(prod, code, r)
		case errors.As(err, &unparsed):
			code = stripGroups(code, unparsed.Groups)
		case errors.As(err, &dayRange) && dayRange.Day > prod.Valid.Day():
			prev := time.Date(year, month-1, 1, 0, 0, 0, 0, time.UTC)
			year, month = prev.Year(), prev.Month()
		default:
			return nil, err
		}
	}
	return nil, err
}

// checkFuture rejects reports more than an hour ahead of now. Early in a
// month a late day is read as belonging to the previous month.
func (p *Parser) checkFuture(prod *nws.Product, code string, r *Report) (*Report, error) {
	if r.Time.Sub(prod.Now) <= time.Hour {
		return r, nil
	}
	if prod.Now.Day() < 5 && r.Day > 25 {
		prev := time.Date(r.Time.Year(), r.Time.Month()-1, 1, 0, 0, 0, 0, time.UTC)
		back, err := Decode(code, prev.Year(), prev.Month())
		if err == nil && back.Time.Sub(prod.Now) <= time.Hour {
			return back, nil
		}
	}
	return nil, fmt.Errorf("observation %s is in the future of %s", r.Time.Format(time.RFC3339), prod.Now.Format(time.RFC3339))
}

func stripGroups(code string, groups []string) string {
	drop := make(map[string]int, len(groups))
	for _, g := range groups {
		drop[g]++
	}
	tokens := strings.Fields(code)
	kept := tokens[:0]
	remarks := false
	for _, t := range tokens {
		if t == "RMK" {
			remarks = true
		}
		if !remarks && drop[t] > 0 {
			drop[t]--
			continue
		}
		kept = append(kept, t)
	}
	return strings.Join(kept, " ")
}
