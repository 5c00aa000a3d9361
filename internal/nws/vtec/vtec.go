// Package vtec parses VTEC-coded watch, warning and advisory products and
// advances their rows in the yearly warnings tables.
package vtec

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const vtecTime = "060102T1504Z"

var (
	vtecRe  = regexp.MustCompile(`/([OTEX])\.([A-Z]{3})\.([A-Z]{4})\.([A-Z]{2})\.([A-Z])\.([0-9]{4})\.([0-9]{6}T[0-9]{4}Z)-([0-9]{6}T[0-9]{4}Z)/`)
	hvtecRe = regexp.MustCompile(`/([0-9A-Z]{5})\.([0-3NU])\.([A-Z]{2})\.([0-9TZ]{12})\.([0-9TZ]{12})\.([0-9TZ]{12})\.([A-Z]{2})/`)
)

// VTEC is one P-VTEC string.
type VTEC struct {
	Status       string // O, T, E or X
	Action       string
	Office       string // four letter issuing office
	Phenomena    string
	Significance string
	ETN          int
	Begin        *time.Time // nil for 000000T0000Z
	End          *time.Time
	Raw          string
}

// ParseVTECs returns every VTEC string in text, in textual order.
func ParseVTECs(text string) ([]VTEC, error) {
	var out []VTEC
	for _, m := range vtecRe.FindAllStringSubmatch(text, -1) {
		etn, _ := strconv.Atoi(m[6])
		v := VTEC{
			Status:       m[1],
			Action:       m[2],
			Office:       m[3],
			Phenomena:    m[4],
			Significance: m[5],
			ETN:          etn,
			Raw:          m[0],
		}
		var err error
		if v.Begin, err = parseVTECTime(m[7]); err != nil {
			return nil, err
		}
		if v.End, err = parseVTECTime(m[8]); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func parseVTECTime(s string) (*time.Time, error) {
	if s == "000000T0000Z" {
		return nil, nil
	}
	t, err := time.Parse(vtecTime, s)
	if err != nil {
		return nil, fmt.Errorf("vtec time %q: %w", s, err)
	}
	return &t, nil
}

// WFO is the three letter office id.
func (v VTEC) WFO() string {
	if len(v.Office) == 4 {
		return v.Office[1:]
	}
	return v.Office
}

// Key identifies the event across products.
func (v VTEC) Key() string {
	return fmt.Sprintf("%s.%s.%s.%04d", v.WFO(), v.Phenomena, v.Significance, v.ETN)
}

func (v VTEC) String() string {
	return fmt.Sprintf("%s.%s.%s.%s.%04d", v.Action, v.Office, v.Phenomena, v.Significance, v.ETN)
}

// HVTECNWSLI returns the hydrologic VTEC location id in text, if any.
// The placeholder 00000 is treated as absent.
func HVTECNWSLI(text string) string {
	m := hvtecRe.FindStringSubmatch(text)
	if m == nil || m[1] == "00000" {
		return ""
	}
	return m[1]
}
