package nws

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

var (
	wmoRe  = regexp.MustCompile(`(?m)^([A-Z0-9]{4,6}) ([A-Z]{4}) ([0-3][0-9])([0-2][0-9])([0-5][0-9])[ \t]*([ACR][ACMORT][A-Z])?[ \t]*$`)
	afosRe = regexp.MustCompile(`^[A-Z0-9 ]{3,6}$`)
	// 1015 PM CDT FRI APR 29 2005
	mndRe = regexp.MustCompile(`(?m)^([0-9]{3,4}) (AM|PM) ([A-Z]{2,4}) [A-Z]{3} ([A-Z]{3}) +([0-9]{1,2}) ([0-9]{4})`)
)

// DefaultAllowList holds centers known to send four character TTAAII
// headers; no warning is recorded for them.
var DefaultAllowList = []string{"KWNB", "KWBC", "KNHC", "PHFO"}

// Product is a decoded WMO teletype bulletin.
type Product struct {
	Raw      string
	Text     string // CRCRLF normalized to LF
	Source   string // CCCC issuing center
	WMO      string // TTAAII
	DDHHMM   string
	BBB      string
	AFOS     string
	TZAbbr   string // from the issuance line, when present
	Valid    time.Time
	Now      time.Time
	Warnings []string
}

// ParseProduct decodes the WMO envelope of raw and resolves its issuance
// time against now.
func ParseProduct(raw string, now time.Time) (*Product, error) {
	text := normalizeText(raw)
	head := text
	if len(head) > 100 {
		head = head[:100]
	}
	loc := wmoRe.FindStringSubmatchIndex(head)
	if loc == nil {
		return nil, fmt.Errorf("%w: no header in first 100 bytes", ErrEnvelopeParse)
	}
	sub := func(i int) string {
		if loc[2*i] < 0 {
			return ""
		}
		return head[loc[2*i]:loc[2*i+1]]
	}

	p := &Product{
		Raw:    raw,
		Text:   text,
		WMO:    sub(1),
		Source: sub(2),
		DDHHMM: sub(3) + sub(4) + sub(5),
		BBB:    sub(6),
		Now:    now.UTC(),
	}
	if len(p.WMO) == 4 {
		if !slices.Contains(DefaultAllowList, p.Source) {
			p.Warnf("WMO ttaaii %q padded to six characters", p.WMO)
		}
		p.WMO += "00"
	}

	dd, _ := strconv.Atoi(sub(3))
	hh, _ := strconv.Atoi(sub(4))
	mi, _ := strconv.Atoi(sub(5))
	valid, err := closestDDHHMM(dd, hh, mi, p.Now)
	if err != nil {
		return nil, err
	}
	p.Valid = valid

	rest := text[loc[1]:]
	rest = strings.TrimPrefix(rest, "\n")
	if line, _, _ := strings.Cut(rest, "\n"); afosRe.MatchString(strings.TrimRight(line, " ")) {
		p.AFOS = strings.TrimSpace(line)
	}
	if m := mndRe.FindStringSubmatch(text); m != nil {
		p.TZAbbr = m[3]
	}
	return p, nil
}

func normalizeText(raw string) string {
	s := strings.TrimLeft(raw, "\x01\r\n ")
	s = strings.ReplaceAll(s, "\r\r\n", "\n")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.TrimRight(s, "\x03")
}

// closestDDHHMM picks, among the previous, current and next month, the
// calendar date whose day matches dd and which lies closest to now.
func closestDDHHMM(dd, hh, mi int, now time.Time) (time.Time, error) {
	if hh > 23 || dd < 1 {
		return time.Time{}, fmt.Errorf("%w: invalid ddhhmm %02d%02d%02d", ErrEnvelopeParse, dd, hh, mi)
	}
	var best time.Time
	var bestDist time.Duration
	for _, delta := range []int{-1, 0, 1} {
		first := time.Date(now.Year(), now.Month()+time.Month(delta), 1, 0, 0, 0, 0, time.UTC)
		if dd > daysIn(first.Year(), first.Month()) {
			continue
		}
		t := time.Date(first.Year(), first.Month(), dd, hh, mi, 0, 0, time.UTC)
		dist := t.Sub(now)
		if dist < 0 {
			dist = -dist
		}
		if best.IsZero() || dist < bestDist {
			best, bestDist = t, dist
		}
	}
	if best.IsZero() {
		return time.Time{}, fmt.Errorf("%w: day %d not valid near %s", ErrEnvelopeParse, dd, now.Format(time.DateOnly))
	}
	return best, nil
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Warnf appends a formatted warning to the product.
func (p *Product) Warnf(format string, args ...any) {
	p.Warnings = append(p.Warnings, fmt.Sprintf(format, args...))
}

// IsCorrection reports whether the product corrects an earlier issuance.
func (p *Product) IsCorrection() bool {
	if strings.HasPrefix(p.BBB, "C") {
		return true
	}
	return strings.Contains(p.Text, "...CORRECTED")
}

// ProductID returns YYYYMMDDHHMM-CCCC-TTAAII-AFOS, suffixed with -BBB when set.
func (p *Product) ProductID() string {
	id := fmt.Sprintf("%s-%s-%s-%s", p.Valid.Format("200601021504"), p.Source, p.WMO, p.AFOS)
	if p.BBB != "" {
		id += "-" + p.BBB
	}
	return id
}

// WFO returns the three letter office implied by the issuing center.
func (p *Product) WFO() string {
	if len(p.Source) == 4 && (p.Source[0] == 'K' || p.Source[0] == 'P' || p.Source[0] == 'T') {
		return p.Source[1:]
	}
	return p.Source
}

// AFOSPrefix returns the first three characters of the AFOS id.
func (p *Product) AFOSPrefix() string {
	if len(p.AFOS) < 3 {
		return p.AFOS
	}
	return p.AFOS[:3]
}
