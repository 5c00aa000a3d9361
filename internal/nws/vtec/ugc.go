package vtec

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/nws-text-ingest/internal/nws"
)

var (
	ugcStartRe = regexp.MustCompile(`^[A-Z]{2}[CZ]([0-9]{3}|ALL)[->]`)
	ugcEndRe   = regexp.MustCompile(`[0-9]{6}-$`)
	ugcCodeRe  = regexp.MustCompile(`^([A-Z]{2}[CZ])?([0-9]{3}|ALL)$`)
)

// FindUGCLine returns the UGC block of a segment joined onto one line, and
// the index of the line after it. ok is false when no block is present.
func FindUGCLine(lines []string) (line string, next int, ok bool) {
	for i, l := range lines {
		if !ugcStartRe.MatchString(strings.TrimSpace(l)) {
			continue
		}
		var b strings.Builder
		for j := i; j < len(lines); j++ {
			part := strings.TrimSpace(lines[j])
			b.WriteString(part)
			if ugcEndRe.MatchString(part) {
				return b.String(), j + 1, true
			}
		}
		return b.String(), len(lines), true
	}
	return "", 0, false
}

// ParseUGCs expands a UGC line such as "IAC001-003>007-IAZ010-011-011200-"
// into codes and its purge time, resolved against ref.
func ParseUGCs(line string, ref time.Time) ([]string, *time.Time, error) {
	tokens := strings.Split(strings.TrimSuffix(strings.TrimSpace(line), "-"), "-")
	var codes []string
	var purge *time.Time
	prefix := ""
	for i, tok := range tokens {
		if tok == "" {
			continue
		}
		if i == len(tokens)-1 && len(tok) == 6 && isDigits(tok) {
			t, err := nws.ResolveDDHHMM(tok, ref)
			if err != nil {
				return nil, nil, err
			}
			purge = &t
			continue
		}
		lo, hi, isRange := strings.Cut(tok, ">")
		m := ugcCodeRe.FindStringSubmatch(lo)
		if m == nil {
			return nil, nil, fmt.Errorf("bad ugc token %q in %q", tok, line)
		}
		if m[1] != "" {
			prefix = m[1]
		}
		if prefix == "" {
			return nil, nil, fmt.Errorf("ugc token %q has no state prefix", tok)
		}
		if !isRange {
			codes = append(codes, prefix+m[2])
			continue
		}
		hm := ugcCodeRe.FindStringSubmatch(hi)
		if hm == nil || m[2] == "ALL" || hm[2] == "ALL" {
			return nil, nil, fmt.Errorf("bad ugc range %q", tok)
		}
		from, _ := strconv.Atoi(m[2])
		to, _ := strconv.Atoi(hm[2])
		for n := from; n <= to; n++ {
			codes = append(codes, fmt.Sprintf("%s%03d", prefix, n))
		}
	}
	return codes, purge, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
