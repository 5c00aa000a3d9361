package nws

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // zone database for Localize on minimal images
)

// tzOffsets maps local timezone abbreviations to whole hours west of UTC.
var tzOffsets = map[string]int{
	"EDT": 4, "EST": 5,
	"CDT": 5, "CST": 6,
	"MDT": 6, "MST": 7,
	"PDT": 7, "PST": 8,
	"AKDT": 8, "AKST": 9,
	"HDT": 9, "HST": 10,
	"SST": 11,
	"AST": 4, "ADT": 3,
	"GMT": 0, "UTC": 0, "Z": 0,
	"CHST": -10, "CHS": -10, "GST": -10, "GUAM": -10,
}

// tzZones maps the same abbreviations to the zone an office issuing under
// that tag observes, so reports carry the offset in effect on their date.
var tzZones = map[string]string{
	"EDT": "America/New_York", "EST": "America/New_York",
	"CDT": "America/Chicago", "CST": "America/Chicago",
	"MDT": "America/Denver", "MST": "America/Phoenix",
	"PDT": "America/Los_Angeles", "PST": "America/Los_Angeles",
	"AKDT": "America/Anchorage", "AKST": "America/Anchorage",
	"HDT": "America/Adak", "HST": "Pacific/Honolulu",
	"SST": "Pacific/Pago_Pago",
	"AST": "America/Puerto_Rico", "ADT": "America/Halifax",
	"GMT": "UTC", "UTC": "UTC", "Z": "UTC",
	"CHST": "Pacific/Guam", "CHS": "Pacific/Guam", "GST": "Pacific/Guam", "GUAM": "Pacific/Guam",
}

// FixedOffset returns the hours west of UTC for a timezone abbreviation.
func FixedOffset(abbr string) (int, error) {
	off, ok := tzOffsets[strings.ToUpper(strings.TrimSpace(abbr))]
	if !ok {
		return 0, fmt.Errorf("%w: unknown timezone %q", ErrAmbiguousTime, abbr)
	}
	return off, nil
}

// Localize converts a naive local wall time to UTC using the zone implied
// by abbr. Unknown abbreviations are an error; no zone is ever guessed.
func Localize(naive time.Time, abbr string) (time.Time, error) {
	abbr = strings.ToUpper(strings.TrimSpace(abbr))
	name, ok := tzZones[abbr]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: unknown timezone %q", ErrAmbiguousTime, abbr)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		off := tzOffsets[abbr]
		loc = time.FixedZone(abbr, -off*3600)
	}
	local := time.Date(naive.Year(), naive.Month(), naive.Day(), naive.Hour(), naive.Minute(), 0, 0, loc)
	return local.UTC(), nil
}

// InZone returns t in the zone implied by abbr.
func InZone(t time.Time, abbr string) (time.Time, error) {
	abbr = strings.ToUpper(strings.TrimSpace(abbr))
	name, ok := tzZones[abbr]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: unknown timezone %q", ErrAmbiguousTime, abbr)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		loc = time.FixedZone(abbr, -tzOffsets[abbr]*3600)
	}
	return t.In(loc), nil
}

var (
	clock12Re = regexp.MustCompile(`^([0-9]{1,2}):?([0-9]{2})\s*(AM|PM)$`)
	clock24Re = regexp.MustCompile(`^([0-9]{1,2}):?([0-9]{2})$`)
)

// ParseLocalClock combines a clock tag ("0914 PM", "14:58") and an
// MM/DD/YYYY date into a naive wall time.
func ParseLocalClock(clock, date string) (time.Time, error) {
	day, err := time.Parse("01/02/2006", strings.TrimSpace(date))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	clock = strings.ToUpper(strings.TrimSpace(clock))
	var hour, minute int
	if m := clock12Re.FindStringSubmatch(clock); m != nil {
		hour, _ = strconv.Atoi(m[1])
		minute, _ = strconv.Atoi(m[2])
		if hour < 1 || hour > 12 {
			return time.Time{}, fmt.Errorf("parse clock %q: hour out of range", clock)
		}
		hour %= 12
		if m[3] == "PM" {
			hour += 12
		}
	} else if m := clock24Re.FindStringSubmatch(clock); m != nil {
		hour, _ = strconv.Atoi(m[1])
		minute, _ = strconv.Atoi(m[2])
		if hour > 23 {
			return time.Time{}, fmt.Errorf("parse clock %q: hour out of range", clock)
		}
	} else {
		return time.Time{}, fmt.Errorf("parse clock %q: unrecognized", clock)
	}
	if minute > 59 {
		return time.Time{}, fmt.Errorf("parse clock %q: minute out of range", clock)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.UTC), nil
}

// ResolveDDHHMM rewrites the day, hour and minute of ref with the values
// from a DDHHMM fragment. A small day against a reference near the end of
// the month lands in the following month, and the reverse lands in the
// previous one.
func ResolveDDHHMM(ddhhmm string, ref time.Time) (time.Time, error) {
	if len(ddhhmm) != 6 {
		return time.Time{}, fmt.Errorf("%w: bad ddhhmm %q", ErrEnvelopeParse, ddhhmm)
	}
	n, err := strconv.Atoi(ddhhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad ddhhmm %q", ErrEnvelopeParse, ddhhmm)
	}
	day, hour, minute := n/10000, n/100%100, n%100
	if day < 1 || day > 31 || hour > 23 || minute > 59 {
		return time.Time{}, fmt.Errorf("%w: bad ddhhmm %q", ErrEnvelopeParse, ddhhmm)
	}
	ref = ref.UTC()
	switch {
	case day < 5 && ref.Day() > 25:
		ref = ref.AddDate(0, 0, 15)
	case day > 25 && ref.Day() < 5:
		ref = ref.AddDate(0, 0, -15)
	}
	if day > daysIn(ref.Year(), ref.Month()) {
		return time.Time{}, fmt.Errorf("%w: day %d out of range for %s", ErrEnvelopeParse, day, ref.Format("2006-01"))
	}
	return time.Date(ref.Year(), ref.Month(), day, hour, minute, 0, 0, time.UTC), nil
}

// ResolveHHMM places an HHMM clock on the reference day, advancing one day
// when the hour falls before the reference hour.
func ResolveHHMM(hhmm string, ref time.Time) (time.Time, error) {
	if len(hhmm) != 4 {
		return time.Time{}, fmt.Errorf("bad hhmm %q", hhmm)
	}
	n, err := strconv.Atoi(hhmm)
	if err != nil || n/100 > 23 || n%100 > 59 {
		return time.Time{}, fmt.Errorf("bad hhmm %q", hhmm)
	}
	ref = ref.UTC()
	t := time.Date(ref.Year(), ref.Month(), ref.Day(), n/100, n%100, 0, 0, time.UTC)
	if n/100 < ref.Hour() {
		t = t.AddDate(0, 0, 1)
	}
	return t, nil
}
