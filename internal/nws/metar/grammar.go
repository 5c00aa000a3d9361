// Package metar decodes METAR/SPECI collectives into observations.
package metar

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Report is one decoded METAR or SPECI.
type Report struct {
	Code     string
	Type     string // METAR or SPECI
	Station  string
	Day      int
	Time     time.Time
	Modifier string // AUTO or COR

	WindDir      *int
	WindSpeed    *int // knots
	WindGust     *int // knots
	WindVariable bool

	Visibility *float64 // statute miles
	Weather    []string
	Sky        []SkyLayer
	Temp       *float64 // celsius
	Dew        *float64
	Altimeter  *float64 // inHg
	SLP        *float64 // hPa
	Precip1h   *float64 // inches
	PeakWind   *PeakWind
	Remarks    string
}

// SkyLayer is one cloud group.
type SkyLayer struct {
	Cover  string
	Height *int // feet
}

// PeakWind is the PK WND remark.
type PeakWind struct {
	Dir   int
	Speed int
	Time  time.Time
}

// UnparsedError lists body groups the grammar did not understand.
type UnparsedError struct {
	Groups []string
}

func (e *UnparsedError) Error() string {
	return fmt.Sprintf("Unparsed groups in body '%s'", strings.Join(e.Groups, " "))
}

// DayRangeError is returned when the report day does not exist in the
// month it was decoded against.
type DayRangeError struct {
	Day   int
	Year  int
	Month time.Month
}

func (e *DayRangeError) Error() string {
	return fmt.Sprintf("day is out of range for month: %d in %d-%02d", e.Day, e.Year, e.Month)
}

var (
	stationRe  = regexp.MustCompile(`^[A-Z][A-Z0-9]{3}$`)
	timeRe     = regexp.MustCompile(`^([0-3][0-9])([0-2][0-9])([0-5][0-9])Z$`)
	windRe     = regexp.MustCompile(`^(VRB|[0-9]{3})([0-9]{2,3})(?:G([0-9]{2,3}))?(KT|MPS)$`)
	varWindRe  = regexp.MustCompile(`^[0-9]{3}V[0-9]{3}$`)
	visRe      = regexp.MustCompile(`^([MP])?([0-9]+)?(?:/([0-9]+))?SM$`)
	wholeRe    = regexp.MustCompile(`^[0-9]$`)
	metricRe   = regexp.MustCompile(`^[0-9]{4}$`)
	rvrRe      = regexp.MustCompile(`^R[0-9]{2}[LRC]?/`)
	weatherRe  = regexp.MustCompile(`^(-|\+|VC)?(MI|PR|BC|DR|BL|SH|TS|FZ)?((?:DZ|RA|SN|SG|IC|PL|GR|GS|UP|BR|FG|FU|VA|DU|SA|HZ|PY|PO|SQ|FC|SS|DS)*)$`)
	skyRe      = regexp.MustCompile(`^(FEW|SCT|BKN|OVC|VV)([0-9]{3}|///)(CB|TCU)?$`)
	clearRe    = regexp.MustCompile(`^(CLR|SKC|NSC|NCD|CAVOK)$`)
	tempRe     = regexp.MustCompile(`^(M?[0-9]{2})/(M?[0-9]{2})?$`)
	altimRe    = regexp.MustCompile(`^([AQ])([0-9]{4})$`)
	slpRe      = regexp.MustCompile(`^SLP([0-9]{3})$`)
	precipRe   = regexp.MustCompile(`^P([0-9]{4})$`)
	peakWindRe = regexp.MustCompile(`PK WND ([0-9]{3})([0-9]{2,3})/([0-9]{2})?([0-9]{2})`)
)

var ignored = map[string]bool{"NOSIG": true, "$": true, "RTD": true}

// Decode parses code, carrying year and month in from the product. Body
// groups that match no rule are returned as an *UnparsedError.
func Decode(code string, year int, month time.Month) (*Report, error) {
	tokens := strings.Fields(code)
	r := &Report{Code: code, Type: "METAR"}
	if len(tokens) > 0 && (tokens[0] == "METAR" || tokens[0] == "SPECI") {
		r.Type = tokens[0]
		tokens = tokens[1:]
	}
	if len(tokens) < 2 || !stationRe.MatchString(tokens[0]) {
		return nil, fmt.Errorf("metar: no station in %q", code)
	}
	r.Station = tokens[0]

	m := timeRe.FindStringSubmatch(tokens[1])
	if m == nil {
		return nil, fmt.Errorf("metar: no observation time in %q", code)
	}
	r.Day, _ = strconv.Atoi(m[1])
	hh, _ := strconv.Atoi(m[2])
	mi, _ := strconv.Atoi(m[3])
	if r.Day < 1 || r.Day > time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day() {
		return nil, &DayRangeError{Day: r.Day, Year: year, Month: month}
	}
	r.Time = time.Date(year, month, r.Day, hh, mi, 0, 0, time.UTC)

	body := tokens[2:]
	for i, t := range body {
		if t == "RMK" {
			r.Remarks = strings.Join(body[i+1:], " ")
			body = body[:i]
			break
		}
	}

	var unparsed []string
	for i := 0; i < len(body); i++ {
		t := body[i]
		switch {
		case t == "AUTO" || t == "COR":
			r.Modifier = t
		case varWindRe.MatchString(t):
			r.WindVariable = true
		case ignored[t] || rvrRe.MatchString(t):
		case windRe.MatchString(t):
			r.decodeWind(windRe.FindStringSubmatch(t))
		case wholeRe.MatchString(t) && i+1 < len(body) && visRe.MatchString(body[i+1]):
			whole, _ := strconv.ParseFloat(t, 64)
			r.decodeVisibility(visRe.FindStringSubmatch(body[i+1]), whole)
			i++
		case visRe.MatchString(t):
			r.decodeVisibility(visRe.FindStringSubmatch(t), 0)
		case metricRe.MatchString(t):
			meters, _ := strconv.ParseFloat(t, 64)
			sm := meters / 1609.344
			r.Visibility = &sm
		case clearRe.MatchString(t):
			r.Sky = append(r.Sky, SkyLayer{Cover: t})
		case skyRe.MatchString(t):
			sm := skyRe.FindStringSubmatch(t)
			layer := SkyLayer{Cover: sm[1]}
			if h, err := strconv.Atoi(sm[2]); err == nil {
				h *= 100
				layer.Height = &h
			}
			r.Sky = append(r.Sky, layer)
		case tempRe.MatchString(t):
			tm := tempRe.FindStringSubmatch(t)
			r.Temp = signedTemp(tm[1])
			r.Dew = signedTemp(tm[2])
		case altimRe.MatchString(t):
			am := altimRe.FindStringSubmatch(t)
			v, _ := strconv.ParseFloat(am[2], 64)
			if am[1] == "A" {
				v /= 100
			} else {
				v *= 0.02953
			}
			r.Altimeter = &v
		case t != "" && weatherRe.MatchString(t) && t != "-" && t != "+" && t != "VC":
			r.Weather = append(r.Weather, t)
		default:
			unparsed = append(unparsed, t)
		}
	}
	if len(unparsed) > 0 {
		return nil, &UnparsedError{Groups: unparsed}
	}
	r.decodeRemarks()
	return r, nil
}

func (r *Report) decodeWind(m []string) {
	speed, _ := strconv.Atoi(m[2])
	gust := -1
	if m[3] != "" {
		gust, _ = strconv.Atoi(m[3])
	}
	if m[4] == "MPS" {
		speed = int(float64(speed)*1.944 + 0.5)
		if gust > 0 {
			gust = int(float64(gust)*1.944 + 0.5)
		}
	}
	if m[1] != "VRB" {
		dir, _ := strconv.Atoi(m[1])
		r.WindDir = &dir
	} else {
		r.WindVariable = true
	}
	r.WindSpeed = &speed
	if gust >= 0 {
		r.WindGust = &gust
	}
}

func (r *Report) decodeVisibility(m []string, whole float64) {
	v := whole
	switch {
	case m[3] != "":
		num, _ := strconv.ParseFloat(m[2], 64)
		den, _ := strconv.ParseFloat(m[3], 64)
		if den > 0 {
			v += num / den
		}
	case m[2] != "":
		n, _ := strconv.ParseFloat(m[2], 64)
		v += n
	}
	r.Visibility = &v
}

func signedTemp(s string) *float64 {
	if s == "" {
		return nil
	}
	neg := strings.HasPrefix(s, "M")
	v, err := strconv.ParseFloat(strings.TrimPrefix(s, "M"), 64)
	if err != nil {
		return nil
	}
	if neg {
		v = -v
	}
	return &v
}

func (r *Report) decodeRemarks() {
	if r.Remarks == "" {
		return
	}
	if m := peakWindRe.FindStringSubmatch(r.Remarks); m != nil {
		dir, _ := strconv.Atoi(m[1])
		speed, _ := strconv.Atoi(m[2])
		hour := r.Time.Hour()
		if m[3] != "" {
			hour, _ = strconv.Atoi(m[3])
		}
		minute, _ := strconv.Atoi(m[4])
		at := time.Date(r.Time.Year(), r.Time.Month(), r.Time.Day(), hour, minute, 0, 0, time.UTC)
		if at.After(r.Time) {
			at = at.AddDate(0, 0, -1)
		}
		r.PeakWind = &PeakWind{Dir: dir, Speed: speed, Time: at}
	}
	for _, t := range strings.Fields(r.Remarks) {
		if m := slpRe.FindStringSubmatch(t); m != nil {
			v, _ := strconv.ParseFloat(m[1], 64)
			v /= 10
			if v < 50 {
				v += 1000
			} else {
				v += 900
			}
			r.SLP = &v
		}
		if m := precipRe.FindStringSubmatch(t); m != nil {
			v, _ := strconv.ParseFloat(m[1], 64)
			v /= 100
			r.Precip1h = &v
		}
	}
}

// MaxWind returns the strongest of gust and peak wind, with its time.
func (r *Report) MaxWind() (int, time.Time) {
	speed, at := 0, r.Time
	if r.WindGust != nil {
		speed = *r.WindGust
	}
	if r.PeakWind != nil && r.PeakWind.Speed > speed {
		speed, at = r.PeakWind.Speed, r.PeakWind.Time
	}
	return speed, at
}
