package sigmet

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	"github.com/couchcryptid/nws-text-ingest/internal/nws"
	"github.com/couchcryptid/nws-text-ingest/internal/nws/geo"
)

var (
	csHeadRe  = regexp.MustCompile(`^CONVECTIVE SIGMET ([0-9A-Z]+)$`)
	csValidRe = regexp.MustCompile(`^VALID UNTIL ([0-2][0-9][0-5][0-9])Z$`)
	csBodyRe  = regexp.MustCompile(`^(?:FROM )?([0-9A-Z \-]+?) (?:(DMSHG|DVLPG|INTSF) )?(?:(AREA|LINE|ISOL) )?(?:(SEV EMBD|SEV|EMBD) )?TS\b(?: ([0-9]+) NM WIDE)?(?: D([0-9]+))?`)
	csLocRe   = regexp.MustCompile(`^(?:([0-9]*)([NSEW]{1,3}) ?)?([A-Z0-9]{3})$`)
)

type convective struct {
	locations nws.LocationProvider
}

func (c convective) parse(prod *nws.Product) ([]*SIGMET, error) {
	var out []*SIGMET
	for _, section := range strings.Split(prod.Text, "\n\n") {
		lines := nonEmptyLines(section)
		var head []string
		for i, l := range lines {
			if head = csHeadRe.FindStringSubmatch(l); head != nil {
				lines = lines[i:]
				break
			}
		}
		if head == nil {
			continue
		}
		if len(lines) < 4 {
			prod.Warnf("convective SIGMET %s: %v", head[1], nws.ErrSigmetParse)
			continue
		}
		s, err := c.parseSection(prod, head[1], lines)
		if err != nil {
			prod.Warnf("convective SIGMET %s: %v", head[1], err)
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (c convective) parseSection(prod *nws.Product, label string, lines []string) (*SIGMET, error) {
	valid := csValidRe.FindStringSubmatch(lines[1])
	if valid == nil {
		return nil, fmt.Errorf("no VALID UNTIL in %q", lines[1])
	}
	ets, err := nws.ResolveHHMM(valid[1], prod.Valid)
	if err != nil {
		return nil, err
	}
	states := lines[2]
	body := strings.Join(lines[3:], " ")
	m := csBodyRe.FindStringSubmatch(body)
	if m == nil {
		return nil, fmt.Errorf("unrecognized description %q", body)
	}

	pts, err := c.resolve(strings.Split(m[1], "-"))
	if err != nil {
		return nil, err
	}

	var poly orb.Polygon
	switch {
	case m[3] == "LINE":
		width := 20.0
		if m[5] != "" {
			width, _ = strconv.ParseFloat(m[5], 64)
		}
		poly, err = geo.Corridor(pts, width/2)
	case m[3] == "ISOL" || m[6] != "":
		diameter := 10.0
		if m[6] != "" {
			diameter, _ = strconv.ParseFloat(m[6], 64)
		}
		poly = geo.Isolate(pts[0], diameter)
	default:
		if len(pts) < 3 {
			return nil, fmt.Errorf("%w: area with %d points", nws.ErrInvalidGeometry, len(pts))
		}
		poly = geo.ClosePolygon(orb.Polygon{orb.Ring(pts)})
	}
	if err != nil {
		return nil, err
	}
	if err := geo.Validate(poly); err != nil {
		return nil, err
	}

	return &SIGMET{
		Type:     TypeConvective,
		Label:    label,
		STS:      prod.Valid,
		ETS:      ets,
		Geom:     poly,
		AreaText: states,
		Raw:      strings.Join(lines, "\n"),
	}, nil
}

// resolve turns [distance][direction] NWSLI tokens into points.
func (c convective) resolve(tokens []string) ([]orb.Point, error) {
	pts := make([]orb.Point, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		m := csLocRe.FindStringSubmatch(tok)
		if m == nil {
			return nil, fmt.Errorf("bad location token %q", tok)
		}
		loc, ok := c.locations.Lookup(m[3])
		if !ok {
			return nil, fmt.Errorf("unknown location %q", m[3])
		}
		lon, lat := loc.Lon, loc.Lat
		if m[2] != "" {
			dist := 0.0
			if m[1] != "" {
				dist, _ = strconv.ParseFloat(m[1], 64)
			}
			var err error
			lon, lat, err = geo.Offset(lon, lat, m[2], dist)
			if err != nil {
				return nil, err
			}
		}
		pts = append(pts, orb.Point{lon, lat})
	}
	return pts, nil
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
