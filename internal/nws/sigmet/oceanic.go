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
	oceanicRe   = regexp.MustCompile(`SIGMET ([A-Z]+) ([0-9]+) VALID ([0-9]{6})/([0-9]{6})`)
	pairRe      = regexp.MustCompile(`([NS])([0-9]{2})([0-9]{2}) ?([EW])([0-9]{3})([0-9]{2})`)
	eitherSide  = regexp.MustCompile(`([0-9]+) ?NM EITHER SIDE OF`)
	withinOfRe  = regexp.MustCompile(`WI ([0-9]+) ?NM OF`)
	cancelledRe = regexp.MustCompile(`CNL SIGMET`)
)

type oceanic struct{}

func (oceanic) parse(prod *nws.Product) ([]*SIGMET, error) {
	text := squash(prod.Text)
	m := oceanicRe.FindStringSubmatchIndex(text)
	if m == nil {
		if cancelledRe.MatchString(text) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: no SIGMET header", nws.ErrSigmetParse)
	}
	name, num := text[m[2]:m[3]], text[m[4]:m[5]]
	body := text[m[1]:]

	pts := parsePairs(body)
	if len(pts) == 0 {
		if cancelledRe.MatchString(body) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: SIGMET %s %s has no coordinates", nws.ErrSigmetParse, name, num)
	}

	sts, err := nws.ResolveDDHHMM(text[m[6]:m[7]], prod.Valid)
	if err != nil {
		return nil, err
	}
	ets, err := nws.ResolveDDHHMM(text[m[8]:m[9]], prod.Valid)
	if err != nil {
		return nil, err
	}

	var poly orb.Polygon
	switch {
	case eitherSide.MatchString(body):
		width, _ := strconv.ParseFloat(eitherSide.FindStringSubmatch(body)[1], 64)
		poly, err = geo.Corridor(pts, width)
	case withinOfRe.MatchString(body) && len(pts) == 1:
		dist, _ := strconv.ParseFloat(withinOfRe.FindStringSubmatch(body)[1], 64)
		poly, err = geo.Buffer(pts[0], dist*1.609347/100)
	case len(pts) >= 3:
		poly = geo.ClosePolygon(orb.Polygon{orb.Ring(pts)})
	default:
		err = fmt.Errorf("%w: %d coordinates do not form an area", nws.ErrSigmetParse, len(pts))
	}
	if err != nil {
		return nil, err
	}
	if err := geo.Validate(poly); err != nil {
		prod.Warnf("oceanic SIGMET %s %s: %v", name, num, err)
		return nil, nil
	}

	return []*SIGMET{{
		Type:  TypeOceanic,
		Label: name + " " + num,
		STS:   sts,
		ETS:   ets,
		Geom:  poly,
		Raw:   prod.Text,
	}}, nil
}

// parsePairs extracts [NS]DDDD [EW]DDDDD coordinates in textual order.
func parsePairs(text string) []orb.Point {
	var pts []orb.Point
	for _, m := range pairRe.FindAllStringSubmatch(text, -1) {
		lat := atof(m[2]) + atof(m[3])/100
		lon := atof(m[5]) + atof(m[6])/100
		if m[1] == "S" {
			lat = -lat
		}
		if m[4] == "W" {
			lon = -lon
		}
		pts = append(pts, orb.Point{lon, lat})
	}
	return pts
}

func atof(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

// squash joins lines and collapses runs of whitespace.
func squash(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
