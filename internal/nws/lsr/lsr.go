// Package lsr decodes Local Storm Report bulletins.
package lsr

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"

	"github.com/couchcryptid/nws-text-ingest/internal/cache"
	"github.com/couchcryptid/nws-text-ingest/internal/nws"
)

// Report is one local storm report.
type Report struct {
	ValidLocal time.Time // naive wall time
	ValidUTC   time.Time // zero when the bulletin timezone is unknown
	TZ         string
	TypeText   string
	DBType     string
	Geometry   orb.Point
	City       string
	County     string
	State      string
	Source     string
	Magnitude  Magnitude
	Remark     string
	WFO        string
	Duplicate  bool
	Summary    bool

	ProductID    string
	ProductValid time.Time
}

// Bulletin is the set of reports decoded from one product.
type Bulletin struct {
	Product *nws.Product
	Reports []*Report
}

// Parser decodes LSR bulletins. A Parser is safe to share across products;
// it remembers which unparseable magnitudes it already warned about.
type Parser struct {
	layout     Layout
	complained *cache.LRU[string, struct{}]
}

// Option configures a Parser.
type Option func(*Parser)

// WithLayout overrides the column layout.
func WithLayout(l Layout) Option {
	return func(p *Parser) { p.layout = l }
}

// WithComplaintMemory bounds how many unparsed magnitude strings are remembered.
func WithComplaintMemory(n int) Option {
	return func(p *Parser) { p.complained = cache.NewLRU[string, struct{}](n) }
}

// NewParser creates a Parser using DefaultLayout.
func NewParser(opts ...Option) *Parser {
	p := &Parser{layout: DefaultLayout, complained: cache.NewLRU[string, struct{}](1000)}
	for _, o := range opts {
		o(p)
	}
	return p
}

var (
	clockStartRe = regexp.MustCompile(`^([0-9]{3,4} +[AP]M|[0-9]{1,2}:[0-9]{2})\b`)
	dateStartRe  = regexp.MustCompile(`^[0-9]{2}/[0-9]{2}/[0-9]{4}`)
	latLonRe     = regexp.MustCompile(`([0-9]+\.?[0-9]*)([NS])\s+([0-9]+\.?[0-9]*)([EW])`)
)

// Parse decodes every report block in the product. Per report failures are
// recorded as product warnings.
func (p *Parser) Parse(prod *nws.Product) (*Bulletin, error) {
	b := &Bulletin{Product: prod}
	summary := strings.Contains(prod.Text, "...SUMMARY")
	lines := strings.Split(prod.Text, "\n")
	seen := make(map[string]bool)

	start := 0
	for i, l := range lines {
		if strings.HasPrefix(l, "..TIME") {
			start = i + 1
			break
		}
	}
	for i := start; i < len(lines); i++ {
		if !clockStartRe.MatchString(lines[i]) {
			continue
		}
		if i+1 >= len(lines) || !dateStartRe.MatchString(lines[i+1]) {
			if latLonRe.MatchString(lines[i]) {
				prod.Warnf("%v: %q", nws.ErrShortReport, strings.TrimSpace(lines[i]))
			}
			continue
		}
		block := [2]string{lines[i], lines[i+1]}
		var remark []string
		j := i + 2
		for ; j < len(lines); j++ {
			l := strings.TrimSpace(lines[j])
			if l == "&&" || l == "$$" || (clockStartRe.MatchString(lines[j]) && j+1 < len(lines) && dateStartRe.MatchString(lines[j+1])) {
				break
			}
			if l != "" {
				remark = append(remark, l)
			}
		}
		i = j - 1

		r, err := p.parseBlock(prod, block, strings.Join(remark, " "))
		if err != nil {
			prod.Warnf("LSR block %q: %v", strings.TrimSpace(block[0]), err)
			continue
		}
		r.Summary = summary
		key := fmt.Sprintf("%s|%s|%s|%.4f|%.4f", r.WFO, r.TypeText, r.ValidUTC.Format(time.RFC3339), r.Geometry[0], r.Geometry[1])
		if seen[key] {
			r.Duplicate = true
		}
		seen[key] = true
		b.Reports = append(b.Reports, r)
	}
	return b, nil
}

func (p *Parser) parseBlock(prod *nws.Product, block [2]string, remark string) (*Report, error) {
	l := p.layout
	r := &Report{
		TypeText:     strings.ToUpper(l.TypeText.slice(block)),
		City:         l.City.slice(block),
		County:       l.County.slice(block),
		State:        l.State.slice(block),
		Source:       l.Source.slice(block),
		Remark:       remark,
		WFO:          prod.WFO(),
		TZ:           prod.TZAbbr,
		ProductID:    prod.ProductID(),
		ProductValid: prod.Valid,
	}
	r.DBType, _ = DBType(r.TypeText)

	m := latLonRe.FindStringSubmatch(l.LatLon.slice(block))
	if m == nil {
		return nil, fmt.Errorf("no lat/lon in %q", l.LatLon.slice(block))
	}
	lat, _ := strconv.ParseFloat(m[1], 64)
	lon, _ := strconv.ParseFloat(m[3], 64)
	if m[2] == "S" {
		lat = -lat
	}
	if m[4] == "W" {
		lon = -lon
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, fmt.Errorf("%w: location %.2f %.2f out of range", nws.ErrInvalidGeometry, lat, lon)
	}
	r.Geometry = orb.Point{lon, lat}

	local, err := nws.ParseLocalClock(l.Clock.slice(block), l.Date.slice(block))
	if err != nil {
		return nil, err
	}
	r.ValidLocal = local
	if utc, err := nws.Localize(local, prod.TZAbbr); err == nil {
		r.ValidUTC = utc
	} else {
		prod.Warnf("LSR %s %s: %v", r.TypeText, r.City, err)
	}

	mag, ok := ParseMagnitude(l.Magnitude.slice(block))
	if !ok && !p.complained.Seen(r.WFO+"|"+mag.Text) {
		prod.Warnf("LSR magnitude %q from %s not understood", mag.Text, r.WFO)
	}
	r.Magnitude = mag
	if r.Magnitude.Value == nil && iceTypes[r.TypeText] {
		if v, ok := iceAccumulation(remark); ok {
			r.Magnitude.Value = &v
			r.Magnitude.Units = "INCH"
		}
	}
	return r, nil
}

// Delayed reports whether the report was issued more than a day after it
// happened.
func (r *Report) Delayed() bool {
	return !r.ValidUTC.IsZero() && r.ProductValid.Sub(r.ValidUTC) > 24*time.Hour
}
