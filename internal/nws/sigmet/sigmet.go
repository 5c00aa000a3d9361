// Package sigmet decodes oceanic, convective and international SIGMET
// advisories into polygons.
package sigmet

import (
	"fmt"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"

	"github.com/couchcryptid/nws-text-ingest/internal/nws"
)

// Type codes stored in sigmet_type.
const (
	TypeConvective    = "C"
	TypeOceanic       = "O"
	TypeInternational = "I"
)

// SIGMET is one advisory polygon.
type SIGMET struct {
	Type     string
	Label    string
	Center   string
	STS      time.Time
	ETS      time.Time
	Geom     orb.Polygon
	AreaText string
	Centers  []string // CWSU ids, filled by SQL
	Raw      string

	ProductID string
	Now       time.Time
}

// dialect decodes the SIGMETs of one product family.
type dialect interface {
	parse(prod *nws.Product) ([]*SIGMET, error)
}

// Parser selects a dialect from the AFOS id and WMO heading.
type Parser struct {
	oceanic       dialect
	convective    dialect
	international dialect
}

// NewParser creates a Parser resolving convective NWSLIs through locations.
func NewParser(locations nws.LocationProvider) *Parser {
	return &Parser{
		oceanic:       oceanic{},
		convective:    convective{locations: locations},
		international: international{},
	}
}

// Handles reports whether the product is a SIGMET this parser understands.
func Handles(prod *nws.Product) bool {
	return dialectName(prod) != ""
}

func dialectName(prod *nws.Product) string {
	switch {
	case hasAnyPrefix(prod.AFOS, "SIGA", "SIGP", "SIGO"):
		return "oceanic"
	case hasAnyPrefix(prod.AFOS, "SIGC", "SIGE", "SIGW"):
		return "convective"
	case strings.HasPrefix(prod.WMO, "WS"):
		return "international"
	}
	return ""
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// Parse decodes the product. Oceanic products without coordinates fail
// with nws.ErrSigmetParse; undecodable convective sections are dropped with
// a product warning.
func (p *Parser) Parse(prod *nws.Product) ([]*SIGMET, error) {
	var d dialect
	switch dialectName(prod) {
	case "oceanic":
		d = p.oceanic
	case "convective":
		d = p.convective
	case "international":
		d = p.international
	default:
		return nil, fmt.Errorf("%w: %s %s is not a SIGMET", nws.ErrUnknownProduct, prod.WMO, prod.AFOS)
	}
	sigs, err := d.parse(prod)
	if err != nil {
		return nil, err
	}
	for _, s := range sigs {
		s.ProductID = prod.ProductID()
		s.Now = prod.Now
		if s.Center == "" {
			s.Center = prod.Source
		}
	}
	return sigs, nil
}

func (s *SIGMET) kindLabel() string {
	switch s.Type {
	case TypeConvective:
		return "Convective SIGMET"
	case TypeInternational:
		return "International SIGMET"
	}
	return "SIGMET"
}

// Notification renders the advisory for chat, web and social channels.
func (s *SIGMET) Notification(baseURL string) nws.Notification {
	url := baseURL + s.ProductID
	head := fmt.Sprintf("%s issues %s %s", s.Center, s.kindLabel(), s.Label)
	span := fmt.Sprintf("from %s till %s UTC", s.STS.Format("1504"), s.ETS.Format("1504"))
	if s.AreaText != "" {
		span += " for " + s.AreaText
	}
	return nws.Notification{
		Plain: fmt.Sprintf("%s %s %s", head, span, url),
		HTML:  fmt.Sprintf(`<p>%s <a href="%s">%s</a> %s</p>`, s.Center, url, strings.TrimPrefix(head, s.Center+" "), span),
		Extras: nws.Extras{
			Channels:  nws.JoinChannels("SIGMET."+s.Center, "SIGMET.ALL", "SIGMET."+strings.ReplaceAll(s.Label, " ", "_")),
			Twitter:   nws.Tweet(head+" "+span, url, nws.MaxTwitterLength),
			Geometry:  wkt.MarshalString(s.Geom),
			ProductID: s.ProductID,
		},
	}
}
