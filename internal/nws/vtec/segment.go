package vtec

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"

	"github.com/couchcryptid/nws-text-ingest/internal/nws"
)

var (
	headlineRe = regexp.MustCompile(`(?ms)^\.\.\.(.+?)\.\.\.`)
	latLonRe   = regexp.MustCompile(`LAT\.\.\.LON((?:\s+[0-9]{4,5})+)`)
	emergRe    = regexp.MustCompile(`(TORNADO|FLASH\s+FLOOD)\s+EMERGENCY`)
	pdsRe      = regexp.MustCompile(`PARTICULARLY\s+DANGEROUS\s+SITUATION`)
)

// Segment is the text between $$ markers together with what it encodes.
type Segment struct {
	Index      int
	Text       string
	UGCs       []string
	Purge      *time.Time
	VTECs      []VTEC
	HVTECNWSLI string
	Headline   string
	Emergency  bool
	PDS        bool
	Forecaster string
	Polygon    orb.Polygon // storm based warning, when a LAT...LON block is present
}

// Segments splits the product on $$ and decodes each segment. Segments
// without a UGC block are skipped.
func Segments(prod *nws.Product) ([]*Segment, error) {
	var out []*Segment
	for i, text := range strings.Split(prod.Text, "$$") {
		lines := strings.Split(text, "\n")
		ugcLine, next, ok := FindUGCLine(lines)
		if !ok {
			continue
		}
		ugcs, purge, err := ParseUGCs(ugcLine, prod.Valid)
		if err != nil {
			prod.Warnf("segment %d: %v", i, err)
			continue
		}
		vtecs, err := ParseVTECs(text)
		if err != nil {
			prod.Warnf("segment %d: %v", i, err)
			continue
		}
		body := strings.Join(lines[next:], "\n")
		seg := &Segment{
			Index:      i,
			Text:       text,
			UGCs:       ugcs,
			Purge:      purge,
			VTECs:      vtecs,
			HVTECNWSLI: HVTECNWSLI(text),
			Emergency:  emergRe.MatchString(body),
			PDS:        pdsRe.MatchString(body),
			Forecaster: lastLine(text),
			Polygon:    parseLatLon(body),
		}
		if m := headlineRe.FindStringSubmatch(body); m != nil {
			seg.Headline = strings.Join(strings.Fields(m[1]), " ")
		}
		out = append(out, seg)
	}
	return out, nil
}

func lastLine(text string) string {
	lines := strings.Split(strings.TrimRight(text, "\n "), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" && l != "&&" {
			return l
		}
	}
	return ""
}

// parseLatLon decodes "LAT...LON 4150 9377 ..." pairs in hundredths of a
// degree, west longitude positive, into a closed ring.
func parseLatLon(text string) orb.Polygon {
	m := latLonRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	nums := strings.Fields(m[1])
	if len(nums) < 6 || len(nums)%2 != 0 {
		return nil
	}
	ring := make(orb.Ring, 0, len(nums)/2+1)
	for i := 0; i < len(nums); i += 2 {
		lat, _ := strconv.ParseFloat(nums[i], 64)
		lon, _ := strconv.ParseFloat(nums[i+1], 64)
		ring = append(ring, orb.Point{-lon / 100, lat / 100})
	}
	if !ring.Closed() {
		ring = append(ring, ring[0])
	}
	return orb.Polygon{ring}
}
