package vtec

import (
	"context"
	"fmt"
	"time"

	"github.com/couchcryptid/nws-text-ingest/internal/nws"
)

// DefaultDuration materializes an absent VTEC end time. Rows expiring
// exactly DefaultDuration after issue are open ended.
const DefaultDuration = 21 * 24 * time.Hour

// Warning is a decoded VTEC product.
type Warning struct {
	Product  *nws.Product
	Segments []*Segment

	years map[string]int // resolved event year by VTEC.Key
}

// Handles reports whether the product carries a VTEC string.
func Handles(prod *nws.Product) bool {
	return vtecRe.MatchString(prod.Text)
}

// Parse segments the product and decodes its UGC and VTEC content.
func Parse(prod *nws.Product) (*Warning, error) {
	segs, err := Segments(prod)
	if err != nil {
		return nil, err
	}
	w := &Warning{Product: prod, Segments: segs}
	for _, s := range segs {
		if len(s.VTECs) > 0 {
			return w, nil
		}
	}
	return nil, fmt.Errorf("%w: %s has no segment with VTEC", nws.ErrUnknownProduct, prod.ProductID())
}

// table picks the yearly table an event lives in.
func (w *Warning) table(prefix string, v VTEC) string {
	year, ok := w.years[v.Key()]
	if !ok {
		year = w.Product.Valid.Year()
		if v.Begin != nil {
			year = v.Begin.Year()
		}
	}
	return fmt.Sprintf("%s_%d", prefix, year)
}

// eventYear resolves the year an event was created in. Events without a
// begin time that are updated in January may have been issued the
// previous December; if the current year's table does not know the
// event, the previous year's does.
func (w *Warning) eventYear(ctx context.Context, tx nws.DBTX, v VTEC) (int, error) {
	if v.Begin != nil {
		return v.Begin.Year(), nil
	}
	year := w.Product.Valid.Year()
	if w.Product.Valid.Month() != time.January {
		return year, nil
	}
	switch v.Action {
	case "NEW", "EXA", "EXB":
		return year, nil
	}
	var n int
	err := tx.QueryRowContext(ctx, fmt.Sprintf(`SELECT count(*) FROM warnings_%d
		WHERE wfo = $1 AND eventid = $2 AND phenomena = $3 AND significance = $4`, year),
		v.WFO(), v.ETN, v.Phenomena, v.Significance).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("event year warnings_%d: %w", year, err)
	}
	if n == 0 {
		return year - 1, nil
	}
	return year, nil
}
