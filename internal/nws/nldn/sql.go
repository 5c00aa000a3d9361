package nldn

import (
	"context"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"

	"github.com/couchcryptid/nws-text-ingest/internal/nws"
)

// Batch is a set of strokes persisted together.
type Batch struct {
	Strokes []Stroke
}

func (b *Batch) Kind() string { return "nldn" }

// Table returns the monthly table a stroke belongs to.
func Table(s Stroke) string {
	return "nldn" + s.Valid.Format("2006_01")
}

// SQL inserts every stroke into its monthly table.
func (b *Batch) SQL(ctx context.Context, tx nws.DBTX) error {
	for _, s := range b.Strokes {
		table := Table(s)
		query := fmt.Sprintf(`INSERT INTO %s (valid, geom, signal, multiplicity, axis, eccentricity, ellipse, chisqr)
			VALUES ($1, ST_GeomFromEWKT($2), $3, $4, $5, $6, $7, $8)`, table)
		geom := "SRID=4326;" + wkt.MarshalString(orb.Point{s.Lon, s.Lat})
		if _, err := tx.ExecContext(ctx, query, s.Valid, geom, s.Signal, s.Multiplicity,
			s.Axis, s.Eccentricity, s.Ellipse, s.ChiSqr); err != nil {
			return fmt.Errorf("insert %s: %w", table, err)
		}
	}
	return nil
}
