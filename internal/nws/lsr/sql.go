package lsr

import (
	"context"
	"fmt"

	"github.com/paulmach/orb/encoding/wkt"

	"github.com/couchcryptid/nws-text-ingest/internal/nws"
)

func (r *Report) Kind() string { return "lsr" }

// SQL inserts the report into its yearly lsrs table. Duplicates and
// reports without a resolved UTC time are not stored.
func (r *Report) SQL(ctx context.Context, tx nws.DBTX) error {
	if r.Duplicate || r.ValidUTC.IsZero() {
		return nil
	}
	table := fmt.Sprintf("lsrs_%d", r.ValidUTC.Year())
	var mag any
	if r.Magnitude.Value != nil {
		mag = *r.Magnitude.Value
	}
	var dbtype any
	if r.DBType != "" {
		dbtype = r.DBType
	}
	query := fmt.Sprintf(`INSERT INTO %s (valid, type, magnitude, city, county, state,
		source, remark, geom, wfo, typetext)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, ST_GeomFromEWKT($9), $10, $11)`, table)
	_, err := tx.ExecContext(ctx, query,
		r.ValidUTC, dbtype, mag, r.City, r.County, r.State,
		r.Source, r.Remark, "SRID=4326;"+wkt.MarshalString(r.Geometry), r.WFO, r.TypeText)
	if err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}
