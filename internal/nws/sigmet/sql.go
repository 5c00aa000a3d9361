package sigmet

import (
	"context"
	"fmt"

	"github.com/paulmach/orb/encoding/wkt"

	"github.com/couchcryptid/nws-text-ingest/internal/nws"
)

func (s *SIGMET) Kind() string { return "sigmet" }

// SQL prunes expired rows from sigmets_current, stores the advisory in
// both the current and archive tables and records the CWSU centers whose
// area it touches.
func (s *SIGMET) SQL(ctx context.Context, tx nws.DBTX) error {
	geom := "SRID=4326;" + wkt.MarshalString(s.Geom)

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM sigmets_current WHERE expire < $1 OR (sigmet_type = $2 AND label = $3)`,
		s.Now, s.Type, s.Label); err != nil {
		return fmt.Errorf("prune sigmets_current: %w", err)
	}
	for _, table := range []string{"sigmets_current", "sigmets_archive"} {
		query := fmt.Sprintf(`INSERT INTO %s (sigmet_type, label, issue, expire, raw, geom)
			VALUES ($1, $2, $3, $4, $5, ST_GeomFromEWKT($6))`, table)
		if _, err := tx.ExecContext(ctx, query, s.Type, s.Label, s.STS, s.ETS, s.Raw, geom); err != nil {
			return fmt.Errorf("insert %s: %w", table, err)
		}
	}

	rows, err := tx.QueryContext(ctx, `SELECT DISTINCT id FROM cwsu
		WHERE ST_Intersects(geom, ST_GeomFromEWKT($1))
		ORDER BY id`, geom)
	if err != nil {
		return fmt.Errorf("cwsu overlap: %w", err)
	}
	defer rows.Close()
	s.Centers = s.Centers[:0]
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scan cwsu: %w", err)
		}
		s.Centers = append(s.Centers, id)
	}
	return rows.Err()
}
