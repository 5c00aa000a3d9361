package vtec

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/paulmach/orb/encoding/wkt"

	"github.com/couchcryptid/nws-text-ingest/internal/nws"
)

var insertActions = []string{"NEW", "EXA", "EXB"}

func (w *Warning) Kind() string { return "vtec" }

// SQL advances the warnings rows for every operational VTEC in the product.
// Events whose latest update already equals the product time are skipped.
func (w *Warning) SQL(ctx context.Context, tx nws.DBTX) error {
	resent := make(map[string]bool)
	w.years = make(map[string]int)
	for _, seg := range w.Segments {
		for _, v := range seg.VTECs {
			if v.Status != "O" {
				continue
			}
			if _, ok := resent[v.Key()]; ok {
				continue
			}
			year, err := w.eventYear(ctx, tx, v)
			if err != nil {
				return err
			}
			w.years[v.Key()] = year
			skip, err := w.resent(ctx, tx, v)
			if err != nil {
				return err
			}
			resent[v.Key()] = skip
		}
	}

	for _, seg := range w.Segments {
		for _, v := range seg.VTECs {
			if v.Status != "O" || resent[v.Key()] {
				continue
			}
			if err := w.apply(ctx, tx, seg, v); err != nil {
				return err
			}
			if len(seg.Polygon) > 0 {
				if err := w.insertSBW(ctx, tx, seg, v); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (w *Warning) resent(ctx context.Context, tx nws.DBTX, v VTEC) (bool, error) {
	table := w.table("warnings", v)
	var last sql.NullTime
	err := tx.QueryRowContext(ctx, fmt.Sprintf(`SELECT max(updated) FROM %s
		WHERE wfo = $1 AND eventid = $2 AND phenomena = $3 AND significance = $4`, table),
		v.WFO(), v.ETN, v.Phenomena, v.Significance).Scan(&last)
	if err != nil {
		return false, fmt.Errorf("resent check %s: %w", table, err)
	}
	return last.Valid && last.Time.Equal(w.Product.Valid), nil
}

func (w *Warning) apply(ctx context.Context, tx nws.DBTX, seg *Segment, v VTEC) error {
	switch v.Action {
	case "NEW", "EXA", "EXB":
		return w.insert(ctx, tx, seg, v)
	case "CON", "EXT", "CAN", "UPG", "EXP", "COR", "ROU":
		return w.update(ctx, tx, seg, v)
	}
	w.Product.Warnf("unhandled VTEC action %s", v)
	return nil
}

func (w *Warning) insert(ctx context.Context, tx nws.DBTX, seg *Segment, v VTEC) error {
	prod := w.Product
	table := w.table("warnings", v)
	begin := prod.Valid
	if v.Begin != nil {
		begin = *v.Begin
	}
	end := begin.Add(DefaultDuration)
	if v.End != nil {
		end = *v.End
	}

	var live int
	err := tx.QueryRowContext(ctx, fmt.Sprintf(`SELECT count(*) FROM %s
		WHERE wfo = $1 AND eventid = $2 AND phenomena = $3 AND significance = $4
		AND ugc = ANY($5) AND status = ANY($6) AND expire > $7`, table),
		v.WFO(), v.ETN, v.Phenomena, v.Significance, pq.Array(seg.UGCs), pq.Array(insertActions), prod.Valid).Scan(&live)
	if err != nil {
		return fmt.Errorf("live check %s: %w", table, err)
	}
	if live > 0 {
		if prod.IsCorrection() {
			if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s
				WHERE wfo = $1 AND eventid = $2 AND phenomena = $3 AND significance = $4
				AND ugc = ANY($5) AND status = ANY($6)`, table),
				v.WFO(), v.ETN, v.Phenomena, v.Significance, pq.Array(seg.UGCs), pq.Array(insertActions)); err != nil {
				return fmt.Errorf("delete corrected %s: %w", table, err)
			}
		} else {
			prod.Warnf("Duplicate WWA %s: %d rows still live", v, live)
		}
	}

	hvtec := sql.NullString{String: seg.HVTECNWSLI, Valid: seg.HVTECNWSLI != ""}
	query := fmt.Sprintf(`INSERT INTO %s (issue, expire, updated, init_expire, product_issue,
			wfo, eventid, status, fcster, report, ugc, phenomena, significance, gid,
			hvtec_nwsli, is_emergency, is_pds, svs)
		VALUES ($1, $2, $3, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			(SELECT gid FROM ugcs WHERE ugc = $9 AND begin_ts <= $1
				AND (end_ts IS NULL OR end_ts > $1) ORDER BY begin_ts DESC LIMIT 1),
			$12, $13, $14, $8 || '__')`, table)
	for _, ugc := range seg.UGCs {
		if _, err := tx.ExecContext(ctx, query, begin, end, prod.Valid, v.WFO(), v.ETN, v.Action,
			seg.Forecaster, prod.Text, ugc, v.Phenomena, v.Significance, hvtec, seg.Emergency, seg.PDS); err != nil {
			return fmt.Errorf("insert %s %s: %w", table, ugc, err)
		}
	}
	return nil
}

// update applies a follow-up action. Only the expire, issue and init_expire
// values differ between actions; the emergency and PDS flags only ever latch
// to true.
func (w *Warning) update(ctx context.Context, tx nws.DBTX, seg *Segment, v VTEC) error {
	prod := w.Product
	table := w.table("warnings", v)
	correction := prod.IsCorrection()

	var expire, issue, initExpire *time.Time
	switch v.Action {
	case "CON", "COR", "ROU":
		expire = v.End
	case "EXT":
		issue = v.Begin
		e := prod.Valid.Add(DefaultDuration)
		if v.End != nil {
			e = *v.End
		}
		expire = &e
	case "CAN", "UPG":
		expire = &prod.Valid
	case "EXP":
		expire = v.End
		if expire == nil {
			expire = &prod.Valid
		}
	}
	if correction {
		expire, issue, initExpire = v.End, v.Begin, v.End
	}

	statusFilter := " AND status NOT IN ('CAN', 'UPG', 'EXP')"
	if correction {
		statusFilter = ""
	}
	query := fmt.Sprintf(`UPDATE %s SET status = $1, updated = $2,
			expire = coalesce($3, expire), issue = coalesce($4, issue),
			init_expire = coalesce($5, init_expire), fcster = $6, report = $7,
			svs = coalesce(svs, '') || $7 || '__',
			is_emergency = CASE WHEN $8 THEN true ELSE is_emergency END,
			is_pds = CASE WHEN $9 THEN true ELSE is_pds END
		WHERE wfo = $10 AND eventid = $11 AND phenomena = $12 AND significance = $13
			AND ugc = ANY($14)%s`, table, statusFilter)

	res, err := tx.ExecContext(ctx, query, v.Action, prod.Valid, expire, issue, initExpire,
		seg.Forecaster, prod.Text, seg.Emergency, seg.PDS,
		v.WFO(), v.ETN, v.Phenomena, v.Significance, pq.Array(seg.UGCs))
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	if int(n) != len(seg.UGCs) && !correction {
		prod.Warnf("%v: %s %s %s.%s.%04d updated %d rows for %d ugcs [%s]",
			nws.ErrCorrectionMismatch, prod.Valid.Format(time.RFC3339), v.WFO(), v.Phenomena,
			v.Significance, v.ETN, n, len(seg.UGCs), strings.Join(seg.UGCs, ","))
	}
	return nil
}

func (w *Warning) insertSBW(ctx context.Context, tx nws.DBTX, seg *Segment, v VTEC) error {
	prod := w.Product
	table := w.table("sbw", v)
	issue := prod.Valid
	if v.Begin != nil {
		issue = *v.Begin
	}
	_, err := tx.ExecContext(ctx, fmt.Sprintf(`INSERT INTO %s (wfo, eventid, phenomena, significance,
			status, issue, expire, polygon_begin, polygon_end, is_emergency, is_pds, product_id, geom)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, coalesce($7, $8), $9, $10, $11, ST_GeomFromEWKT($12))`, table),
		v.WFO(), v.ETN, v.Phenomena, v.Significance, v.Action, issue, v.End, prod.Valid,
		seg.Emergency, seg.PDS, prod.ProductID(), "SRID=4326;"+wkt.MarshalString(seg.Polygon))
	if err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}
