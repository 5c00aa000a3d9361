package metar

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"github.com/couchcryptid/nws-text-ingest/internal/nws"
)

// Observation wraps a decoded report with what the station provider knows.
type Observation struct {
	Report    *Report
	Station   string // ICAO id with the K prefix removed for CONUS sites
	Network   string
	TZName    string
	Location  nws.Location
	Located   bool
	ProductID string
}

func (p *Parser) observation(prod *nws.Product, r *Report) *Observation {
	o := &Observation{
		Report:    r,
		Station:   r.Station,
		ProductID: prod.ProductID(),
	}
	if len(r.Station) == 4 && r.Station[0] == 'K' {
		o.Station = r.Station[1:]
	}
	if p.stations == nil {
		return o
	}
	loc, ok := p.stations.Lookup(r.Station)
	if !ok {
		loc, ok = p.stations.Lookup(o.Station)
	}
	if ok {
		o.Location, o.Located = loc, true
		o.TZName = loc.TZName
		if loc.State != "" {
			o.Network = loc.State + "_ASOS"
		}
	}
	return o
}

func (o *Observation) Kind() string { return "metar" }

// SQL upserts the observation into observations_<YYYY>, keyed on station
// and valid time.
func (o *Observation) SQL(ctx context.Context, tx nws.DBTX) error {
	r := o.Report
	table := fmt.Sprintf("observations_%d", r.Time.Year())

	var skyc []string
	var skyl []int64
	for _, l := range r.Sky {
		skyc = append(skyc, l.Cover)
		h := int64(0)
		if l.Height != nil {
			h = int64(*l.Height)
		}
		skyl = append(skyl, h)
	}
	var pkDir, pkSpeed *int
	var pkTime any
	if r.PeakWind != nil {
		pkDir, pkSpeed, pkTime = &r.PeakWind.Dir, &r.PeakWind.Speed, r.PeakWind.Time
	}

	query := fmt.Sprintf(`INSERT INTO %s (station, valid, network, tmpc, dwpc, drct, sknt, gust,
			peak_wind_drct, peak_wind_gust, peak_wind_time, vsby, alti, mslp, p01i,
			wxcodes, skyc, skyl, raw, product_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		ON CONFLICT (station, valid) DO UPDATE SET
			tmpc = EXCLUDED.tmpc, dwpc = EXCLUDED.dwpc, drct = EXCLUDED.drct,
			sknt = EXCLUDED.sknt, gust = EXCLUDED.gust,
			peak_wind_drct = EXCLUDED.peak_wind_drct, peak_wind_gust = EXCLUDED.peak_wind_gust,
			peak_wind_time = EXCLUDED.peak_wind_time, vsby = EXCLUDED.vsby,
			alti = EXCLUDED.alti, mslp = EXCLUDED.mslp, p01i = EXCLUDED.p01i,
			wxcodes = EXCLUDED.wxcodes, skyc = EXCLUDED.skyc, skyl = EXCLUDED.skyl,
			raw = EXCLUDED.raw, product_id = EXCLUDED.product_id`, table)

	_, err := tx.ExecContext(ctx, query,
		o.Station, r.Time, o.Network, r.Temp, r.Dew, r.WindDir, r.WindSpeed, r.WindGust,
		pkDir, pkSpeed, pkTime, r.Visibility, r.Altimeter, r.SLP, r.Precip1h,
		pq.Array(r.Weather), pq.Array(skyc), pq.Array(skyl), r.Code, o.ProductID)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", table, err)
	}
	return nil
}
