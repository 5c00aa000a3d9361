package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

// sharedSchema holds the tables that are not partitioned by time.
const sharedSchema = `
CREATE EXTENSION IF NOT EXISTS postgis;

CREATE TABLE IF NOT EXISTS ugcs (
	gid      SERIAL PRIMARY KEY,
	ugc      VARCHAR(6) NOT NULL,
	name     TEXT,
	state    CHAR(2),
	wfo      VARCHAR(9),
	begin_ts TIMESTAMPTZ NOT NULL,
	end_ts   TIMESTAMPTZ,
	geom     geometry(MultiPolygon, 4326)
);
CREATE INDEX IF NOT EXISTS ugcs_ugc_idx ON ugcs (ugc);

CREATE TABLE IF NOT EXISTS cwsu (
	id   VARCHAR(4) PRIMARY KEY,
	name TEXT,
	geom geometry(MultiPolygon, 4326)
);

CREATE TABLE IF NOT EXISTS sigmets_current (
	sigmet_type CHAR(1),
	label       VARCHAR(16),
	issue       TIMESTAMPTZ,
	expire      TIMESTAMPTZ,
	raw         TEXT,
	geom        geometry(Polygon, 4326)
);

CREATE TABLE IF NOT EXISTS sigmets_archive (LIKE sigmets_current);
`

// yearSchema is formatted with the four digit year.
const yearSchema = `
CREATE TABLE IF NOT EXISTS warnings_%[1]d (
	issue         TIMESTAMPTZ,
	expire        TIMESTAMPTZ,
	updated       TIMESTAMPTZ,
	init_expire   TIMESTAMPTZ,
	product_issue TIMESTAMPTZ,
	wfo           CHAR(3),
	eventid       SMALLINT,
	status        CHAR(3),
	fcster        TEXT,
	report        TEXT,
	svs           TEXT,
	ugc           VARCHAR(6),
	phenomena     CHAR(2),
	significance  CHAR(1),
	gid           INT REFERENCES ugcs (gid),
	hvtec_nwsli   CHAR(5),
	is_emergency  BOOLEAN,
	is_pds        BOOLEAN
);
CREATE INDEX IF NOT EXISTS warnings_%[1]d_event_idx
	ON warnings_%[1]d (wfo, eventid, phenomena, significance);

CREATE TABLE IF NOT EXISTS sbw_%[1]d (
	wfo           CHAR(3),
	eventid       SMALLINT,
	phenomena     CHAR(2),
	significance  CHAR(1),
	status        CHAR(3),
	issue         TIMESTAMPTZ,
	expire        TIMESTAMPTZ,
	polygon_begin TIMESTAMPTZ,
	polygon_end   TIMESTAMPTZ,
	is_emergency  BOOLEAN,
	is_pds        BOOLEAN,
	product_id    VARCHAR(40),
	geom          geometry(Polygon, 4326)
);

CREATE TABLE IF NOT EXISTS lsrs_%[1]d (
	valid     TIMESTAMPTZ,
	type      CHAR(1),
	magnitude REAL,
	city      VARCHAR(100),
	county    VARCHAR(100),
	state     CHAR(2),
	source    VARCHAR(32),
	remark    TEXT,
	geom      geometry(Point, 4326),
	wfo       CHAR(3),
	typetext  VARCHAR(40)
);

CREATE TABLE IF NOT EXISTS observations_%[1]d (
	station        VARCHAR(5),
	valid          TIMESTAMPTZ,
	network        VARCHAR(16),
	tmpc           REAL,
	dwpc           REAL,
	drct           REAL,
	sknt           REAL,
	gust           REAL,
	peak_wind_drct REAL,
	peak_wind_gust REAL,
	peak_wind_time TIMESTAMPTZ,
	vsby           REAL,
	alti           REAL,
	mslp           REAL,
	p01i           REAL,
	wxcodes        VARCHAR(12)[],
	skyc           VARCHAR(3)[],
	skyl           INT[],
	raw            TEXT,
	product_id     VARCHAR(40),
	PRIMARY KEY (station, valid)
);
`

// monthSchema is formatted with the YYYY_MM suffix.
const monthSchema = `
CREATE TABLE IF NOT EXISTS nldn%[1]s (
	valid        TIMESTAMPTZ,
	geom         geometry(Point, 4326),
	signal       REAL,
	multiplicity SMALLINT,
	axis         SMALLINT,
	eccentricity SMALLINT,
	ellipse      SMALLINT,
	chisqr       SMALLINT
);
`

// Migrate creates the shared tables, the yearly tables for the given
// years, and the monthly lightning tables of each of those years.
func (s *Store) Migrate(ctx context.Context, years ...int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.migrate(ctx, years)
}

func (s *Store) migrate(ctx context.Context, years []int) error {
	if _, err := s.db.ExecContext(ctx, sharedSchema); err != nil {
		return fmt.Errorf("create shared schema: %w", err)
	}
	for _, y := range years {
		if _, err := s.db.ExecContext(ctx, fmt.Sprintf(yearSchema, y)); err != nil {
			return fmt.Errorf("create %d schema: %w", y, err)
		}
		for m := time.January; m <= time.December; m++ {
			suffix := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC).Format("2006_01")
			if _, err := s.db.ExecContext(ctx, fmt.Sprintf(monthSchema, suffix)); err != nil {
				return fmt.Errorf("create nldn%s: %w", suffix, err)
			}
		}
		s.migrated[y] = true
	}
	s.logger.Info("schema ready", "years", years)
	return nil
}

// EnsureYears creates the tables of the year before, the year of and the
// year after now, skipping years this store has already created. Products
// late on New Year's Eve and events carried over from December land in
// tables that already exist.
func (s *Store) EnsureYears(ctx context.Context, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var missing []int
	for y := now.UTC().Year() - 1; y <= now.UTC().Year()+1; y++ {
		if !s.migrated[y] {
			missing = append(missing, y)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return s.migrate(ctx, missing)
}

// KeepSchema calls EnsureYears every interval until ctx is cancelled.
func (s *Store) KeepSchema(ctx context.Context, clock clockwork.Clock, every time.Duration) {
	ticker := clock.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if err := s.EnsureYears(ctx, clock.Now()); err != nil {
				s.logger.Error("schema rollover failed", "error", err)
			}
		}
	}
}
