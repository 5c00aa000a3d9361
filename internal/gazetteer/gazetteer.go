// Package gazetteer stores station and UGC metadata in SQLite and serves
// it to the parsers as location providers.
package gazetteer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/paulmach/orb"
	_ "modernc.org/sqlite"

	"github.com/couchcryptid/nws-text-ingest/internal/nws"
)

const schema = `
CREATE TABLE IF NOT EXISTS stations (
	id     TEXT PRIMARY KEY,
	name   TEXT NOT NULL,
	state  TEXT,
	wfo    TEXT,
	tzname TEXT,
	lat    REAL NOT NULL,
	lon    REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS ugcs (
	code  TEXT PRIMARY KEY,
	name  TEXT NOT NULL,
	state TEXT,
	wfo   TEXT,
	lat   REAL,
	lon   REAL
);
`

// DB is a SQLite backed gazetteer. It implements nws.LocationProvider and
// nws.UGCProvider.
type DB struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens or creates the gazetteer at path. ":memory:" gives a private
// in-memory database.
func Open(path string, logger *slog.Logger) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open gazetteer: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create gazetteer schema: %w", err)
	}
	return &DB{db: db, logger: logger}, nil
}

func (g *DB) Close() error {
	return g.db.Close()
}

// PutStation inserts or replaces a station.
func (g *DB) PutStation(ctx context.Context, id string, loc nws.Location) error {
	_, err := g.db.ExecContext(ctx, `INSERT OR REPLACE INTO stations (id, name, state, wfo, tzname, lat, lon)
		VALUES (?, ?, ?, ?, ?, ?, ?)`, id, loc.Name, loc.State, loc.WFO, loc.TZName, loc.Lat, loc.Lon)
	if err != nil {
		return fmt.Errorf("put station %s: %w", id, err)
	}
	return nil
}

// PutUGC inserts or replaces a county or zone.
func (g *DB) PutUGC(ctx context.Context, u nws.UGC) error {
	_, err := g.db.ExecContext(ctx, `INSERT OR REPLACE INTO ugcs (code, name, state, wfo, lat, lon)
		VALUES (?, ?, ?, ?, ?, ?)`, u.Code, u.Name, u.State, u.WFO, u.Centroid.Lat(), u.Centroid.Lon())
	if err != nil {
		return fmt.Errorf("put ugc %s: %w", u.Code, err)
	}
	return nil
}

// Lookup resolves a station or NWSLI identifier.
func (g *DB) Lookup(id string) (nws.Location, bool) {
	var loc nws.Location
	var state, wfo, tz sql.NullString
	err := g.db.QueryRow(`SELECT name, state, wfo, tzname, lat, lon FROM stations WHERE id = ?`, id).
		Scan(&loc.Name, &state, &wfo, &tz, &loc.Lat, &loc.Lon)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			g.logger.Warn("station lookup failed", "id", id, "error", err)
		}
		return nws.Location{}, false
	}
	loc.State, loc.WFO, loc.TZName = state.String, wfo.String, tz.String
	return loc, true
}

// LookupUGC resolves a county or zone code.
func (g *DB) LookupUGC(code string) (nws.UGC, bool) {
	u := nws.UGC{Code: code}
	var state, wfo sql.NullString
	var lat, lon sql.NullFloat64
	err := g.db.QueryRow(`SELECT name, state, wfo, lat, lon FROM ugcs WHERE code = ?`, code).
		Scan(&u.Name, &state, &wfo, &lat, &lon)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			g.logger.Warn("ugc lookup failed", "code", code, "error", err)
		}
		return nws.UGC{}, false
	}
	u.State, u.WFO = state.String, wfo.String
	u.Centroid = orb.Point{lon.Float64, lat.Float64}
	return u, true
}

// Counts returns the number of stations and UGCs held.
func (g *DB) Counts(ctx context.Context) (stations, ugcs int, err error) {
	if err = g.db.QueryRowContext(ctx, `SELECT count(*) FROM stations`).Scan(&stations); err != nil {
		return 0, 0, fmt.Errorf("count stations: %w", err)
	}
	if err = g.db.QueryRowContext(ctx, `SELECT count(*) FROM ugcs`).Scan(&ugcs); err != nil {
		return 0, 0, fmt.Errorf("count ugcs: %w", err)
	}
	return stations, ugcs, nil
}
