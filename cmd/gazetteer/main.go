// Command gazetteer provisions the SQLite gazetteer the ingest service uses
// to resolve station identifiers and UGC codes.
//
// Usage:
//
//	go run ./cmd/gazetteer -db data/gazetteer.db \
//	  -stations data/stations.csv \
//	  -counties data/c_05mr24.shp \
//	  -zones data/z_05mr24.shp
//
// The stations CSV carries the header id,name,state,wfo,tzname,lat,lon.
// County and zone files are the NWS AWIPS shapefiles.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/couchcryptid/nws-text-ingest/internal/gazetteer"
)

func main() {
	dbPath := flag.String("db", "gazetteer.db", "SQLite gazetteer to create or update")
	stations := flag.String("stations", "", "stations CSV")
	counties := flag.String("counties", "", "NWS county shapefile (.shp)")
	zones := flag.String("zones", "", "NWS public zone shapefile (.shp)")
	flag.Parse()

	if *stations == "" && *counties == "" && *zones == "" {
		flag.Usage()
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx := context.Background()

	g, err := gazetteer.Open(*dbPath, logger)
	if err != nil {
		logger.Error("open gazetteer", "error", err)
		os.Exit(1)
	}
	defer g.Close()

	if err := run(ctx, g, logger, *stations, *counties, *zones); err != nil {
		logger.Error("provision failed", "error", err)
		os.Exit(1)
	}

	nStations, nUGCs, err := g.Counts(ctx)
	if err != nil {
		logger.Error("count", "error", err)
		os.Exit(1)
	}
	fmt.Printf("%s: %d stations, %d ugcs\n", *dbPath, nStations, nUGCs)
}

func run(ctx context.Context, g *gazetteer.DB, logger *slog.Logger, stations, counties, zones string) error {
	if stations != "" {
		f, err := os.Open(stations)
		if err != nil {
			return err
		}
		defer f.Close()
		loaded, skipped, err := g.ImportStations(ctx, f)
		if err != nil {
			return fmt.Errorf("%s: %w", stations, err)
		}
		logger.Info("stations imported", "file", stations, "loaded", loaded, "skipped", skipped)
	}
	for _, src := range []struct {
		path string
		kind gazetteer.ShapeKind
	}{{counties, gazetteer.Counties}, {zones, gazetteer.Zones}} {
		if src.path == "" {
			continue
		}
		n, err := g.ImportShapefile(ctx, src.path, src.kind)
		if err != nil {
			return fmt.Errorf("%s: %w", src.path, err)
		}
		logger.Info("shapefile imported", "file", src.path, "kind", src.kind, "ugcs", n)
	}
	return nil
}
