// Command nwsparse decodes bulletin files from disk and prints what each
// produced as one JSON object per line. Nothing is stored unless -database
// is given.
//
// Usage:
//
//	go run ./cmd/nwsparse -now 2005-04-30T03:05:00Z \
//	  -gazetteer data/gazetteer.db \
//	  testdata/LSRJAN.txt testdata/TORDMX.txt
//
// With no file arguments a single bulletin is read from stdin.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/couchcryptid/nws-text-ingest/internal/adapter/postgres"
	"github.com/couchcryptid/nws-text-ingest/internal/config"
	"github.com/couchcryptid/nws-text-ingest/internal/gazetteer"
	"github.com/couchcryptid/nws-text-ingest/internal/nws"
	"github.com/couchcryptid/nws-text-ingest/internal/nws/dispatch"
)

// result is printed for every input.
type result struct {
	File          string             `json:"file"`
	ProductID     string             `json:"product_id,omitempty"`
	Parser        string             `json:"parser,omitempty"`
	Records       map[string]int     `json:"records,omitempty"`
	Notifications []nws.Notification `json:"notifications,omitempty"`
	Warnings      []string           `json:"warnings,omitempty"`
	Error         string             `json:"error,omitempty"`
}

func main() {
	nowFlag := flag.String("now", "", "RFC 3339 time the WMO day/hour/minute is resolved against (default: current time)")
	gazPath := flag.String("gazetteer", "", "SQLite gazetteer for station and UGC lookups")
	baseURL := flag.String("base-url", nws.DefaultBaseURL, "prefix for notification links")
	dbURL := flag.String("database", "", "store records in this PostGIS database")
	driver := flag.String("driver", config.DriverPGX, "database driver: pgx or postgres")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	now := time.Now().UTC()
	if *nowFlag != "" {
		t, err := time.Parse(time.RFC3339, *nowFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -now: %v\n", err)
			os.Exit(2)
		}
		now = t
	}

	deps := dispatch.Deps{BaseURL: *baseURL}
	if *gazPath != "" {
		g, err := gazetteer.Open(*gazPath, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "gazetteer: %v\n", err)
			os.Exit(1)
		}
		defer g.Close()
		deps.Locations, deps.UGCs = g, g
	}
	d := dispatch.NewDefault(deps)

	ctx := context.Background()
	var store *postgres.Store
	if *dbURL != "" {
		var err error
		store, err = postgres.Open(ctx, &config.Config{DatabaseURL: *dbURL, DatabaseDriver: *driver}, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "database: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
	}

	inputs := flag.Args()
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}

	enc := json.NewEncoder(os.Stdout)
	failed := 0
	for _, name := range inputs {
		res := parseFile(ctx, d, store, name, now)
		if res.Error != "" {
			failed++
		}
		if err := enc.Encode(res); err != nil {
			fmt.Fprintf(os.Stderr, "write output: %v\n", err)
			os.Exit(1)
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func parseFile(ctx context.Context, d *dispatch.Dispatcher, store *postgres.Store, name string, now time.Time) result {
	out := result{File: name}

	var raw []byte
	var err error
	if name == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(name)
	}
	if err != nil {
		out.Error = err.Error()
		return out
	}

	res, err := d.Dispatch(ctx, raw, now)
	if res != nil {
		out.Parser = res.Parser
		if res.Product != nil {
			out.ProductID = res.Product.ProductID()
		}
		out.Records = make(map[string]int)
		for _, r := range res.Records {
			out.Records[r.Kind()]++
		}
		out.Notifications = res.Notifications
	}
	if err != nil {
		out.Error = err.Error()
		return out
	}

	if store != nil && len(res.Records) > 0 {
		if err := store.StoreRecords(ctx, res.Records); err != nil {
			out.Error = err.Error()
		}
	}
	out.Warnings = res.Warnings()
	return out
}
