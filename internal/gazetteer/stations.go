package gazetteer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/couchcryptid/nws-text-ingest/internal/nws"
)

var stationColumns = []string{"id", "name", "state", "wfo", "tzname", "lat", "lon"}

// ImportStations loads a CSV with the header
// id,name,state,wfo,tzname,lat,lon. Rows with unparseable coordinates are
// skipped and counted in the returned skipped total.
func (g *DB) ImportStations(ctx context.Context, r io.Reader) (loaded, skipped int, err error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return 0, 0, fmt.Errorf("read station header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range stationColumns {
		if _, ok := idx[c]; !ok {
			return 0, 0, fmt.Errorf("station csv missing column %q", c)
		}
	}

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return loaded, skipped, fmt.Errorf("read station row: %w", err)
		}
		lat, latErr := strconv.ParseFloat(row[idx["lat"]], 64)
		lon, lonErr := strconv.ParseFloat(row[idx["lon"]], 64)
		if latErr != nil || lonErr != nil {
			skipped++
			continue
		}
		loc := nws.Location{
			Name:   row[idx["name"]],
			State:  row[idx["state"]],
			WFO:    row[idx["wfo"]],
			TZName: row[idx["tzname"]],
			Lat:    lat,
			Lon:    lon,
		}
		if err := g.PutStation(ctx, strings.ToUpper(row[idx["id"]]), loc); err != nil {
			return loaded, skipped, err
		}
		loaded++
	}
	return loaded, skipped, nil
}
