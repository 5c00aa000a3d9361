package sigmet

import "github.com/couchcryptid/nws-text-ingest/internal/nws"

// international accepts WS bulletins from other meteorological watch
// offices. No grammar is wired for them yet, so they yield nothing.
type international struct{}

func (international) parse(*nws.Product) ([]*SIGMET, error) {
	return nil, nil
}
