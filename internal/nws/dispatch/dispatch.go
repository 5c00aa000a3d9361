// Package dispatch routes raw bulletins to the parser that understands them
// and collects the records and notifications they produce.
package dispatch

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/couchcryptid/nws-text-ingest/internal/nws"
	"github.com/couchcryptid/nws-text-ingest/internal/nws/nldn"
)

// Result is everything one bulletin produced.
type Result struct {
	Product       *nws.Product // nil for binary NLDN streams
	Parser        string
	Records       []nws.Record
	Notifications []nws.Notification
}

// Warnings returns the product warnings recorded so far.
func (r *Result) Warnings() []string {
	if r.Product == nil {
		return nil
	}
	return r.Product.Warnings
}

// Parser is implemented by each product family.
type Parser interface {
	// Name returns the parser's unique identifier.
	Name() string

	// Priority orders parsers; lower is tried first.
	Priority() int

	// Match reports whether the parser claims the product, from its AFOS id
	// and WMO heading.
	Match(prod *nws.Product) bool

	// Parse decodes the product into res.
	Parse(ctx context.Context, prod *nws.Product, res *Result) error
}

// Dispatcher holds registered parsers.
type Dispatcher struct {
	mu      sync.RWMutex
	parsers []Parser
	sorted  bool
}

// New creates an empty Dispatcher.
func New() *Dispatcher {
	return &Dispatcher{}
}

// Register adds a parser.
func (d *Dispatcher) Register(p Parser) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.parsers = append(d.parsers, p)
	d.sorted = false
}

func (d *Dispatcher) sort() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sorted {
		return
	}
	sort.SliceStable(d.parsers, func(i, j int) bool {
		return d.parsers[i].Priority() < d.parsers[j].Priority()
	})
	d.sorted = true
}

// Names lists registered parsers in dispatch order.
func (d *Dispatcher) Names() []string {
	d.sort()
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, len(d.parsers))
	for i, p := range d.parsers {
		names[i] = p.Name()
	}
	return names
}

// Dispatch decodes raw against now. Envelope failures and products no
// parser claims are returned as errors; per record problems are carried as
// product warnings on the result.
func (d *Dispatcher) Dispatch(ctx context.Context, raw []byte, now time.Time) (*Result, error) {
	if bytes.HasPrefix(raw, []byte(nldn.Tag)) {
		strokes, err := nldn.ReadAll(bytes.NewReader(raw))
		if err != nil {
			return nil, err
		}
		return &Result{Parser: "nldn", Records: []nws.Record{&nldn.Batch{Strokes: strokes}}}, nil
	}

	prod, err := nws.ParseProduct(string(raw), now)
	if err != nil {
		return nil, err
	}

	d.sort()
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, p := range d.parsers {
		if !p.Match(prod) {
			continue
		}
		res := &Result{Product: prod, Parser: p.Name()}
		if err := p.Parse(ctx, prod, res); err != nil {
			return res, fmt.Errorf("%s: %w", p.Name(), err)
		}
		return res, nil
	}
	return &Result{Product: prod}, fmt.Errorf("%w: %s %s %s", nws.ErrUnknownProduct, prod.Source, prod.WMO, prod.AFOS)
}
