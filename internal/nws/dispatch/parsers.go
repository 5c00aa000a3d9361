package dispatch

import (
	"context"

	"github.com/couchcryptid/nws-text-ingest/internal/nws"
	"github.com/couchcryptid/nws-text-ingest/internal/nws/lsr"
	"github.com/couchcryptid/nws-text-ingest/internal/nws/metar"
	"github.com/couchcryptid/nws-text-ingest/internal/nws/nhc"
	"github.com/couchcryptid/nws-text-ingest/internal/nws/sigmet"
	"github.com/couchcryptid/nws-text-ingest/internal/nws/vtec"
)

// Deps are the collaborators the standard parsers are built with.
type Deps struct {
	Locations     nws.LocationProvider
	UGCs          nws.UGCProvider
	BaseURL       string
	WindThreshold int
	LSR           []lsr.Option
}

// parser adapts a pair of functions to Parser.
type parser struct {
	name     string
	priority int
	match    func(*nws.Product) bool
	parse    func(context.Context, *nws.Product, *Result) error
}

func (p *parser) Name() string { return p.name }

func (p *parser) Priority() int { return p.priority }

func (p *parser) Match(prod *nws.Product) bool { return p.match(prod) }

func (p *parser) Parse(ctx context.Context, prod *nws.Product, res *Result) error {
	return p.parse(ctx, prod, res)
}

// NewDefault creates a Dispatcher with the tropical, LSR, SIGMET, METAR and
// VTEC parsers registered.
func NewDefault(deps Deps) *Dispatcher {
	if deps.BaseURL == "" {
		deps.BaseURL = nws.DefaultBaseURL
	}
	if deps.Locations == nil {
		deps.Locations = nws.Locations{}
	}
	if deps.UGCs == nil {
		deps.UGCs = nws.UGCs{}
	}
	d := New()
	d.Register(nhcParser(deps))
	d.Register(lsrParser(deps))
	d.Register(sigmetParser(deps))
	d.Register(metarParser(deps))
	d.Register(vtecParser(deps))
	return d
}

func nhcParser(deps Deps) Parser {
	return &parser{
		name:     "nhc",
		priority: 10,
		match:    nhc.Handles,
		parse: func(_ context.Context, prod *nws.Product, res *Result) error {
			a, err := nhc.Parse(prod)
			if err != nil {
				return err
			}
			res.Notifications = append(res.Notifications, a.Notification(deps.BaseURL))
			return nil
		},
	}
}

func lsrParser(deps Deps) Parser {
	p := lsr.NewParser(deps.LSR...)
	return &parser{
		name:     "lsr",
		priority: 20,
		match:    func(prod *nws.Product) bool { return prod.AFOSPrefix() == "LSR" },
		parse: func(_ context.Context, prod *nws.Product, res *Result) error {
			b, err := p.Parse(prod)
			if err != nil {
				return err
			}
			for _, r := range b.Reports {
				res.Records = append(res.Records, r)
				if !r.Duplicate {
					res.Notifications = append(res.Notifications, r.Notification(deps.BaseURL))
				}
			}
			return nil
		},
	}
}

func sigmetParser(deps Deps) Parser {
	p := sigmet.NewParser(deps.Locations)
	return &parser{
		name:     "sigmet",
		priority: 30,
		match:    sigmet.Handles,
		parse: func(_ context.Context, prod *nws.Product, res *Result) error {
			sigs, err := p.Parse(prod)
			if err != nil {
				return err
			}
			for _, s := range sigs {
				res.Records = append(res.Records, s)
				res.Notifications = append(res.Notifications, s.Notification(deps.BaseURL))
			}
			return nil
		},
	}
}

func metarParser(deps Deps) Parser {
	p := metar.NewParser(deps.Locations)
	alerter := metar.NewWindAlerter(deps.WindThreshold, deps.BaseURL)
	return &parser{
		name:     "metar",
		priority: 40,
		match:    metar.Handles,
		parse: func(_ context.Context, prod *nws.Product, res *Result) error {
			c, err := p.Parse(prod)
			if err != nil {
				return err
			}
			for _, o := range c.Observations {
				res.Records = append(res.Records, o)
				if n := alerter.Check(o); n != nil {
					res.Notifications = append(res.Notifications, *n)
				}
			}
			return nil
		},
	}
}

func vtecParser(deps Deps) Parser {
	return &parser{
		name:     "vtec",
		priority: 50,
		match:    vtec.Handles,
		parse: func(_ context.Context, prod *nws.Product, res *Result) error {
			w, err := vtec.Parse(prod)
			if err != nil {
				return err
			}
			res.Records = append(res.Records, w)
			res.Notifications = append(res.Notifications, w.Notifications(deps.BaseURL, deps.UGCs)...)
			return nil
		},
	}
}
