package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/nws-text-ingest/internal/cache"
	"github.com/couchcryptid/nws-text-ingest/internal/domain"
	"github.com/couchcryptid/nws-text-ingest/internal/nws"
	"github.com/couchcryptid/nws-text-ingest/internal/observability"
)

// RecordStore persists the records of one product atomically.
type RecordStore interface {
	StoreRecords(ctx context.Context, records []nws.Record) error
}

// Publisher delivers notifications to one sink.
type Publisher interface {
	Publish(ctx context.Context, notes []nws.Notification) error
}

// Loader stores each product's records, then hands every notification in
// the batch to each publisher. A nil store skips persistence; a nil
// throttle delivers every notification.
type Loader struct {
	store      RecordStore
	throttle   cache.Throttle
	publishers []Publisher
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewLoader creates a Loader.
func NewLoader(store RecordStore, throttle cache.Throttle, logger *slog.Logger, metrics *observability.Metrics, publishers ...Publisher) *Loader {
	return &Loader{store: store, throttle: throttle, publishers: publishers, logger: logger, metrics: metrics}
}

// LoadBatch implements BatchLoader.
func (l *Loader) LoadBatch(ctx context.Context, products []domain.ProcessedProduct) error {
	var notes []nws.Notification
	for _, p := range products {
		if l.store != nil && len(p.Records) > 0 {
			if err := l.store.StoreRecords(ctx, p.Records); err != nil {
				return fmt.Errorf("store %s: %w", p.ProductID, err)
			}
			for _, r := range p.Records {
				l.metrics.RecordsPersisted.WithLabelValues(r.Kind()).Inc()
			}
		}
		notes = append(notes, l.admit(ctx, p.Notifications)...)
	}

	if len(notes) == 0 {
		return nil
	}
	for _, pub := range l.publishers {
		if err := pub.Publish(ctx, notes); err != nil {
			return fmt.Errorf("publish %d notifications: %w", len(notes), err)
		}
	}
	l.logger.Debug("batch loaded", "products", len(products), "notifications", len(notes))
	return nil
}

// admit claims the throttle key of each notification that has one. Keys
// are claimed only once the product is stored, so a failed store leaves
// them available for the retry. Throttle errors let the notification through.
func (l *Loader) admit(ctx context.Context, notes []nws.Notification) []nws.Notification {
	if l.throttle == nil {
		return notes
	}
	out := notes[:0:0]
	for _, n := range notes {
		if n.ThrottleKey != "" {
			ok, err := l.throttle.Allow(ctx, n.ThrottleKey)
			if err != nil {
				l.logger.Warn("throttle unavailable, delivering", "key", n.ThrottleKey, "error", err)
			} else if !ok {
				continue
			}
		}
		out = append(out, n)
	}
	return out
}
