package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/nws-text-ingest/internal/domain"
	"github.com/couchcryptid/nws-text-ingest/internal/nws/dispatch"
)

// ProductTransformer decodes bulletins with a product dispatcher.
type ProductTransformer struct {
	dispatcher *dispatch.Dispatcher
	logger     *slog.Logger
}

// NewTransformer creates a ProductTransformer.
func NewTransformer(d *dispatch.Dispatcher, logger *slog.Logger) *ProductTransformer {
	return &ProductTransformer{dispatcher: d, logger: logger}
}

// Transform dispatches the bulletin. The message timestamp, when set,
// anchors the WMO day/hour/minute; otherwise the package clock does.
func (t *ProductTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.ProcessedProduct, error) {
	now := raw.Timestamp
	if now.IsZero() {
		now = domain.Now()
	}

	res, err := t.dispatcher.Dispatch(ctx, raw.Value, now)
	if err != nil {
		return domain.ProcessedProduct{}, err
	}

	out := domain.ProcessedProduct{
		Parser:        res.Parser,
		Product:       res.Product,
		Records:       res.Records,
		Notifications: res.Notifications,
		ProcessedAt:   domain.Now(),
	}
	if res.Product != nil {
		out.ProductID = res.Product.ProductID()
	} else {
		out.ProductID = res.Parser + "-" + now.UTC().Format("200601021504")
	}
	t.logger.Debug("bulletin decoded",
		"product_id", out.ProductID,
		"parser", out.Parser,
		"records", len(out.Records),
		"notifications", len(out.Notifications),
	)
	return out, nil
}
