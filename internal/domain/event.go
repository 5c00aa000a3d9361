package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/couchcryptid/nws-text-ingest/internal/nws"
)

// RawEvent represents an unprocessed bulletin from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// ProcessedProduct is everything the dispatcher produced for one raw event.
type ProcessedProduct struct {
	ProductID     string
	Parser        string
	Product       *nws.Product // nil for binary lightning streams
	Records       []nws.Record
	Notifications []nws.Notification
	ProcessedAt   time.Time
}

// Empty reports whether there is nothing to persist or publish.
func (p ProcessedProduct) Empty() bool {
	return len(p.Records) == 0 && len(p.Notifications) == 0
}

// Warnings returns the product warnings recorded while parsing and storing.
func (p ProcessedProduct) Warnings() []string {
	if p.Product == nil {
		return nil
	}
	return p.Product.Warnings
}

// OutputEvent is the serialized form of a notification destined for a sink.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// NewOutputEvent serializes a notification as JSON keyed by its product id.
func NewOutputEvent(n nws.Notification) (OutputEvent, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize notification: %w", err)
	}
	return OutputEvent{
		Key:   []byte(n.Extras.ProductID),
		Value: data,
		Headers: map[string]string{
			"product_id": n.Extras.ProductID,
			"channels":   n.Extras.Channels,
		},
	}, nil
}
