package kafka

import (
	"context"
	"log/slog"
	"sort"

	"github.com/couchcryptid/nws-text-ingest/internal/config"
	"github.com/couchcryptid/nws-text-ingest/internal/domain"
	"github.com/couchcryptid/nws-text-ingest/internal/nws"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces notifications to the sink topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes and writes the notifications in a single
// WriteMessages call. Messages are keyed by product id so one product's
// notifications land on one partition in order.
func (w *Writer) Publish(ctx context.Context, notes []nws.Notification) error {
	if len(notes) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(notes))
	for i := range notes {
		msg, err := serializeToMessage(notes[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a notification into a Kafka message.
func serializeToMessage(n nws.Notification) (kafkago.Message, error) {
	out, err := domain.NewOutputEvent(n)
	if err != nil {
		return kafkago.Message{}, err
	}
	keys := make([]string, 0, len(out.Headers))
	for k := range out.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	headers := make([]kafkago.Header, 0, len(keys))
	for _, k := range keys {
		headers = append(headers, kafkago.Header{Key: k, Value: []byte(out.Headers[k])})
	}
	return kafkago.Message{Key: out.Key, Value: out.Value, Headers: headers}, nil
}
