// Package natspub fans notifications out to NATS, one subject per channel.
package natspub

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/couchcryptid/nws-text-ingest/internal/domain"
	"github.com/couchcryptid/nws-text-ingest/internal/nws"
)

// SubjectPrefix roots every notification subject.
const SubjectPrefix = "nws"

type conn interface {
	PublishMsg(m *nats.Msg) error
	FlushWithContext(ctx context.Context) error
}

// Publisher implements pipeline.Publisher.
type Publisher struct {
	conn   conn
	close  func()
	logger *slog.Logger
}

// Connect dials the NATS server and keeps reconnecting for the life of
// the process.
func Connect(url string, logger *slog.Logger) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("nws-ingest"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Publisher{conn: nc, close: nc.Close, logger: logger}, nil
}

// Subject maps a notification channel to a NATS subject.
func Subject(channel string) string {
	r := strings.NewReplacer(" ", "_", "*", "_", ">", "_")
	return SubjectPrefix + "." + r.Replace(channel)
}

// Publish sends each notification to the subject of every channel it
// names, then flushes.
func (p *Publisher) Publish(ctx context.Context, notes []nws.Notification) error {
	for _, n := range notes {
		out, err := domain.NewOutputEvent(n)
		if err != nil {
			return err
		}
		for _, ch := range n.Extras.ChannelList() {
			msg := nats.NewMsg(Subject(ch))
			msg.Data = out.Value
			for k, v := range out.Headers {
				msg.Header.Set(k, v)
			}
			if err := p.conn.PublishMsg(msg); err != nil {
				return fmt.Errorf("publish %s: %w", msg.Subject, err)
			}
		}
	}
	return p.conn.FlushWithContext(ctx)
}

func (p *Publisher) Close() {
	if p.close != nil {
		p.close()
	}
}
