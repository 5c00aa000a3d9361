// Package mqttpub fans notifications out to an MQTT broker, one topic per
// channel, for field displays that cannot speak Kafka or NATS.
package mqttpub

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/couchcryptid/nws-text-ingest/internal/domain"
	"github.com/couchcryptid/nws-text-ingest/internal/nws"
)

// TopicPrefix roots every notification topic.
const TopicPrefix = "nws"

const (
	qos            = 1
	publishTimeout = 10 * time.Second
)

type client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Publisher implements pipeline.Publisher.
type Publisher struct {
	client     client
	disconnect func()
	logger     *slog.Logger
}

// Connect opens an auto-reconnecting session with the broker.
func Connect(broker, clientID string, logger *slog.Logger) (*Publisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("mqtt connection lost", "error", err)
	})

	c := mqtt.NewClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect mqtt broker: %w", token.Error())
	}
	return &Publisher{
		client:     c,
		disconnect: func() { c.Disconnect(250) },
		logger:     logger,
	}, nil
}

// Topic maps a notification channel to an MQTT topic.
func Topic(channel string) string {
	r := strings.NewReplacer(".", "/", " ", "_", "+", "_", "#", "_")
	return TopicPrefix + "/" + r.Replace(channel)
}

// Publish sends each notification to the topic of every channel it names
// and waits for the broker to acknowledge.
func (p *Publisher) Publish(ctx context.Context, notes []nws.Notification) error {
	for _, n := range notes {
		out, err := domain.NewOutputEvent(n)
		if err != nil {
			return err
		}
		for _, ch := range n.Extras.ChannelList() {
			topic := Topic(ch)
			token := p.client.Publish(topic, qos, false, out.Value)
			if err := wait(ctx, token); err != nil {
				return fmt.Errorf("publish %s: %w", topic, err)
			}
		}
	}
	return nil
}

func wait(ctx context.Context, token mqtt.Token) error {
	timer := time.NewTimer(publishTimeout)
	defer timer.Stop()
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("no acknowledgement after %s", publishTimeout)
	}
}

func (p *Publisher) Close() {
	if p.disconnect != nil {
		p.disconnect()
	}
}
