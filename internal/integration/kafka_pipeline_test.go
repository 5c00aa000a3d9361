//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/nws-text-ingest/internal/adapter/kafka"
	"github.com/couchcryptid/nws-text-ingest/internal/config"
	"github.com/couchcryptid/nws-text-ingest/internal/domain"
	"github.com/couchcryptid/nws-text-ingest/internal/nws"
	"github.com/couchcryptid/nws-text-ingest/internal/nws/dispatch"
	"github.com/couchcryptid/nws-text-ingest/internal/observability"
	"github.com/couchcryptid/nws-text-ingest/internal/pipeline"
)

const (
	testSourceTopic = "test-source"
	testSinkTopic   = "test-sink"
)

var lsrIssued = time.Date(2005, time.April, 30, 3, 5, 0, 0, time.UTC)

// lsrBulletin is a Jackson MS storm report carrying two hail reports.
var lsrBulletin = "NWUS54 KJAN 300300\nLSRJAN\n\n" +
	"PRELIMINARY LOCAL STORM REPORT\nNATIONAL WEATHER SERVICE JACKSON MS\n" +
	"1000 PM CST FRI APR 29 2005\n\n" +
	"..TIME...   ...EVENT...      ...CITY LOCATION...     ...LAT.LON...\n" +
	"..DATE...   ....MAG....      ..COUNTY LOCATION..ST.. ...SOURCE....\n\n" +
	fmt.Sprintf("%-12s%-17s%-24s%s\n%-12s%-17s%-19s%-2s   %s\n\n",
		"0914 PM", "HAIL", "SHAW", "33.60N 90.77W", "04/29/2005", "1.00 INCH", "BOLIVAR", "MS", "EMERGENCY MNGR") +
	fmt.Sprintf("%-12s%-17s%-24s%s\n%-12s%-17s%-19s%-2s   %s\n",
		"0930 PM", "HAIL", "CLEVELAND", "33.74N 90.72W", "04/29/2005", "1.75 INCH", "BOLIVAR", "MS", "TRAINED SPOTTER") +
	"\n&&\n\n$$\n"

// sinkMessage holds a notification read from the sink topic.
type sinkMessage struct {
	Note    nws.Notification
	Key     string
	Headers map[string]string
}

func readNotification(ctx context.Context, t *testing.T, consumer *kafkago.Reader) sinkMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var note nws.Notification
	require.NoError(t, json.Unmarshal(msg.Value, &note), "unmarshal sink message")
	return sinkMessage{Note: note, Key: string(msg.Key), Headers: headers}
}

func testConfig(broker, group string) *config.Config {
	return &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaSourceTopic:   testSourceTopic,
		KafkaSinkTopic:     testSinkTopic,
		KafkaGroupID:       fmt.Sprintf("%s-%d", group, time.Now().UnixNano()),
		BatchFlushInterval: 5 * time.Second,
	}
}

func sinkConsumer(t *testing.T, broker string) *kafkago.Reader {
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })
	return consumer
}

// TestKafkaReaderWriter round-trips one bulletin through kafka.Reader, the
// transformer and kafka.Writer.
func TestKafkaReaderWriter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)
	cfg := testConfig(broker, "test-reader")

	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: testSourceTopic}
	t.Cleanup(func() { _ = producer.Close() })
	require.NoError(t, producer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte("LSRJAN"),
		Value: []byte(lsrBulletin),
		Time:  lsrIssued,
	}))

	// The consumer group may need time to rebalance before partitions
	// are assigned.
	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	var batch []domain.RawEvent
	for {
		var err error
		batch, err = reader.ExtractBatch(ctx, 1)
		require.NoError(t, err)
		if len(batch) > 0 {
			break
		}
		if ctx.Err() != nil {
			t.Fatal("timed out waiting for message from source topic")
		}
	}
	require.Len(t, batch, 1)
	raw := batch[0]
	assert.Equal(t, []byte("LSRJAN"), raw.Key)
	assert.Equal(t, testSourceTopic, raw.Topic)
	require.NotNil(t, raw.Commit, "commit callback should be set")
	require.NoError(t, raw.Commit(ctx))

	transformer := pipeline.NewTransformer(dispatch.NewDefault(dispatch.Deps{}), discardLogger())
	product, err := transformer.Transform(ctx, raw)
	require.NoError(t, err)
	require.Len(t, product.Notifications, 2)

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })
	require.NoError(t, writer.Publish(ctx, product.Notifications))

	consumer := sinkConsumer(t, broker)
	for range product.Notifications {
		msg := readNotification(ctx, t, consumer)
		assert.Equal(t, "200504300300-KJAN-NWUS54-LSRJAN", msg.Key)
		assert.Equal(t, msg.Key, msg.Headers["product_id"])
		assert.Equal(t, msg.Note.Extras.Channels, msg.Headers["channels"])
		assert.Contains(t, msg.Note.Extras.ChannelList(), "LSR.ALL")
		assert.Contains(t, msg.Note.Plain, "reports hail")
	}
}

// TestPipelineEndToEnd runs Reader, Transformer and Loader together and
// checks that a poison message is skipped while valid bulletins flow.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)
	cfg := testConfig(broker, "test-pipeline")

	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: testSourceTopic}
	t.Cleanup(func() { _ = producer.Close() })
	require.NoError(t, producer.WriteMessages(ctx,
		kafkago.Message{Key: []byte("bad"), Value: []byte("not a bulletin"), Time: lsrIssued},
		kafkago.Message{Key: []byte("LSRJAN"), Value: []byte(lsrBulletin), Time: lsrIssued},
	))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	transformer := pipeline.NewTransformer(dispatch.NewDefault(dispatch.Deps{}), discardLogger())
	loader := pipeline.NewLoader(nil, nil, discardLogger(), metrics, writer)
	p := pipeline.New(reader, transformer, loader, discardLogger(), metrics, 50)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := sinkConsumer(t, broker)
	var places []string
	for range 2 {
		msg := readNotification(ctx, t, consumer)
		assert.Equal(t, "200504300300-KJAN-NWUS54-LSRJAN", msg.Key)
		places = append(places, msg.Note.Plain)
	}
	require.Len(t, places, 2)
	assert.Contains(t, places[0]+places[1], "Shaw")
	assert.Contains(t, places[0]+places[1], "Cleveland")

	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err := consumer.ReadMessage(readCtx)
	readCancel()
	assert.Error(t, err, "expected no further messages on sink topic")

	pipelineCancel()
	require.NoError(t, <-errCh)
}
