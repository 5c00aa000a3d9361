package natspub

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/nws-text-ingest/internal/nws"
)

type fakeConn struct {
	msgs     []*nats.Msg
	flushed  bool
	pubErr   error
	flushErr error
}

func (f *fakeConn) PublishMsg(m *nats.Msg) error {
	if f.pubErr != nil {
		return f.pubErr
	}
	f.msgs = append(f.msgs, m)
	return nil
}

func (f *fakeConn) FlushWithContext(context.Context) error {
	f.flushed = true
	return f.flushErr
}

func newTestPublisher(c conn) *Publisher {
	return &Publisher{conn: c, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "nws.LSR.DMX", Subject("LSR.DMX"))
	assert.Equal(t, "nws.TO.W.DMX", Subject("TO.W.DMX"))
	assert.Equal(t, "nws.LSR.FUNNEL_CLOUD", Subject("LSR.FUNNEL CLOUD"))
	assert.Equal(t, "nws.SIGMET._", Subject("SIGMET.>"))
}

func TestPublish_OneMessagePerChannel(t *testing.T) {
	fc := &fakeConn{}
	p := newTestPublisher(fc)

	err := p.Publish(context.Background(), []nws.Notification{{
		Plain:  "DMX issues Tornado Warning for Polk [IA]",
		Extras: nws.Extras{Channels: "TO.W,DMX,TO.W.DMX", ProductID: "201905240212-KDMX-WFUS53-TORDMX"},
	}})
	require.NoError(t, err)

	require.Len(t, fc.msgs, 3)
	assert.Equal(t, "nws.TO.W", fc.msgs[0].Subject)
	assert.Equal(t, "nws.DMX", fc.msgs[1].Subject)
	assert.Equal(t, "nws.TO.W.DMX", fc.msgs[2].Subject)
	assert.Equal(t, "201905240212-KDMX-WFUS53-TORDMX", fc.msgs[0].Header.Get("product_id"))
	assert.Contains(t, string(fc.msgs[0].Data), "Tornado Warning")
	assert.True(t, fc.flushed)
}

func TestPublish_Errors(t *testing.T) {
	notes := []nws.Notification{{Extras: nws.Extras{Channels: "LSR.ALL"}}}

	err := newTestPublisher(&fakeConn{pubErr: nats.ErrConnectionClosed}).Publish(context.Background(), notes)
	require.ErrorIs(t, err, nats.ErrConnectionClosed)
	assert.Contains(t, err.Error(), "nws.LSR.ALL")

	err = newTestPublisher(&fakeConn{flushErr: errors.New("flush timeout")}).Publish(context.Background(), notes)
	require.Error(t, err)
}
