package messaging

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/nats-io/stan.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	stan.Conn

	published  map[string][]byte
	publishErr error
	queued     []string
	closed     bool
}

func (c *fakeConn) Publish(subject string, data []byte) error {
	if c.publishErr != nil {
		return c.publishErr
	}
	if c.published == nil {
		c.published = map[string][]byte{}
	}
	c.published[subject] = data
	return nil
}

func (c *fakeConn) QueueSubscribe(subject, qgroup string, cb stan.MsgHandler, opts ...stan.SubscriptionOption) (stan.Subscription, error) {
	c.queued = append(c.queued, subject+"/"+qgroup)
	return nil, nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func TestPublish_MarshalsJSON(t *testing.T) {
	conn := &fakeConn{}
	client := NewNATSClientWithConn(conn)

	err := client.Publish("ticket.refunded", map[string]any{"ticket_id": "t-1", "refund_percent": 80})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(conn.published["ticket.refunded"], &got))
	assert.Equal(t, "t-1", got["ticket_id"])
	assert.EqualValues(t, 80, got["refund_percent"])
}

func TestPublish_Errors(t *testing.T) {
	t.Run("not connected", func(t *testing.T) {
		client := NewNATSClientWithConn(nil)
		assert.ErrorContains(t, client.Publish("booking.completed", struct{}{}), "not connected")
	})

	t.Run("unmarshalable payload", func(t *testing.T) {
		client := NewNATSClientWithConn(&fakeConn{})
		assert.ErrorContains(t, client.Publish("booking.completed", make(chan int)), "failed to marshal")
	})

	t.Run("broker failure is wrapped", func(t *testing.T) {
		brokerErr := errors.New("stan: connection closed")
		client := NewNATSClientWithConn(&fakeConn{publishErr: brokerErr})
		assert.ErrorIs(t, client.Publish("booking.completed", struct{}{}), brokerErr)
	})
}

func TestSubscribeQueueAndClose(t *testing.T) {
	conn := &fakeConn{}
	client := NewNATSClientWithConn(conn)

	_, err := client.SubscribeQueue("ticket.checked_in", "consumers", func(*stan.Msg) {})
	require.NoError(t, err)
	assert.Equal(t, []string{"ticket.checked_in/consumers"}, conn.queued)

	require.NoError(t, client.Close())
	assert.True(t, conn.closed)
	assert.NoError(t, NewNATSClientWithConn(nil).Close())
}
