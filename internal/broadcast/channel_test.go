package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	published  [][]byte
	channel    string
	publishErr error
	closed     bool
}

func (f *fakeConn) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	f.channel = channel
	if f.publishErr != nil {
		return redis.NewIntResult(0, f.publishErr)
	}
	f.published = append(f.published, message.([]byte))
	return redis.NewIntResult(1, nil)
}

func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

func TestBroadcaster_PostPublishesOnSharedChannel(t *testing.T) {
	conn := &fakeConn{}
	b := newBroadcasterWithAcquire(func() publishConn { return conn })

	msg := Message{
		Type: TypePushReceived,
		Notification: NotificationPayload{
			Title: "Build done",
			Body:  "All tests passed",
			Data:  NotificationData{URL: "/issue/7"},
		},
	}
	require.NoError(t, b.Post(context.Background(), msg))

	assert.Equal(t, ChannelName, conn.channel)
	require.Len(t, conn.published, 1)

	var decoded Message
	require.NoError(t, json.Unmarshal(conn.published[0], &decoded))
	assert.Equal(t, msg, decoded)
}

func TestBroadcaster_ReleasesConnectionOnPublishFailure(t *testing.T) {
	conn := &fakeConn{publishErr: errors.New("broker gone")}
	b := newBroadcasterWithAcquire(func() publishConn { return conn })

	err := b.Post(context.Background(), Message{Type: TypePushReceived})
	assert.Error(t, err)
	assert.True(t, conn.closed, "the connection must be released even when publish fails")
}

func TestBroadcaster_ReleasesConnectionPerPost(t *testing.T) {
	var acquired int
	b := newBroadcasterWithAcquire(func() publishConn {
		acquired++
		return &fakeConn{}
	})

	for i := 0; i < 3; i++ {
		require.NoError(t, b.Post(context.Background(), Message{Type: TypeNotificationClicked}))
	}
	assert.Equal(t, 3, acquired, "each post acquires its own connection")
}
