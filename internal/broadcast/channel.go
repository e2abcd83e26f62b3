package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// ChannelName is the fixed broadcast channel shared by the agent and every
// foreground session on the device.
const ChannelName = "issuehub:push"

const (
	TypePushReceived        = "PUSH_RECEIVED"
	TypeNotificationClicked = "NOTIFICATION_CLICKED"
)

type NotificationData struct {
	URL string `json:"url"`
}

type NotificationPayload struct {
	Title string           `json:"title"`
	Body  string           `json:"body"`
	Icon  string           `json:"icon"`
	Data  NotificationData `json:"data"`
}

type Message struct {
	Type         string              `json:"type"`
	Notification NotificationPayload `json:"notification"`
}

// publishConn is the slice of *redis.Conn the broadcaster needs. Tests
// substitute a fake.
type publishConn interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Close() error
}

// Broadcaster posts one-shot messages on the shared channel. Each Post
// acquires a dedicated connection, publishes, and releases it — the release
// happens even when the publish fails, so no handle leaks per event.
type Broadcaster struct {
	acquire func() publishConn
}

func NewBroadcaster(client *redis.Client) *Broadcaster {
	return &Broadcaster{acquire: func() publishConn { return client.Conn() }}
}

func newBroadcasterWithAcquire(acquire func() publishConn) *Broadcaster {
	return &Broadcaster{acquire: acquire}
}

func (b *Broadcaster) Post(ctx context.Context, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode broadcast message: %w", err)
	}

	conn := b.acquire()
	defer conn.Close()

	if err := conn.Publish(ctx, ChannelName, data).Err(); err != nil {
		return fmt.Errorf("failed to publish broadcast message: %w", err)
	}
	return nil
}

// Listener subscribes a foreground session to the shared channel.
type Listener struct {
	client *redis.Client
	logger *slog.Logger
}

func NewListener(client *redis.Client, logger *slog.Logger) *Listener {
	return &Listener{client: client, logger: logger}
}

// Listen yields decoded messages until the context is cancelled. Messages
// that fail to decode are logged and skipped; cross-context ordering is
// whatever the transport delivered.
func (l *Listener) Listen(ctx context.Context) (<-chan Message, error) {
	sub := l.client.Subscribe(ctx, ChannelName)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", ChannelName, err)
	}

	out := make(chan Message)
	go func() {
		defer close(out)
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case raw, ok := <-ch:
				if !ok {
					return
				}
				var msg Message
				if err := json.Unmarshal([]byte(raw.Payload), &msg); err != nil {
					l.logger.Warn("dropping undecodable broadcast message", "error", err)
					continue
				}
				select {
				case out <- msg:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
