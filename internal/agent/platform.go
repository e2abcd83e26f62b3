package agent

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gen2brain/beeep"
	"github.com/redis/go-redis/v9"
)

// HeartbeatKey marks a live agent; foreground sessions wait on it before
// subscribing.
const HeartbeatKey = "issuehub:agent:alive"

const (
	heartbeatTTL      = 10 * time.Second
	heartbeatInterval = 5 * time.Second
	sessionKeyPrefix  = "issuehub:session:"
)

// ErrOpenUnsupported means the platform cannot open new windows; the click
// handler degrades to a no-op.
var ErrOpenUnsupported = errors.New("window opening not supported")

// Notifier displays user-visible notifications.
type Notifier interface {
	Notify(title, body, icon string) error
	Dismiss() error
}

type desktopNotifier struct{}

func NewDesktopNotifier() Notifier {
	return desktopNotifier{}
}

func (desktopNotifier) Notify(title, body, icon string) error {
	return beeep.Notify(title, body, icon)
}

// Dismiss is best effort; the desktop notification daemon expires
// notifications on its own.
func (desktopNotifier) Dismiss() error {
	return nil
}

// WindowSession is one registered foreground context and the path it is
// currently showing.
type WindowSession struct {
	ID   string
	Path string
}

// WindowClients enumerates and controls open foreground sessions.
type WindowClients interface {
	List(ctx context.Context) ([]WindowSession, error)
	Focus(ctx context.Context, sessionID string) error
	OpenWindow(ctx context.Context, url string) error
}

// redisWindowClients backs the session registry with Redis. Foreground
// sessions register themselves under sessionKeyPrefix with a TTL; focus
// requests go out on the session's control channel.
type redisWindowClients struct {
	client *redis.Client
	opener func(ctx context.Context, url string) error
}

// NewRedisWindowClients builds the registry. opener may be nil when the
// platform cannot open windows.
func NewRedisWindowClients(client *redis.Client, opener func(ctx context.Context, url string) error) WindowClients {
	return &redisWindowClients{client: client, opener: opener}
}

func (w *redisWindowClients) List(ctx context.Context) ([]WindowSession, error) {
	var sessions []WindowSession
	iter := w.client.Scan(ctx, 0, sessionKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		path, err := w.client.Get(ctx, key).Result()
		if err == redis.Nil {
			continue // expired between scan and get
		}
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, WindowSession{
			ID:   strings.TrimPrefix(key, sessionKeyPrefix),
			Path: path,
		})
	}
	return sessions, iter.Err()
}

func (w *redisWindowClients) Focus(ctx context.Context, sessionID string) error {
	return w.client.Publish(ctx, sessionKeyPrefix+sessionID+":ctl", "focus").Err()
}

func (w *redisWindowClients) OpenWindow(ctx context.Context, url string) error {
	if w.opener == nil {
		return ErrOpenUnsupported
	}
	return w.opener(ctx, url)
}

// sessionSetter is the slice of the Redis client the session registry
// writes through. *redis.Client satisfies it.
type sessionSetter interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RegisterSession announces a foreground session under its current path.
// The entry expires after heartbeatTTL; long-lived sessions pair it with
// KeepSessionAlive.
func RegisterSession(ctx context.Context, client sessionSetter, sessionID, path string) error {
	return client.Set(ctx, sessionKeyPrefix+sessionID, path, heartbeatTTL).Err()
}

// KeepSessionAlive refreshes a registered session until the context ends,
// so an idle session stays focusable from notification clicks.
func KeepSessionAlive(ctx context.Context, client sessionSetter, sessionID, path string) {
	keepSessionAlive(ctx, client, sessionID, path, heartbeatInterval)
}

func keepSessionAlive(ctx context.Context, client sessionSetter, sessionID, path string, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			client.Set(ctx, sessionKeyPrefix+sessionID, path, heartbeatTTL)
		}
	}
}

// Heartbeat keeps the agent liveness key refreshed until the context ends.
func Heartbeat(ctx context.Context, client *redis.Client) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	client.Set(ctx, HeartbeatKey, "1", heartbeatTTL)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			client.Set(ctx, HeartbeatKey, "1", heartbeatTTL)
		}
	}
}
