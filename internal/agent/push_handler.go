package agent

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"

	"issuehub/internal/broadcast"
	"issuehub/internal/push"
)

// Display defaults for payload fields the sender left out.
const (
	DefaultTitle = "New notification"
	DefaultBody  = "You have a new notification."
	DefaultIcon  = "/icons/notification.png"
	DefaultURL   = "/"
)

// SubscriptionSource yields the device subscription, or nil when there is
// none.
type SubscriptionSource interface {
	Subscription() (*push.Subscription, error)
}

// Broadcaster posts messages to foreground sessions. *broadcast.Broadcaster
// satisfies it.
type Broadcaster interface {
	Post(ctx context.Context, msg broadcast.Message) error
}

// PushHandler turns one push delivery into a displayed notification and a
// broadcast to foreground sessions. Each event is independent and handled
// at most once; delivery guarantees belong to the transport.
type PushHandler struct {
	subs        SubscriptionSource
	broadcaster Broadcaster
	notifier    Notifier
	windows     WindowClients
	logger      *slog.Logger
}

func NewPushHandler(
	subs SubscriptionSource,
	broadcaster Broadcaster,
	notifier Notifier,
	windows WindowClients,
	logger *slog.Logger,
) *PushHandler {
	return &PushHandler{
		subs:        subs,
		broadcaster: broadcaster,
		notifier:    notifier,
		windows:     windows,
		logger:      logger,
	}
}

// decodePayload decrypts and parses a delivery body. Any failure degrades
// to an empty payload; a push never errors out of display.
func (h *PushHandler) decodePayload(body []byte) push.Payload {
	var payload push.Payload

	sub, err := h.subs.Subscription()
	if err != nil || sub == nil {
		h.logger.Warn("push received with no subscription on device")
		return payload
	}

	plaintext, err := sub.Decrypt(body)
	if err != nil {
		h.logger.Warn("failed to decrypt push payload, using defaults", "error", err)
		return payload
	}
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		h.logger.Warn("failed to parse push payload, using defaults", "error", err)
		return push.Payload{}
	}
	return payload
}

func applyDefaults(p push.Payload) broadcast.NotificationPayload {
	if p.Title == "" {
		p.Title = DefaultTitle
	}
	if p.Body == "" {
		p.Body = DefaultBody
	}
	if p.Icon == "" {
		p.Icon = DefaultIcon
	}
	if p.URL == "" {
		p.URL = DefaultURL
	}
	return broadcast.NotificationPayload{
		Title: p.Title,
		Body:  p.Body,
		Icon:  p.Icon,
		Data:  broadcast.NotificationData{URL: p.URL},
	}
}

// HandlePush processes one delivery: broadcast first (best effort, one-shot
// channel), then display the notification and wait for it so the event is
// not acknowledged before the user can see anything.
func (h *PushHandler) HandlePush(ctx context.Context, body []byte) {
	notification := applyDefaults(h.decodePayload(body))

	if err := h.broadcaster.Post(ctx, broadcast.Message{
		Type:         broadcast.TypePushReceived,
		Notification: notification,
	}); err != nil {
		// Broadcast must never block display.
		h.logger.Warn("push broadcast failed", "error", err)
	}

	if err := h.notifier.Notify(notification.Title, notification.Body, notification.Icon); err != nil {
		h.logger.Error("failed to display notification", "error", err)
	}
}

// HandleClick processes a notification click: dismiss first, always, then
// broadcast the click, then focus an existing session showing the target
// path or open a new window.
func (h *PushHandler) HandleClick(ctx context.Context, notification broadcast.NotificationPayload) {
	if err := h.notifier.Dismiss(); err != nil {
		h.logger.Warn("failed to dismiss notification", "error", err)
	}

	if err := h.broadcaster.Post(ctx, broadcast.Message{
		Type:         broadcast.TypeNotificationClicked,
		Notification: notification,
	}); err != nil {
		h.logger.Warn("click broadcast failed", "error", err)
	}

	targetPath := notification.Data.URL
	if u, err := url.Parse(targetPath); err == nil {
		targetPath = u.Path
	}

	sessions, err := h.windows.List(ctx)
	if err != nil {
		h.logger.Error("failed to enumerate window sessions", "error", err)
		return
	}

	// First match wins; enumeration order is whatever the registry yields.
	for _, session := range sessions {
		if session.Path == targetPath {
			if err := h.windows.Focus(ctx, session.ID); err != nil {
				h.logger.Error("failed to focus session", "session", session.ID, "error", err)
			}
			return
		}
	}

	if err := h.windows.OpenWindow(ctx, notification.Data.URL); err != nil {
		if err == ErrOpenUnsupported {
			return
		}
		h.logger.Error("failed to open window", "url", notification.Data.URL, "error", err)
	}
}
