package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"issuehub/internal/config"
	"issuehub/internal/httpapi/dto"
	"issuehub/internal/httpapi/models"
	"issuehub/internal/httpapi/repository"
	"issuehub/internal/push"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/google/uuid"
)

type PushService interface {
	Register(ctx context.Context, userID string, req dto.SubscribeRequest) (*dto.SubscribeResponse, error)
	Unregister(ctx context.Context, endpoint string) error
	SendToUser(ctx context.Context, userID string, payload push.Payload)
}

type pushService struct {
	subRepo         repository.PushSubscriptionRepository
	vapidPublicKey  string
	vapidPrivateKey string
	vapidSubject    string
	logger          *slog.Logger
}

func NewPushService(subRepo repository.PushSubscriptionRepository, cfg *config.Config, logger *slog.Logger) PushService {
	return &pushService{
		subRepo:         subRepo,
		vapidPublicKey:  cfg.VAPIDPublicKey,
		vapidPrivateKey: cfg.VAPIDPrivateKey,
		vapidSubject:    cfg.VAPIDSubject,
		logger:          logger,
	}
}

// Register upserts a device subscription. Registering the same endpoint
// twice is a no-op apart from refreshing the keys, so the client may retry
// freely.
func (s *pushService) Register(ctx context.Context, userID string, req dto.SubscribeRequest) (*dto.SubscribeResponse, error) {
	sub := &models.PushSubscription{
		ID:       uuid.New().String(),
		UserID:   userID,
		Endpoint: req.Endpoint,
		P256dh:   req.Keys.P256dh,
		Auth:     req.Keys.Auth,
	}
	if err := s.subRepo.Upsert(ctx, sub); err != nil {
		return nil, err
	}
	return &dto.SubscribeResponse{
		Success: true,
		Message: "subscription registered",
		TokenID: sub.ID,
	}, nil
}

func (s *pushService) Unregister(ctx context.Context, endpoint string) error {
	return s.subRepo.DeleteByEndpoint(ctx, endpoint)
}

// SendToUser dispatches the payload to every subscription of the user.
// Delivery is best effort: failures are logged, and subscriptions the push
// endpoint reports gone are pruned.
func (s *pushService) SendToUser(ctx context.Context, userID string, payload push.Payload) {
	if s.vapidPublicKey == "" || s.vapidPrivateKey == "" {
		s.logger.Warn("VAPID keys not configured, skipping push dispatch")
		return
	}

	subs, err := s.subRepo.GetByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to load push subscriptions", "user_id", userID, "error", err)
		return
	}
	if len(subs) == 0 {
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("failed to encode push payload", "error", err)
		return
	}

	for _, sub := range subs {
		resp, err := webpush.SendNotificationWithContext(ctx, body, &webpush.Subscription{
			Endpoint: sub.Endpoint,
			Keys: webpush.Keys{
				P256dh: sub.P256dh,
				Auth:   sub.Auth,
			},
		}, &webpush.Options{
			Subscriber:      s.vapidSubject,
			VAPIDPublicKey:  s.vapidPublicKey,
			VAPIDPrivateKey: s.vapidPrivateKey,
			TTL:             3600,
		})
		if err != nil {
			s.logger.Error("push delivery failed", "endpoint", sub.Endpoint, "error", err)
			continue
		}
		if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
			// The push endpoint no longer exists; drop the subscription.
			if err := s.subRepo.DeleteByEndpoint(ctx, sub.Endpoint); err != nil {
				s.logger.Error("failed to prune dead subscription", "endpoint", sub.Endpoint, "error", err)
			}
		}
		resp.Body.Close()
	}
}
