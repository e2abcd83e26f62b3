package client

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"

	"issuehub/internal/httpapi/dto"
	"issuehub/internal/push"
)

// Registrar submits subscriptions to the backend. *APIClient satisfies it.
type Registrar interface {
	RegisterSubscription(ctx context.Context, req dto.SubscribeRequest) (*dto.SubscribeResponse, error)
	UnregisterSubscription(ctx context.Context, endpoint string) error
}

// MarkerStore persists which endpoints this device has already registered.
// *push.StateStore satisfies it.
type MarkerStore interface {
	IsRegistered(endpointHash string) (bool, error)
	SetRegistered(endpointHash string, registered bool) error
}

// RegistrationController makes backend registration happen at least once per
// subscription. The marker is written only after the backend acknowledges,
// so a crash between the two repeats the registration rather than losing it;
// the backend upserts on endpoint, so repeats are harmless.
type RegistrationController struct {
	registrar Registrar
	markers   MarkerStore
	logger    *slog.Logger
}

func NewRegistrationController(registrar Registrar, markers MarkerStore, logger *slog.Logger) *RegistrationController {
	return &RegistrationController{registrar: registrar, markers: markers, logger: logger}
}

// endpointHash keys the marker by endpoint without storing the endpoint
// itself twice.
func endpointHash(endpoint string) string {
	sum := sha256.Sum256([]byte(endpoint))
	return hex.EncodeToString(sum[:])
}

// SubscriptionAcquired handles a newly acquired (or adopted) subscription:
// if the endpoint is not yet marked registered, register it and mark it.
func (r *RegistrationController) SubscriptionAcquired(ctx context.Context, sub *push.Subscription) error {
	hash := endpointHash(sub.Endpoint)

	registered, err := r.markers.IsRegistered(hash)
	if err != nil {
		return err
	}
	if registered {
		return nil
	}

	resp, err := r.registrar.RegisterSubscription(ctx, dto.SubscribeRequest{
		Endpoint: sub.Endpoint,
		Keys: dto.SubscriptionKeys{
			P256dh: sub.Keys.P256dh,
			Auth:   sub.Keys.Auth,
		},
	})
	if err != nil {
		return err
	}
	r.logger.Info("registered push subscription", "tokenId", resp.TokenID)

	if err := r.markers.SetRegistered(hash, true); err != nil {
		// Registration itself succeeded; the unmarked endpoint just gets
		// re-registered next session.
		r.logger.Warn("failed to persist registration marker", "error", err)
	}
	return nil
}

// SubscriptionReleased clears the marker and tells the backend to drop the
// endpoint.
func (r *RegistrationController) SubscriptionReleased(ctx context.Context, sub *push.Subscription) error {
	if err := r.markers.SetRegistered(endpointHash(sub.Endpoint), false); err != nil {
		r.logger.Warn("failed to clear registration marker", "error", err)
	}
	return r.registrar.UnregisterSubscription(ctx, sub.Endpoint)
}
