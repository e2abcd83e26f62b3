package push

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Manager owns the device-side subscription lifecycle. Subscribe is
// idempotent: when a subscription already exists it is returned as-is, so
// concurrent foreground sessions converge on the same endpoint.
type Manager struct {
	store        *StateStore
	endpointBase string
}

func NewManager(store *StateStore, endpointBase string) *Manager {
	return &Manager{store: store, endpointBase: strings.TrimRight(endpointBase, "/")}
}

func (m *Manager) GetSubscription(ctx context.Context) (*Subscription, error) {
	return m.store.Subscription()
}

// Subscribe creates the device subscription, or returns the existing one.
// Every push to the resulting endpoint must surface a user-visible
// notification; the agent enforces that on delivery.
func (m *Manager) Subscribe(ctx context.Context, applicationServerKey string) (*Subscription, error) {
	if applicationServerKey == "" {
		return nil, fmt.Errorf("application server key is required")
	}

	existing, err := m.store.Subscription()
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	keys, privateKey, err := GenerateKeys()
	if err != nil {
		return nil, err
	}

	sub := &Subscription{
		Endpoint:   m.endpointBase + "/push/" + uuid.New().String(),
		Keys:       keys,
		PrivateKey: privateKey,
	}
	if err := m.store.SetSubscription(sub); err != nil {
		return nil, fmt.Errorf("failed to persist subscription: %w", err)
	}
	return sub, nil
}

// Unsubscribe removes the device subscription. Returns false when there was
// nothing to unsubscribe.
func (m *Manager) Unsubscribe(ctx context.Context) (bool, error) {
	existing, err := m.store.Subscription()
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}
	if err := m.store.SetSubscription(nil); err != nil {
		return false, err
	}
	return true, nil
}
