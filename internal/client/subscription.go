package client

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"issuehub/internal/push"
)

// State is the externally visible phase of the subscription controller.
type State string

const (
	StateIdle             State = "idle"
	StateUnsupported      State = "unsupported"
	StatePermissionDenied State = "permission_denied"
	StateSubscribing      State = "subscribing"
	StateSubscribed       State = "subscribed"
	StateError            State = "error"
)

// User-facing messages for the terminal states.
const (
	MsgUnsupported      = "Push notifications are not available on this device: the background agent is not reachable."
	MsgPermissionDenied = "Notifications are blocked. Re-enable them with `issuehub push enable --reset-permission` to receive updates."
)

// PushManager is the device-side subscription owner.
type PushManager interface {
	GetSubscription(ctx context.Context) (*push.Subscription, error)
	Subscribe(ctx context.Context, applicationServerKey string) (*push.Subscription, error)
	Unsubscribe(ctx context.Context) (bool, error)
}

// AgentProbe reports whether the background agent exists on this device and
// waits for it to come alive.
type AgentProbe interface {
	Available(ctx context.Context) bool
	Ready(ctx context.Context) error
}

// Prompter asks the user for notification permission. It is only ever
// invoked from the default permission state.
type Prompter interface {
	RequestPermission(ctx context.Context) (push.PermissionState, error)
}

// PermissionStore persists the permission decision across sessions.
// *push.StateStore satisfies it.
type PermissionStore interface {
	Permission() (push.PermissionState, error)
	SetPermission(p push.PermissionState) error
}

// SubscriptionController drives the device from "logged in" to "subscribed
// and registered with the backend". All transitions are serialized; reading
// State and Message is safe from any goroutine.
type SubscriptionController struct {
	mu sync.Mutex

	manager      PushManager
	probe        AgentProbe
	prompter     Prompter
	permissions  PermissionStore
	registration *RegistrationController
	serverKey    string
	logger       *slog.Logger

	state   State
	message string
}

func NewSubscriptionController(
	manager PushManager,
	probe AgentProbe,
	prompter Prompter,
	permissions PermissionStore,
	registration *RegistrationController,
	serverKey string,
	logger *slog.Logger,
) *SubscriptionController {
	return &SubscriptionController{
		manager:      manager,
		probe:        probe,
		prompter:     prompter,
		permissions:  permissions,
		registration: registration,
		serverKey:    serverKey,
		logger:       logger,
		state:        StateIdle,
	}
}

func (c *SubscriptionController) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *SubscriptionController) Message() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.message
}

func (c *SubscriptionController) set(state State, message string) {
	c.mu.Lock()
	c.state = state
	c.message = message
	c.mu.Unlock()
}

// ClearError resets a failed controller back to idle so Init can be retried.
// No-op in any other state.
func (c *SubscriptionController) ClearError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateError {
		c.state = StateIdle
		c.message = ""
	}
}

// Init runs the full activation sequence for the given user. With no user it
// does nothing and stays idle. An existing device subscription is adopted as
// is, without prompting or re-subscribing. Only when none exists does the
// permission flow run, and a denied permission is terminal: Init reports the
// remediation message and never re-prompts.
func (c *SubscriptionController) Init(ctx context.Context, userID string) error {
	if userID == "" {
		c.set(StateIdle, "")
		return nil
	}

	if !c.probe.Available(ctx) {
		c.set(StateUnsupported, MsgUnsupported)
		return nil
	}

	c.set(StateSubscribing, "")

	if err := c.probe.Ready(ctx); err != nil {
		c.set(StateError, "background agent did not become ready: "+err.Error())
		return err
	}

	sub, err := c.manager.GetSubscription(ctx)
	if err != nil {
		c.set(StateError, err.Error())
		return err
	}
	if sub != nil {
		return c.adopt(ctx, sub)
	}

	permission, err := c.permissions.Permission()
	if err != nil {
		c.set(StateError, err.Error())
		return err
	}

	switch permission {
	case push.PermissionDenied:
		c.set(StatePermissionDenied, MsgPermissionDenied)
		return nil
	case push.PermissionDefault:
		granted, err := c.askPermission(ctx)
		if err != nil {
			c.set(StateError, err.Error())
			return err
		}
		if !granted {
			c.set(StatePermissionDenied, MsgPermissionDenied)
			return nil
		}
	}

	sub, err = c.manager.Subscribe(ctx, c.serverKey)
	if err != nil {
		c.set(StateError, "failed to create subscription: "+err.Error())
		return err
	}
	c.logger.Info("created device push subscription", "endpoint", sub.Endpoint)

	return c.adopt(ctx, sub)
}

func (c *SubscriptionController) askPermission(ctx context.Context) (bool, error) {
	decision, err := c.prompter.RequestPermission(ctx)
	if err != nil {
		return false, fmt.Errorf("permission prompt failed: %w", err)
	}
	if err := c.permissions.SetPermission(decision); err != nil {
		return false, fmt.Errorf("failed to persist permission: %w", err)
	}
	return decision == push.PermissionGranted, nil
}

// adopt hands a held subscription to the registration controller and marks
// the session subscribed. Backend registration failure is invisible here:
// the subscription itself is live, and because no marker was written the
// next Init retries the registration.
func (c *SubscriptionController) adopt(ctx context.Context, sub *push.Subscription) error {
	if err := c.registration.SubscriptionAcquired(ctx, sub); err != nil {
		c.logger.Warn("failed to register subscription, retrying next session", "error", err)
	}
	c.set(StateSubscribed, "")
	return nil
}

// Unsubscribe tears the subscription down on the device and at the backend,
// and clears the registration marker so a future subscription re-registers.
// Returns false when there was no subscription to remove.
func (c *SubscriptionController) Unsubscribe(ctx context.Context) (bool, error) {
	sub, err := c.manager.GetSubscription(ctx)
	if err != nil {
		return false, err
	}
	if sub == nil {
		c.set(StateIdle, "")
		return false, nil
	}

	if _, err := c.manager.Unsubscribe(ctx); err != nil {
		return false, err
	}
	if err := c.registration.SubscriptionReleased(ctx, sub); err != nil {
		// Device-side teardown already happened; the backend prunes dead
		// endpoints on its next delivery attempt.
		c.logger.Warn("failed to unregister subscription", "error", err)
	}

	c.set(StateIdle, "")
	return true, nil
}

// ResetPermission forgets a denied decision so the next Init prompts again.
func (c *SubscriptionController) ResetPermission() error {
	if err := c.permissions.SetPermission(push.PermissionDefault); err != nil {
		return err
	}
	c.mu.Lock()
	if c.state == StatePermissionDenied {
		c.state = StateIdle
		c.message = ""
	}
	c.mu.Unlock()
	return nil
}
