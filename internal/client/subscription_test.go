package client

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"issuehub/internal/httpapi/dto"
	"issuehub/internal/push"
)

type fakeManager struct {
	existing     *push.Subscription
	subscribeErr error
	subscribed   int
}

func (f *fakeManager) GetSubscription(ctx context.Context) (*push.Subscription, error) {
	return f.existing, nil
}

func (f *fakeManager) Subscribe(ctx context.Context, applicationServerKey string) (*push.Subscription, error) {
	if f.subscribeErr != nil {
		return nil, f.subscribeErr
	}
	f.subscribed++
	f.existing = &push.Subscription{
		Endpoint: "http://127.0.0.1:8090/push/new-token",
		Keys:     push.Keys{P256dh: "pk", Auth: "auth"},
	}
	return f.existing, nil
}

func (f *fakeManager) Unsubscribe(ctx context.Context) (bool, error) {
	had := f.existing != nil
	f.existing = nil
	return had, nil
}

type fakeProbe struct {
	available bool
	readyErr  error
}

func (f *fakeProbe) Available(ctx context.Context) bool { return f.available }
func (f *fakeProbe) Ready(ctx context.Context) error    { return f.readyErr }

type fakePrompter struct {
	decision push.PermissionState
	calls    int
}

func (f *fakePrompter) RequestPermission(ctx context.Context) (push.PermissionState, error) {
	f.calls++
	return f.decision, nil
}

type fakeRegistrar struct {
	registered   []string
	unregistered []string
	registerErr  error
}

func (f *fakeRegistrar) RegisterSubscription(ctx context.Context, req dto.SubscribeRequest) (*dto.SubscribeResponse, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	f.registered = append(f.registered, req.Endpoint)
	return &dto.SubscribeResponse{Success: true, TokenID: "token-1"}, nil
}

func (f *fakeRegistrar) UnregisterSubscription(ctx context.Context, endpoint string) error {
	f.unregistered = append(f.unregistered, endpoint)
	return nil
}

type controllerFixture struct {
	ctrl      *SubscriptionController
	manager   *fakeManager
	probe     *fakeProbe
	prompter  *fakePrompter
	registrar *fakeRegistrar
	store     *push.StateStore
}

func newFixture(t *testing.T) *controllerFixture {
	t.Helper()
	store := push.NewStateStore(filepath.Join(t.TempDir(), "state.json"))
	manager := &fakeManager{}
	probe := &fakeProbe{available: true}
	prompter := &fakePrompter{decision: push.PermissionGranted}
	registrar := &fakeRegistrar{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctrl := NewSubscriptionController(
		manager,
		probe,
		prompter,
		store,
		NewRegistrationController(registrar, store, logger),
		"server-key",
		logger,
	)
	return &controllerFixture{ctrl: ctrl, manager: manager, probe: probe, prompter: prompter, registrar: registrar, store: store}
}

func TestInit_NoUserStaysIdle(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.ctrl.Init(context.Background(), ""))

	assert.Equal(t, StateIdle, f.ctrl.State())
	assert.Zero(t, f.prompter.calls)
	assert.Zero(t, f.manager.subscribed)
}

func TestInit_AgentUnavailable(t *testing.T) {
	f := newFixture(t)
	f.probe.available = false

	require.NoError(t, f.ctrl.Init(context.Background(), "user-1"))

	assert.Equal(t, StateUnsupported, f.ctrl.State())
	assert.Equal(t, MsgUnsupported, f.ctrl.Message())
	assert.Zero(t, f.prompter.calls, "no capability means no permission prompt")
}

func TestInit_DeniedPermissionNeverReprompts(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.SetPermission(push.PermissionDenied))

	require.NoError(t, f.ctrl.Init(context.Background(), "user-1"))

	assert.Equal(t, StatePermissionDenied, f.ctrl.State())
	assert.Equal(t, MsgPermissionDenied, f.ctrl.Message())
	assert.Zero(t, f.prompter.calls)
	assert.Zero(t, f.manager.subscribed)
}

func TestInit_PromptGrantedSubscribesAndRegisters(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.ctrl.Init(context.Background(), "user-1"))

	assert.Equal(t, StateSubscribed, f.ctrl.State())
	assert.Equal(t, 1, f.prompter.calls)
	assert.Equal(t, 1, f.manager.subscribed)
	require.Len(t, f.registrar.registered, 1)

	// The prompt decision is persisted.
	permission, err := f.store.Permission()
	require.NoError(t, err)
	assert.Equal(t, push.PermissionGranted, permission)
}

func TestInit_PromptDenied(t *testing.T) {
	f := newFixture(t)
	f.prompter.decision = push.PermissionDenied

	require.NoError(t, f.ctrl.Init(context.Background(), "user-1"))

	assert.Equal(t, StatePermissionDenied, f.ctrl.State())
	assert.Zero(t, f.manager.subscribed)

	// A later Init finds the persisted denial and does not prompt again.
	require.NoError(t, f.ctrl.Init(context.Background(), "user-1"))
	assert.Equal(t, 1, f.prompter.calls)
}

func TestInit_AdoptsExistingSubscription(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.SetPermission(push.PermissionGranted))
	f.manager.existing = &push.Subscription{
		Endpoint: "http://127.0.0.1:8090/push/existing",
		Keys:     push.Keys{P256dh: "pk", Auth: "auth"},
	}

	require.NoError(t, f.ctrl.Init(context.Background(), "user-1"))

	assert.Equal(t, StateSubscribed, f.ctrl.State())
	assert.Zero(t, f.manager.subscribed, "existing subscription must be adopted, not replaced")
	assert.Zero(t, f.prompter.calls)
	require.Len(t, f.registrar.registered, 1)
	assert.Equal(t, "http://127.0.0.1:8090/push/existing", f.registrar.registered[0])
}

func TestInit_AdoptsBeforeResolvingPermission(t *testing.T) {
	f := newFixture(t)
	f.manager.existing = &push.Subscription{
		Endpoint: "http://127.0.0.1:8090/push/existing",
		Keys:     push.Keys{P256dh: "pk", Auth: "auth"},
	}

	// Permission is still default, but an existing subscription is adopted
	// without prompting.
	require.NoError(t, f.ctrl.Init(context.Background(), "user-1"))

	assert.Equal(t, StateSubscribed, f.ctrl.State())
	assert.Zero(t, f.prompter.calls)
	assert.Zero(t, f.manager.subscribed)
}

func TestInit_DeniedPermissionStillAdoptsExisting(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.SetPermission(push.PermissionDenied))
	f.manager.existing = &push.Subscription{
		Endpoint: "http://127.0.0.1:8090/push/existing",
		Keys:     push.Keys{P256dh: "pk", Auth: "auth"},
	}

	require.NoError(t, f.ctrl.Init(context.Background(), "user-1"))

	assert.Equal(t, StateSubscribed, f.ctrl.State())
	assert.Zero(t, f.prompter.calls)
	require.Len(t, f.registrar.registered, 1)
}

func TestInit_RegistrationMarkerSkipsSecondRegister(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.SetPermission(push.PermissionGranted))

	require.NoError(t, f.ctrl.Init(context.Background(), "user-1"))
	require.NoError(t, f.ctrl.Init(context.Background(), "user-1"))

	assert.Len(t, f.registrar.registered, 1, "a marked endpoint is not re-registered")
}

func TestInit_RegistrationFailureIsInvisible(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.SetPermission(push.PermissionGranted))
	f.registrar.registerErr = errors.New("backend down")

	// The device subscription succeeded, so the session is subscribed and
	// the backend failure is only logged.
	require.NoError(t, f.ctrl.Init(context.Background(), "user-1"))
	assert.Equal(t, StateSubscribed, f.ctrl.State())
	assert.Empty(t, f.ctrl.Message())
	assert.Empty(t, f.registrar.registered)
}

func TestInit_RegistrationFailureRetriesNextInit(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.SetPermission(push.PermissionGranted))
	f.registrar.registerErr = errors.New("backend down")

	require.NoError(t, f.ctrl.Init(context.Background(), "user-1"))

	// No marker was written, so the next session registers.
	f.registrar.registerErr = nil
	require.NoError(t, f.ctrl.Init(context.Background(), "user-1"))
	assert.Equal(t, StateSubscribed, f.ctrl.State())
	assert.Len(t, f.registrar.registered, 1)
}

func TestInit_AgentNotReady(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.SetPermission(push.PermissionGranted))
	f.probe.readyErr = errors.New("timed out")

	err := f.ctrl.Init(context.Background(), "user-1")
	require.Error(t, err)
	assert.Equal(t, StateError, f.ctrl.State())
	assert.Zero(t, f.manager.subscribed)
}

func TestClearError_OnlyResetsErrorState(t *testing.T) {
	f := newFixture(t)

	f.ctrl.ClearError()
	assert.Equal(t, StateIdle, f.ctrl.State())

	require.NoError(t, f.store.SetPermission(push.PermissionDenied))
	require.NoError(t, f.ctrl.Init(context.Background(), "user-1"))
	f.ctrl.ClearError()
	assert.Equal(t, StatePermissionDenied, f.ctrl.State(), "ClearError must not wipe a permission decision")
}

func TestUnsubscribe_ClearsMarkerAndUnregisters(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.SetPermission(push.PermissionGranted))

	require.NoError(t, f.ctrl.Init(context.Background(), "user-1"))
	endpoint := f.manager.existing.Endpoint

	had, err := f.ctrl.Unsubscribe(context.Background())
	require.NoError(t, err)
	assert.True(t, had)

	assert.Equal(t, StateIdle, f.ctrl.State())
	assert.Equal(t, []string{endpoint}, f.registrar.unregistered)

	// Re-subscribing the same endpoint registers again.
	require.NoError(t, f.ctrl.Init(context.Background(), "user-1"))
	assert.Len(t, f.registrar.registered, 2)
}

func TestUnsubscribe_NothingToDo(t *testing.T) {
	f := newFixture(t)

	had, err := f.ctrl.Unsubscribe(context.Background())
	require.NoError(t, err)
	assert.False(t, had, "no subscription existed to remove")
	assert.Empty(t, f.registrar.unregistered)
}

func TestResetPermission_AllowsReprompt(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.SetPermission(push.PermissionDenied))
	require.NoError(t, f.ctrl.Init(context.Background(), "user-1"))
	require.Equal(t, StatePermissionDenied, f.ctrl.State())

	require.NoError(t, f.ctrl.ResetPermission())
	require.NoError(t, f.ctrl.Init(context.Background(), "user-1"))

	assert.Equal(t, 1, f.prompter.calls)
	assert.Equal(t, StateSubscribed, f.ctrl.State())
}
