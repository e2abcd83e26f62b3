package push

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempStore(t *testing.T) (*StateStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.json")
	return NewStateStore(path), path
}

func TestStateStore_Defaults(t *testing.T) {
	store, _ := tempStore(t)

	permission, err := store.Permission()
	require.NoError(t, err)
	assert.Equal(t, PermissionDefault, permission)

	sub, err := store.Subscription()
	require.NoError(t, err)
	assert.Nil(t, sub)

	registered, err := store.IsRegistered("deadbeef")
	require.NoError(t, err)
	assert.False(t, registered)
}

func TestStateStore_PersistsAcrossInstances(t *testing.T) {
	store, path := tempStore(t)

	require.NoError(t, store.SetPermission(PermissionGranted))
	require.NoError(t, store.SetSubscription(&Subscription{
		Endpoint:   "http://127.0.0.1:8090/push/abc",
		Keys:       Keys{P256dh: "pk", Auth: "auth"},
		PrivateKey: "sk",
	}))
	require.NoError(t, store.SetRegistered("hash-1", true))

	reopened := NewStateStore(path)

	permission, err := reopened.Permission()
	require.NoError(t, err)
	assert.Equal(t, PermissionGranted, permission)

	sub, err := reopened.Subscription()
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, "http://127.0.0.1:8090/push/abc", sub.Endpoint)

	registered, err := reopened.IsRegistered("hash-1")
	require.NoError(t, err)
	assert.True(t, registered)
}

func TestStateStore_ClearRegistration(t *testing.T) {
	store, _ := tempStore(t)

	require.NoError(t, store.SetRegistered("hash-1", true))
	require.NoError(t, store.SetRegistered("hash-1", false))

	registered, err := store.IsRegistered("hash-1")
	require.NoError(t, err)
	assert.False(t, registered)
}

func TestStateStore_ClearSubscription(t *testing.T) {
	store, _ := tempStore(t)

	require.NoError(t, store.SetSubscription(&Subscription{Endpoint: "e"}))
	require.NoError(t, store.SetSubscription(nil))

	sub, err := store.Subscription()
	require.NoError(t, err)
	assert.Nil(t, sub)
}
