package push

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// PermissionState mirrors the platform notification permission.
type PermissionState string

const (
	PermissionDefault PermissionState = "default"
	PermissionGranted PermissionState = "granted"
	PermissionDenied  PermissionState = "denied"
)

// deviceState is everything the push subsystem persists on one device:
// the notification permission, the subscription (including its private
// key), and the backend-registration markers keyed by endpoint hash.
type deviceState struct {
	Permission   PermissionState `json:"permission"`
	Subscription *Subscription   `json:"subscription,omitempty"`
	Registered   map[string]bool `json:"registered,omitempty"`
}

// StateStore is a file-backed key-value store shared by the agent and the
// foreground sessions on the same device.
type StateStore struct {
	mu   sync.Mutex
	path string
}

func NewStateStore(path string) *StateStore {
	return &StateStore{path: path}
}

// DefaultStatePath returns ~/.issuehub/state.json.
func DefaultStatePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".issuehub", "state.json"), nil
}

func (s *StateStore) load() (*deviceState, error) {
	state := &deviceState{Permission: PermissionDefault, Registered: map[string]bool{}}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return state, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read device state: %w", err)
	}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("failed to parse device state: %w", err)
	}
	if state.Permission == "" {
		state.Permission = PermissionDefault
	}
	if state.Registered == nil {
		state.Registered = map[string]bool{}
	}
	return state, nil
}

// save writes atomically via a temp file rename so a crash mid-write never
// corrupts the state other sessions share.
func (s *StateStore) save(state *deviceState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *StateStore) Permission() (PermissionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.load()
	if err != nil {
		return PermissionDefault, err
	}
	return state.Permission, nil
}

func (s *StateStore) SetPermission(p PermissionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.load()
	if err != nil {
		return err
	}
	state.Permission = p
	return s.save(state)
}

func (s *StateStore) Subscription() (*Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.load()
	if err != nil {
		return nil, err
	}
	return state.Subscription, nil
}

func (s *StateStore) SetSubscription(sub *Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.load()
	if err != nil {
		return err
	}
	state.Subscription = sub
	return s.save(state)
}

func (s *StateStore) IsRegistered(endpointHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.load()
	if err != nil {
		return false, err
	}
	return state.Registered[endpointHash], nil
}

func (s *StateStore) SetRegistered(endpointHash string, registered bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.load()
	if err != nil {
		return err
	}
	if registered {
		state.Registered[endpointHash] = true
	} else {
		delete(state.Registered, endpointHash)
	}
	return s.save(state)
}
