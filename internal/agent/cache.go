package agent

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// authBypassPath: requests for exactly this path never touch the cache, in
// either direction.
const authBypassPath = "/api/login"

// CacheManager keeps a fixed manifest of static assets available offline
// under a single live cache version, and serves a network-first policy with
// cache fallback on transport failure.
type CacheManager struct {
	store    CacheStore
	version  string
	manifest []string
	origin   string
	client   *http.Client
	logger   *slog.Logger
}

func NewCacheManager(store CacheStore, version string, manifest []string, origin string, logger *slog.Logger) *CacheManager {
	return &CacheManager{
		store:    store,
		version:  version,
		manifest: manifest,
		origin:   strings.TrimRight(origin, "/"),
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
	}
}

// Install fetches every manifest asset and commits them as the current
// version. All-or-nothing: a single failed fetch aborts the install and
// leaves the store untouched, so the previous version stays live.
func (m *CacheManager) Install(ctx context.Context) error {
	staged := make(map[string]CachedResponse, len(m.manifest))
	for _, path := range m.manifest {
		resp, err := m.fetchNetwork(ctx, m.origin+path)
		if err != nil {
			return fmt.Errorf("install aborted, failed to fetch %s: %w", path, err)
		}
		if resp.Status >= 400 {
			return fmt.Errorf("install aborted, %s returned status %d", path, resp.Status)
		}
		staged[path] = *resp
	}

	if err := m.store.Put(ctx, m.version, staged); err != nil {
		return fmt.Errorf("install aborted, failed to commit cache: %w", err)
	}
	m.logger.Info("asset cache installed", "version", m.version, "assets", len(m.manifest))
	return nil
}

// Activate deletes every cache version except the current one. Running it
// again with no version change deletes nothing.
func (m *CacheManager) Activate(ctx context.Context) error {
	versions, err := m.store.Versions(ctx)
	if err != nil {
		return fmt.Errorf("failed to enumerate cache versions: %w", err)
	}

	for _, v := range versions {
		if v == m.version {
			continue
		}
		if err := m.store.Delete(ctx, v); err != nil {
			return fmt.Errorf("failed to delete stale cache %s: %w", v, err)
		}
		m.logger.Info("deleted stale asset cache", "version", v)
	}
	return nil
}

// Fetch resolves a request path. The auth endpoint bypasses caching in both
// directions; everything else is network-first with cache fallback on
// transport failure only. An HTTP error status is a response, not a failure.
func (m *CacheManager) Fetch(ctx context.Context, path string) (*CachedResponse, error) {
	target := m.origin + path
	if u, err := url.Parse(target); err == nil && u.Path == authBypassPath {
		return m.fetchNetwork(ctx, target)
	}

	resp, netErr := m.fetchNetwork(ctx, target)
	if netErr == nil {
		return resp, nil
	}

	cached, err := m.store.Match(ctx, m.version, path)
	if err != nil {
		m.logger.Warn("cache lookup failed", "path", path, "error", err)
		return nil, netErr
	}
	if cached == nil {
		return nil, netErr
	}
	return cached, nil
}

func (m *CacheManager) fetchNetwork(ctx context.Context, target string) (*CachedResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &CachedResponse{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
