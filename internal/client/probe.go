package client

import (
	"context"
	"fmt"
	"time"

	"issuehub/internal/agent"

	"github.com/redis/go-redis/v9"
)

const readyPollInterval = 250 * time.Millisecond

// redisAgentProbe checks for the background agent through its liveness key.
type redisAgentProbe struct {
	client *redis.Client
}

func NewRedisAgentProbe(client *redis.Client) AgentProbe {
	return &redisAgentProbe{client: client}
}

// Available reports whether the device has the push machinery at all: with
// no reachable broker there is no agent to deliver to.
func (p *redisAgentProbe) Available(ctx context.Context) bool {
	return p.client.Ping(ctx).Err() == nil
}

// Ready blocks until the agent heartbeat appears or the context ends.
func (p *redisAgentProbe) Ready(ctx context.Context) error {
	ticker := time.NewTicker(readyPollInterval)
	defer ticker.Stop()

	for {
		n, err := p.client.Exists(ctx, agent.HeartbeatKey).Result()
		if err != nil {
			return fmt.Errorf("agent liveness check failed: %w", err)
		}
		if n > 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for agent: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}
