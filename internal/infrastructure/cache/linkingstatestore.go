package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LinkingStateInfo carries the OAuth flow context between the redirect and
// the callback: which linking token started the flow and the PKCE verifier.
type LinkingStateInfo struct {
	LinkingToken string    `json:"linking_token"`
	CodeVerifier string    `json:"code_verifier"`
	CreatedAt    time.Time `json:"created_at"`
}

// LinkingStateStore provides Redis-based state storage for the Discord OAuth
// linking flow.
type LinkingStateStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewLinkingStateStore creates a new LinkingStateStore instance. A TTL of a
// few minutes is enough; the customer is mid-redirect.
func NewLinkingStateStore(client *redis.Client, ttl time.Duration) *LinkingStateStore {
	return &LinkingStateStore{
		client: client,
		prefix: "guildpass:linking:state:",
		ttl:    ttl,
	}
}

// Set stores the flow context under the state key with TTL
func (s *LinkingStateStore) Set(ctx context.Context, state, linkingToken, codeVerifier string) error {
	if state == "" {
		return errors.New("state cannot be empty")
	}
	if linkingToken == "" {
		return errors.New("linking token cannot be empty")
	}
	if codeVerifier == "" {
		return errors.New("code_verifier cannot be empty")
	}

	info := LinkingStateInfo{
		LinkingToken: linkingToken,
		CodeVerifier: codeVerifier,
		CreatedAt:    time.Now().UTC(),
	}

	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal state info: %w", err)
	}

	if err := s.client.Set(ctx, s.buildKey(state), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store state in redis: %w", err)
	}

	return nil
}

// VerifyAndGet retrieves the flow context for a state (one-time use).
// GETDEL is atomic, so a replayed state fails here.
func (s *LinkingStateStore) VerifyAndGet(ctx context.Context, state string) (*LinkingStateInfo, error) {
	if state == "" {
		return nil, errors.New("state cannot be empty")
	}

	data, err := s.client.GetDel(ctx, s.buildKey(state)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errors.New("state not found or expired")
		}
		return nil, fmt.Errorf("failed to retrieve state from redis: %w", err)
	}

	var info LinkingStateInfo
	if err := json.Unmarshal([]byte(data), &info); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state info: %w", err)
	}

	return &info, nil
}

func (s *LinkingStateStore) buildKey(state string) string {
	return s.prefix + state
}
