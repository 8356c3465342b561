package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/mreynaud/go-storefront/internal/entity"
)

type redisStore struct {
	client *redis.Client
}

// NewRedisStore creates a session Store on Redis. Keys carry a sliding TTL.
func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

func (s *redisStore) cartKey(sid string) string { return "session:" + sid + ":cart" }
func (s *redisStore) userKey(sid string) string { return "session:" + sid + ":user" }
func (s *redisStore) checkoutKey(sid, token string) string {
	return "session:" + sid + ":checkout:" + token
}

func (s *redisStore) Cart(ctx context.Context, sid string) (entity.Cart, error) {
	raw, err := s.client.Get(ctx, s.cartKey(sid)).Bytes()
	if errors.Is(err, redis.Nil) {
		return entity.Cart{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var cart entity.Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	return cart, nil
}

func (s *redisStore) SetCart(ctx context.Context, sid string, cart entity.Cart) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.client.Set(ctx, s.cartKey(sid), raw, TTL).Err(); err != nil {
		return fmt.Errorf("failed to store cart: %w", err)
	}
	return nil
}

func (s *redisStore) ClearCart(ctx context.Context, sid string) error {
	if err := s.client.Del(ctx, s.cartKey(sid)).Err(); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (s *redisStore) UserID(ctx context.Context, sid string) (string, error) {
	userID, err := s.client.Get(ctx, s.userKey(sid)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load session user: %w", err)
	}
	return userID, nil
}

func (s *redisStore) BindUser(ctx context.Context, sid, userID string) error {
	if err := s.client.Set(ctx, s.userKey(sid), userID, TTL).Err(); err != nil {
		return fmt.Errorf("failed to bind session user: %w", err)
	}
	return nil
}

func (s *redisStore) UnbindUser(ctx context.Context, sid string) error {
	if err := s.client.Del(ctx, s.userKey(sid)).Err(); err != nil {
		return fmt.Errorf("failed to unbind session user: %w", err)
	}
	return nil
}

func (s *redisStore) StashCheckout(ctx context.Context, sid, token string, pc PendingCheckout) error {
	raw, err := json.Marshal(pc)
	if err != nil {
		return fmt.Errorf("failed to encode pending checkout: %w", err)
	}
	if err := s.client.Set(ctx, s.checkoutKey(sid, token), raw, TTL).Err(); err != nil {
		return fmt.Errorf("failed to stash pending checkout: %w", err)
	}
	return nil
}

func (s *redisStore) TakeCheckout(ctx context.Context, sid, token string) (*PendingCheckout, error) {
	// GETDEL makes the token single-use even under concurrent callbacks.
	raw, err := s.client.GetDel(ctx, s.checkoutKey(sid, token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to take pending checkout: %w", err)
	}

	var pc PendingCheckout
	if err := json.Unmarshal(raw, &pc); err != nil {
		return nil, fmt.Errorf("failed to decode pending checkout: %w", err)
	}
	return &pc, nil
}
