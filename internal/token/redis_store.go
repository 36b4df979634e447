package token

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps tokens in Redis under two keys: the token itself
// ("token:<key>") and a per-principal index ("token:principal:<id>")
// pointing at the principal's current key. Both are written in one
// transactional pipeline, so each store operation is atomic. Keys carry
// no native Redis TTL: expiry is the lifecycle manager's job, which
// means an expired token that is never touched again simply stays put.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "token:",
	}
}

func (r *RedisStore) key(tokenKey string) string {
	return r.prefix + tokenKey
}

func (r *RedisStore) principalKey(principalID string) string {
	return r.prefix + "principal:" + principalID
}

func (r *RedisStore) Create(ctx context.Context, t Token) error {
	if t.Key == "" || t.PrincipalID == "" {
		return fmt.Errorf("token: missing key or principal_id")
	}

	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("token: failed to marshal: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.key(t.Key), data, 0)
		pipe.Set(ctx, r.principalKey(t.PrincipalID), t.Key, 0)
		return nil
	})
	return err
}

func (r *RedisStore) Get(ctx context.Context, key string) (*Token, error) {
	val, err := r.client.Get(ctx, r.key(key)).Result()
	if err == redis.Nil {
		return nil, nil // not found
	}
	if err != nil {
		return nil, err
	}

	var t Token
	if err := json.Unmarshal([]byte(val), &t); err != nil {
		return nil, fmt.Errorf("token: failed to unmarshal: %w", err)
	}

	return &t, nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	t, err := r.Get(ctx, key)
	if err != nil {
		return err
	}
	if t == nil {
		return nil
	}

	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return err
	}

	// Drop the index only while it still points at this key, so a
	// concurrent re-issue for the same principal is not clobbered.
	current, err := r.client.Get(ctx, r.principalKey(t.PrincipalID)).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}
	if current == key {
		return r.client.Del(ctx, r.principalKey(t.PrincipalID)).Err()
	}
	return nil
}

func (r *RedisStore) DeleteByPrincipal(ctx context.Context, principalID string) error {
	current, err := r.client.Get(ctx, r.principalKey(principalID)).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.key(current))
		pipe.Del(ctx, r.principalKey(principalID))
		return nil
	})
	return err
}

// All scans the token keyspace. Only used by the optional sweep.
func (r *RedisStore) All(ctx context.Context) ([]Token, error) {
	var out []Token

	iter := r.client.Scan(ctx, 0, r.key("*"), 100).Iterator()
	for iter.Next(ctx) {
		k := iter.Val()
		val, err := r.client.Get(ctx, k).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, err
		}

		var t Token
		if err := json.Unmarshal([]byte(val), &t); err != nil {
			// principal index entries live under the same prefix and
			// are plain strings, skip them
			continue
		}
		out = append(out, t)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}

	return out, nil
}
