package offlinequeue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on top of Redis. Each message is a hash with
// the immutable envelope under "data" and a separate numeric "attempts"
// field so the attempt count can be bumped atomically without rewriting the
// envelope. Enqueue order is kept in a list of ids.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// incrAttemptsScript increments the attempts field only if the message hash
// still exists, so a message removed by a concurrent drain is never
// resurrected as a counter-only key. Returns -1 for missing messages.
var incrAttemptsScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return -1
end
return redis.call("HINCRBY", KEYS[1], "attempts", 1)
`)

// NewRedisStore creates a Store persisting messages in Redis under the given
// key prefix (e.g. "safecheck:queue").
func NewRedisStore(client *redis.Client, keyPrefix string) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client cannot be nil")
	}
	if keyPrefix == "" {
		keyPrefix = "safecheck:queue"
	}

	return &RedisStore{
		client:    client,
		keyPrefix: keyPrefix,
	}, nil
}

func (rs *RedisStore) msgKey(id uuid.UUID) string {
	return rs.keyPrefix + ":msg:" + id.String()
}

func (rs *RedisStore) indexKey() string {
	return rs.keyPrefix + ":index"
}

// Append implements Store. The message hash and the index entry are written
// in one MULTI/EXEC transaction so a crash cannot leave a message reachable
// from only one of them.
func (rs *RedisStore) Append(ctx context.Context, msg Message) error {
	envelope := msg
	envelope.Attempts = 0 // attempts live in their own hash field

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal queued message %s: %w", msg.ID, err)
	}

	pipe := rs.client.TxPipeline()
	pipe.HSet(ctx, rs.msgKey(msg.ID), "data", data, "attempts", msg.Attempts)
	pipe.RPush(ctx, rs.indexKey(), msg.ID.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append queued message %s: %w", msg.ID, err)
	}

	return nil
}

// Snapshot implements Store. Ids whose hash has been removed by a concurrent
// drain are skipped.
func (rs *RedisStore) Snapshot(ctx context.Context) ([]Message, error) {
	ids, err := rs.client.LRange(ctx, rs.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read queue index: %w", err)
	}

	out := make([]Message, 0, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}

		fields, err := rs.client.HGetAll(ctx, rs.msgKey(id)).Result()
		if err != nil {
			return nil, fmt.Errorf("read queued message %s: %w", id, err)
		}
		if len(fields) == 0 {
			continue
		}

		var msg Message
		if err := json.Unmarshal([]byte(fields["data"]), &msg); err != nil {
			return nil, fmt.Errorf("unmarshal queued message %s: %w", id, err)
		}
		if _, err := fmt.Sscanf(fields["attempts"], "%d", &msg.Attempts); err != nil {
			msg.Attempts = 0
		}

		out = append(out, msg)
	}

	return out, nil
}

// Remove implements Store. Hash and index entry go in one transaction.
func (rs *RedisStore) Remove(ctx context.Context, id uuid.UUID) error {
	pipe := rs.client.TxPipeline()
	pipe.Del(ctx, rs.msgKey(id))
	pipe.LRem(ctx, rs.indexKey(), 0, id.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("remove queued message %s: %w", id, err)
	}

	return nil
}

// IncrementAttempts implements Store via a server-side script, keeping the
// existence check and the increment atomic.
func (rs *RedisStore) IncrementAttempts(ctx context.Context, id uuid.UUID) (int, error) {
	n, err := incrAttemptsScript.Run(ctx, rs.client, []string{rs.msgKey(id)}).Int()
	if err != nil {
		return 0, fmt.Errorf("increment attempts for %s: %w", id, err)
	}
	if n < 0 {
		return 0, ErrMessageNotFound
	}

	return n, nil
}
