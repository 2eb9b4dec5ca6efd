package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"docassist/internal/data/redisStore"
	"docassist/internal/domain/ragmodel"
)

// RedisLog keeps a session's turns in a redis list so history survives a
// process restart. Turns are JSON, RPUSHed in order; the key expires with
// the configured TTL so abandoned sessions age out on their own.
type RedisLog struct {
	store     *redisStore.Store
	sessionId string
	ttl       time.Duration
}

func NewRedisLog(store *redisStore.Store, sessionId string, ttl time.Duration) *RedisLog {
	return &RedisLog{store: store, sessionId: sessionId, ttl: ttl}
}

func (l *RedisLog) Append(ctx context.Context, turn ragmodel.Turn) error {
	count, err := l.store.ListLen(ctx, l.key())
	if err != nil {
		return fmt.Errorf("redis turn count failed: %w", err)
	}
	turn.Ordinal = int(count)

	payload, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("marshal turn failed: %w", err)
	}
	if err := l.store.ListPush(ctx, l.key(), payload, l.ttl); err != nil {
		return fmt.Errorf("redis append turn failed: %w", err)
	}
	return nil
}

func (l *RedisLog) Turns(ctx context.Context) ([]ragmodel.Turn, error) {
	raw, err := l.store.ListGetAll(ctx, l.key())
	if err != nil {
		return nil, fmt.Errorf("redis read turns failed: %w", err)
	}

	turns := make([]ragmodel.Turn, 0, len(raw))
	for _, item := range raw {
		var turn ragmodel.Turn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			return nil, fmt.Errorf("unmarshal turn failed: %w", err)
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

func (l *RedisLog) Len(ctx context.Context) (int, error) {
	count, err := l.store.ListLen(ctx, l.key())
	if err != nil {
		return 0, fmt.Errorf("redis turn count failed: %w", err)
	}
	return int(count), nil
}

func (l *RedisLog) Clear(ctx context.Context) error {
	if err := l.store.Del(ctx, l.key()); err != nil {
		return fmt.Errorf("redis clear turns failed: %w", err)
	}
	return nil
}

func (l *RedisLog) key() string {
	return "session:turns:" + l.sessionId
}
