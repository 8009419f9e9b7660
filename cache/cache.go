package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/thaivoice/thaivoice-service/config"
)

const (
	keyPrefix    = "thaivoice:"
	exchangesKey = keyPrefix + "exchanges"

	maxExchanges = 50
)

// Exchange is one prompt/reply pair recorded for the activity feed.
type Exchange struct {
	SessionID string    `json:"session_id"`
	Prompt    string    `json:"prompt"`
	Reply     string    `json:"reply"`
	Timestamp time.Time `json:"timestamp"`
}

// DB is a redis-backed activity cache. It is entirely optional: a nil *DB is
// valid and every method degrades to a no-op, so callers never need to guard.
type DB struct {
	rdb *redis.Client
	ctx context.Context
}

// New connects to redis. It returns (nil, nil) when no address is configured.
func New(cfg *config.RedisConfig) (*DB, error) {
	if cfg == nil || cfg.Addr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("could not connect to cache at %s: %w", cfg.Addr, err)
	}
	return &DB{rdb: rdb, ctx: ctx}, nil
}

// AddExchange pushes an exchange onto the bounded recent-activity list.
func (db *DB) AddExchange(ex *Exchange) error {
	if db == nil {
		return nil
	}
	if ex.Timestamp.IsZero() {
		ex.Timestamp = time.Now()
	}
	payload, err := json.Marshal(ex)
	if err != nil {
		return fmt.Errorf("could not marshal exchange: %w", err)
	}
	return db.addToList(exchangesKey, string(payload), maxExchanges)
}

// RecentExchanges returns up to limit exchanges, newest first. Entries that no
// longer decode are skipped.
func (db *DB) RecentExchanges(limit int64) ([]*Exchange, error) {
	if db == nil {
		return nil, nil
	}
	if limit <= 0 || limit > maxExchanges {
		limit = maxExchanges
	}
	raw, err := db.rdb.LRange(db.ctx, exchangesKey, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("could not read recent exchanges: %w", err)
	}
	out := make([]*Exchange, 0, len(raw))
	for _, item := range raw {
		var ex Exchange
		if err := json.Unmarshal([]byte(item), &ex); err != nil {
			continue
		}
		out = append(out, &ex)
	}
	return out, nil
}

// Ping reports cache reachability.
func (db *DB) Ping() error {
	if db == nil {
		return nil
	}
	return db.rdb.Ping(db.ctx).Err()
}

// Close releases the redis connection.
func (db *DB) Close() error {
	if db == nil {
		return nil
	}
	return db.rdb.Close()
}

func (db *DB) addToList(key, value string, max int64) error {
	pipe := db.rdb.Pipeline()
	pipe.LPush(db.ctx, key, value)
	pipe.LTrim(db.ctx, key, 0, max-1)
	_, err := pipe.Exec(db.ctx)
	return err
}
