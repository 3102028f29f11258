package scheduling

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ErrLockHeld means another booking for the same key is in flight.
var ErrLockHeld = errors.New("slot lock is held")

// SlotLocker serializes booking commits. It is advisory: availability reads never take it.
type SlotLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// LocalLocker is an in-process SlotLocker for single-instance deployments.
type LocalLocker struct {
	mu   sync.Mutex
	seq  uint64
	held map[string]localLease
}

type localLease struct {
	token   uint64
	expires time.Time
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]localLease)}
}

func (l *LocalLocker) Acquire(_ context.Context, key string, ttl time.Duration) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if cur, ok := l.held[key]; ok && now.Before(cur.expires) {
		return nil, ErrLockHeld
	}
	l.seq++
	lease := localLease{token: l.seq, expires: now.Add(ttl)}
	l.held[key] = lease

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		// A lease that expired and was re-acquired belongs to someone else now.
		if cur, ok := l.held[key]; ok && cur.token == lease.token {
			delete(l.held, key)
		}
	}, nil
}

// releaseScript deletes the key only if we still own it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker shares booking locks across instances using SET NX PX.
type RedisLocker struct {
	Client *redis.Client
	Prefix string
}

func NewRedisLocker(client *redis.Client, prefix string) *RedisLocker {
	if prefix == "" {
		prefix = "booking-lock"
	}
	return &RedisLocker{Client: client, Prefix: prefix}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	fullKey := l.Prefix + ":" + key
	token := uuid.New().String()

	ok, err := l.Client.SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLockHeld
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, l.Client, []string{fullKey}, token).Err()
	}, nil
}
