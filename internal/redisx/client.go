package redisx

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

func Exists(ctx context.Context, rdb redis.Cmdable, key string) (bool, error) {
	n, err := rdb.Exists(ctx, key).Result()
	return n > 0, err
}

// Idempotency remembers which resource an idempotency key produced. A key
// is first claimed with a pending marker owned by one request, then bound
// to the created id, or released when creation fails.
type Idempotency struct {
	rdb redis.Cmdable
	ttl time.Duration
}

const pendingPrefix = "pending:"

var ErrClaimLost = errors.New("idempotency claim lost")

// compare-and-set on the claim marker
const (
	completeScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3]) end return false`
	releaseScript  = `if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("DEL", KEYS[1]) end return 0`
)

func NewIdempotency(rdb redis.Cmdable) *Idempotency {
	return &Idempotency{rdb: rdb, ttl: TTLIdempotency}
}

// Claim tries to reserve key for the request identified by token. When
// another request holds the key, claimed is false and id is the bound
// resource, or "" while that request is still running.
func (i *Idempotency) Claim(ctx context.Context, key, token string) (id string, claimed bool, err error) {
	k := fmt.Sprintf(KeyIdemIssuanceCreate, key)
	ok, err := i.rdb.SetNX(ctx, k, pendingPrefix+token, i.ttl).Result()
	if err != nil {
		return "", false, err
	}
	if ok {
		return "", true, nil
	}
	v, err := i.rdb.Get(ctx, k).Result()
	switch {
	case errors.Is(err, redis.Nil):
		// released between SETNX and GET; the caller may claim again
		return "", false, nil
	case err != nil:
		return "", false, err
	case strings.HasPrefix(v, pendingPrefix):
		return "", false, nil
	}
	return v, false, nil
}

// Complete binds a claimed key to id for the full TTL.
func (i *Idempotency) Complete(ctx context.Context, key, token, id string) error {
	k := fmt.Sprintf(KeyIdemIssuanceCreate, key)
	err := i.rdb.Eval(ctx, completeScript, []string{k}, pendingPrefix+token, id, i.ttl.Milliseconds()).Err()
	if errors.Is(err, redis.Nil) {
		return ErrClaimLost
	}
	return err
}

// Release drops a claim so a retry can create the resource.
func (i *Idempotency) Release(ctx context.Context, key, token string) error {
	k := fmt.Sprintf(KeyIdemIssuanceCreate, key)
	return i.rdb.Eval(ctx, releaseScript, []string{k}, pendingPrefix+token).Err()
}

// Lookup returns the id bound to key, or "" when the key is unseen or
// still pending.
func (i *Idempotency) Lookup(ctx context.Context, key string) (string, error) {
	v, err := i.rdb.Get(ctx, fmt.Sprintf(KeyIdemIssuanceCreate, key)).Result()
	if errors.Is(err, redis.Nil) || strings.HasPrefix(v, pendingPrefix) {
		return "", nil
	}
	return v, err
}

// Dedup marks processed event ids per consumer.
type Dedup struct {
	rdb      redis.Cmdable
	consumer string
	ttl      time.Duration
}

func NewDedup(rdb redis.Cmdable, consumer string) *Dedup {
	return &Dedup{rdb: rdb, consumer: consumer, ttl: TTLDedup}
}

func (d *Dedup) Seen(ctx context.Context, eventID string) (bool, error) {
	return Exists(ctx, d.rdb, fmt.Sprintf(KeyDedup, d.consumer, eventID))
}

func (d *Dedup) Mark(ctx context.Context, eventID string) error {
	return d.rdb.Set(ctx, fmt.Sprintf(KeyDedup, d.consumer, eventID), "1", d.ttl).Err()
}
