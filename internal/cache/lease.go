package cache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLeaseNotHeld 租约已被其他实例持有
var ErrLeaseNotHeld = errors.New("lease not held")

var releaseLeaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lease Redis 互斥租约（SET NX PX + 比对删除）
type Lease struct {
	client *redis.Client
	key    string
	token  string
}

// AcquireLease 尝试获取租约，未启用 Redis 时返回本地租约
func AcquireLease(ctx context.Context, name string, ttl time.Duration) (*Lease, error) {
	lease := &Lease{key: buildKey("lease:" + name), token: uuid.NewString()}
	if !Enabled() {
		return lease, nil
	}
	ok, err := redisClient.SetNX(ctx, lease.key, lease.token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLeaseNotHeld
	}
	lease.client = redisClient
	return lease, nil
}

// Release 释放租约，只删除自己持有的 key
func (l *Lease) Release(ctx context.Context) error {
	if l == nil || l.client == nil {
		return nil
	}
	return releaseLeaseScript.Run(ctx, l.client, []string{l.key}, l.token).Err()
}
