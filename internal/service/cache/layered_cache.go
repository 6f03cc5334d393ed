package cache

import (
	"context"
	"io"
	"time"
)

// LayeredCache reads through a bounded in-process L1 before the shared L2 and
// writes through both. L1 entries live at most l1TTL so other replicas' writes
// to L2 become visible.
type LayeredCache struct {
	l1    *TTLCache
	l2    BytesCache
	l1TTL time.Duration
}

func NewLayeredCache(l2 BytesCache, l1Size int, l1TTL time.Duration) *LayeredCache {
	return &LayeredCache{l1: NewTTLCache(l1Size), l2: l2, l1TTL: l1TTL}
}

func (c *LayeredCache) GetBytes(ctx context.Context, key string) ([]byte, bool, error) {
	if b, ok, _ := c.l1.GetBytes(ctx, key); ok {
		return b, true, nil
	}
	b, ok, err := c.l2.GetBytes(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	_ = c.l1.SetBytes(ctx, key, b, c.l1TTL)
	return b, true, nil
}

// SetBytes writes L2 first; L1 is only filled when L2 accepted the entry.
func (c *LayeredCache) SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.l2.SetBytes(ctx, key, value, ttl); err != nil {
		return err
	}
	l1TTL := c.l1TTL
	if ttl > 0 && ttl < l1TTL {
		l1TTL = ttl
	}
	return c.l1.SetBytes(ctx, key, value, l1TTL)
}

// Close closes L2 when it holds a connection.
func (c *LayeredCache) Close() error {
	if closer, ok := c.l2.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
