package cache

import (
	"context"
	"time"

	"github.com/matzehuels/thermogrid/pkg/observability"
)

// Instrumented reports hits, misses and writes of an inner Cache to the
// registered observability cache hooks. The key type is [KindOf] the key.
type Instrumented struct {
	inner Cache
}

// Instrument wraps c. Wrapping an already instrumented cache returns it as is.
func Instrument(c Cache) Cache {
	if ic, ok := c.(*Instrumented); ok {
		return ic
	}
	return &Instrumented{inner: c}
}

// Unwrap returns the wrapped backend.
func (c *Instrumented) Unwrap() Cache { return c.inner }

func (c *Instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := c.inner.Get(ctx, key)
	if err != nil {
		return data, hit, err
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, KindOf(key))
	} else {
		observability.Cache().OnCacheMiss(ctx, KindOf(key))
	}
	return data, hit, nil
}

func (c *Instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.inner.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, KindOf(key), len(data))
	return nil
}

func (c *Instrumented) Delete(ctx context.Context, key string) error {
	return c.inner.Delete(ctx, key)
}

func (c *Instrumented) Close() error { return c.inner.Close() }

var _ Cache = (*Instrumented)(nil)
