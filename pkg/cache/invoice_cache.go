package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrMiss is returned by Get when the key is absent or expired.
	ErrMiss = errors.New("cache: miss")
	// ErrStale is returned by SetIfUnchanged when the invoice was evicted
	// while its value was being loaded.
	ErrStale = errors.New("cache: stale fill")
)

const (
	invoiceCacheKeyPrefix = "invoice"
	// generationTTL outlives any in-flight fill.
	generationTTL = 24 * time.Hour
)

// CachedInvoice is the denormalized invoice read model stored in Redis.
// Money values are kept as decimal strings so no precision is lost in JSON.
type CachedInvoice struct {
	ID           int64               `json:"id"`
	CustomerName string              `json:"customer_name"`
	CreatedAt    time.Time           `json:"created_at"`
	TotalAmount  string              `json:"total_amount"`
	Items        []CachedInvoiceItem `json:"items"`
}

// CachedInvoiceItem is one line of a CachedInvoice.
type CachedInvoiceItem struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Quantity int    `json:"quantity"`
}

// InvoiceCache stores CachedInvoice documents as JSON strings.
// Key format: "invoice:{invoiceID}", with the eviction counter at
// "invoice:{invoiceID}:gen".
type InvoiceCache struct {
	client *RedisClient
	ttl    time.Duration
}

// NewInvoiceCache creates an InvoiceCache whose entries expire after ttl.
func NewInvoiceCache(r *RedisClient, ttl time.Duration) *InvoiceCache {
	return &InvoiceCache{client: r, ttl: ttl}
}

// Get retrieves a cached invoice. Returns ErrMiss when the key does not exist.
func (c *InvoiceCache) Get(ctx context.Context, invoiceID int64) (*CachedInvoice, error) {
	raw, err := c.client.Client().Get(ctx, InvoiceKey(invoiceID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("cache get: %w", err)
	}
	var inv CachedInvoice
	if err := json.Unmarshal(raw, &inv); err != nil {
		return nil, fmt.Errorf("cache decode invoice %d: %w", invoiceID, err)
	}
	return &inv, nil
}

// Generation returns the eviction counter of invoiceID, 0 if it was never evicted.
// Read it before loading the invoice from the store and pass it to SetIfUnchanged.
func (c *InvoiceCache) Generation(ctx context.Context, invoiceID int64) (int64, error) {
	gen, err := c.client.Client().Get(ctx, generationKey(invoiceID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cache generation: %w", err)
	}
	return gen, nil
}

// SetIfUnchanged writes inv with the configured TTL unless the invoice was
// evicted after gen was read. A lost race returns ErrStale and writes nothing.
func (c *InvoiceCache) SetIfUnchanged(ctx context.Context, inv *CachedInvoice, gen int64) error {
	raw, err := json.Marshal(inv)
	if err != nil {
		return fmt.Errorf("cache encode invoice %d: %w", inv.ID, err)
	}

	genKey := generationKey(inv.ID)
	err = c.client.Client().Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return ErrStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, InvoiceKey(inv.ID), raw, c.ttl)
			return nil
		})
		return err
	}, genKey)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrStale), errors.Is(err, redis.TxFailedErr):
		return ErrStale
	default:
		return fmt.Errorf("cache set: %w", err)
	}
}

// Delete removes a cached invoice and bumps its generation, so fills that
// loaded the old row are rejected. Deleting an absent key is not an error.
func (c *InvoiceCache) Delete(ctx context.Context, invoiceID int64) error {
	genKey := generationKey(invoiceID)
	_, err := c.client.Client().TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, InvoiceKey(invoiceID))
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, generationTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// InvoiceKey builds the Redis key for invoiceID.
func InvoiceKey(invoiceID int64) string {
	return fmt.Sprintf("%s:%d", invoiceCacheKeyPrefix, invoiceID)
}

func generationKey(invoiceID int64) string {
	return InvoiceKey(invoiceID) + ":gen"
}
