package gateway

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"refurb/internal/catalog/models"
	"refurb/internal/catalog/ports"
	id "refurb/pkg/domain"
)

const (
	DefaultCachePrefix = "refurb:catalog"
	DefaultCacheTTL    = 30 * time.Second
)

// Cached serves listing pages from Redis and forwards everything else.
// Every successful mutation bumps a version counter that is part of each
// page key, so stale pages are never read again and simply expire.
// Redis errors are logged and the call goes to the wrapped backend.
type Cached struct {
	next   ports.Gateway
	client redis.Cmdable
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

type CachedOption func(*Cached)

func WithCachePrefix(prefix string) CachedOption {
	return func(c *Cached) {
		c.prefix = prefix
	}
}

func WithCacheTTL(ttl time.Duration) CachedOption {
	return func(c *Cached) {
		c.ttl = ttl
	}
}

func WithCacheLogger(logger *slog.Logger) CachedOption {
	return func(c *Cached) {
		c.logger = logger
	}
}

func NewCached(next ports.Gateway, client redis.Cmdable, opts ...CachedOption) (*Cached, error) {
	if next == nil {
		return nil, fmt.Errorf("product gateway is required")
	}
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	c := &Cached{
		next:   next,
		client: client,
		prefix: DefaultCachePrefix,
		ttl:    DefaultCacheTTL,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.ttl <= 0 {
		c.ttl = DefaultCacheTTL
	}
	return c, nil
}

type cachedPage struct {
	Products []models.Product `json:"products"`
	Total    int              `json:"total"`
}

func (c *Cached) versionKey() string {
	return c.prefix + ":version"
}

func (c *Cached) pageKey(version string, filter models.Filter, page models.Pagination) string {
	raw, _ := json.Marshal(struct {
		F models.Filter     `json:"f"`
		P models.Pagination `json:"p"`
	}{filter, page})
	sum := sha256.Sum256(raw)
	return c.prefix + ":list:" + version + ":" + hex.EncodeToString(sum[:12])
}

func (c *Cached) ListProducts(ctx context.Context, filter models.Filter, page models.Pagination) (ports.ListResult, error) {
	filter = filter.Normalize()
	page = page.Normalize()

	version, err := c.client.Get(ctx, c.versionKey()).Result()
	if errors.Is(err, redis.Nil) {
		version = "0"
	} else if err != nil {
		c.warn(ctx, "listing cache unavailable", err)
		return c.next.ListProducts(ctx, filter, page)
	}
	key := c.pageKey(version, filter, page)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached cachedPage
		jsonErr := json.Unmarshal(raw, &cached)
		if jsonErr == nil {
			return ports.ListResult{Products: cached.Products, Total: cached.Total}, nil
		}
		c.warn(ctx, "discarding unreadable listing cache entry", jsonErr)
	case !errors.Is(err, redis.Nil):
		c.warn(ctx, "listing cache read failed", err)
	}

	result, err := c.next.ListProducts(ctx, filter, page)
	if err != nil {
		return ports.ListResult{}, err
	}
	encoded, err := json.Marshal(cachedPage{Products: result.Products, Total: result.Total})
	if err == nil {
		err = c.client.Set(ctx, key, encoded, c.ttl).Err()
	}
	if err != nil {
		c.warn(ctx, "listing cache write failed", err)
	}
	return result, nil
}

func (c *Cached) GetProduct(ctx context.Context, productID id.ProductID) (models.Product, error) {
	return c.next.GetProduct(ctx, productID)
}

func (c *Cached) SetProductStatus(ctx context.Context, productID id.ProductID, status models.ProductStatus, reason string) error {
	return c.invalidateAfter(ctx, c.next.SetProductStatus(ctx, productID, status, reason))
}

func (c *Cached) BulkSetProductStatus(ctx context.Context, productIDs []id.ProductID, status models.ProductStatus, reason string) error {
	return c.invalidateAfter(ctx, c.next.BulkSetProductStatus(ctx, productIDs, status, reason))
}

func (c *Cached) ProposeNegotiation(ctx context.Context, productID id.ProductID, negotiation models.Negotiation) error {
	return c.invalidateAfter(ctx, c.next.ProposeNegotiation(ctx, productID, negotiation))
}

func (c *Cached) DeleteProduct(ctx context.Context, productID id.ProductID) error {
	return c.invalidateAfter(ctx, c.next.DeleteProduct(ctx, productID))
}

// invalidateAfter bumps the listing version when the mutation succeeded.
func (c *Cached) invalidateAfter(ctx context.Context, err error) error {
	if err != nil {
		return err
	}
	if incrErr := c.client.Incr(ctx, c.versionKey()).Err(); incrErr != nil {
		c.warn(ctx, "listing cache invalidation failed", incrErr)
	}
	return nil
}

func (c *Cached) warn(ctx context.Context, msg string, err error) {
	c.logger.WarnContext(ctx, msg, "prefix", c.prefix, "error", err)
}
