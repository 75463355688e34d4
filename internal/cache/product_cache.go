package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kevin-vien/web-mobile-tranning/internal/logging"
	"github.com/kevin-vien/web-mobile-tranning/internal/models"
	"github.com/kevin-vien/web-mobile-tranning/internal/repository"
)

const (
	notFoundMarker = "notfound"
	notFoundTTL    = time.Minute
)

type ProductLoader interface {
	GetByID(ctx context.Context, id uint) (*models.Product, error)
}

// ProductCache is a read-through cache for product detail. Redis failures
// degrade to a database read; they never fail the request.
type ProductCache struct {
	loader ProductLoader
	redis  *redis.Client
	ttl    time.Duration
}

func NewProductCache(loader ProductLoader, rdb *redis.Client, ttl time.Duration) *ProductCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ProductCache{loader: loader, redis: rdb, ttl: ttl}
}

func productKey(id uint) string {
	return fmt.Sprintf("product:%d", id)
}

func (c *ProductCache) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	key := productKey(id)

	data, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if string(data) == notFoundMarker {
			return nil, repository.ErrNotFound
		}

		var product models.Product
		if err := json.Unmarshal(data, &product); err != nil {
			logging.Err(logging.Fields{ProductID: id, Step: "product_cache", Status: "decode_failed"}, err)
			break
		}
		return &product, nil

	case errors.Is(err, redis.Nil):

	default:
		logging.Err(logging.Fields{ProductID: id, Step: "product_cache", Status: "redis_unavailable"}, err)
	}

	product, err := c.loader.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		if setErr := c.redis.Set(ctx, key, notFoundMarker, notFoundTTL).Err(); setErr != nil {
			logging.Err(logging.Fields{ProductID: id, Step: "product_cache", Status: "set_failed"}, setErr)
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	jsonData, err := json.Marshal(product)
	if err != nil {
		logging.Err(logging.Fields{ProductID: id, Step: "product_cache", Status: "encode_failed"}, err)
		return product, nil
	}
	if err := c.redis.Set(ctx, key, jsonData, c.ttl).Err(); err != nil {
		logging.Err(logging.Fields{ProductID: id, Step: "product_cache", Status: "set_failed"}, err)
	}

	return product, nil
}

// InvalidateProducts drops cached detail after a write. Checkout calls it
// once stock has been committed.
func (c *ProductCache) InvalidateProducts(ctx context.Context, ids ...uint) {
	if len(ids) == 0 {
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = productKey(id)
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		logging.Err(logging.Fields{Step: "product_cache", Status: "invalidate_failed"}, err)
	}
}
