package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	catalog "github.com/bazarly/listing-service/internal/catalog/domain"
	"github.com/bazarly/listing-service/internal/platform/logger"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	schemaKeyPrefix = "schema:"
	schemaTTL       = 1 * time.Hour
	lruSize         = 512
)

// SchemaCache is a two-level cache for catalog field schemas: an in-process
// LRU in front of Redis. Schemas change rarely, so a short TTL on the Redis
// level bounds staleness without an invalidation protocol.
type SchemaCache struct {
	local  *lru.Cache[string, *catalog.CatalogNode]
	client *redis.Client
	logger *logger.Logger
}

func NewSchemaCache(client *redis.Client, log *logger.Logger) (*SchemaCache, error) {
	local, err := lru.New[string, *catalog.CatalogNode](lruSize)
	if err != nil {
		return nil, err
	}
	return &SchemaCache{
		local:  local,
		client: client,
		logger: log.Named("SchemaCache"),
	}, nil
}

func (c *SchemaCache) Get(ctx context.Context, categoryID string) (*catalog.CatalogNode, bool) {
	if node, ok := c.local.Get(categoryID); ok {
		return node, true
	}
	if c.client == nil {
		return nil, false
	}

	data, err := c.client.Get(ctx, schemaKeyPrefix+categoryID).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Schema cache read failed", zap.String("category_id", categoryID), zap.Error(err))
		}
		return nil, false
	}

	var node catalog.CatalogNode
	if err := json.Unmarshal(data, &node); err != nil {
		c.logger.Warn("Corrupt schema cache entry", zap.String("category_id", categoryID), zap.Error(err))
		return nil, false
	}
	c.local.Add(categoryID, &node)
	return &node, true
}

func (c *SchemaCache) Set(ctx context.Context, node *catalog.CatalogNode) {
	c.local.Add(node.ID, node)
	if c.client == nil {
		return
	}

	data, err := json.Marshal(node)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, schemaKeyPrefix+node.ID, data, schemaTTL).Err(); err != nil {
		c.logger.Warn("Schema cache write failed", zap.String("category_id", node.ID), zap.Error(err))
	}
}

func (c *SchemaCache) Invalidate(ctx context.Context, categoryID string) {
	c.local.Remove(categoryID)
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, schemaKeyPrefix+categoryID).Err(); err != nil {
		c.logger.Warn("Schema cache invalidation failed", zap.String("category_id", categoryID), zap.Error(err))
	}
}
