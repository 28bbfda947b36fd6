package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Angel-Eco/CuidadoPRO/internal/modules/profesional/dto"
	"github.com/redis/go-redis/v9"
)

const activosCacheKey = "profesionales:activos"

// ActivosCache holds the public roster so the landing page does not hit the
// database on every visit.
type ActivosCache interface {
	Get(ctx context.Context) ([]dto.ProfesionalResponse, bool, error)
	Set(ctx context.Context, items []dto.ProfesionalResponse) error
	Invalidate(ctx context.Context) error
}

type redisActivosCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewActivosCache returns a redis backed cache, or a cache that never hits
// when rdb is nil.
func NewActivosCache(rdb *redis.Client, ttl time.Duration) ActivosCache {
	if rdb == nil {
		return noopCache{}
	}
	return &redisActivosCache{rdb: rdb, ttl: ttl}
}

func (c *redisActivosCache) Get(ctx context.Context) ([]dto.ProfesionalResponse, bool, error) {
	val, err := c.rdb.Get(ctx, activosCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var items []dto.ProfesionalResponse
	if err := json.Unmarshal(val, &items); err != nil {
		return nil, false, err
	}
	return items, true, nil
}

func (c *redisActivosCache) Set(ctx context.Context, items []dto.ProfesionalResponse) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, activosCacheKey, payload, c.ttl).Err()
}

func (c *redisActivosCache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, activosCacheKey).Err()
}

type noopCache struct{}

func (noopCache) Get(context.Context) ([]dto.ProfesionalResponse, bool, error) {
	return nil, false, nil
}

func (noopCache) Set(context.Context, []dto.ProfesionalResponse) error { return nil }

func (noopCache) Invalidate(context.Context) error { return nil }
