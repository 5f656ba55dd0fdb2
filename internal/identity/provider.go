// Package identity resolves user IDs to display details for member
// and invitation listings.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	authdomain "github.com/smallbiznis/huddle/internal/auth/domain"
)

// batchSize caps how many IDs a single repository query resolves.
const batchSize = 20

const cacheTTL = 5 * time.Minute

// Details is the public projection of a user.
type Details struct {
	ID        uint64 `json:"id,string"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Provider looks up user details in batches. Missing IDs are absent
// from the result map, never an error; GetUserDetails and
// GetUserByEmail return nil for a missing user.
type Provider interface {
	GetUserDetails(ctx context.Context, id uint64) (*Details, error)
	GetUsersDetails(ctx context.Context, ids []uint64) (map[uint64]Details, error)
	GetUserByEmail(ctx context.Context, email string) (*Details, error)
}

type provider struct {
	users authdomain.Repository
	cache Cache
	log   *zap.Logger
}

func NewProvider(users authdomain.Repository, cache Cache, log *zap.Logger) Provider {
	return &provider{users: users, cache: cache, log: log}
}

func (p *provider) GetUserDetails(ctx context.Context, id uint64) (*Details, error) {
	m, err := p.GetUsersDetails(ctx, []uint64{id})
	if err != nil {
		return nil, err
	}
	if d, ok := m[id]; ok {
		return &d, nil
	}
	return nil, nil
}

func (p *provider) GetUserByEmail(ctx context.Context, email string) (*Details, error) {
	user, err := p.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, authdomain.ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}
	d := Details{ID: user.ID, Email: user.Email, Name: user.Name, AvatarURL: user.AvatarURL}
	p.cache.Set(ctx, d)
	return &d, nil
}

func (p *provider) GetUsersDetails(ctx context.Context, ids []uint64) (map[uint64]Details, error) {
	result := make(map[uint64]Details, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	seen := make(map[uint64]struct{}, len(ids))
	var misses []uint64
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if d, ok := p.cache.Get(ctx, id); ok {
			result[id] = d
			continue
		}
		misses = append(misses, id)
	}

	for start := 0; start < len(misses); start += batchSize {
		end := start + batchSize
		if end > len(misses) {
			end = len(misses)
		}
		users, err := p.users.FindByIDs(ctx, misses[start:end])
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			d := Details{ID: u.ID, Email: u.Email, Name: u.Name, AvatarURL: u.AvatarURL}
			result[u.ID] = d
			p.cache.Set(ctx, d)
		}
	}

	return result, nil
}

// Cache holds resolved details for a short TTL.
type Cache interface {
	Get(ctx context.Context, id uint64) (Details, bool)
	Set(ctx context.Context, d Details)
}

type redisCache struct {
	rdb *redis.Client
	log *zap.Logger
}

func NewRedisCache(rdb *redis.Client, log *zap.Logger) Cache {
	return &redisCache{rdb: rdb, log: log}
}

func cacheKey(id uint64) string {
	return fmt.Sprintf("identity:user:%d", id)
}

func (c *redisCache) Get(ctx context.Context, id uint64) (Details, bool) {
	raw, err := c.rdb.Get(ctx, cacheKey(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Debug("identity cache read failed", zap.Error(err))
		}
		return Details{}, false
	}
	var d Details
	if err := json.Unmarshal(raw, &d); err != nil {
		return Details{}, false
	}
	return d, true
}

func (c *redisCache) Set(ctx context.Context, d Details) {
	raw, err := json.Marshal(d)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, cacheKey(d.ID), raw, cacheTTL).Err(); err != nil {
		c.log.Debug("identity cache write failed", zap.Error(err))
	}
}
