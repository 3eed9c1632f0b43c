package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"pinvent/internal/cache"
	"pinvent/internal/model"
)

const profileCacheTTL = 5 * time.Minute

// ProfileCache is a read-through cache of public profiles keyed by user id.
// A nil ProfileCache or an unavailable redis behaves like a permanent miss.
type ProfileCache struct {
	cache *cache.Client
}

// NewProfileCache wraps the shared cache client.
func NewProfileCache(c *cache.Client) *ProfileCache {
	return &ProfileCache{cache: c}
}

func (p *ProfileCache) key(id uuid.UUID) string {
	return "user:" + id.String()
}

func (p *ProfileCache) Get(ctx context.Context, id uuid.UUID) (model.Profile, bool) {
	if p == nil {
		return model.Profile{}, false
	}
	data, _ := p.cache.Get(ctx, p.key(id))
	if data == nil {
		return model.Profile{}, false
	}
	var profile model.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return model.Profile{}, false
	}
	return profile, true
}

func (p *ProfileCache) Set(ctx context.Context, profile model.Profile) {
	if p == nil {
		return
	}
	if payload, err := json.Marshal(profile); err == nil {
		_ = p.cache.Set(ctx, p.key(profile.ID), payload, profileCacheTTL)
	}
}

func (p *ProfileCache) Invalidate(ctx context.Context, id uuid.UUID) {
	if p == nil {
		return
	}
	_ = p.cache.Delete(ctx, p.key(id))
}
