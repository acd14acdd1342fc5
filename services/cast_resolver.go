package services

import (
	"context"
	"time"

	"github.com/fenilmodi00/farcaster-gateway/models"
	"github.com/fenilmodi00/farcaster-gateway/shared"
	"github.com/sirupsen/logrus"
)

// CastCacheKey is the cache key under which the resolution of castURL is stored
func CastCacheKey(castURL string) string {
	return "neynarCast/url/" + castURL
}

// CastResolver turns cast URLs into hashes, remembering every successful answer.
type CastResolver struct {
	cache  *CacheService
	lookup CastURLLookup
	now    func() time.Time
	logger *logrus.Entry
}

// NewCastResolver creates a resolver backed by cache and lookup
func NewCastResolver(cache *CacheService, lookup CastURLLookup) *CastResolver {
	return &CastResolver{
		cache:  cache,
		lookup: lookup,
		now:    time.Now,
		logger: logrus.WithField("component", "CastResolver"),
	}
}

// Resolve returns the hash of the cast at castURL, ErrCastNotFound when the
// upstream has none, or an upstream ServiceError.
func (r *CastResolver) Resolve(ctx context.Context, castURL string) (string, error) {
	key := CastCacheKey(castURL)

	var cached models.CachedCast
	if r.cache.GetJSON(ctx, key, &cached) && cached.Data.Hash != "" {
		r.logger.WithField("cast_url", castURL).Debug("Resolved cast from cache")
		return cached.Data.Hash, nil
	}

	hash, found, err := r.lookup.CastByURL(ctx, castURL)
	if err != nil {
		return "", shared.NewUpstreamError(CodeCastResolutionFailed, "failed to resolve cast", "CastResolver", "Resolve", err)
	}
	if !found {
		return "", shared.NewServiceError(shared.ErrorCategoryNotFound, CodeCastNotFound, "no cast published at url", "CastResolver", "Resolve", ErrCastNotFound)
	}

	r.cache.SetJSON(ctx, key, models.CachedCast{
		Data:      models.CastRef{Hash: hash},
		Timestamp: r.now().Unix(),
	})

	return hash, nil
}
