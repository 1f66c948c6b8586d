package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"regionalgeo/internal/address"
	"regionalgeo/internal/codec"
	"regionalgeo/internal/model"
	"regionalgeo/internal/resolver"
	"regionalgeo/internal/status"
)

type Resolver interface {
	Resolve(ctx context.Context, ip string) (*resolver.Outcome, error)
}

// Store persists encoded SUCCESS envelopes keyed by address. Get returns nil
// data on a miss.
type Store interface {
	Get(ctx context.Context, ip string) ([]byte, error)
	Set(ctx context.Context, ip string, data []byte) error
	Delete(ctx context.Context, ip string) error
}

type GeoService struct {
	resolver Resolver
	store    Store
	metrics  *Metrics
	logger   *zap.Logger
}

// NewGeoService wires the lookup flow. A nil resolver means geo lookup is
// unavailable and every lookup answers GEOIP_MISSING; a nil store disables
// caching.
func NewGeoService(
	resolver Resolver,
	store Store,
	metrics *Metrics,
	logger *zap.Logger,
) *GeoService {
	return &GeoService{
		resolver: resolver,
		store:    store,
		metrics:  metrics,
		logger:   logger,
	}
}

// Lookup returns the persisted envelope for ip when one exists, otherwise
// resolves it and fills the cache on success.
func (s *GeoService) Lookup(ctx context.Context, ip string) (*model.Envelope, error) {
	if s.resolver == nil {
		return s.Reject(ip, status.GeoIPMissing), nil
	}

	if env := s.cached(ctx, ip); env != nil {
		s.metrics.CacheHits.Inc()
		s.record(env)
		return env, nil
	}

	out, err := s.resolver.Resolve(ctx, ip)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", ip, err)
	}

	if out.Cacheable() && s.store != nil {
		s.persist(ctx, ip, out.Persist)
	}

	s.record(out.Live)
	return out.Live, nil
}

// ClearCache drops any persisted record for ip.
func (s *GeoService) ClearCache(ctx context.Context, ip string) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.Delete(ctx, ip); err != nil {
		return fmt.Errorf("clearing cache for %s: %w", ip, err)
	}
	s.logger.Info("Cleared cached envelope", zap.String("ip", ip))
	return nil
}

// Reject builds an envelope carrying a failure code and no result.
func (s *GeoService) Reject(ip string, c status.Code) *model.Envelope {
	env := &model.Envelope{
		Request: model.Request{IP: ip, Type: string(address.VersionOf(ip))},
		Status:  c.Status(),
	}
	s.record(env)
	return env
}

func (s *GeoService) Statuses() map[status.Code]string {
	return status.Catalog()
}

func (s *GeoService) StatusMessage(code string) (string, bool) {
	c, ok := status.Parse(code)
	if !ok {
		return "", false
	}
	return status.Message(c), true
}

func (s *GeoService) cached(ctx context.Context, ip string) *model.Envelope {
	if s.store == nil {
		return nil
	}

	data, err := s.store.Get(ctx, ip)
	if err != nil {
		s.metrics.CacheErrors.Inc()
		s.logger.Warn("failed to read cached envelope",
			zap.String("ip", ip),
			zap.Error(err))
		return nil
	}
	if data == nil {
		return nil
	}

	env, err := codec.Decode(data)
	if err != nil {
		s.logger.Warn("discarding unreadable cached envelope",
			zap.String("ip", ip),
			zap.Error(err))
		return nil
	}
	return env
}

func (s *GeoService) persist(ctx context.Context, ip string, env *model.Envelope) {
	data, err := codec.Encode(env)
	if err != nil {
		s.logger.Error("failed to encode envelope", zap.String("ip", ip), zap.Error(err))
		return
	}

	if err := s.store.Set(ctx, ip, data); err != nil {
		s.metrics.CacheErrors.Inc()
		s.logger.Warn("failed to cache lookup result",
			zap.String("ip", ip),
			zap.Error(err))
	}
}

func (s *GeoService) record(env *model.Envelope) {
	s.metrics.Resolutions.WithLabelValues(env.Status.Code).Inc()
}
