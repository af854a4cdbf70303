package commands

import (
	"fmt"

	"github.com/wonny/perfdash/internal/external/alpaca"
	"github.com/wonny/perfdash/internal/external/proxy"
	"github.com/wonny/perfdash/internal/provider"
	"github.com/wonny/perfdash/pkg/config"
	"github.com/wonny/perfdash/pkg/httputil"
	"github.com/wonny/perfdash/pkg/logger"
	"github.com/wonny/perfdash/pkg/redis"
)

// cachePrefix namespaces every Redis key of this service
const cachePrefix = "perfdash"

// newUpstream builds the configured brokerage client
func newUpstream(cfg *config.Config, log *logger.Logger) (provider.Provider, error) {
	switch cfg.Provider.Kind {
	case "alpaca":
		return alpaca.NewClient(cfg, log.WithField("provider", "alpaca")), nil
	case "proxy":
		httpClient := httputil.New(cfg, log)
		return proxy.NewClient(cfg, httpClient, log.WithField("provider", "proxy")), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider.Kind)
	}
}

// buildProvider wraps the upstream in the Redis cache. A Redis outage degrades to no caching.
// The caller closes the returned Redis client.
func buildProvider(cfg *config.Config, log *logger.Logger) (provider.Provider, *redis.Client, error) {
	upstream, err := newUpstream(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	rc, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, provider cache disabled")
		rc = redis.NewFromClient(nil)
	}

	cached := provider.NewCached(
		upstream,
		redis.NewCache(rc, cachePrefix),
		cfg.Redis.CacheTTL,
		cfg.Provider.HistoryPeriod,
		cfg.Analytics.BenchmarkSymbol,
		log,
	)

	return cached, rc, nil
}
