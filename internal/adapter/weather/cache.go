package weather

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/forecast-bot/internal/domain"
	"github.com/couchcryptid/forecast-bot/internal/observability"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
)

// staleRetryInterval is how long a stale catalog is served after a failed
// refresh before upstream is tried again.
const staleRetryInterval = time.Minute

// CachedCatalog keeps the area catalog in memory for ttl. Concurrent misses
// share a single upstream fetch. When a refresh fails, a previously loaded
// catalog keeps being served, with at most one upstream attempt per
// staleRetryInterval, until a refresh succeeds.
type CachedCatalog struct {
	inner   CatalogSource
	ttl     time.Duration
	clock   clockwork.Clock
	metrics *observability.Metrics
	logger  *slog.Logger

	group singleflight.Group

	mu        sync.RWMutex
	catalog   domain.Catalog
	fetchedAt time.Time
	loaded    bool
}

// NewCachedCatalog creates a TTL cache around source.
func NewCachedCatalog(source CatalogSource, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) *CachedCatalog {
	return &CachedCatalog{
		inner:   source,
		ttl:     ttl,
		clock:   clock,
		metrics: metrics,
		logger:  logger,
	}
}

// Catalog returns the cached catalog, refreshing it when missing or expired.
func (c *CachedCatalog) Catalog(ctx context.Context) (domain.Catalog, error) {
	if catalog, fresh := c.cached(); fresh {
		c.metrics.CatalogCache.WithLabelValues("hit").Inc()
		return catalog, nil
	}
	c.metrics.CatalogCache.WithLabelValues("miss").Inc()

	// The shared fetch must not be cancelled by the request that happened to
	// start it; the HTTP client timeout still bounds it.
	fetchCtx := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do("catalog", func() (any, error) {
		return c.refresh(fetchCtx)
	})
	if err != nil {
		return domain.Catalog{}, err
	}
	return v.(domain.Catalog), nil
}

// Warm loads the catalog ahead of the first request.
func (c *CachedCatalog) Warm(ctx context.Context) error {
	_, err := c.Catalog(ctx)
	return err
}

// WarmUntilReady retries Warm with exponential backoff, starting at one
// second and capped at thirty, until the catalog loads or ctx is done.
func (c *CachedCatalog) WarmUntilReady(ctx context.Context) error {
	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		err := c.Warm(ctx)
		if err == nil {
			return nil
		}
		c.logger.Warn("area catalog warm-up failed", "error", err, "retry_in", backoff)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.clock.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

// CheckReadiness reports ready once a catalog has been loaded.
func (c *CachedCatalog) CheckReadiness(_ context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded {
		return errors.New("area catalog has not been loaded yet")
	}
	return nil
}

func (c *CachedCatalog) cached() (domain.Catalog, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded || c.clock.Since(c.fetchedAt) >= c.ttl {
		return domain.Catalog{}, false
	}
	return c.catalog, true
}

func (c *CachedCatalog) refresh(ctx context.Context) (domain.Catalog, error) {
	// A concurrent flight may have completed between the cache check and Do.
	if catalog, fresh := c.cached(); fresh {
		return catalog, nil
	}

	catalog, err := c.inner.Catalog(ctx)
	if err != nil {
		c.metrics.CatalogCache.WithLabelValues("error").Inc()
		c.mu.Lock()
		stale, loaded := c.catalog, c.loaded
		if loaded {
			// Treat the stale copy as fresh until the retry window ends.
			c.fetchedAt = c.clock.Now().Add(min(staleRetryInterval, c.ttl) - c.ttl)
		}
		c.mu.Unlock()
		if loaded {
			c.logger.Warn("area catalog refresh failed, serving stale catalog",
				"error", err, "retry_in", min(staleRetryInterval, c.ttl))
			return stale, nil
		}
		return domain.Catalog{}, err
	}

	c.mu.Lock()
	c.catalog = catalog
	c.fetchedAt = c.clock.Now()
	c.loaded = true
	c.mu.Unlock()

	c.metrics.CatalogCache.WithLabelValues("refresh").Inc()
	c.metrics.CatalogEntries.Set(float64(len(catalog.Entries)))
	c.logger.Info("area catalog refreshed", "entries", len(catalog.Entries))
	return catalog, nil
}
