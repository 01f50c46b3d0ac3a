package container

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	goredis "github.com/redis/go-redis/v9"

	"lora/adapters/goslin"
	"lora/adapters/postgres"
	"lora/adapters/redis"
	"lora/adapters/report"
	"lora/app"
	"lora/internal"
	"lora/internal/api"
	"lora/internal/config"
	"lora/internal/errors"
	"lora/internal/migration"
	"lora/internal/session"
	"lora/ports"
)

// purgeInterval paces expiry sweeps of the memory and postgres caches.
const purgeInterval = time.Minute

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB    *sqlx.DB
	Redis *goredis.Client

	// Session cache and its health probe (nil for the memory backend)
	Cache  ports.SessionCache
	Health api.Pinger

	Normalizer ports.LipidNormalizer
	Service    *app.EnrichmentService

	Metrics *api.Metrics
	Handler *api.Handler
	Router  *gin.Engine
	Server  *api.Server

	stop context.CancelFunc
}

// New builds every component from cfg. Backends that need a connection are
// dialled here, so ctx bounds startup.
func New(ctx context.Context, cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}

	c := &Container{Config: cfg, Logger: logger.With("container")}

	// background work (janitors) lives until Shutdown
	bg, stop := context.WithCancel(context.Background())
	c.stop = stop

	if err := c.initCache(ctx, bg); err != nil {
		stop()
		return nil, err
	}
	if err := c.initAPI(); err != nil {
		_ = c.Shutdown(ctx)
		return nil, err
	}

	c.Logger.Info("container initialized (cache=%s, normalizer=%t)", cfg.Cache.Backend, c.Normalizer != nil)
	return c, nil
}

func (c *Container) initCache(ctx, bg context.Context) error {
	cfg := c.Config.Cache

	switch cfg.Backend {
	case config.CacheBackendRedis:
		c.Redis = redis.NewClient(redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		cache := redis.NewSessionCache(c.Redis, cfg.Prefix)
		if err := cache.Ping(ctx); err != nil {
			c.Logger.Warn("redis not reachable yet: %v", err)
		}
		c.Cache, c.Health = cache, cache

	case config.CacheBackendPostgres:
		db, err := postgres.Open(ctx, c.Config.Database.URL)
		if err != nil {
			return err
		}
		c.DB = db
		if err := migration.NewRunner(c.Logger).Run(ctx, db); err != nil {
			return errors.Wrap(err, "failed to migrate session cache")
		}
		cache := postgres.NewSessionCache(db)
		c.Cache, c.Health = cache, cache
		go c.purgeLoop(bg, cache)

	default:
		cache := session.NewMemoryCache(c.Logger)
		cache.StartJanitor(bg, purgeInterval)
		c.Cache = cache
	}
	return nil
}

func (c *Container) purgeLoop(ctx context.Context, cache postgres.SessionCache) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := cache.PurgeExpired(ctx)
			if err != nil {
				c.Logger.Warn("purging expired cache rows: %v", err)
				continue
			}
			if n > 0 {
				c.Logger.Debug("purged %d expired cache rows", n)
			}
		}
	}
}

func (c *Container) initAPI() error {
	defaults, err := c.Config.Analysis.Params()
	if err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}

	if c.Config.Parser.JarPath != "" {
		c.Normalizer = goslin.NewNormalizer(goslin.Config{
			JavaBin: c.Config.Parser.JavaBin,
			JarPath: c.Config.Parser.JarPath,
			Timeout: c.Config.Parser.Timeout,
		}, nil, c.Logger)
	}

	c.Metrics = api.NewMetrics("lora")
	c.Service = app.NewEnrichmentService(c.Cache, c.Config.Cache.TTL, c.Logger)
	c.Service.SetObserver(c.Metrics)

	if c.Config.Server.GinMode != "" {
		gin.SetMode(c.Config.Server.GinMode)
	}
	c.Handler = api.NewHandler(api.HandlerConfig{
		Service:    c.Service,
		Normalizer: c.Normalizer,
		Defaults:   defaults,
		Workbook:   report.WorkbookRenderer{},
		Summary:    report.SummaryRenderer{},
		Logger:     c.Logger,
	})
	c.Router = api.NewRouter(api.RouterConfig{
		Handler: c.Handler,
		Metrics: c.Metrics,
		Health:  c.Health,
		Logger:  c.Logger,
	})

	debugAddr := ""
	if c.Config.Profiling.Enabled {
		debugAddr = ":" + c.Config.Profiling.Port
	}
	c.Server = api.NewServer(":"+c.Config.Server.Port, c.Router, debugAddr, c.Logger)
	return nil
}

// Shutdown stops background work and closes connections
func (c *Container) Shutdown(ctx context.Context) error {
	if c.stop != nil {
		c.stop()
	}

	var firstErr error
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			firstErr = errors.CacheError("failed to close redis client", err)
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil && firstErr == nil {
			firstErr = errors.DatabaseError("failed to close database", err)
		}
	}
	return firstErr
}
