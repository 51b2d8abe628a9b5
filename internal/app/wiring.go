package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/grafana/pyroscope-go"
	lgcfg "gitlab.com/nevasik7/alerting/config"
	"gitlab.com/nevasik7/alerting/logger"

	apihttp "github.com/ReqCrypto/sol-meme-scanner/internal/api/http"
	"github.com/ReqCrypto/sol-meme-scanner/internal/api/http/handlers"
	"github.com/ReqCrypto/sol-meme-scanner/internal/api/http/mw"
	"github.com/ReqCrypto/sol-meme-scanner/internal/config"
	"github.com/ReqCrypto/sol-meme-scanner/internal/metrics"
	"github.com/ReqCrypto/sol-meme-scanner/internal/risk"
	"github.com/ReqCrypto/sol-meme-scanner/internal/scanner"
	"github.com/ReqCrypto/sol-meme-scanner/internal/scheduler"
	"github.com/ReqCrypto/sol-meme-scanner/internal/security"
	natssink "github.com/ReqCrypto/sol-meme-scanner/internal/sink/nats"
	"github.com/ReqCrypto/sol-meme-scanner/internal/snapshot"
	snapredis "github.com/ReqCrypto/sol-meme-scanner/internal/snapshot/redis"
	"github.com/ReqCrypto/sol-meme-scanner/internal/source"
	rds "github.com/ReqCrypto/sol-meme-scanner/internal/stores/redis"
)

type Container struct {
	app *App

	// infra
	redis  *rds.Client
	sinkNC *natssink.Publisher
	src    *source.Client

	httpSrv  *apihttp.Server
	profiler *pyroscope.Profiler
}

func (c *Container) Start() error {
	return c.app.Start()
}

func (c *Container) Stop(ctx context.Context) error {
	if err := c.app.Shutdown(ctx); err != nil {
		return fmt.Errorf("app shutdown is failed, error=%w", err)
	}
	return nil
}

// Build constructs the whole object graph. Anything required for the
// scanner to make sense (sink destination, provider) fails the build, not
// a later cycle.
func Build(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	lg := logger.New(lgcfg.LoggerCfg{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	lg.Info("Successfully initialized logger")

	profiler, err := metrics.InitPProf(cfg.App.InstanceID, &cfg.Metrics.Pyroscope)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize pyroscope: %w", err)
	}

	// Shared network client. Constructed once, passed into every component
	// that issues requests; per-call deadlines come from contexts.
	httpCl := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        32,
			MaxIdleConnsPerHost: 8,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	// Source adapter
	src, err := source.New(lg, httpCl, &cfg.Provider)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize source adapter: %w", err)
	}
	lg.Infof("Successfully initialized source adapter, endpoint=%s chain=%s", cfg.Provider.Endpoint, cfg.Provider.ChainID)

	// Risk oracle
	oracle, err := risk.NewOracle(lg, httpCl, &cfg.Risk)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize risk oracle: %w", err)
	}
	if oracle.Enabled() {
		lg.Info("Successfully initialized risk oracle")
	} else {
		lg.Warn("Risk oracle disabled: no endpoint configured")
	}

	// Sink: a scanner without a delivery target must not start.
	sinkNC, err := natssink.New(lg, &cfg.Sink.NATS)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize sink: %w", err)
	}
	lg.Infof("Successfully initialized NATS sink, url=%s subject=%s", cfg.Sink.NATS.URL, cfg.Sink.NATS.Subject)

	// Redis is optional: with no addr configured the snapshot lives in
	// memory and the rate limiter is off.
	var rdbClient *rds.Client
	var store snapshot.Store = snapshot.NewMemory()
	if cfg.Stores.Redis.Addr != "" {
		rdbClient, err = rds.New(ctx, &cfg.Stores.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize redis client: %w", err)
		}
		store, err = snapredis.New(rdbClient, cfg.Stores.Redis.Prefix)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize snapshot store: %w", err)
		}
		lg.Infof("Successfully initialized redis snapshot store, addr=%s", cfg.Stores.Redis.Addr)
	}

	// Pipeline + scheduler
	svc := scanner.New(lg, cfg, src, oracle)
	loop := scheduler.New(lg, cfg.Scanner.Interval, svc, sinkNC, store)
	lg.Infof("Successfully initialized scan loop, interval=%s", cfg.Scanner.Interval)

	// Middleware
	logMW := mw.NewLogging(lg)
	var corsMW *mw.CORSMiddleware
	if cfg.API.HTTP.CORS.Enabled {
		corsMW = mw.NewCORSConfig(&cfg.API.HTTP.CORS)
	}
	var rateLimitMW *mw.RateLimitMiddleware
	if rdbClient != nil {
		rateLimitMW = mw.NewRateLimit(rdbClient.Client, &cfg.API.RateLimit)
	}
	var jwtMW *mw.JWTMiddleware
	if cfg.Security.JWT.Enabled {
		verifier, err := security.NewRS256Verifier(&cfg.Security.JWT)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize JWT verifier: %w", err)
		}
		jwtMW = mw.NewJWTMiddleware(verifier)
		lg.Info("Successfully initialized JWT verifier")
	}

	// HTTP read API
	h := handlers.NewHandler(lg, store, sinkNC)
	router := apihttp.BuildRouter(h, logMW, corsMW, rateLimitMW, jwtMW)
	httpSrv := apihttp.NewServer(&apihttp.ServerDeps{
		Logger: lg,
		Cfg:    &cfg.API.HTTP,
		Router: router,
	})
	lg.Info("Successfully initialized HTTP server")

	c := &Container{
		app:      NewApp(lg, httpSrv, loop),
		redis:    rdbClient,
		sinkNC:   sinkNC,
		src:      src,
		httpSrv:  httpSrv,
		profiler: profiler,
	}

	cleanupF := func() {
		if c.profiler != nil {
			if err := c.profiler.Stop(); err != nil {
				lg.Errorf("Failed to stop profiler: %v", err)
			}
		}

		if err := c.sinkNC.Close(); err != nil {
			lg.Errorf("Failed to close NATS sink: %v", err)
		}

		if c.redis != nil {
			if err := c.redis.Close(); err != nil {
				lg.Errorf("Failed to close redis client: %v", err)
			}
		}

		c.src.Close()

		lg.Info("Successfully cleaned up dependencies")
	}

	lg.Info("Successfully initialized wiring")
	return c, cleanupF, nil
}
