package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/curriculum-backend/internal/data/db"
	apphttp "github.com/yungbote/curriculum-backend/internal/http"
	"github.com/yungbote/curriculum-backend/internal/observability"
	"github.com/yungbote/curriculum-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services
	Metrics  *observability.Metrics

	store        *db.Service
	source       *ShardSource
	otelShutdown func(context.Context) error
}

// shutdownTimeout bounds the tracer flush on Close.
const shutdownTimeout = 5 * time.Second

type options struct {
	withHTTP  bool
	configure []func(*Config)
}

type Option func(*options)

// WithoutHTTP skips handler and router wiring for one-shot commands.
func WithoutHTTP() Option {
	return func(o *options) { o.withHTTP = false }
}

// WithConfig adjusts the environment config before anything is built.
func WithConfig(fn func(*Config)) Option {
	return func(o *options) { o.configure = append(o.configure, fn) }
}

// New builds the whole service from the environment.
func New(ctx context.Context, opts ...Option) (*App, error) {
	o := options{withHTTP: true}
	for _, opt := range opts {
		opt(&o)
	}

	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)
	for _, fn := range o.configure {
		fn(&cfg)
	}

	a := &App{Log: log, Cfg: cfg}
	a.otelShutdown = observability.InitOTel(ctx, log, cfg.Otel)
	a.Metrics = observability.Init()

	store, err := db.NewService(cfg.DB, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init db: %w", err)
	}
	a.store = store
	if err := store.AutoMigrate(); err != nil {
		a.Close()
		return nil, fmt.Errorf("db automigrate: %w", err)
	}
	a.DB = store.DB()

	a.Repos = wireRepos(a.DB, log)
	a.Services, a.source, err = wireServices(log, cfg, a.Repos)
	if err != nil {
		a.Close()
		return nil, err
	}

	if o.withHTTP {
		handlerset := wireHandlers(log, cfg, a.Services, store.Ping)
		a.Router = wireRouter(log, cfg, handlerset, a.Metrics)
	}
	return a, nil
}

// Run serves HTTP until ctx is done.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized for http")
	}
	addr := ":" + a.Cfg.Port
	a.Log.Info("Server listening", "addr", addr)
	srv := &apphttp.Server{Engine: a.Router}
	return srv.RunContext(ctx, addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.source != nil {
		a.source.Close()
		a.source = nil
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.Log.Warn("db close failed", "error", err)
		}
		a.store = nil
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
		a.otelShutdown = nil
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
