package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/formflow-backend/internal/data/db"
	httpapi "github.com/yungbote/formflow-backend/internal/http"
	"github.com/yungbote/formflow-backend/internal/observability"
	"github.com/yungbote/formflow-backend/internal/platform/logger"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services
	Clients  Clients
	Metrics  *observability.Metrics

	dbService *db.Service
}

// New loads configuration, connects storage and wires the HTTP stack. The
// schema is migrated unless skipMigrate is set.
func New(skipMigrate bool) (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.Observability.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	if cfg.OpenAI.APIKey == "" {
		log.Warn("OPENAI_API_KEY is not set; form generation will fail until it is")
	}

	dbs, err := db.NewService(log, cfg.DBConfig())
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init db: %w", err)
	}
	if !skipMigrate {
		if err := dbs.AutoMigrateAll(); err != nil {
			_ = dbs.Close()
			log.Sync()
			return nil, fmt.Errorf("automigrate: %w", err)
		}
	}
	theDB := dbs.DB()

	clients, err := wireClients(log, cfg)
	if err != nil {
		_ = dbs.Close()
		log.Sync()
		return nil, err
	}

	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(15 * time.Second)
	}

	reposet := wireRepos(theDB, log)
	serviceset, err := wireServices(log, cfg, reposet, clients)
	if err != nil {
		clients.Close()
		_ = dbs.Close()
		log.Sync()
		return nil, err
	}
	handlerset, err := wireHandlers(log, theDB, serviceset, metrics)
	if err != nil {
		clients.Close()
		_ = dbs.Close()
		log.Sync()
		return nil, err
	}
	mw := wireMiddleware(log, serviceset)
	router := wireRouter(log, cfg, handlerset, mw, metrics)

	return &App{
		Log:       log,
		DB:        theDB,
		Router:    router,
		Cfg:       cfg,
		Repos:     reposet,
		Services:  serviceset,
		Clients:   clients,
		Metrics:   metrics,
		dbService: dbs,
	}, nil
}

// Migrate runs the schema migration only.
func (a *App) Migrate() error {
	if a == nil || a.dbService == nil {
		return errors.New("app not initialized")
	}
	return a.dbService.AutoMigrateAll()
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Router == nil {
		return errors.New("app not initialized")
	}

	shutdownOTel := observability.InitOTel(ctx, a.Log, observability.OtelConfig{
		Enabled:     a.Cfg.Observability.OtelEnabled,
		ServiceName: serviceName,
		Environment: a.Cfg.Observability.Environment,
		Endpoint:    a.Cfg.Observability.OtelEndpoint,
		Headers:     a.Cfg.Observability.OtelHeaders,
		Insecure:    a.Cfg.Observability.OtelInsecure,
		SampleRatio: a.Cfg.Observability.OtelSample,
	})

	if a.Metrics != nil {
		a.Metrics.StartDBCollector(ctx, a.Log, a.DB)
		if a.Clients.Redis != nil {
			a.Metrics.StartRedisCollector(ctx, a.Log, a.Clients.Redis)
		}
	}

	addr := net.JoinHostPort("", a.Cfg.HTTP.Port)
	srv := httpapi.NewServer(a.Router, addr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Log.Info("Server listening", "addr", addr)
		return srv.Run()
	})
	g.Go(func() error {
		<-gctx.Done()
		a.Log.Info("Shutting down server...")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			a.Log.Warn("Server shutdown failed", "error", err.Error())
		}
		if err := shutdownOTel(sctx); err != nil {
			a.Log.Warn("OTel shutdown failed", "error", err.Error())
		}
		return nil
	})
	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	a.Clients.Close()
	if a.dbService != nil {
		if err := a.dbService.Close(); err != nil && a.Log != nil {
			a.Log.Warn("DB close failed", "error", err.Error())
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
