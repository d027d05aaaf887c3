package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/voyagerverse-backend/internal/http"
	"github.com/yungbote/voyagerverse-backend/internal/observability"
	"github.com/yungbote/voyagerverse-backend/internal/platform/envutil"
	"github.com/yungbote/voyagerverse-backend/internal/platform/logger"
)

const serviceName = "voyagerverse-backend"

type App struct {
	Log      *logger.Logger
	Router   *gin.Engine
	Cfg      Config
	Clients  Clients
	Services Services

	server       *http.Server
	otelShutdown func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	metrics := observability.Init(log)
	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: serviceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})

	clients, err := wireClients(log)
	if err != nil {
		_ = otelShutdown(ctx)
		log.Sync()
		return nil, err
	}

	services := wireServices(log, cfg, clients)
	handlers := wireHandlers(log, services)
	server := wireRouter(log, cfg, metrics, handlers)

	return &App{
		Log:          log,
		Router:       server.Engine,
		Cfg:          cfg,
		Clients:      clients,
		Services:     services,
		server:       server,
		otelShutdown: otelShutdown,
	}, nil
}

// Run serves HTTP and runs the background workers until ctx is cancelled or
// one of them fails.
func (a *App) Run(ctx context.Context, addr string) error {
	if a == nil || a.server == nil {
		return fmt.Errorf("app not initialized")
	}
	if addr == "" {
		addr = a.Cfg.Address()
	}
	g, ctx := errgroup.WithContext(ctx)

	if a.Clients.Bus != nil {
		if err := a.Clients.Bus.StartForwarder(ctx, a.Services.SSEHub.Broadcast); err != nil {
			return fmt.Errorf("start notification forwarder: %w", err)
		}
	}
	observability.Current().StartSLOEvaluator(ctx, a.Log)
	g.Go(func() error {
		a.Services.Refresher.Run(ctx)
		return nil
	})
	g.Go(func() error {
		a.Log.Info("HTTP server listening", "addr", addr)
		return a.server.Run(ctx, addr)
	})
	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	a.Clients.Close()
	if a.otelShutdown != nil {
		if err := a.otelShutdown(context.Background()); err != nil && a.Log != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
