package container

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"rickmorty/viewer/internal/client"
	"rickmorty/viewer/internal/config"
	"rickmorty/viewer/internal/domain"
	"rickmorty/viewer/internal/httpserver"
	"rickmorty/viewer/internal/httpserver/deps"
	"rickmorty/viewer/internal/metrics"
	"rickmorty/viewer/internal/proxy"
	"rickmorty/viewer/internal/version"
	"rickmorty/viewer/internal/view"

	log "github.com/sirupsen/logrus"
)

// Container holds all initialized components
type Container struct {
	Config     *config.Config
	Client     client.CatalogClient
	Controller *view.Controller
	Metrics    *metrics.Metrics
	Server     *httpserver.Server
}

// New creates a new container with all dependencies initialized
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	container := &Container{
		Config:  cfg,
		Metrics: metrics.New(),
	}

	proxySupplier := proxy.NewProxySupplier(ctx, cfg.Catalog.Proxies, cfg.Catalog.InitialURL)
	if len(cfg.Catalog.Proxies) > 0 && proxySupplier.Len() == 0 {
		return nil, fmt.Errorf("none of the %d configured proxies is working", len(cfg.Catalog.Proxies))
	}

	container.Client = client.NewCatalogClient(cfg.Catalog, proxySupplier, container.Metrics)
	container.Controller = view.NewController(container.Client, domain.Cursor(cfg.Catalog.InitialURL), container.Metrics)

	var limiter *rate.Limiter
	if cfg.Web.LoadMoreRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Web.LoadMoreRate), max(1, cfg.Web.LoadMoreBurst))
	}

	container.Server = httpserver.New(cfg.Server, deps.Deps{
		View:            container.Controller,
		Metrics:         container.Metrics,
		LoadMoreLimiter: limiter,
		RefreshSeconds:  cfg.Web.RefreshSeconds,
		StartTime:       time.Now(),
		Version:         version.Version,
		Commit:          version.Commit,
		BuildDate:       version.BuildDate,
		GoVersion:       version.GoVersion,
	})

	return container, nil
}

// Run mounts the view controller and serves the pages until ctx is cancelled
// or the server fails.
func (c *Container) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := c.Server.Start(); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("⏳ Shutting down gracefully...")

		c.Controller.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), c.Config.Server.ShutdownTimeoutDuration())
		defer cancel()
		if err := c.Server.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("failed to stop server: %w", err)
		}
		return nil
	})

	// Rejection here only means there is nothing to load
	_ = c.Controller.Mount()

	return g.Wait()
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Info("Shutting down container...")

	c.Controller.Close()
	c.Controller.Wait()

	if err := c.Client.Close(); err != nil {
		return fmt.Errorf("failed to close catalog client: %w", err)
	}

	log.Info("Container shut down successfully")
	return nil
}
