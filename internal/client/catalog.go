package client

import (
	"context"
	"fmt"
	"time"

	"rickmorty/viewer/internal/config"
	"rickmorty/viewer/internal/domain"
	"rickmorty/viewer/internal/metrics"
	"rickmorty/viewer/internal/proxy"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

const tracerName = "rickmorty/viewer/internal/client"

type CatalogClient interface {
	FetchPage(ctx context.Context, cursor domain.Cursor) (*domain.CatalogPage, error)
	Close() error
}

type catalogClient struct {
	rl            ratelimit.Limiter
	httpClient    *resty.Client
	proxySupplier proxy.ProxySupplier
	tracer        trace.Tracer
	metrics       *metrics.Metrics
}

func NewCatalogClient(cfg config.CatalogConfig, proxySupplier proxy.ProxySupplier, m *metrics.Metrics) CatalogClient {
	client := resty.New().
		SetRetryCount(0).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "application/json")

	if timeout := cfg.TimeoutDuration(); timeout > 0 {
		client.SetTimeout(timeout)
	}

	if proxySupplier != nil {
		if proxyURL := proxySupplier.Get(); proxyURL != "" {
			client.SetProxy(proxyURL)
			log.Infof("🔗 Using catalog proxy: %s", proxyURL)
		}
	}

	rl := ratelimit.NewUnlimited()
	if cfg.MaxRequestsPerSecond > 0 {
		rl = ratelimit.New(cfg.MaxRequestsPerSecond)
	}

	return &catalogClient{
		rl:            rl,
		httpClient:    client,
		proxySupplier: proxySupplier,
		tracer:        otel.Tracer(tracerName),
		metrics:       m,
	}
}

// FetchPage issues one GET to the address named by cursor and decodes the page.
// Every failure is returned as *FetchError.
func (c *catalogClient) FetchPage(ctx context.Context, cursor domain.Cursor) (*domain.CatalogPage, error) {
	if cursor.IsNone() {
		return nil, &FetchError{Cursor: cursor, Err: ErrNoCursor}
	}

	ctx, span := c.tracer.Start(ctx, "catalog.FetchPage",
		trace.WithAttributes(attribute.String("catalog.cursor", cursor.String())))
	defer span.End()

	start := time.Now()
	page, err := c.fetchPage(ctx, cursor)
	c.metrics.ObserveFetch(time.Since(start), err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, &FetchError{Cursor: cursor, Err: err}
	}

	span.SetAttributes(
		attribute.Int("catalog.items", len(page.Items)),
		attribute.Bool("catalog.has_next", !page.Next.IsNone()),
	)
	log.Debugf("Fetched %s with %d characters, next=%q", cursor, len(page.Items), page.Next)
	return page, nil
}

func (c *catalogClient) fetchPage(ctx context.Context, cursor domain.Cursor) (*domain.CatalogPage, error) {
	body, err := c.fetchJSON(ctx, cursor.String())
	if err != nil {
		return nil, err
	}

	page, err := parseCatalogPage(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog page: %w", err)
	}

	return page, nil
}

func (c *catalogClient) fetchJSON(ctx context.Context, url string) ([]byte, error) {
	c.rl.Take()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("request cancelled: %w", err)
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get(url)

	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		c.switchProxy()
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}

	if code := resp.StatusCode(); code < 200 || code > 299 {
		c.switchProxy()
		return nil, fmt.Errorf("HTTP error: %s", resp.Status())
	}

	return []byte(resp.String()), nil
}

// switchProxy moves the client to the next proxy. The failed request is not
// repeated; the next fetch goes through the new proxy.
func (c *catalogClient) switchProxy() {
	if c.proxySupplier == nil || c.proxySupplier.Len() < 2 {
		return
	}

	if newProxy := c.proxySupplier.Get(); newProxy != "" {
		log.Infof("🔄 Switching to new proxy: %s", newProxy)
		c.httpClient.SetProxy(newProxy)
	}
}

func (c *catalogClient) Close() error {
	return c.httpClient.Close()
}
