// Package syncer coordinates the replace-all refresh: clear the store,
// fetch the remote feed, parse it, persist the new snapshot, and report
// completion to whoever triggered it.
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ericvolp12/epicentre/pkg/feed"
	"github.com/ericvolp12/epicentre/pkg/quake"
	"github.com/ericvolp12/epicentre/pkg/store"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("syncer")

// DefaultFeedURL is the USGS M2.5+ 30-day earthquake summary report.
const DefaultFeedURL = "https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/2.5_month.geojson"

// Result is the completion notification for one refresh, carrying the new
// collection's identifier and the stored feature count.
type Result struct {
	CollectionID int64
	FeatureCount int64
	Err          error
}

// Syncer runs refreshes against one feed URL. Refreshes are fire-and-
// forget and are not de-duplicated: a second trigger while one is in
// flight races against it, serialized only by the store's transactions.
type Syncer struct {
	logger      *slog.Logger
	feedURL     string
	client      *http.Client
	limiter     *rate.Limiter
	parser      *feed.Parser
	collections *store.Collections
	features    *store.Features
}

// New creates a Syncer fetching from feedURL and persisting into s.
func New(logger *slog.Logger, feedURL string, s *store.Store) *Syncer {
	logger = logger.With("component", "syncer")

	client := &http.Client{
		Timeout:   30 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	// Rate limit requests against the upstream feed
	limiter := rate.NewLimiter(rate.Limit(1), 1)

	return &Syncer{
		logger:      logger,
		feedURL:     feedURL,
		client:      client,
		limiter:     limiter,
		parser:      feed.NewParser(logger),
		collections: s.Collections(),
		features:    s.Features(),
	}
}

// Refresh spawns the refresh in the background and returns a one-shot
// channel carrying its Result. The trigger is never blocked; a listener
// that has gone away can simply drop the channel.
func (s *Syncer) Refresh(ctx context.Context) <-chan Result {
	results := make(chan Result, 1)
	go func() {
		results <- s.refresh(ctx)
	}()
	return results
}

func (s *Syncer) refresh(ctx context.Context) Result {
	ctx, span := tracer.Start(ctx, "Refresh")
	defer span.End()

	start := time.Now()

	// The prior snapshot goes first. A failed fetch after this leaves the
	// store empty until the next refresh, not rolled back.
	if err := s.collections.DeleteAll(ctx); err != nil {
		return s.fail("delete", fmt.Errorf("failed to clear store: %w", err))
	}

	collection, err := s.fetch(ctx)
	if err != nil {
		return s.fail("fetch", err)
	}

	id, err := s.collections.Save(ctx, collection)
	if err != nil {
		return s.fail("save", err)
	}

	count, err := s.features.Count(ctx)
	if err != nil {
		return s.fail("count", err)
	}

	refreshesTotal.WithLabelValues("success").Inc()
	refreshDuration.Observe(time.Since(start).Seconds())
	featuresStored.Set(float64(count))

	s.logger.Info("refresh complete", "collection_id", id, "features", count)

	return Result{CollectionID: id, FeatureCount: count}
}

func (s *Syncer) fetch(ctx context.Context) (*quake.FeatureCollection, error) {
	ctx, span := tracer.Start(ctx, "fetch")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "epicentre/0.0.1")

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for rate limiter: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected feed response status: %s", resp.Status)
	}

	collection, err := s.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}
	return collection, nil
}

func (s *Syncer) fail(stage string, err error) Result {
	refreshesTotal.WithLabelValues(stage + "_error").Inc()
	s.logger.Error("refresh failed", "stage", stage, "error", err)
	return Result{Err: err}
}
