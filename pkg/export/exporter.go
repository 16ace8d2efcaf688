// Package export implements the concurrent scroll export engine: one
// pagination session per sliced worker, a shared output sink, and a shared
// progress counter, joined under a fail-fast error policy.
package export

import (
	"context"
	"io"
	"net/http"
	"runtime"
	"time"

	"github.com/esferry/esferry/pkg/elastic"
	"github.com/esferry/esferry/pkg/logging"
	"github.com/esferry/esferry/pkg/progress"
	"github.com/esferry/esferry/pkg/query"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"
)

// Prometheus metrics for export progress.
var (
	documentsExportedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "esferry_documents_exported_total",
		Help: "Total documents written to the output stream",
	})

	pagesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "esferry_pages_fetched_total",
		Help: "Total non-empty pages fetched across all workers",
	})

	sessionsFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "esferry_sessions_failed_total",
		Help: "Total worker sessions that terminated in failure",
	})
)

// Options configures one export run.
type Options struct {
	// Source is the cluster endpoint URL; its path selects the index.
	Source string

	// Workers is the number of concurrent slices. Zero means one worker
	// per available CPU.
	Workers int

	// Size is the page size per request. Zero means query.DefaultSize.
	Size int

	// Filter is the user-supplied filter JSON. Empty means match-all.
	Filter string

	// Output receives one JSON record per document (default: stdout).
	Output io.Writer

	// Diagnostics receives progress lines (default: stderr).
	Diagnostics io.Writer

	// HTTPClient overrides the underlying HTTP client (for testing).
	HTTPClient *http.Client
}

// Run streams the full contents of the target index to the output stream.
//
// All configuration and every worker query are validated before the first
// request; a ConfigError or QueryError therefore aborts with zero work
// performed. Sessions then run concurrently until each drains its slice.
//
// Failure policy is fail-fast: the first session to fail cancels the shared
// context, sibling sessions stop issuing requests at their next fetch, and
// the first error becomes the overall result. Documents already written
// stay on the output stream; output is never rolled back.
func Run(ctx context.Context, opts Options) error {
	logger := logging.NewLogger("export")

	workers := opts.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers < 1 {
		return &elastic.ConfigError{Reason: "worker count must be positive"}
	}

	size := opts.Size
	if size == 0 {
		size = query.DefaultSize
	}

	cluster, index, err := elastic.ParseEndpoint(opts.Source)
	if err != nil {
		return err
	}

	client, err := elastic.New(elastic.Config{
		Cluster:    cluster,
		HTTPClient: opts.HTTPClient,
	})
	if err != nil {
		return err
	}

	// Build every worker query up front: a bad filter must abort before
	// any session starts.
	queries := make([]query.Query, workers)
	for id := range queries {
		queries[id], err = query.Build(opts.Filter, size, id, workers)
		if err != nil {
			return err
		}
	}

	sink := NewSink(opts.Output)
	counter := progress.NewCounter(opts.Diagnostics)

	logger.Info().
		Str("cluster", cluster).
		Str("index", index).
		Int("workers", workers).
		Int("size", size).
		Msg("Starting export")

	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	for id := 0; id < workers; id++ {
		s := &session{
			id:      id,
			client:  client,
			index:   index,
			query:   queries[id],
			sink:    sink,
			counter: counter,
			logger:  logger,
		}
		g.Go(func() error {
			return s.run(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error().
			Err(err).
			Int64("documents", counter.Total()).
			Dur("duration", time.Since(start)).
			Msg("Export failed")
		return err
	}

	logger.Info().
		Int64("documents", counter.Total()).
		Dur("duration", time.Since(start)).
		Msg("Export complete")
	return nil
}
