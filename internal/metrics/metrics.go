package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"blockScope/internal/model"
)

// Metrics holds the crawl counters. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	registry      *prometheus.Registry
	blocksCrawled prometheus.Counter
	events        *prometheus.CounterVec
	failures      prometheus.Counter
	sinkRetries   prometheus.Counter
	lastSlot      prometheus.Gauge
}

// New registers the crawl metrics on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		blocksCrawled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "block_mapper_blocks_crawled_total",
			Help: "Total number of blocks crawled",
		}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "block_mapper_events_emitted_total",
			Help: "Total number of events delivered to the sink",
		}, []string{"kind"}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "block_mapper_crawl_failures_total",
			Help: "Total number of blocks that failed to crawl",
		}),
		sinkRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "block_mapper_sink_retries_total",
			Help: "Total number of retried sink writes",
		}),
		lastSlot: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "block_mapper_last_slot",
			Help: "Slot of the last block delivered to the sink",
		}),
	}
	m.registry.MustRegister(m.blocksCrawled, m.events, m.failures, m.sinkRetries, m.lastSlot)
	return m
}

func (m *Metrics) BlockCrawled() {
	if m != nil {
		m.blocksCrawled.Inc()
	}
}

func (m *Metrics) EventEmitted(kind model.EventKind) {
	if m != nil {
		m.events.WithLabelValues(kind.Key()).Inc()
	}
}

func (m *Metrics) CrawlFailed() {
	if m != nil {
		m.failures.Inc()
	}
}

func (m *Metrics) SinkRetried() {
	if m != nil {
		m.sinkRetries.Inc()
	}
}

func (m *Metrics) SetLastSlot(slot uint64) {
	if m != nil {
		m.lastSlot.Set(float64(slot))
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
