// Package pipeline crawls batches of raw blocks in parallel and delivers
// their events to a sink in input order.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"blockScope/internal/fingerprint"
	"blockScope/internal/mapper"
	"blockScope/internal/metrics"
	"blockScope/internal/model"
	"blockScope/internal/sink"
)

// RunConfig holds runtime settings for the runner.
type RunConfig struct {
	Mapper       mapper.Config
	Fingerprint  bool
	Workers      int
	BatchSize    int
	MaxRetries   int
	RetryBackoff time.Duration
}

// Runner crawls blocks and writes their events to a sink.
type Runner struct {
	cfg     RunConfig
	utils   mapper.Utils
	sink    sink.Sink
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewRunner builds a Runner with its dependencies. m may be nil.
func NewRunner(cfg RunConfig, utils mapper.Utils, out sink.Sink, m *metrics.Metrics, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = cfg.Workers * 4
	}
	if utils.Logger == nil {
		utils.Logger = logger
	}
	return &Runner{cfg: cfg, utils: utils, sink: out, metrics: m, logger: logger}
}

// crawled is the outcome of one block: the events emitted before any error,
// and that error.
type crawled struct {
	events []model.Event
	err    error
}

// Run crawls blocks and delivers their events. A block that fails to crawl
// still has the events emitted before the failure delivered; the run then
// stops with the crawl error.
func (r *Runner) Run(ctx context.Context, blocks []RawBlock) error {
	if r.sink == nil {
		return fmt.Errorf("sink is nil")
	}
	if len(blocks) == 0 {
		r.logger.Info("nothing to crawl")
		return nil
	}

	batches, err := SplitBatches(len(blocks), r.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, batch := range batches {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		results, err := r.crawlBatch(ctx, blocks[batch.From:batch.To])
		if err != nil {
			return err
		}

		delivered := 0
		for i, res := range results {
			block := blocks[batch.From+i]
			if err := r.deliver(ctx, block, res.events); err != nil {
				return fmt.Errorf("deliver %s: %w", block.Name, err)
			}
			delivered += len(res.events)
			if res.err != nil {
				r.metrics.CrawlFailed()
				r.logger.Error("crawl failed", zap.String("block", block.Name), zap.Error(res.err))
				return fmt.Errorf("crawl %s: %w", block.Name, res.err)
			}
			r.metrics.BlockCrawled()
		}

		r.logger.Info("batch complete",
			zap.Int("blocks", batch.To-batch.From),
			zap.Int("events", delivered),
			zap.Int("from", batch.From),
			zap.Int("to", batch.To-1),
		)
	}
	return nil
}

// crawlBatch crawls every block of the batch into its own buffer.
func (r *Runner) crawlBatch(ctx context.Context, blocks []RawBlock) ([]crawled, error) {
	results := make([]crawled, len(blocks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)

	for i, block := range blocks {
		i, block := i, block
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.crawlOne(block)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Runner) crawlOne(block RawBlock) crawled {
	buf := &mapper.Buffer{}
	var out mapper.Appender = buf
	if r.cfg.Fingerprint {
		out = fingerprint.NewStage(buf)
	}

	utils := r.utils
	utils.Logger = utils.Logger.With(zap.String("block", block.Name))
	err := mapper.NewEventWriter(out, utils, r.cfg.Mapper).CrawlFromCBOR(block.Data)
	return crawled{events: buf.Events, err: err}
}

func (r *Runner) deliver(ctx context.Context, block RawBlock, events []model.Event) error {
	if len(events) == 0 {
		return nil
	}
	onFailure := func(attempt int, err error) {
		r.metrics.SinkRetried()
		r.logger.Warn("sink write failed", zap.String("block", block.Name), zap.Int("attempt", attempt+1), zap.Error(err))
	}
	// A sink that may have kept part of a failed write gets a single attempt,
	// so a retry cannot duplicate the events it already accepted.
	retries := r.cfg.MaxRetries
	if !sink.Replayable(r.sink, events) {
		retries = 0
	}
	err := withRetry(ctx, retries, r.cfg.RetryBackoff, onFailure, func(ctx context.Context) error {
		return sink.Deliver(ctx, r.sink, events)
	})
	if err != nil {
		return err
	}

	for _, ev := range events {
		r.metrics.EventEmitted(ev.Data.Kind())
	}
	if slot := events[0].Context.Slot; slot != nil {
		r.metrics.SetLastSlot(*slot)
	}
	return nil
}
