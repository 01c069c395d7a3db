package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"blockScope/internal/chaintime"
	"blockScope/internal/config"
	"blockScope/internal/mapper"
	"blockScope/internal/metrics"
	"blockScope/internal/pipeline"
)

func runCrawl(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadCrawl(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.In == "" {
		return fmt.Errorf("input path is required")
	}

	utils, err := newUtils(cfg.Network, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	blocks, err := pipeline.Load(cfg.In, cfg.Format)
	if err != nil {
		return fmt.Errorf("load blocks: %w", err)
	}

	out, err := newSink(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := out.Close(); err != nil {
			logger.Warn("close sink", zap.Error(err))
		}
	}()

	var m *metrics.Metrics
	if cfg.MetricsAddr != "" {
		m = metrics.New()
		go func() {
			if err := m.Serve(ctx, cfg.MetricsAddr, logger); err != nil {
				logger.Error("metrics server failed", zap.Error(err))
			}
		}()
	}

	runner := pipeline.NewRunner(pipeline.RunConfig{
		Mapper: mapper.Config{
			IncludeBlockDetails:         cfg.IncludeBlockDetails,
			IncludeTransactionDetails:   cfg.IncludeTransactionDetails,
			IncludeBlockCbor:            cfg.IncludeBlockCbor,
			IncludeTransactionEndEvents: cfg.IncludeTransactionEndEvents,
			IncludeBlockEndEvents:       cfg.IncludeBlockEndEvents,
		},
		Fingerprint:  cfg.Fingerprint,
		Workers:      cfg.Workers,
		BatchSize:    cfg.BatchSize,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, utils, out, m, logger)

	logger.Info("crawl start",
		zap.String("in", cfg.In),
		zap.String("format", cfg.Format),
		zap.Int("blocks", len(blocks)),
		zap.String("sink", cfg.Sink),
		zap.String("network", cfg.Network),
		zap.Int("workers", cfg.Workers),
		zap.Bool("fingerprint", cfg.Fingerprint),
	)

	return runner.Run(ctx, blocks)
}

// newUtils wires the time provider of network; "none" leaves it unset.
func newUtils(network string, logger *zap.Logger) (mapper.Utils, error) {
	utils := mapper.Utils{Logger: logger}
	net, ok, err := chaintime.Lookup(network)
	if err != nil {
		return mapper.Utils{}, err
	}
	if ok {
		utils.Time = chaintime.NewProvider(net)
	}
	return utils, nil
}
