package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"blockScope/internal/config"
	"blockScope/internal/sink"
	"blockScope/internal/sink/objectstore"
	"blockScope/internal/sink/postgres"
)

func newSink(ctx context.Context, cfg config.CrawlConfig, logger *zap.Logger) (sink.Sink, error) {
	switch cfg.Sink {
	case "", "stdout":
		return sink.NewStream(os.Stdout), nil
	case "terminal":
		return sink.NewTerminal(os.Stdout, cfg.TerminalWidth, cfg.NoColor), nil
	case "jsonl":
		if cfg.Out == "" {
			return nil, fmt.Errorf("output path is required")
		}
		return sink.NewJSONL(cfg.Out), nil
	case "postgres":
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		return store, nil
	case "s3":
		naming, err := objectstore.ParseNaming(cfg.S3Naming)
		if err != nil {
			return nil, err
		}
		content, err := objectstore.ParseContentType(cfg.S3Content)
		if err != nil {
			return nil, err
		}
		store, err := objectstore.New(ctx, objectstore.Config{
			Bucket:     cfg.S3Bucket,
			Prefix:     cfg.S3Prefix,
			Region:     cfg.S3Region,
			Endpoint:   cfg.S3Endpoint,
			Naming:     naming,
			Content:    content,
			QueueURL:   cfg.SQSQueueURL,
			FIFO:       cfg.SQSFIFO,
			GroupID:    cfg.SQSGroupID,
			MaxRetries: cfg.MaxRetries,
		}, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return nil, fmt.Errorf("unknown sink: %s", cfg.Sink)
}
