package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "mapper",
		Short:        "Cardano block to event stream mapper",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	crawlCmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl blocks and deliver their events to a sink",
		RunE:  runCrawl,
	}

	crawlCmd.Flags().String("in", "", "input path (hex-lines file, - for stdin, or .cbor file/directory)")
	crawlCmd.Flags().String("format", "hex-lines", "input format (hex-lines, raw)")
	crawlCmd.Flags().String("sink", "stdout", "event sink (stdout, terminal, jsonl, postgres, s3)")
	crawlCmd.Flags().String("out", "./data/events.jsonl", "output JSONL path for the jsonl sink")
	crawlCmd.Flags().String("pg-dsn", "", "Postgres DSN for the postgres sink")
	crawlCmd.Flags().String("s3-bucket", "", "S3 bucket for the s3 sink")
	crawlCmd.Flags().String("s3-prefix", "", "S3 key prefix")
	crawlCmd.Flags().String("s3-region", "", "AWS region")
	crawlCmd.Flags().String("s3-endpoint", "", "custom S3 endpoint (path-style)")
	crawlCmd.Flags().String("s3-naming", "hash", "S3 key naming (hash, slot_hash, block_hash, block_number, epoch_hash, epoch_slot_hash, epoch_block_hash)")
	crawlCmd.Flags().String("s3-content", "cbor", "S3 object content (cbor, cbor_hex, json)")
	crawlCmd.Flags().String("sqs-queue-url", "", "SQS queue notified for every stored block")
	crawlCmd.Flags().Bool("sqs-fifo", false, "send FIFO group and deduplication ids")
	crawlCmd.Flags().String("sqs-group-id", "block-mapper", "FIFO message group id")
	crawlCmd.Flags().Int("terminal-width", 0, "truncate terminal lines to this width, 0 disables")
	crawlCmd.Flags().Bool("no-color", false, "disable terminal colors")
	crawlCmd.Flags().String("network", "mainnet", "network for epoch and timestamp computation (mainnet, preprod, preview, none)")
	crawlCmd.Flags().Bool("include-block-details", false, "embed transaction records in block events")
	crawlCmd.Flags().Bool("include-transaction-details", false, "embed inputs, outputs and other details in transaction events")
	crawlCmd.Flags().Bool("include-block-cbor", false, "embed the block cbor hex in block events")
	crawlCmd.Flags().Bool("include-transaction-end-events", false, "emit an event after each transaction")
	crawlCmd.Flags().Bool("include-block-end-events", false, "emit an event after each block")
	crawlCmd.Flags().Bool("fingerprint", false, "attach a fingerprint to every event")
	crawlCmd.Flags().Int("workers", 4, "blocks crawled in parallel")
	crawlCmd.Flags().Int("batch-size", 64, "blocks per batch")
	crawlCmd.Flags().Int("max-retries", 5, "maximum sink retry attempts")
	crawlCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial sink retry backoff")
	crawlCmd.Flags().String("metrics-addr", "", "serve prometheus metrics on this address")
	crawlCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(crawlCmd)

	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the block record of one block as JSON",
		RunE:  runInspect,
	}

	inspectCmd.Flags().String("in", "", "input path (hex-lines file, - for stdin, or .cbor file/directory)")
	inspectCmd.Flags().String("format", "hex-lines", "input format (hex-lines, raw)")
	inspectCmd.Flags().Int("index", 0, "position of the block within the input")
	inspectCmd.Flags().String("network", "mainnet", "network for epoch computation (mainnet, preprod, preview, none)")
	inspectCmd.Flags().Bool("include-block-cbor", false, "embed the block cbor hex")
	inspectCmd.Flags().Bool("include-transaction-details", false, "embed inputs, outputs and other details in transactions")
	inspectCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(inspectCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
