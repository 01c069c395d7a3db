package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// CrawlConfig holds configuration for the crawl command.
type CrawlConfig struct {
	In     string
	Format string
	Sink   string
	Out    string

	PGDSN string

	S3Bucket    string
	S3Prefix    string
	S3Region    string
	S3Endpoint  string
	S3Naming    string
	S3Content   string
	SQSQueueURL string
	SQSFIFO     bool
	SQSGroupID  string

	TerminalWidth int
	NoColor       bool

	Network                     string
	IncludeBlockDetails         bool
	IncludeTransactionDetails   bool
	IncludeBlockCbor            bool
	IncludeTransactionEndEvents bool
	IncludeBlockEndEvents       bool
	Fingerprint                 bool

	Workers      int
	BatchSize    int
	MaxRetries   int
	RetryBackoff time.Duration
	MetricsAddr  string
	LogLevel     string
}

// LoadCrawl merges config file, environment variables, and flags into CrawlConfig.
func LoadCrawl(cfgFile string, flags *pflag.FlagSet) (CrawlConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]any{
		"format":        "hex-lines",
		"sink":          "stdout",
		"out":           "./data/events.jsonl",
		"s3-naming":     "hash",
		"s3-content":    "cbor",
		"sqs-group-id":  "block-mapper",
		"network":       "mainnet",
		"workers":       4,
		"batch-size":    64,
		"max-retries":   5,
		"retry-backoff": 500 * time.Millisecond,
		"log-level":     "info",
	})
	if err != nil {
		return CrawlConfig{}, err
	}

	cfg := CrawlConfig{
		In:     v.GetString("in"),
		Format: v.GetString("format"),
		Sink:   strings.ToLower(v.GetString("sink")),
		Out:    v.GetString("out"),

		PGDSN: v.GetString("pg-dsn"),

		S3Bucket:    v.GetString("s3-bucket"),
		S3Prefix:    v.GetString("s3-prefix"),
		S3Region:    v.GetString("s3-region"),
		S3Endpoint:  v.GetString("s3-endpoint"),
		S3Naming:    v.GetString("s3-naming"),
		S3Content:   v.GetString("s3-content"),
		SQSQueueURL: v.GetString("sqs-queue-url"),
		SQSFIFO:     v.GetBool("sqs-fifo"),
		SQSGroupID:  v.GetString("sqs-group-id"),

		TerminalWidth: v.GetInt("terminal-width"),
		NoColor:       v.GetBool("no-color"),

		Network:                     v.GetString("network"),
		IncludeBlockDetails:         v.GetBool("include-block-details"),
		IncludeTransactionDetails:   v.GetBool("include-transaction-details"),
		IncludeBlockCbor:            v.GetBool("include-block-cbor"),
		IncludeTransactionEndEvents: v.GetBool("include-transaction-end-events"),
		IncludeBlockEndEvents:       v.GetBool("include-block-end-events"),
		Fingerprint:                 v.GetBool("fingerprint"),

		Workers:      v.GetInt("workers"),
		BatchSize:    v.GetInt("batch-size"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		MetricsAddr:  v.GetString("metrics-addr"),
		LogLevel:     v.GetString("log-level"),
	}

	if cfg.Sink == "s3" && !cfg.IncludeBlockCbor {
		return CrawlConfig{}, fmt.Errorf("s3 sink requires include-block-cbor")
	}
	return cfg, nil
}

// InspectConfig holds configuration for the inspect command.
type InspectConfig struct {
	In                        string
	Format                    string
	Index                     int
	Network                   string
	IncludeBlockCbor          bool
	IncludeTransactionDetails bool
	LogLevel                  string
}

// LoadInspect merges config file, environment variables, and flags into InspectConfig.
func LoadInspect(cfgFile string, flags *pflag.FlagSet) (InspectConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]any{
		"format":    "hex-lines",
		"network":   "mainnet",
		"log-level": "info",
	})
	if err != nil {
		return InspectConfig{}, err
	}

	cfg := InspectConfig{
		In:                        v.GetString("in"),
		Format:                    v.GetString("format"),
		Index:                     v.GetInt("index"),
		Network:                   v.GetString("network"),
		IncludeBlockCbor:          v.GetBool("include-block-cbor"),
		IncludeTransactionDetails: v.GetBool("include-transaction-details"),
		LogLevel:                  v.GetString("log-level"),
	}
	if cfg.Index < 0 {
		return InspectConfig{}, fmt.Errorf("index must not be negative")
	}
	return cfg, nil
}

func newViper(cfgFile string, flags *pflag.FlagSet, defaults map[string]any) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("MAPPER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}
