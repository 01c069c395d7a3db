package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mapper.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadCrawlDefaults(t *testing.T) {
	cfg, err := LoadCrawl(writeConfig(t, "in: blocks.hex\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, "blocks.hex", cfg.In)
	assert.Equal(t, "hex-lines", cfg.Format)
	assert.Equal(t, "stdout", cfg.Sink)
	assert.Equal(t, "mainnet", cfg.Network)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.RetryBackoff)
	assert.False(t, cfg.IncludeBlockDetails)
}

func TestLoadCrawlPrecedence(t *testing.T) {
	path := writeConfig(t, "sink: jsonl\nworkers: 2\nnetwork: preview\n")
	t.Setenv("MAPPER_WORKERS", "6")
	t.Setenv("MAPPER_INCLUDE_BLOCK_DETAILS", "true")

	flags := pflag.NewFlagSet("crawl", pflag.ContinueOnError)
	flags.String("network", "mainnet", "")
	require.NoError(t, flags.Parse([]string{"--network", "preprod"}))

	cfg, err := LoadCrawl(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "jsonl", cfg.Sink)
	assert.Equal(t, 6, cfg.Workers)
	assert.True(t, cfg.IncludeBlockDetails)
	assert.Equal(t, "preprod", cfg.Network)
}

func TestLoadCrawlRejectsS3WithoutCbor(t *testing.T) {
	_, err := LoadCrawl(writeConfig(t, "sink: s3\n"), nil)
	assert.ErrorContains(t, err, "include-block-cbor")

	cfg, err := LoadCrawl(writeConfig(t, "sink: S3\ninclude-block-cbor: true\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, "s3", cfg.Sink)
}

func TestLoadInspect(t *testing.T) {
	cfg, err := LoadInspect(writeConfig(t, "in: one.cbor\nformat: raw\nindex: 2\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, "one.cbor", cfg.In)
	assert.Equal(t, "raw", cfg.Format)
	assert.Equal(t, 2, cfg.Index)

	_, err = LoadInspect(writeConfig(t, "index: -1\n"), nil)
	assert.Error(t, err)

	_, err = LoadInspect(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.ErrorContains(t, err, "read config")
}
