package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"blockScope/internal/config"
	"blockScope/internal/ledger"
	"blockScope/internal/mapper"
	"blockScope/internal/model"
	"blockScope/internal/pipeline"
)

func runInspect(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadInspect(cfgFile, cmd.Flags())
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

	blocks, err := pipeline.Load(cfg.In, cfg.Format)
	if err != nil {
		return fmt.Errorf("load blocks: %w", err)
	}
	if cfg.Index >= len(blocks) {
		return fmt.Errorf("index %d out of range, input has %d blocks", cfg.Index, len(blocks))
	}
	raw := blocks[cfg.Index].Data

	utils, err := newUtils(cfg.Network, logger)
	if err != nil {
		return err
	}
	writer := mapper.NewEventWriter(&mapper.Buffer{}, utils, mapper.Config{
		IncludeBlockDetails:       true,
		IncludeTransactionDetails: cfg.IncludeTransactionDetails,
		IncludeBlockCbor:          cfg.IncludeBlockCbor,
	})

	record, err := blockRecord(writer, raw)
	if err != nil {
		return fmt.Errorf("inspect %s: %w", blocks[cfg.Index].Name, err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(record)
}

func blockRecord(w mapper.EventWriter, raw []byte) (model.BlockRecord, error) {
	era, block, err := ledger.DecodeBlock(raw)
	if err != nil {
		return model.BlockRecord{}, err
	}
	switch b := block.(type) {
	case *ledger.AlonzoBlock:
		return w.ToBlockRecord(era, b, raw)
	case *ledger.BabbageBlock:
		return w.ToBabbageBlockRecord(era, b, raw)
	}
	return model.BlockRecord{}, fmt.Errorf("%w: %s", ledger.ErrUnsupportedEra, era)
}
