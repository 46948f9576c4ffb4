// Command import registers participants from a CSV file using the same
// skip-and-continue policy as the bulk registration endpoint.
//
// Usage: import <file.csv>
//
// Set IMPORT_DRYRUN=true to parse and report the file without registering.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ArowuTest/sequence-draw-backend/internal/config"
	"github.com/ArowuTest/sequence-draw-backend/internal/engine"
	mongorepo "github.com/ArowuTest/sequence-draw-backend/internal/repositories/mongodb"
	"github.com/ArowuTest/sequence-draw-backend/internal/utils"
	"github.com/ArowuTest/sequence-draw-backend/pkg/mongodb"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Import failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) < 2 {
		return fmt.Errorf("CSV file path is required as a command line argument")
	}
	csvFilePath := os.Args[1]

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	f, err := os.Open(csvFilePath)
	if err != nil {
		return fmt.Errorf("open %s: %w", csvFilePath, err)
	}
	defer f.Close()

	parsed, err := utils.ParseParticipantsCSV(f)
	if err != nil {
		return fmt.Errorf("parse %s: %w", csvFilePath, err)
	}
	for _, rowErr := range parsed.RowErrors {
		slog.Warn("Skipping unreadable row", "row", rowErr.Row, "error", rowErr.Message)
	}
	slog.Info("Parsed CSV", "file", csvFilePath, "entries", len(parsed.Entries), "rowErrors", len(parsed.RowErrors))
	if cfg.Import.DryRun {
		slog.Info("Dry run, nothing registered")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if cfg.Storage.Driver == config.StorageMemory {
		return fmt.Errorf("importing into the memory driver has no effect; set STORAGE_DRIVER=%s", config.StorageMongoDB)
	}
	client, err := mongodb.NewClient(ctx, cfg.MongoDB.URI, cfg.MongoDB.Database, cfg.MongoDB.ConnectTimeout)
	if err != nil {
		return fmt.Errorf("connect to MongoDB: %w", err)
	}
	defer client.Disconnect(context.Background())

	e, err := engine.New(mongorepo.NewStore(client.Database()), engine.Settings{
		SequenceLength:       cfg.Draw.SequenceLength,
		Alphabet:             cfg.Draw.Alphabet,
		DefaultCapacityLimit: cfg.Draw.CapacityLimit,
		DefaultWinnerCount:   cfg.Draw.WinnerCount,
	})
	if err != nil {
		return err
	}
	if err := e.Load(ctx); err != nil {
		return fmt.Errorf("load draw state: %w", err)
	}

	result, err := e.BulkRegister(ctx, parsed.Entries)
	if err != nil {
		return err
	}
	for _, skipped := range result.Skipped {
		slog.Warn("Skipped entry", "index", skipped.Index, "displayName", skipped.Entry.DisplayName,
			"code", skipped.Code, "reason", skipped.Reason)
	}
	slog.Info("Import complete", "added", result.Added, "skipped", len(result.Skipped))
	return nil
}
