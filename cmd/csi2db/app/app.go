package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/csitools/csi-surveillance/internal/capture"
	"github.com/csitools/csi-surveillance/internal/iwl"
	"github.com/csitools/csi-surveillance/internal/storage"
)

// Run imports the configured capture file into the SQLite database as a
// new session.
func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	data, err := os.ReadFile(config.Input.File)
	if err != nil {
		return fmt.Errorf("failed to read capture file: %w", err)
	}

	logger.Info("scanning capture file",
		slog.String("file", config.Input.File),
		slog.String("size", humanize.IBytes(uint64(len(data)))),
		slog.Bool("scale", config.Input.Scale))

	opts := []iwl.ScannerOption{iwl.WithLogger(logger)}
	if config.Input.Scale {
		opts = append(opts, iwl.WithScaling())
	}

	frames, attempted := iwl.NewScanner(opts...).Scan(data)
	c := capture.FromScan(config.Input.File, frames, attempted)

	logger.Info("finished scanning",
		slog.Int("frames", len(c.Frames)),
		slog.Int("attempted", c.ExpectedFrames),
		slog.Duration("duration", c.Duration()))

	store := storage.NewStore(config.Storage.Database)
	defer store.Close()

	rawConfig, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to serialize configuration: %w", err)
	}
	cfg := string(rawConfig)

	sessionID, err := store.CreateSession(ctx, c.SourceFile, c.Hardware, config.Input.Scale, &cfg)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	if err = store.StoreCapture(ctx, sessionID, c); err != nil {
		return fmt.Errorf("failed to store capture: %w", err)
	}

	logger.Info("capture imported",
		slog.Int64("sessionID", sessionID),
		slog.String("frames", humanize.Comma(int64(len(c.Frames)))),
		slog.String("database", config.Storage.Database))

	return nil
}
