package app

import (
	"context"
	"fmt"
	"image/jpeg"
	"image/png"
	"log/slog"
	"math"
	"os"

	"github.com/csitools/csi-surveillance/internal/storage"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	if _, err := os.Stat(config.DBPath); err != nil && os.IsNotExist(err) {
		return fmt.Errorf("database file '%s' does not exist: %w", config.DBPath, err)
	}

	store := storage.NewStore(config.DBPath)
	defer store.Close()

	return renderHeatmap(ctx, store, config, logger)
}

func renderHeatmap(ctx context.Context, store *storage.Store, config *Config, logger *slog.Logger) error {
	sess, err := store.Session(ctx, config.SessionID)
	if err != nil {
		return fmt.Errorf("reading session %d: %w", config.SessionID, err)
	}

	var opts []storage.ReaderOption
	var filters []any
	switch {
	case config.MinOffset != nil && config.MaxOffset != nil:
		opts = append(opts, storage.WithOffsetRange(*config.MinOffset, *config.MaxOffset))
		filters = append(filters,
			slog.String("minOffset", fmt.Sprintf("%.2fs", *config.MinOffset)),
			slog.String("maxOffset", fmt.Sprintf("%.2fs", *config.MaxOffset)))

	case config.MinOffset != nil:
		opts = append(opts, storage.WithOffsetRange(*config.MinOffset, math.MaxFloat64))
		filters = append(filters, slog.String("minOffset", fmt.Sprintf("%.2fs", *config.MinOffset)))

	case config.MaxOffset != nil:
		opts = append(opts, storage.WithOffsetRange(-math.MaxFloat64, *config.MaxOffset))
		filters = append(filters, slog.String("maxOffset", fmt.Sprintf("%.2fs", *config.MaxOffset)))
	}

	logger.Info("reader configuration",
		append([]any{
			slog.String("source", sess.SourceFile),
			slog.Int("rx", config.RxAntenna),
			slog.Int("tx", config.TxAntenna),
		}, filters...)...)

	reader := store.NewFrameReader(config.SessionID, opts...)
	defer reader.Close()

	data := NewHeatmapData(NewSmoothBounds(0.3))
	for reader.Next(ctx) {
		data.Update(reader.Current(), config.RxAntenna, config.TxAntenna)
	}
	if err = reader.Error(); err != nil {
		return err
	}
	if data.Height == 0 {
		return fmt.Errorf("session %d has no frames for antenna pair rx %d / tx %d",
			config.SessionID, config.RxAntenna, config.TxAntenna)
	}

	data.BoundsTracker.Override(config.MinPower, config.MaxPower)
	bounds := data.BoundsTracker.Current()

	logger.Info("finished reading frames",
		slog.Group("stats",
			slog.Int("frames", data.Height),
			slog.Int("skipped", data.SkippedFrames),
			slog.String("span", fmt.Sprintf("%.2fs - %.2fs", data.OffsetStart, data.OffsetEnd)),
			slog.String("minPower", fmt.Sprintf("%0.2fdB", bounds.Min)),
			slog.String("maxPower", fmt.Sprintf("%0.2fdB", bounds.Max)),
		))

	renderer, err := NewHeatmapRenderer(RenderConfig{
		ColorTheme: config.Theme,
		CellWidth:  config.CellWidth,
		FontPath:   config.FontPath,
		RxAntenna:  config.RxAntenna,
		TxAntenna:  config.TxAntenna,
		Annotate:   !config.NoAnnotations && config.FontPath != "",
	})
	if err != nil {
		return fmt.Errorf("creating heatmap renderer: %w", err)
	}

	logger.Info("rendering heatmap",
		slog.Group("image",
			slog.String("destination", config.OutputFile),
			slog.String("format", string(config.Format)),
			slog.String("theme", string(config.Theme)),
			slog.Int("width", data.Width*config.CellWidth),
			slog.Int("height", data.Height),
		))

	img, err := renderer.Render(data)
	if err != nil {
		return fmt.Errorf("rendering heatmap: %w", err)
	}

	out, err := os.Create(config.OutputFile)
	if err != nil {
		return err
	}
	defer out.Close()

	switch config.Format {
	case ImagePNG:
		err = png.Encode(out, img)

	case ImageJPEG:
		err = jpeg.Encode(out, img, &jpeg.Options{
			Quality: 98,
		})
	}
	return err
}
