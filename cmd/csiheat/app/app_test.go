package app

import (
	"context"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/csitools/csi-surveillance/internal/capture"
	"github.com/csitools/csi-surveillance/internal/iwl"
	"github.com/csitools/csi-surveillance/internal/storage"
)

func offsetFrame(t *testing.T, offset time.Duration) iwl.Frame {
	t.Helper()
	values := make([]complex128, iwl.NumSubcarriers)
	for i := range values {
		values[i] = complex(float64(i%5)+1, 1)
	}
	m, err := iwl.MatrixFromValues(1, 1, values)
	if err != nil {
		t.Fatalf("MatrixFromValues() error = %v", err)
	}
	return iwl.Frame{
		Header: iwl.RecordHeader{NRx: 1, NTx: 1},
		Matrix: m,
		Offset: offset,
	}
}

func TestRenderHeatmapMaxOffsetKeepsEarlyFrames(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store := storage.NewStore(filepath.Join(dir, "csi.db"))
	defer store.Close()

	id, err := store.CreateSession(ctx, "testdata/walk.dat", capture.HardwareIWL5300, false, nil)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	// Timestamp wraps can place frames before the first one, so stored
	// offsets may be negative.
	c := capture.New("testdata/walk.dat")
	c.Push(offsetFrame(t, -500*time.Millisecond))
	c.Push(offsetFrame(t, 0))
	c.Push(offsetFrame(t, time.Second))
	c.ExpectedFrames = 3
	if err = store.StoreCapture(ctx, id, c); err != nil {
		t.Fatalf("StoreCapture() error = %v", err)
	}

	config := NewConfig()
	config.SessionID = id
	config.OutputFile = filepath.Join(dir, "out.png")
	config.CellWidth = 1
	maxOffset := 0.5
	config.MaxOffset = &maxOffset

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err = renderHeatmap(ctx, store, config, logger); err != nil {
		t.Fatalf("renderHeatmap() error = %v", err)
	}

	f, err := os.Open(config.OutputFile)
	if err != nil {
		t.Fatalf("opening output image: %v", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decoding output image: %v", err)
	}

	// Borderless render: one pixel row per frame. The -max-offset filter
	// must keep the negative-offset frame and drop only the late one.
	if got := img.Bounds().Dy(); got != 2 {
		t.Errorf("image height = %d, want 2 (frames at -0.5s and 0s)", got)
	}
	if got := img.Bounds().Dx(); got != iwl.NumSubcarriers {
		t.Errorf("image width = %d, want %d", got, iwl.NumSubcarriers)
	}
}
