package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/csitools/csi-surveillance/internal/capture"
	"github.com/csitools/csi-surveillance/internal/storage"
)

func Run(ctx context.Context, config *Config, w io.Writer) error {
	if _, err := os.Stat(config.DBPath); err != nil && os.IsNotExist(err) {
		return fmt.Errorf("database file '%s' does not exist: %w", config.DBPath, err)
	}

	store := storage.NewStore(config.DBPath)
	defer store.Close()

	if config.SessionID == 0 {
		return listSessions(ctx, store, w)
	}
	return reportSession(ctx, store, config.SessionID, w)
}

func listSessions(ctx context.Context, store *storage.Store, w io.Writer) error {
	sessions, err := store.Sessions(ctx)
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}
	if len(sessions) == 0 {
		_, err = fmt.Fprintln(w, "no sessions in database")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tIMPORTED\tSOURCE\tHARDWARE\tSCALED\tRECORDS")
	for _, sess := range sessions {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%t\t%s\n",
			sess.ID,
			humanize.Time(sess.StartTime),
			sess.SourceFile,
			sess.Hardware,
			sess.Scaled,
			humanize.Comma(int64(sess.ExpectedFrames)))
	}
	return tw.Flush()
}

func reportSession(ctx context.Context, store *storage.Store, sessionID int64, w io.Writer) error {
	sess, err := store.Session(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("reading session %d: %w", sessionID, err)
	}

	reader := store.NewFrameReader(sessionID)
	defer reader.Close()

	var stats FrameStats
	for reader.Next(ctx) {
		stats.Update(reader.Current())
	}
	if err = reader.Error(); err != nil {
		return err
	}

	sum := stats.Summarize()
	printReport(w, sess, sum)
	return nil
}

func printReport(w io.Writer, sess *capture.Session, sum Summary) {
	fmt.Fprintf(w, "Session %d\n", sess.ID)
	fmt.Fprintf(w, "  Imported:   %s (%s)\n", sess.StartTime.Local().Format(time.DateTime), humanize.Time(sess.StartTime))
	fmt.Fprintf(w, "  Source:     %s\n", sess.SourceFile)
	fmt.Fprintf(w, "  Hardware:   %s\n", sess.Hardware)
	fmt.Fprintf(w, "  Scaled:     %t\n", sess.Scaled)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Frames\n")
	fmt.Fprintf(w, "  Stored:     %s (of %s records)\n",
		humanize.Comma(int64(sum.Frames)), humanize.Comma(int64(sess.ExpectedFrames)))
	fmt.Fprintf(w, "  Scaled:     %s\n", humanize.Comma(int64(sum.ScaledFrames)))
	fmt.Fprintf(w, "  Duration:   %.2fs\n", sum.DurationSeconds)
	fmt.Fprintf(w, "  Frame rate: %.1f/s\n", sum.FrameRate)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "CSI power (dB)\n")
	fmt.Fprintf(w, "  Mean:       %.2f\n", sum.PowerMean)
	fmt.Fprintf(w, "  Median:     %.2f\n", sum.PowerMedian)
	fmt.Fprintf(w, "  Std dev:    %.2f\n", sum.PowerStdDev)
	fmt.Fprintf(w, "  Range:      %.2f - %.2f\n", sum.PowerMin, sum.PowerMax)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "RSSI (raw)\n")
	fmt.Fprintf(w, "  Antenna A:  %.1f\n", sum.RSSIAMean)
	fmt.Fprintf(w, "  Antenna B:  %.1f\n", sum.RSSIBMean)
	fmt.Fprintf(w, "  Antenna C:  %.1f\n", sum.RSSICMean)

	if len(sum.Subcarriers) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Amplitude per subcarrier (all antenna pairs)\n")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  SUBCARRIER\tMEAN\tSTDDEV")
	for _, sc := range sum.Subcarriers {
		fmt.Fprintf(tw, "  %d\t%.3f\t%.3f\n", sc.Index, sc.Mean, sc.StdDev)
	}
	tw.Flush()
}
