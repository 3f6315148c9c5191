package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/csitools/csi-surveillance/internal/capture"
)

// ErrNoData is returned when a query matches no stored frames or sessions.
var ErrNoData = errors.New("no data")

// ReaderOption configures a FrameReader.
type ReaderOption func(*FrameReader)

// WithFrameRange limits iteration to frame indices in [min, max].
func WithFrameRange(min, max int) ReaderOption {
	return func(r *FrameReader) {
		r.minFrame = &min
		r.maxFrame = &max
	}
}

// WithMinFrame limits iteration to frame indices >= min.
func WithMinFrame(min int) ReaderOption {
	return func(r *FrameReader) {
		r.minFrame = &min
	}
}

// WithMaxFrame limits iteration to frame indices <= max.
func WithMaxFrame(max int) ReaderOption {
	return func(r *FrameReader) {
		r.maxFrame = &max
	}
}

// WithOffsetRange limits iteration to frames whose capture offset in
// seconds falls within [min, max].
func WithOffsetRange(min, max float64) ReaderOption {
	return func(r *FrameReader) {
		r.minOffset = &min
		r.maxOffset = &max
	}
}

// FrameReader iterates over the stored frames of one capture session in
// frame order. It is not safe for concurrent use.
type FrameReader struct {
	store     *Store
	sessionID int64

	minFrame  *int
	maxFrame  *int
	minOffset *float64
	maxOffset *float64

	rows    *sql.Rows
	current *frameData
	err     error
}

// NewFrameReader creates a reader over the frames of sessionID. Bounds
// left unset by options default to the full stored range.
func (s *Store) NewFrameReader(sessionID int64, opts ...ReaderOption) *FrameReader {
	r := &FrameReader{store: s, sessionID: sessionID}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *FrameReader) init(ctx context.Context) error {
	steps := []func(context.Context) error{
		r.resolveBounds,
		r.query,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (r *FrameReader) resolveBounds(ctx context.Context) error {
	if r.minFrame != nil && r.maxFrame != nil && r.minOffset != nil && r.maxOffset != nil {
		return nil
	}

	db, err := r.store.reader()
	if err != nil {
		return err
	}

	var minIdx, maxIdx sql.NullInt64
	var minOff, maxOff sql.NullFloat64
	row := db.QueryRowContext(ctx, selectFrameBoundsSQL, r.sessionID)
	if err = row.Scan(&minIdx, &maxIdx, &minOff, &maxOff); err != nil {
		return fmt.Errorf("failed to read frame bounds: %w", err)
	}
	if !minIdx.Valid {
		return ErrNoData
	}

	if r.minFrame == nil {
		v := int(minIdx.Int64)
		r.minFrame = &v
	}
	if r.maxFrame == nil {
		v := int(maxIdx.Int64)
		r.maxFrame = &v
	}
	if r.minOffset == nil {
		v := math.Min(minOff.Float64, 0)
		r.minOffset = &v
	}
	if r.maxOffset == nil {
		v := maxOff.Float64
		r.maxOffset = &v
	}
	return nil
}

func (r *FrameReader) query(ctx context.Context) error {
	db, err := r.store.reader()
	if err != nil {
		return err
	}

	rows, err := db.QueryContext(ctx, selectFramesSQL,
		r.sessionID, *r.minFrame, *r.maxFrame, *r.minOffset, *r.maxOffset)
	if err != nil {
		return fmt.Errorf("failed to query frames: %w", err)
	}
	r.rows = rows
	return nil
}

// Next advances to the next frame. It returns false when iteration ends,
// either by exhaustion or error; check Error after a false return.
func (r *FrameReader) Next(ctx context.Context) bool {
	if r.err != nil {
		return false
	}
	if r.rows == nil {
		if r.err = r.init(ctx); r.err != nil {
			return false
		}
	}

	if !r.rows.Next() {
		r.err = r.rows.Err()
		r.current = nil
		return false
	}

	var d frameData
	r.err = r.rows.Scan(&d.Index, &d.OffsetSeconds, &d.TimestampLow,
		&d.NRx, &d.NTx, &d.RSSIA, &d.RSSIB, &d.RSSIC,
		&d.Noise, &d.AGC, &d.AntennaSel, &d.Rate, &d.Scaled, &d.Matrix)
	if r.err != nil {
		r.current = nil
		return false
	}
	r.current = &d
	return true
}

// Current returns the frame at the reader's position. It returns nil
// before the first Next call and after iteration ends.
func (r *FrameReader) Current() *capture.FrameRecord {
	if r.current == nil {
		return nil
	}
	rec, err := toFrameRecord(*r.current)
	if err != nil {
		r.err = err
		return nil
	}
	return rec
}

// Error returns the first error encountered during iteration.
func (r *FrameReader) Error() error {
	if errors.Is(r.err, ErrNoData) {
		return nil
	}
	return r.err
}

// Close releases the reader's result set. The underlying database
// connection belongs to the Store and stays open.
func (r *FrameReader) Close() error {
	if r.rows == nil {
		return nil
	}
	return r.rows.Close()
}
