package iwl

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const (
	// validMeasurementCode tags records that carry a CSI measurement.
	// Records with any other code belong to record types this decoder
	// does not interpret and are skipped by byte count.
	validMeasurementCode = 187

	// minRecordBytes guards against a trailing partial record too short
	// to contain a real header; the scan stops once fewer bytes remain.
	minRecordBytes = 100

	// tickPeriod is the duration of one device clock tick.
	tickPeriod = 100 * time.Nanosecond
)

// Frame is one decoded CSI record: its header, channel matrix and the
// timestamp relative to the first frame of the capture. Frames are
// immutable once emitted.
type Frame struct {
	Header RecordHeader
	Matrix *Matrix
	Offset time.Duration
	Scaled bool
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithScaling makes the scanner emit calibrated matrices in sqrt(SNR)
// units instead of raw 8-bit components. Frames whose matrix cannot be
// scaled (zero CSI power) are emitted raw.
func WithScaling() ScannerOption {
	return func(s *Scanner) {
		s.scale = true
	}
}

// WithLogger sets the logger used for per-record diagnostics.
func WithLogger(logger *slog.Logger) ScannerOption {
	return func(s *Scanner) {
		s.logger = logger
	}
}

// Scanner splits a capture byte stream into records and decodes each
// valid CSI measurement. A Scanner holds no per-scan state and is safe
// to reuse across buffers.
type Scanner struct {
	scale  bool
	logger *slog.Logger
}

// NewScanner creates a record scanner with the given options.
func NewScanner(opts ...ScannerOption) *Scanner {
	s := &Scanner{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// session tracks the mutable state of a single scan, so concurrent scans
// over different buffers never share state.
type session struct {
	cursor       int
	attempted    int
	initialTicks uint32
	haveInitial  bool
}

// Scan walks the record stream in buf and returns every decoded frame in
// byte-stream order, plus the number of records attempted. The attempted
// count includes dropped and skipped records, so it can exceed the frame
// count; no error is ever returned because an all-invalid buffer is a
// valid, empty result.
func (s *Scanner) Scan(buf []byte) ([]Frame, int) {
	var frames []Frame
	var sess session

	for len(buf)-sess.cursor > minRecordBytes {
		size := int(binary.BigEndian.Uint16(buf[sess.cursor:]))
		code := buf[sess.cursor+2]
		recordStart := sess.cursor
		sess.cursor += 3

		if size == 0 || sess.cursor+size-1 > len(buf) {
			// Declared length runs past the buffer: the stream ends in a
			// partial record. Recoverable termination, not an error.
			s.logger.Warn("record extends past end of stream, stopping scan",
				slog.Int("offset", recordStart),
				slog.Int("declaredSize", size))
			break
		}

		if code == validMeasurementCode {
			record := buf[sess.cursor : sess.cursor+size-1]
			if frame, err := s.decodeRecord(record, &sess); err != nil {
				s.logger.Warn("dropping record",
					slog.Int("offset", recordStart),
					slog.String("error", err.Error()))
			} else {
				frames = append(frames, frame)
			}
		} else {
			s.logger.Warn("skipping record with unsupported code",
				slog.Int("offset", recordStart),
				slog.Int("code", int(code)))
		}

		sess.cursor += size - 1
		sess.attempted++
	}

	return frames, sess.attempted
}

func (s *Scanner) decodeRecord(record []byte, sess *session) (Frame, error) {
	h, err := ParseHeader(record)
	if err != nil {
		return Frame{}, fmt.Errorf("parsing header: %w", err)
	}
	if h.NRx < 1 || h.NRx > 3 || h.NTx < 1 || h.NTx > 3 {
		return Frame{}, fmt.Errorf("antenna counts out of range: nRx=%d, nTx=%d", h.NRx, h.NTx)
	}

	m, err := DecodeMatrix(h, record[HeaderSize:], h.Permutation())
	if err != nil {
		return Frame{}, fmt.Errorf("decoding matrix: %w", err)
	}

	scaled := false
	if s.scale {
		sm, err := ScaleMatrix(m, h)
		switch {
		case errors.Is(err, ErrZeroPower):
			s.logger.Warn("cannot scale zero-power frame, emitting raw matrix",
				slog.Uint64("timestampLow", uint64(h.TimestampLow)))
		case err != nil:
			return Frame{}, fmt.Errorf("scaling matrix: %w", err)
		default:
			m, scaled = sm, true
		}
	}

	if !sess.haveInitial {
		sess.initialTicks = h.TimestampLow
		sess.haveInitial = true
	}

	return Frame{
		Header: h,
		Matrix: m,
		Offset: time.Duration(int64(h.TimestampLow)-int64(sess.initialTicks)) * tickPeriod,
		Scaled: scaled,
	}, nil
}
