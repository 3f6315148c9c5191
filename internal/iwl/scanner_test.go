package iwl

import (
	"encoding/binary"
	"io"
	"log/slog"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// buildRecord frames header+payload with the big-endian length prefix
// and record code used on the wire.
func buildRecord(code byte, h RecordHeader, payload []byte) []byte {
	content := append(encodeHeader(h), payload...)
	rec := make([]byte, 3+len(content))
	binary.BigEndian.PutUint16(rec[0:2], uint16(len(content)+1))
	rec[2] = code
	copy(rec[3:], content)
	return rec
}

func validRecord(ts uint32, nRx, nTx uint8) []byte {
	payload := packPayload(int(nRx), int(nTx), testSample)
	h := RecordHeader{
		TimestampLow:  ts,
		NRx:           nRx,
		NTx:           nTx,
		RSSIA:         190,
		Noise:         -92,
		AGC:           40,
		PayloadLength: uint16(len(payload)),
	}
	return buildRecord(validMeasurementCode, h, payload)
}

// pad appends trailing junk so the scan loop's tail guard does not stop
// before the last complete record.
func pad(buf []byte) []byte {
	return append(buf, make([]byte, minRecordBytes+1)...)
}

func TestScanSingleRecord(t *testing.T) {
	buf := pad(validRecord(1000, 1, 1))

	frames, attempted := NewScanner(WithLogger(testLogger())).Scan(buf)
	if attempted != 1 {
		t.Errorf("attempted = %d, want 1", attempted)
	}
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}

	f := frames[0]
	if f.Header.TimestampLow != 1000 {
		t.Errorf("TimestampLow = %d, want 1000", f.Header.TimestampLow)
	}
	if f.Offset != 0 {
		t.Errorf("first frame offset = %v, want 0", f.Offset)
	}

	re, im := testSample(0, 0, 0)
	if got := f.Matrix.At(0, 0, 0); got != complex(float64(re), float64(im)) {
		t.Errorf("matrix entry = %v, want %v", got, complex(float64(re), float64(im)))
	}
}

func TestScanRelativeTimestamps(t *testing.T) {
	buf := validRecord(5000, 1, 1)
	buf = append(buf, validRecord(15000, 1, 1)...)
	buf = pad(buf)

	frames, attempted := NewScanner(WithLogger(testLogger())).Scan(buf)
	if attempted != 2 || len(frames) != 2 {
		t.Fatalf("attempted = %d, frames = %d, want 2 and 2", attempted, len(frames))
	}

	// 10000 ticks at 100ns each.
	if want := time.Millisecond; frames[1].Offset != want {
		t.Errorf("second frame offset = %v, want %v", frames[1].Offset, want)
	}
}

func TestScanSkipsUnknownCode(t *testing.T) {
	skipped := buildRecord(0x55, RecordHeader{NRx: 1, NTx: 1}, make([]byte, 80))
	buf := append(skipped, validRecord(1000, 1, 1)...)
	buf = pad(buf)

	frames, attempted := NewScanner(WithLogger(testLogger())).Scan(buf)
	if attempted != 2 {
		t.Errorf("attempted = %d, want 2", attempted)
	}
	if len(frames) != 1 {
		t.Errorf("got %d frames, want 1 (unknown code skipped)", len(frames))
	}
}

func TestScanDropsLengthMismatch(t *testing.T) {
	payload := packPayload(1, 1, testSample)
	h := RecordHeader{
		TimestampLow:  1000,
		NRx:           1,
		NTx:           1,
		PayloadLength: uint16(len(payload)) + 4, // corrupt declared length
	}
	buf := buildRecord(validMeasurementCode, h, payload)
	buf = append(buf, validRecord(2000, 1, 1)...)
	buf = pad(buf)

	frames, attempted := NewScanner(WithLogger(testLogger())).Scan(buf)

	// Dropped records still count toward the attempted tally:
	// dropped + emitted == attempted.
	if attempted != 2 {
		t.Errorf("attempted = %d, want 2", attempted)
	}
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1 (mismatched record dropped)", len(frames))
	}
	if frames[0].Header.TimestampLow != 2000 {
		t.Errorf("surviving frame timestamp = %d, want 2000", frames[0].Header.TimestampLow)
	}
}

func TestScanDropsBadAntennaCounts(t *testing.T) {
	h := RecordHeader{NRx: 4, NTx: 1, PayloadLength: 80}
	buf := pad(buildRecord(validMeasurementCode, h, make([]byte, 80)))

	frames, attempted := NewScanner(WithLogger(testLogger())).Scan(buf)
	if attempted != 1 {
		t.Errorf("attempted = %d, want 1", attempted)
	}
	if len(frames) != 0 {
		t.Errorf("got %d frames, want 0", len(frames))
	}
}

func TestScanTailGuard(t *testing.T) {
	// Exactly the guard length remaining: the scan must not consume a
	// partial record.
	frames, attempted := NewScanner(WithLogger(testLogger())).Scan(make([]byte, minRecordBytes))
	if attempted != 0 || len(frames) != 0 {
		t.Errorf("attempted = %d, frames = %d, want 0 and 0", attempted, len(frames))
	}
}

func TestScanTruncatedDeclaredSize(t *testing.T) {
	// A declared size running past the buffer end terminates the scan
	// without panicking.
	buf := make([]byte, 200)
	binary.BigEndian.PutUint16(buf[0:2], 500)
	buf[2] = validMeasurementCode

	frames, attempted := NewScanner(WithLogger(testLogger())).Scan(buf)
	if attempted != 0 || len(frames) != 0 {
		t.Errorf("attempted = %d, frames = %d, want 0 and 0", attempted, len(frames))
	}
}

func TestScanScaledZeroPowerFallback(t *testing.T) {
	// All-zero payload decodes to an all-zero matrix; scaling cannot
	// apply, and the frame is emitted raw instead of NaN/Inf.
	payload := make([]byte, payloadSize(1, 1))
	h := RecordHeader{
		TimestampLow:  1000,
		NRx:           1,
		NTx:           1,
		RSSIA:         190,
		Noise:         -92,
		AGC:           40,
		PayloadLength: uint16(len(payload)),
	}
	buf := pad(buildRecord(validMeasurementCode, h, payload))

	frames, attempted := NewScanner(WithScaling(), WithLogger(testLogger())).Scan(buf)
	if attempted != 1 || len(frames) != 1 {
		t.Fatalf("attempted = %d, frames = %d, want 1 and 1", attempted, len(frames))
	}
	if frames[0].Scaled {
		t.Error("zero-power frame must not be marked scaled")
	}
	for sc := 0; sc < NumSubcarriers; sc++ {
		if got := frames[0].Matrix.At(sc, 0, 0); got != 0 {
			t.Fatalf("matrix[%d][0][0] = %v, want 0", sc, got)
		}
	}
}

func TestScanScaled(t *testing.T) {
	buf := pad(validRecord(1000, 2, 2))

	frames, _ := NewScanner(WithScaling(), WithLogger(testLogger())).Scan(buf)
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
	if !frames[0].Scaled {
		t.Error("frame should be marked scaled")
	}
}
