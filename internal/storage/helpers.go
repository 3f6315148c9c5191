package storage

import (
	"database/sql"
	"errors"

	"github.com/csitools/csi-surveillance/internal/capture"
	"github.com/csitools/csi-surveillance/internal/iwl"
)

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

// rollbackWithError ignores ErrTxDone so a committed transaction's
// deferred rollback stays silent.
func rollbackWithError(rb interface{ Rollback() error }, err *error) {
	if rErr := rb.Rollback(); rErr != nil && !errors.Is(rErr, sql.ErrTxDone) && *err == nil {
		*err = rErr
	}
}

func toSession(d sessionData) *capture.Session {
	sess := capture.Session{
		ID:             d.ID,
		StartTime:      d.StartTime,
		SourceFile:     d.SourceFile,
		Hardware:       d.Hardware,
		Scaled:         d.Scaled,
		ExpectedFrames: d.ExpectedFrames,
	}
	if d.Config.Valid {
		sess.Config = &d.Config.String
	}
	return &sess
}

func toFrameRecord(d frameData) (*capture.FrameRecord, error) {
	m, err := decodeMatrixBlob(d.Matrix, int(d.NRx), int(d.NTx))
	if err != nil {
		return nil, err
	}

	return &capture.FrameRecord{
		Index:         int(d.Index),
		OffsetSeconds: d.OffsetSeconds,
		Scaled:        d.Scaled,
		Header: iwl.RecordHeader{
			TimestampLow: uint32(d.TimestampLow),
			NRx:          uint8(d.NRx),
			NTx:          uint8(d.NTx),
			RSSIA:        uint8(d.RSSIA),
			RSSIB:        uint8(d.RSSIB),
			RSSIC:        uint8(d.RSSIC),
			Noise:        int8(d.Noise),
			AGC:          uint8(d.AGC),
			AntennaSel:   uint8(d.AntennaSel),
			Rate:         uint16(d.Rate),
		},
		Matrix: m,
	}, nil
}
