// Package storage persists decoded channel state captures to SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/csitools/csi-surveillance/internal/capture"
)

// Store writes capture sessions and their frames to a SQLite database.
// Write and read connections are opened lazily and independently so a
// read-only consumer never takes the write lock.
type Store struct {
	dsn string

	writeOnce sync.Once
	writeDB   *sql.DB
	writeErr  error

	readOnce sync.Once
	readDB   *sql.DB
	readErr  error
}

// NewStore creates a Store backed by the SQLite database at path. The
// database file and schema are created on first write.
func NewStore(path string) *Store {
	return &Store{dsn: path}
}

func (s *Store) writer(ctx context.Context) (*sql.DB, error) {
	s.writeOnce.Do(func() {
		db, err := sql.Open("sqlite3", s.dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
		if err != nil {
			s.writeErr = fmt.Errorf("failed to open database: %w", err)
			return
		}
		if _, err = db.ExecContext(ctx, schemaSQL); err != nil {
			s.writeErr = fmt.Errorf("failed to apply schema: %w", err)
			_ = db.Close()
			return
		}
		s.writeDB = db
	})
	return s.writeDB, s.writeErr
}

func (s *Store) reader() (*sql.DB, error) {
	s.readOnce.Do(func() {
		db, err := sql.Open("sqlite3", s.dsn+"?mode=ro&_busy_timeout=5000")
		if err != nil {
			s.readErr = fmt.Errorf("failed to open database: %w", err)
			return
		}
		s.readDB = db
	})
	return s.readDB, s.readErr
}

// CreateSession inserts a new capture session row and returns its ID.
// config, when non-nil, is stored verbatim for provenance.
func (s *Store) CreateSession(ctx context.Context, sourceFile, hardware string, scaled bool, config *string) (int64, error) {
	db, err := s.writer(ctx)
	if err != nil {
		return 0, err
	}

	var cfg sql.NullString
	if config != nil {
		cfg = sql.NullString{String: *config, Valid: true}
	}

	res, err := db.ExecContext(ctx, insertSessionSQL, sourceFile, hardware, scaled, 0, cfg)
	if err != nil {
		return 0, fmt.Errorf("failed to insert session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read session ID: %w", err)
	}
	return id, nil
}

// StoreCapture writes every frame of c under sessionID and records the
// capture's expected frame count, all in a single transaction.
func (s *Store) StoreCapture(ctx context.Context, sessionID int64, c *capture.Capture) (err error) {
	db, err := s.writer(ctx)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackWithError(tx, &err)

	stmt, err := tx.PrepareContext(ctx, insertFrameSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare frame insert: %w", err)
	}
	defer closeWithError(stmt, &err)

	for i, f := range c.Frames {
		h := f.Header
		_, err = stmt.ExecContext(ctx,
			sessionID,
			i,
			f.Offset.Seconds(),
			int64(h.TimestampLow),
			h.NRx,
			h.NTx,
			h.RSSIA,
			h.RSSIB,
			h.RSSIC,
			h.Noise,
			h.AGC,
			h.AntennaSel,
			h.Rate,
			f.Scaled,
			encodeMatrixBlob(f.Matrix),
		)
		if err != nil {
			return fmt.Errorf("failed to insert frame %d: %w", i, err)
		}
	}

	if _, err = tx.ExecContext(ctx, updateSessionCountsSQL, c.ExpectedFrames, sessionID); err != nil {
		return fmt.Errorf("failed to update session counts: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Session returns the session with the given ID, or ErrNoData if it does
// not exist.
func (s *Store) Session(ctx context.Context, id int64) (*capture.Session, error) {
	db, err := s.reader()
	if err != nil {
		return nil, err
	}

	var d sessionData
	row := db.QueryRowContext(ctx, selectSessionSQL, id)
	err = row.Scan(&d.ID, &d.StartTime, &d.SourceFile, &d.Hardware, &d.Scaled, &d.ExpectedFrames, &d.Config)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoData
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	return toSession(d), nil
}

// Sessions returns all capture sessions in the database.
func (s *Store) Sessions(ctx context.Context) (_ []*capture.Session, err error) {
	db, err := s.reader()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, selectSessionsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer closeWithError(rows, &err)

	var sessions []*capture.Session
	for rows.Next() {
		var d sessionData
		if err = rows.Scan(&d.ID, &d.StartTime, &d.SourceFile, &d.Hardware, &d.Scaled, &d.ExpectedFrames, &d.Config); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, toSession(d))
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}
	return sessions, nil
}

// Close releases both database connections.
func (s *Store) Close() error {
	var errs []error
	if s.writeDB != nil {
		if err := s.writeDB.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.readDB != nil {
		if err := s.readDB.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
