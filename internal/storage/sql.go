package storage

import (
	_ "embed"
)

const (
	insertSessionSQL = `
INSERT INTO sessions (start_time,
                      source_file,
                      hardware,
                      scaled,
                      expected_frames,
                      config)
VALUES (CURRENT_TIMESTAMP, ?, ?, ?, ?, ?)`

	updateSessionCountsSQL = `
UPDATE sessions
SET expected_frames = ?
WHERE id = ?`

	selectSessionSQL = `
SELECT id,
       start_time,
       source_file,
       hardware,
       scaled,
       expected_frames,
       config
FROM sessions
WHERE id = ?`

	selectSessionsSQL = `
SELECT id,
       start_time,
       source_file,
       hardware,
       scaled,
       expected_frames,
       config
FROM sessions`

	insertFrameSQL = `
INSERT INTO frames (session_id,
                    frame_index,
                    offset_seconds,
                    timestamp_low,
                    n_rx,
                    n_tx,
                    rssi_a,
                    rssi_b,
                    rssi_c,
                    noise,
                    agc,
                    antenna_sel,
                    rate,
                    scaled,
                    matrix)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	selectFrameBoundsSQL = `
SELECT MIN(frame_index),
       MAX(frame_index),
       MIN(offset_seconds),
       MAX(offset_seconds)
FROM frames
WHERE session_id = ?`

	selectFramesSQL = `
SELECT frame_index,
       offset_seconds,
       timestamp_low,
       n_rx,
       n_tx,
       rssi_a,
       rssi_b,
       rssi_c,
       noise,
       agc,
       antenna_sel,
       rate,
       scaled,
       matrix
FROM frames
WHERE session_id = ?
  AND frame_index BETWEEN ? AND ?
  AND offset_seconds BETWEEN ? AND ?
ORDER BY frame_index`
)

//go:embed schema.sql
var schemaSQL string
