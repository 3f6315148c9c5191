package storage

import (
	"database/sql"
	"time"
)

type sessionData struct {
	ID             int64
	StartTime      time.Time
	SourceFile     string
	Hardware       string
	Scaled         bool
	ExpectedFrames int
	Config         sql.NullString
}

type frameData struct {
	Index         int64
	OffsetSeconds float64
	TimestampLow  int64
	NRx           int64
	NTx           int64
	RSSIA         int64
	RSSIB         int64
	RSSIC         int64
	Noise         int64
	AGC           int64
	AntennaSel    int64
	Rate          int64
	Scaled        bool
	Matrix        []byte
}
