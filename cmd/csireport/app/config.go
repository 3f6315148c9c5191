package app

import (
	"errors"
	"flag"
)

type Config struct {
	DBPath    string
	SessionID int64 // 0 reports on all sessions
}

func NewConfigFromCLI() (*Config, error) {
	c := &Config{}

	flag.StringVar(&c.DBPath, "db", "", "Path to the database file")
	flag.Int64Var(&c.SessionID, "s", 0, "Session ID (omit to list all sessions)")
	flag.Parse()

	if c.DBPath == "" {
		flag.Usage()
		return nil, errors.New("db path is required")
	}
	return c, nil
}
