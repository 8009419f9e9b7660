package cache

import (
	"context"
	"strings"
	"time"
)

const (
	logsKey = keyPrefix + "logs"
	maxLogs = 100
)

// LogWriter is an io.Writer that mirrors log output into a bounded redis
// list. Failures are swallowed: logging must never take the service down.
type LogWriter struct {
	db *DB
}

// NewLogWriter creates a LogWriter backed by db.
func NewLogWriter(db *DB) *LogWriter {
	return &LogWriter{db: db}
}

// Write implements io.Writer. The log package appends a newline; trim it so
// each redis entry is a single clean line.
func (lw *LogWriter) Write(p []byte) (n int, err error) {
	if lw.db == nil {
		return len(p), nil
	}
	entry := strings.TrimRight(string(p), "\n")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pipe := lw.db.rdb.Pipeline()
	pipe.LPush(ctx, logsKey, entry)
	pipe.LTrim(ctx, logsKey, 0, maxLogs-1)
	_, _ = pipe.Exec(ctx)

	return len(p), nil
}
