// Package logging builds the structured application logger. Events
// append to a log file inside the data directory; that file is part of
// the synced set.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

const permission = 0o664

// Logger couples a zerolog.Logger with the file it writes to.
type Logger struct {
	zerolog.Logger
	file *os.File
}

// Open appends to the log file at path, creating it (and its directory)
// when missing. Pass the result's Close to defer.
func Open(path string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
	if err != nil {
		return nil, err
	}
	w := zerolog.SyncWriter(f)
	return &Logger{
		Logger: zerolog.New(w).With().Timestamp().Logger(),
		file:   f,
	}, nil
}

// ToWriter builds a logger over an arbitrary writer, for tests.
func ToWriter(w io.Writer) *Logger {
	return &Logger{Logger: zerolog.New(w).With().Timestamp().Logger()}
}

// Close flushes and closes the underlying file.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
