package config

import (
	"errors"
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// Logger is the pipeline logger together with the job log file it appends to.
type Logger struct {
	*slog.Logger
	file *os.File
}

// SetupLogger builds the pipeline logger from cfg: text on stderr for the
// operator, JSON lines in cfg.LogFile for per-job auditing. An empty LogFile,
// or one that cannot be opened, leaves only stderr.
func SetupLogger(cfg Config) *Logger {
	level := cfg.Level()
	if cfg.LogFile == "" {
		return &Logger{Logger: slog.New(textHandler(os.Stderr, level))}
	}

	file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		slog.Error("failed to open job log, using stderr only", "error", err, "file", cfg.LogFile)
		return &Logger{Logger: slog.New(textHandler(os.Stderr, level))}
	}

	return &Logger{
		Logger: slog.New(slogmulti.Fanout(textHandler(os.Stderr, level), jsonHandler(file, level))),
		file:   file,
	}
}

// Close flushes and closes the job log. Run it last at shutdown, after the
// worker pool has drained and the store is closed, so the pool summary and
// store shutdown records are kept.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	f := l.file
	l.file = nil
	return errors.Join(f.Sync(), f.Close())
}

// SetupLoggerWithWriters creates a logger with custom writers (for testing).
func SetupLoggerWithWriters(stderr, file io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slogmulti.Fanout(textHandler(stderr, level), jsonHandler(file, level)))
}

func textHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
}

func jsonHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
}
