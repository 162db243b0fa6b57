// Package log builds the zerolog loggers used by the chmirad front-ends and
// bridges download progress events into them.
package log

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/handiism/chmirad/internal/download"
)

// Config captures options for building a logger.
type Config struct {
	Level   string    // optional log level ("debug", "info", etc.)
	JSON    bool      // structured JSON instead of the console writer
	Output  io.Writer // optional writer (defaults to os.Stderr)
	Service string    // optional service name attached to every log entry
}

// New builds a logger from cfg. An unparsable level falls back to info.
func New(cfg Config) zerolog.Logger {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		if parsed, err := zerolog.ParseLevel(cfg.Level); err == nil {
			level = parsed
		}
	}
	zerolog.TimeFieldFormat = time.RFC3339

	writer := cfg.Output
	if writer == nil {
		writer = os.Stderr
	}
	if !cfg.JSON {
		writer = zerolog.ConsoleWriter{Out: writer, TimeFormat: time.TimeOnly, NoColor: noColor(writer)}
	}

	service := cfg.Service
	if service == "" {
		service = "chmirad"
	}

	return zerolog.New(writer).Level(level).With().
		Timestamp().
		Str("service", service).
		Logger()
}

// ProgressHandler returns a download progress callback that writes each
// event to l. Verbose events are logged at debug level.
func ProgressHandler(l zerolog.Logger) func(download.ProgressEvent) {
	return func(e download.ProgressEvent) {
		var ev *zerolog.Event
		switch e.Level {
		case download.LevelVerbose:
			ev = l.Debug()
		case download.LevelWarning:
			ev = l.Warn()
		case download.LevelError:
			ev = l.Error()
		default:
			ev = l.Info()
		}

		if o := e.Outcome; o != nil {
			ev = ev.Str("product", o.Product).
				Time("instant", o.Time).
				Str("outcome", o.Kind.String())
			if o.URL != "" {
				ev = ev.Str("url", o.URL)
			}
			if o.Kind == download.Fetched {
				ev = ev.Int64("bytes", o.Size)
			}
			if o.Err != nil {
				ev = ev.AnErr("cause", o.Err)
			}
		}
		ev.Msg(e.Message)
	}
}

func noColor(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return true
	}
	info, err := f.Stat()
	if err != nil {
		return true
	}
	return info.Mode()&os.ModeCharDevice == 0
}
