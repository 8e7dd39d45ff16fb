package pipelog

import (
	"io"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Logger is the ambient logging seam used throughout this module. It is
// intentionally narrow: the substrate only ever logs an error-with-context
// (node failures, default error handler) or an informational progress line
// (aggregator).
type Logger interface {
	// Error logs msg at error level, attaching err and any structured
	// fields (e.g. trace, attributes).
	Error(msg string, err error, fields map[string]any)
	// Info logs msg at informational level, attaching any structured
	// fields.
	Info(msg string, fields map[string]any)
}

// noopLogger discards everything. It is the default for tests.
type noopLogger struct{}

func (noopLogger) Error(string, error, map[string]any) {}
func (noopLogger) Info(string, map[string]any)         {}

// Noop returns a Logger that discards everything.
func Noop() Logger { return noopLogger{} }

// stumpyLogger wraps a *logiface.Logger[*stumpy.Event], logiface's own
// dependency-free JSON backend.
type stumpyLogger struct {
	log *logiface.Logger[*stumpy.Event]
}

// NewStumpy constructs the default Logger, writing newline-delimited JSON to
// w via stumpy, mirroring the stumpy.L.New(...) construction used
// throughout its own example tests.
func NewStumpy(w io.Writer) Logger {
	return &stumpyLogger{
		log: stumpy.L.New(
			stumpy.L.WithStumpy(),
			stumpy.L.WithWriter(logiface.WriterFunc[*stumpy.Event](func(e *stumpy.Event) error {
				_, err := w.Write(append(e.Bytes(), '\n'))
				return err
			})),
		),
	}
}

func (l *stumpyLogger) Error(msg string, err error, fields map[string]any) {
	b := l.log.Err().Err(err)
	for k, v := range fields {
		b = b.Any(k, v)
	}
	b.Log(msg)
}

func (l *stumpyLogger) Info(msg string, fields map[string]any) {
	b := l.log.Info()
	for k, v := range fields {
		b = b.Any(k, v)
	}
	b.Log(msg)
}
