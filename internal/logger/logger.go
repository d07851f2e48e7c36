// Package logger holds the process-wide structured logger, built on the
// Uber zap library, together with an HTTP middleware that logs every
// handled request.
package logger

import (
	"errors"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
)

// Log is the global SugaredLogger. It must be initialized via Init()
// before any package uses it.
var Log *zap.SugaredLogger

// Init builds the global logger at the requested level.
func Init(level string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = lvl
	zl, err := cfg.Build()
	if err != nil {
		return err
	}
	Log = zl.Sugar()

	return nil
}

// Sync flushes buffered entries. Call it on shutdown.
func Sync() error {
	if err := Log.Sync(); err != nil && !errors.Is(err, os.ErrInvalid) {
		return err
	}

	return nil
}

type trackedData struct {
	status int
	size   int
}

type trackedResponseWriter struct {
	http.ResponseWriter
	data *trackedData
}

func (w *trackedResponseWriter) Write(b []byte) (int, error) {
	size, err := w.ResponseWriter.Write(b)
	w.data.size += size
	return size, err
}

func (w *trackedResponseWriter) WriteHeader(statusCode int) {
	w.ResponseWriter.WriteHeader(statusCode)
	w.data.status = statusCode
}

// WithLoggingHTTPMiddleware wraps a handler and logs method, URI, response
// status, size and handling duration of every request.
func WithLoggingHTTPMiddleware(h http.Handler) http.Handler {
	logFn := func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		tracked := &trackedResponseWriter{
			ResponseWriter: w,
			data:           &trackedData{},
		}
		h.ServeHTTP(tracked, r)

		Log.Infoln(
			"uri", r.RequestURI,
			"method", r.Method,
			"status", tracked.data.status,
			"duration", time.Since(start),
			"size", tracked.data.size,
		)
	}

	return http.HandlerFunc(logFn)
}
