package bookmark

import (
	"time"

	"golang.org/x/exp/slog"
)

// Options defines options for Store.
type Options struct {
	Key           string
	RetryInterval time.Duration
	FlushTimeout  time.Duration
	Logger        *slog.Logger
}

// Option defines a function that configures Store.
type Option func(*Options)

// WithKey sets the name of the storage slot.
func WithKey(key string) Option {
	return func(o *Options) { o.Key = key }
}

// WithRetryInterval sets the delay before retrying a failed write.
func WithRetryInterval(d time.Duration) Option {
	return func(o *Options) { o.RetryInterval = d }
}

// WithFlushTimeout sets how long the writer tries to save
// unsaved changes when it is stopped.
func WithFlushTimeout(d time.Duration) Option {
	return func(o *Options) { o.FlushTimeout = d }
}

// WithLogger sets the logger to use.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}
