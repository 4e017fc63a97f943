package core

import "log/slog"

type options struct {
	logger     *slog.Logger
	bruteForce bool
}

// Option customizes a Collection or a DB.
type Option func(*options)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithBruteForce backs the collection with an exact linear scan instead of
// the graph. Useful for small collections and as a recall baseline.
func WithBruteForce() Option {
	return func(o *options) { o.bruteForce = true }
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
