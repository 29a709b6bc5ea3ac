package collection

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/hupe1980/recgo/resource"
)

// Config holds the construction-time knobs of a collection.
type Config struct {
	// Capacity is the number of cache entries. Zero means no cache.
	Capacity uint32
	// Concurrency is the expected number of concurrent callers. It sizes the
	// file stripes and the cache shards.
	Concurrency uint32
	// Loaded copies (or maps) the whole region into memory up front.
	Loaded bool
}

// MaxConcurrency bounds Config.Concurrency. Every unit of concurrency costs
// a file stripe or a cache shard.
const MaxConcurrency = 1 << 16

// Normalize returns c with defaults applied. A zero Concurrency becomes 1.
func (c Config) Normalize() Config {
	if c.Concurrency == 0 {
		c.Concurrency = 1
	}
	return c
}

// Validate reports whether c can be used. It runs before Normalize, so a
// zero Concurrency is accepted and later defaulted.
func (c Config) Validate() error {
	if c.Concurrency > MaxConcurrency {
		return fmt.Errorf("%w: concurrency %d above %d", ErrInvalidConfig, c.Concurrency, MaxConcurrency)
	}
	return nil
}

// ReadMethod reads one record from r into dst and returns the number of
// bytes consumed. r is limited to the record's extent.
type ReadMethod func(r io.Reader, dst []byte) (int, error)

// ReadFull is the default ReadMethod.
func ReadFull(r io.Reader, dst []byte) (int, error) {
	return io.ReadFull(r, dst)
}

type options struct {
	logger      *slog.Logger
	rc          *resource.Controller
	resolver    SizeResolver
	readMethod  ReadMethod
	concurrency int
	metrics     MetricsObserver
	ownsSource  bool
}

func defaultOptions() options {
	return options{
		logger:      slog.New(slog.DiscardHandler),
		readMethod:  ReadFull,
		concurrency: 1,
		metrics:     NoopMetricsObserver{},
	}
}

func applyOptions(optFns []Option) options {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}
	return o
}

// Option configures a collection.
type Option func(*options)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithResourceController charges loaded regions and cache entries against
// rc's memory budget and rate limits file reads.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

// WithSizeResolver sets the resolver used for variable-size records.
func WithSizeResolver(r SizeResolver) Option {
	return func(o *options) {
		o.resolver = r
	}
}

// WithReadMethod sets how file collections decode a record from the stream.
func WithReadMethod(fn ReadMethod) Option {
	return func(o *options) {
		if fn != nil {
			o.readMethod = fn
		}
	}
}

// WithConcurrency sets the number of file stripes.
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithMetrics sets the metrics observer.
func WithMetrics(m MetricsObserver) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithOwnedSource makes Close also close what the collection wraps: the
// source collection of a cache, or the Source of a memory or file collection
// when it implements io.Closer.
func WithOwnedSource(owned bool) Option {
	return func(o *options) {
		o.ownsSource = owned
	}
}
