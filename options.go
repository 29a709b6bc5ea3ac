package recgo

import (
	"log/slog"

	"github.com/hupe1980/recgo/collection"
	"github.com/hupe1980/recgo/internal/fs"
	"github.com/hupe1980/recgo/resource"
)

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	rc               *resource.Controller
	resolver         collection.SizeResolver
	readMethod       collection.ReadMethod
	fsys             fs.FileSystem
	mmap             bool
}

// Option configures Open.
type Option func(*options)

// WithMmap memory-maps local files instead of reading them with pread.
// Loaded collections of a mapped file are served from the mapping without
// copying. It has no effect on remote locations.
func WithMmap() Option {
	return func(o *options) {
		o.mmap = true
	}
}

// WithFileSystem sets the file system used for local files that are not
// memory-mapped. The default is the operating system's.
func WithFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		if fsys != nil {
			o.fsys = fsys
		}
	}
}

// WithResourceController shares a memory budget and an IO rate limit
// across every collection of the file.
//
// Example:
//
//	rc := resource.NewController(resource.Config{MemoryLimitBytes: 256 << 20})
//	f, _ := recgo.Open(ctx, recgo.Local(path), recgo.WithResourceController(rc))
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

// WithSizeResolver sets how variable-size records announce their length.
// It is required for collections opened with a Variable layout.
func WithSizeResolver(r collection.SizeResolver) Option {
	return func(o *options) {
		o.resolver = r
	}
}

// WithReadMethod sets how records are decoded from the file stream.
func WithReadMethod(fn collection.ReadMethod) Option {
	return func(o *options) {
		o.readMethod = fn
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &recgo.BasicMetricsCollector{}
//	f, _ := recgo.Open(ctx, recgo.Local(path), recgo.WithMetricsCollector(metrics))
//	// ... use f ...
//	stats := metrics.GetStats()
//	fmt.Printf("Gets: %d, hits: %d\n", stats.GetCount, stats.CacheHits)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := recgo.NewJSONLogger(slog.LevelInfo)
//	f, _ := recgo.Open(ctx, recgo.Local(path), recgo.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		fsys:             fs.Default,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

// collectionOptions translates o for the collection package.
func (o options) collectionOptions(l *Logger) []collection.Option {
	opts := []collection.Option{
		collection.WithLogger(l.Logger),
		collection.WithResourceController(o.rc),
		collection.WithMetrics(metricsObserver{mc: o.metricsCollector}),
	}
	if o.resolver != nil {
		opts = append(opts, collection.WithSizeResolver(o.resolver))
	}
	if o.readMethod != nil {
		opts = append(opts, collection.WithReadMethod(o.readMethod))
	}
	return opts
}
