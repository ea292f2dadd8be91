package idxset

import (
	"log/slog"

	"github.com/hupe1980/idxset/accessor"
	"github.com/hupe1980/idxset/optimizer"
)

// DefaultInferenceSampleSize is the number of objects sampled per attribute
// when an index variant is inferred.
const DefaultInferenceSampleSize = 256

// DefaultExpressionCacheSize is the number of parsed textual and CEL
// expressions a collection keeps.
const DefaultExpressionCacheSize = 128

type options struct {
	reader              accessor.Reader
	attributes          accessor.Funcs
	strict              bool
	sampleSize          int
	expressionCacheSize int
	rules               []optimizer.Rule
	metricsCollector    MetricsCollector
	logger              *Logger
}

// Option configures collection construction.
type Option func(*options)

// WithAccessor configures how attribute values are read from objects.
//
// By default the reader is chosen from the element type: struct fields
// (honoring `idx` tags), string-keyed maps, or runtime dispatch for
// interface element types.
func WithAccessor(r accessor.Reader) Option {
	return func(o *options) {
		o.reader = r
	}
}

// WithTupleFields reads objects as positional tuples (slices or arrays)
// whose elements are named by names.
func WithTupleFields(names ...string) Option {
	return func(o *options) {
		o.reader = accessor.Tuple(names...)
	}
}

// WithAttribute adds a computed attribute. The getter takes precedence over
// the accessor for name and must be safe for concurrent use.
//
// Example:
//
//	idxset.WithAttribute("tag_count", func(obj any) any {
//	    return len(obj.(Item).Tags)
//	})
func WithAttribute(name string, getter accessor.Getter) Option {
	return func(o *options) {
		if o.attributes == nil {
			o.attributes = accessor.Funcs{}
		}
		o.attributes[name] = getter
	}
}

// WithStrictComparisons makes queries fail when an attribute value and a
// literal have no common ordering, instead of treating the leaf as false.
func WithStrictComparisons() Option {
	return func(o *options) {
		o.strict = true
	}
}

// WithInferenceSampleSize bounds the number of objects inspected when an
// index variant is inferred. Values <= 0 inspect every object.
func WithInferenceSampleSize(n int) Option {
	return func(o *options) {
		o.sampleSize = n
	}
}

// WithExpressionCacheSize sets how many parsed expressions FilterText and
// FilterCEL keep. Values <= 0 disable the cache.
func WithExpressionCacheSize(n int) Option {
	return func(o *options) {
		o.expressionCacheSize = n
	}
}

// WithOptimizerRules replaces the optimizer's rule chain.
// With no rules, plans are executed as built.
func WithOptimizerRules(rules ...optimizer.Rule) Option {
	return func(o *options) {
		o.rules = rules
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &idxset.BasicMetricsCollector{}
//	c, _ := idxset.New(items, specs, idxset.WithMetricsCollector(metrics))
//	// ... use c ...
//	stats := metrics.GetStats()
//	fmt.Printf("Filters: %d, Avg latency: %dns\n", stats.FilterCount, stats.FilterAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := idxset.NewJSONLogger(slog.LevelInfo)
//	c, _ := idxset.New(items, specs, idxset.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
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
		sampleSize:          DefaultInferenceSampleSize,
		expressionCacheSize: DefaultExpressionCacheSize,
		rules:               optimizer.DefaultRules(),
		metricsCollector:    NoopMetricsCollector{},
		logger:              NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}
