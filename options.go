package replica

// Option configures an Adapter.
type Option func(*Adapter)

// WithSink sets the sink that receives backend mutation failures.
// If not specified, or nil, failures are only reflected in return values.
func WithSink(s FailureSink) Option {
	return func(a *Adapter) {
		a.sink = s
	}
}

// WithName sets the name attached to events emitted by the adapter.
// Defaults to "replica".
func WithName(name string) Option {
	return func(a *Adapter) {
		a.name = name
	}
}
