package extract

// Registry maps format tags to strategy instances. Registration happens
// once at process start; afterwards the registry is read-only and safe for
// concurrent lookups from any number of extraction calls.
type Registry struct {
	strategies map[Format]Strategy
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{strategies: make(map[Format]Strategy)}
}

// Register binds a strategy to a format tag, replacing any previous
// binding. External code may register additional tags without touching
// dispatch logic.
func (r *Registry) Register(format Format, s Strategy) {
	r.strategies[format] = s
}

// Strategy looks up the strategy for a format tag.
func (r *Registry) Strategy(format Format) (Strategy, error) {
	s, ok := r.strategies[format]
	if !ok {
		return nil, &UnsupportedTypeError{Kind: string(format)}
	}
	return s, nil
}

// Formats lists the registered tags. Order is unspecified.
func (r *Registry) Formats() []Format {
	out := make([]Format, 0, len(r.strategies))
	for f := range r.strategies {
		out = append(out, f)
	}
	return out
}
