package forest

// Option configures a Tree at Open time.
type Option interface {
	apply(*config)
}

type config struct {
	variant Variant
}

type optionFunc func(*config)

func (f optionFunc) apply(c *config) { f(c) }

// WithVariant selects which table manager backs the tree. The default
// is VariantSimple.
func WithVariant(v Variant) Option {
	return optionFunc(func(c *config) { c.variant = v })
}
