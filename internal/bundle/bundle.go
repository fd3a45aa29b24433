// Package bundle composes the generators into an ordered stream of
// Kubernetes resources.
package bundle

import (
	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/runtime"

	"github.com/starburst997/charts-library/internal/generator"
	"github.com/starburst997/charts-library/internal/values"
)

// Resource is one generated object.
type Resource struct {
	Generator string
	// Priority orders secret bundles; nil for resources without one.
	// Lower values are materialized first.
	Priority *int
	Object   runtime.Object
}

// Kind returns the object's kind.
func (r Resource) Kind() string {
	return r.Object.GetObjectKind().GroupVersionKind().Kind
}

// Option configures a Composer.
type Option func(*Composer)

// WithLogger sets the logger. Generator decisions are logged at V(1).
func WithLogger(log logr.Logger) Option {
	return func(c *Composer) {
		c.log = log
	}
}

// WithGenerators replaces the generator set. Order is preserved.
func WithGenerators(gens ...generator.Generator) Option {
	return func(c *Composer) {
		c.generators = gens
	}
}

// Composer runs generators in a fixed order. It holds no mutable state and
// is safe for concurrent use.
type Composer struct {
	generators []generator.Generator
	log        logr.Logger
}

// New returns a Composer running every generator in bundle order.
func New(opts ...Option) *Composer {
	c := &Composer{
		generators: generator.All(),
		log:        logr.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Defaults returns the combined defaults of every generator.
func (c *Composer) Defaults() values.Values {
	layers := make([]values.Values, len(c.generators))
	for i, g := range c.generators {
		layers[i] = g.Defaults()
	}
	return values.MergeAll(layers...)
}

// Resolve merges cfg over the combined defaults and renders templated
// strings.
func (c *Composer) Resolve(cfg values.Values) (values.Values, error) {
	return values.RenderTemplates(values.Merge(c.Defaults(), cfg))
}

// Compose resolves cfg and runs every enabled generator. Disabled
// generators contribute nothing. The first generator error aborts
// composition.
func (c *Composer) Compose(cfg values.Values) (Stream, error) {
	resolved, err := c.Resolve(cfg)
	if err != nil {
		return nil, err
	}

	var stream Stream
	for _, g := range c.generators {
		log := c.log.WithValues("generator", g.Name())

		enabled, err := g.Enabled(resolved)
		if err != nil {
			return nil, err
		}
		if !enabled {
			log.V(1).Info("skipping disabled generator")
			continue
		}

		obj, err := g.Generate(resolved)
		if err != nil {
			return nil, err
		}

		r := Resource{Generator: g.Name(), Object: obj}
		if p, ok := g.(generator.Prioritized); ok {
			priority := p.Priority()
			r.Priority = &priority
		}
		log.V(1).Info("generated resource", "kind", r.Kind())
		stream = append(stream, r)
	}

	c.log.V(1).Info("composed bundle", "resources", len(stream))
	return stream, nil
}
