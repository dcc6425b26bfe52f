package devices

import (
	"sort"

	"github.com/pkg/errors"
)

// A Factory creates a generator for one device instance.
type Factory func(name string, p Params, opts Options) (Generator, error)

// A Registry maps device class names to factories. Each build context owns its
// own registry.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a class. Registering the same class twice panics.
func (r *Registry) Register(class string, f Factory) {
	if class == "" {
		panic("device class must have a name")
	}

	if f == nil {
		panic("device class " + class + " has no factory")
	}

	if _, found := r.factories[class]; found {
		panic("device class " + class + " registered twice")
	}

	r.factories[class] = f
}

// Lookup returns the factory of class.
func (r *Registry) Lookup(class string) (Factory, error) {
	f, found := r.factories[class]
	if !found {
		return nil, errors.Wrapf(ErrUnknownClass, "class %q", class)
	}

	return f, nil
}

// Has tells whether class is registered.
func (r *Registry) Has(class string) bool {
	_, found := r.factories[class]
	return found
}

// Classes returns the registered class names in sorted order.
func (r *Registry) Classes() []string {
	classes := make([]string, 0, len(r.factories))
	for c := range r.factories {
		classes = append(classes, c)
	}

	sort.Strings(classes)

	return classes
}

// Create looks up class and builds a generator with it.
func (r *Registry) Create(
	class, name string,
	p Params,
	opts Options,
) (Generator, error) {
	f, err := r.Lookup(class)
	if err != nil {
		return nil, err
	}

	g, err := f(name, p, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "creating %s of class %s", name, class)
	}

	return g, nil
}
