// Package naming provides the naming rules for device instances.
package naming

// Named describes an object that has a name.
type Named interface {
	// Name returns the name of the object.
	Name() string
}

// NamedBase is a base implementation of Named.
type NamedBase struct {
	name string
}

// Name returns the name of the object.
func (b NamedBase) Name() string {
	return b.name
}

// MakeNamedBase creates a new NamedBase. The name is not validated, as port
// and queue names follow the DUT's RTL names.
func MakeNamedBase(name string) NamedBase {
	return NamedBase{name: name}
}
