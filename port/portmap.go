package port

import (
	"github.com/pkg/errors"
)

// ErrInvalidPort is returned when a port declaration cannot be used.
var ErrInvalidPort = errors.New("invalid port declaration")

// A Map is the ordered list of ports of a DUT. The order defines how ports are
// wired to the harness and does not change after the map is built.
type Map struct {
	ports  []Descriptor
	byName map[string]int
}

// Ports returns a copy of the port list in wiring order.
func (m *Map) Ports() []Descriptor {
	out := make([]Descriptor, len(m.ports))
	copy(out, m.ports)

	return out
}

// Len returns the number of ports.
func (m *Map) Len() int {
	return len(m.ports)
}

// Names returns the port names in wiring order.
func (m *Map) Names() []string {
	names := make([]string, len(m.ports))
	for i, p := range m.ports {
		names[i] = p.Name
	}

	return names
}

// Lookup finds a port by name. If several ports share the name, the first
// declared one wins.
func (m *Map) Lookup(name string) (Descriptor, bool) {
	i, ok := m.byName[name]
	if !ok {
		return Descriptor{}, false
	}

	return m.ports[i], true
}

// At returns the port with the given index.
func (m *Map) At(index int) Descriptor {
	return m.ports[index]
}

// HasInOut returns true if any port is bidirectional.
func (m *Map) HasInOut() bool {
	for _, p := range m.ports {
		if p.Dir == DirInOut {
			return true
		}
	}

	return false
}

// MapBuilder collects port declarations. Indices are assigned in the order
// ports are added, starting at 0.
type MapBuilder struct {
	ports       []Descriptor
	strictNames bool
}

// WithStrictNames makes Build reject duplicated port names.
func (b MapBuilder) WithStrictNames() MapBuilder {
	b.strictNames = true
	return b
}

// AddPort appends a port and assigns it the next index.
func (b MapBuilder) AddPort(name string, widthBytes int, dir Direction) MapBuilder {
	ports := make([]Descriptor, len(b.ports), len(b.ports)+1)
	copy(ports, b.ports)

	b.ports = append(ports, Descriptor{
		Name:       name,
		Index:      len(ports),
		WidthBytes: widthBytes,
		Dir:        dir,
	})

	return b
}

// Build validates the declarations and returns the immutable map.
func (b MapBuilder) Build() (*Map, error) {
	m := &Map{
		ports:  make([]Descriptor, len(b.ports)),
		byName: make(map[string]int, len(b.ports)),
	}
	copy(m.ports, b.ports)

	for i, p := range m.ports {
		if p.Name == "" {
			return nil, errors.Wrapf(ErrInvalidPort, "port %d has no name", i)
		}

		if p.WidthBytes <= 0 {
			return nil, errors.Wrapf(ErrInvalidPort,
				"port %s has width %d", p.Name, p.WidthBytes)
		}

		if !p.Dir.Valid() {
			return nil, errors.Wrapf(ErrInvalidPort,
				"port %s has direction %s", p.Name, p.Dir)
		}

		if _, dup := m.byName[p.Name]; dup {
			if b.strictNames {
				return nil, errors.Wrapf(ErrInvalidPort,
					"port %s declared twice", p.Name)
			}

			continue
		}

		m.byName[p.Name] = i
	}

	return m, nil
}

// MustBuild is Build for static port lists that are known to be valid.
func (b MapBuilder) MustBuild() *Map {
	m, err := b.Build()
	if err != nil {
		panic(err)
	}

	return m
}
