// Package tracing observes generators through hooks. Tracers print or record
// the operations, frames and queue traffic of a generation run.
package tracing

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Verbosity is a set of trace categories.
type Verbosity uint

// The trace categories.
const (
	VerbosePorts Verbosity = 1 << iota
	VerboseOps
	VerboseFrames
	VerboseQueue
)

// VerboseNone disables tracing and VerboseAll enables every category.
const (
	VerboseNone Verbosity = 0
	VerboseAll            = VerbosePorts | VerboseOps | VerboseFrames | VerboseQueue
)

var verbosityNames = map[string]Verbosity{
	"ports":  VerbosePorts,
	"ops":    VerboseOps,
	"frames": VerboseFrames,
	"queue":  VerboseQueue,
}

// Has tells whether every category of f is enabled.
func (v Verbosity) Has(f Verbosity) bool {
	return v&f == f && f != 0
}

func (v Verbosity) String() string {
	if v == VerboseNone {
		return "none"
	}

	var names []string

	for name, f := range verbosityNames {
		if v.Has(f) {
			names = append(names, name)
		}
	}

	sort.Strings(names)

	return strings.Join(names, ",")
}

// ParseVerbosity parses a comma separated list of categories, or "all" or
// "none".
func ParseVerbosity(s string) (Verbosity, error) {
	v := VerboseNone

	for _, name := range strings.Split(s, ",") {
		name = strings.ToLower(strings.TrimSpace(name))

		switch name {
		case "", "none":
		case "all":
			v |= VerboseAll
		default:
			f, ok := verbosityNames[name]
			if !ok {
				return VerboseNone, errors.Errorf("unknown trace category %q", name)
			}

			v |= f
		}
	}

	return v, nil
}
