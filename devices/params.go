package devices

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Params holds the macros of a device instance, such as BAUD_PERIOD or
// ACCUM_WIDTH, as they appear in the build description.
type Params map[string]string

// Clone returns an independent copy of p.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}

	return out
}

// Keys returns the macro names in sorted order.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// Uint returns the macro key parsed as an unsigned integer, or def if the
// macro is not set. Decimal, 0x hexadecimal and 0b binary forms are accepted.
func (p Params) Uint(key string, def uint64) (uint64, error) {
	s, ok := p[key]
	if !ok {
		return def, nil
	}

	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidConfig, "macro %s=%q is not an unsigned integer", key, s)
	}

	return v, nil
}

// UintIn is Uint with an inclusive range check.
func (p Params) UintIn(key string, def, min, max uint64) (uint64, error) {
	v, err := p.Uint(key, def)
	if err != nil {
		return 0, err
	}

	if v < min || v > max {
		return 0, errors.Wrapf(ErrInvalidConfig,
			"macro %s=%d not in [%d, %d]", key, v, min, max)
	}

	return v, nil
}

// Bool returns the macro key as a boolean, or def if the macro is not set.
func (p Params) Bool(key string, def bool) (bool, error) {
	s, ok := p[key]
	if !ok {
		return def, nil
	}

	v, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, errors.Wrapf(ErrInvalidConfig, "macro %s=%q is not a boolean", key, s)
	}

	return v, nil
}

// Unknown returns the macros of p that are not in known, sorted.
func (p Params) Unknown(known ...string) []string {
	set := make(map[string]bool, len(known))
	for _, k := range known {
		set[k] = true
	}

	var out []string

	for _, k := range p.Keys() {
		if !set[k] {
			out = append(out, k)
		}
	}

	return out
}

// Only fails with ErrInvalidConfig if p sets a macro that is not in known.
func (p Params) Only(known ...string) error {
	if unknown := p.Unknown(known...); len(unknown) > 0 {
		return errors.Wrapf(ErrInvalidConfig, "unknown macros %s",
			strings.Join(unknown, ", "))
	}

	return nil
}
