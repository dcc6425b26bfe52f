// Package wire encodes port maps and operation sequences into the delimited
// text records read by the replay harness.
package wire

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/sarchlab/vstim/port"
)

// ErrMalformedRecord is returned for a record that cannot be parsed or
// produced.
var ErrMalformedRecord = errors.New("malformed record")

// ErrUnsupportedDirection is returned when a schema has no code for a port
// direction.
var ErrUnsupportedDirection = errors.New("direction not supported by schema")

// Separator splits the fields of a record.
const Separator = ":"

// A Schema fixes how port directions are encoded. A file uses one schema
// throughout and names it in its header.
type Schema int

// The known schemas.
const (
	// SchemaV1 encodes read as 0 and write as 1. It has no inout code.
	SchemaV1 Schema = iota + 1
	// SchemaV2 encodes read as 1, write as 2 and inout as 3.
	SchemaV2
)

// DefaultSchema is used when nothing else is requested.
const DefaultSchema = SchemaV2

const headerPrefix = "# vstim schema "

func (s Schema) String() string {
	return "v" + strconv.Itoa(int(s))
}

// Valid tells whether s is a known schema.
func (s Schema) Valid() bool {
	return s == SchemaV1 || s == SchemaV2
}

// Header returns the comment line that opens a file of this schema.
func (s Schema) Header() string {
	return headerPrefix + s.String()
}

// ParseSchema accepts "v1", "v2", "1" and "2".
func ParseSchema(str string) (Schema, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(str), "v"))
	if err != nil || !Schema(n).Valid() {
		return 0, errors.Wrapf(ErrMalformedRecord, "unknown schema %q", str)
	}

	return Schema(n), nil
}

// parseHeader extracts the schema from a header line.
func parseHeader(line string) (Schema, bool) {
	if !strings.HasPrefix(line, headerPrefix) {
		return 0, false
	}

	s, err := ParseSchema(strings.TrimPrefix(line, headerPrefix))
	if err != nil {
		return 0, false
	}

	return s, true
}

// EncodeDirection returns the code of d.
func (s Schema) EncodeDirection(d port.Direction) (string, error) {
	switch s {
	case SchemaV1:
		switch d {
		case port.DirRead:
			return "0", nil
		case port.DirWrite:
			return "1", nil
		}
	case SchemaV2:
		if d.Valid() {
			return strconv.Itoa(int(d)), nil
		}
	default:
		return "", errors.Wrapf(ErrMalformedRecord, "unknown schema %d", int(s))
	}

	return "", errors.Wrapf(ErrUnsupportedDirection,
		"schema %s cannot encode %s", s, d)
}

// DecodeDirection parses a direction code.
func (s Schema) DecodeDirection(code string) (port.Direction, error) {
	switch s {
	case SchemaV1:
		switch code {
		case "0":
			return port.DirRead, nil
		case "1":
			return port.DirWrite, nil
		}
	case SchemaV2:
		switch code {
		case "1":
			return port.DirRead, nil
		case "2":
			return port.DirWrite, nil
		case "3":
			return port.DirInOut, nil
		}
	default:
		return 0, errors.Wrapf(ErrMalformedRecord, "unknown schema %d", int(s))
	}

	return 0, errors.Wrapf(ErrUnsupportedDirection,
		"schema %s has no direction %q", s, code)
}

// Supports tells whether every port of m can be encoded with s.
func (s Schema) Supports(m *port.Map) error {
	for _, p := range m.Ports() {
		if _, err := s.EncodeDirection(p.Dir); err != nil {
			return errors.Wrapf(err, "port %s", p.Name)
		}
	}

	return nil
}
