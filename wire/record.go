package wire

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/sarchlab/vstim/port"
	"github.com/sarchlab/vstim/stimulus"
)

func checkName(name string) error {
	if name == "" || strings.ContainsAny(name, Separator+" \t\r\n#") {
		return errors.Wrapf(ErrMalformedRecord, "port name %q cannot be encoded", name)
	}

	return nil
}

// EncodeOp returns the record port:action:value[:value...]:tick. A wide op
// repeats the value field once per limb, least significant limb first.
func EncodeOp(op stimulus.Operation) (string, error) {
	if err := checkName(op.Port); err != nil {
		return "", err
	}

	if op.Action != stimulus.ActionWrite && op.Action != stimulus.ActionRead {
		return "", errors.Wrapf(ErrMalformedRecord,
			"op on %s has action %s", op.Port, op.Action)
	}

	values := op.Values()
	fields := make([]string, 0, len(values)+3)
	fields = append(fields, op.Port, op.Action.String())

	for _, v := range values {
		fields = append(fields, strconv.FormatUint(v, 10))
	}

	fields = append(fields, strconv.FormatUint(op.Tick, 10))

	return strings.Join(fields, Separator), nil
}

// DecodeOp parses an op record. The number of value fields must match the
// limb count of the port in m, which is how the harness reads them too.
func DecodeOp(line string, m *port.Map) (stimulus.Operation, error) {
	fields := strings.Split(strings.TrimSpace(line), Separator)
	if len(fields) < 4 {
		return stimulus.Operation{}, errors.Wrapf(ErrMalformedRecord,
			"op record %q has %d fields", line, len(fields))
	}

	p, ok := m.Lookup(fields[0])
	if !ok {
		return stimulus.Operation{}, errors.Wrapf(ErrMalformedRecord,
			"op record %q names unknown port", line)
	}

	action, ok := stimulus.ParseAction(fields[1])
	if !ok {
		return stimulus.Operation{}, errors.Wrapf(ErrMalformedRecord,
			"op record %q has action %q", line, fields[1])
	}

	values := fields[2 : len(fields)-1]
	if len(values) != p.Limbs() {
		return stimulus.Operation{}, errors.Wrapf(ErrMalformedRecord,
			"op record %q has %d values for %d-limb port %s",
			line, len(values), p.Limbs(), p.Name)
	}

	tick, err := strconv.ParseUint(fields[len(fields)-1], 10, 64)
	if err != nil {
		return stimulus.Operation{}, errors.Wrapf(ErrMalformedRecord,
			"op record %q has tick %q", line, fields[len(fields)-1])
	}

	limbs := make([]uint64, len(values))
	for i, f := range values {
		limbs[i], err = strconv.ParseUint(f, 10, 64)
		if err != nil {
			return stimulus.Operation{}, errors.Wrapf(ErrMalformedRecord,
				"op record %q has value %q", line, f)
		}
	}

	op := stimulus.Operation{Port: p.Name, Action: action, Tick: tick}
	if p.IsWide() {
		op.Limbs = limbs
	} else {
		op.Value = limbs[0]
	}

	return op, nil
}

// EncodePort returns the record name:index:widthBytes:direction.
func EncodePort(d port.Descriptor, s Schema) (string, error) {
	if err := checkName(d.Name); err != nil {
		return "", err
	}

	dir, err := s.EncodeDirection(d.Dir)
	if err != nil {
		return "", errors.Wrapf(err, "port %s", d.Name)
	}

	return strings.Join([]string{
		d.Name,
		strconv.Itoa(d.Index),
		strconv.Itoa(d.WidthBytes),
		dir,
	}, Separator), nil
}

// DecodePort parses a port record.
func DecodePort(line string, s Schema) (port.Descriptor, error) {
	fields := strings.Split(strings.TrimSpace(line), Separator)
	if len(fields) != 4 {
		return port.Descriptor{}, errors.Wrapf(ErrMalformedRecord,
			"port record %q has %d fields", line, len(fields))
	}

	index, err := strconv.Atoi(fields[1])
	if err != nil || index < 0 {
		return port.Descriptor{}, errors.Wrapf(ErrMalformedRecord,
			"port record %q has index %q", line, fields[1])
	}

	width, err := strconv.Atoi(fields[2])
	if err != nil || width <= 0 {
		return port.Descriptor{}, errors.Wrapf(ErrMalformedRecord,
			"port record %q has width %q", line, fields[2])
	}

	dir, err := s.DecodeDirection(fields[3])
	if err != nil {
		return port.Descriptor{}, errors.Wrapf(err, "port record %q", line)
	}

	return port.Descriptor{
		Name:       fields[0],
		Index:      index,
		WidthBytes: width,
		Dir:        dir,
	}, nil
}
