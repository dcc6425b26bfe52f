package wire

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/sarchlab/vstim/port"
	"github.com/sarchlab/vstim/stimulus"
)

// File name extensions of the two record files of a test.
const (
	PortsExt = ".ports"
	OpsExt   = ".ops"
)

// Files names the record files of one test.
type Files struct {
	Ports string
	Ops   string
}

// FilesFor returns the record file paths of test name in dir.
func FilesFor(dir, name string) Files {
	return Files{
		Ports: filepath.Join(dir, name+PortsExt),
		Ops:   filepath.Join(dir, name+OpsExt),
	}
}

// A Writer writes record files, one record per line, after a schema header.
type Writer struct {
	schema Schema
}

// NewWriter creates a writer that encodes directions with s.
func NewWriter(s Schema) *Writer {
	return &Writer{schema: s}
}

// Schema returns the schema of the writer.
func (w *Writer) Schema() Schema {
	return w.schema
}

// WritePorts writes the port records of m in wiring order.
func (w *Writer) WritePorts(out io.Writer, m *port.Map) error {
	if err := w.schema.Supports(m); err != nil {
		return err
	}

	bw := bufio.NewWriter(out)
	if _, err := bw.WriteString(w.schema.Header() + "\n"); err != nil {
		return err
	}

	for _, p := range m.Ports() {
		rec, err := EncodePort(p, w.schema)
		if err != nil {
			return err
		}

		if _, err := bw.WriteString(rec + "\n"); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// WriteOps writes the op records in order.
func (w *Writer) WriteOps(out io.Writer, ops []stimulus.Operation) error {
	bw := bufio.NewWriter(out)
	if _, err := bw.WriteString(w.schema.Header() + "\n"); err != nil {
		return err
	}

	for _, op := range ops {
		rec, err := EncodeOp(op)
		if err != nil {
			return err
		}

		if _, err := bw.WriteString(rec + "\n"); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// WriteFiles creates the port and op files of a test. Existing files are
// overwritten.
func (w *Writer) WriteFiles(
	f Files,
	m *port.Map,
	ops []stimulus.Operation,
) error {
	if err := w.schema.Supports(m); err != nil {
		return err
	}

	if err := writeFile(f.Ports, func(out io.Writer) error {
		return w.WritePorts(out, m)
	}); err != nil {
		return err
	}

	return writeFile(f.Ops, func(out io.Writer) error {
		return w.WriteOps(out, ops)
	})
}

func writeFile(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}

	if err := write(file); err != nil {
		file.Close()
		return errors.Wrapf(err, "writing %s", path)
	}

	return file.Close()
}

// A Reader reads record files. The schema named in a file header wins over
// the reader's fallback schema.
type Reader struct {
	fallback Schema
}

// NewReader creates a reader that falls back to DefaultSchema.
func NewReader() *Reader {
	return &Reader{fallback: DefaultSchema}
}

// WithSchema sets the schema used for files without a header.
func (r *Reader) WithSchema(s Schema) *Reader {
	r.fallback = s
	return r
}

// records calls fn for each record line, after applying the schema header.
func records(in io.Reader, fn func(lineNo int, line string) error) (Schema, error) {
	var schema Schema

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())

		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "#") {
			if s, ok := parseHeader(line); ok && schema == 0 {
				schema = s
			}

			continue
		}

		if err := fn(lineNo, line); err != nil {
			return schema, err
		}
	}

	return schema, sc.Err()
}

// ReadPorts reads a port file. Indices must run from 0 in file order.
func (r *Reader) ReadPorts(in io.Reader) (*port.Map, Schema, error) {
	var lines []string

	schema, err := records(in, func(_ int, line string) error {
		lines = append(lines, line)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	if schema == 0 {
		schema = r.fallback
	}

	b := port.MapBuilder{}

	for i, line := range lines {
		d, err := DecodePort(line, schema)
		if err != nil {
			return nil, 0, err
		}

		if d.Index != i {
			return nil, 0, errors.Wrapf(ErrMalformedRecord,
				"port %s has index %d at position %d", d.Name, d.Index, i)
		}

		b = b.AddPort(d.Name, d.WidthBytes, d.Dir)
	}

	m, err := b.Build()
	if err != nil {
		return nil, 0, err
	}

	return m, schema, nil
}

// ReadOps reads an op file against the ports in m.
func (r *Reader) ReadOps(in io.Reader, m *port.Map) ([]stimulus.Operation, error) {
	var ops []stimulus.Operation

	_, err := records(in, func(lineNo int, line string) error {
		op, err := DecodeOp(line, m)
		if err != nil {
			return errors.Wrapf(err, "line %d", lineNo)
		}

		ops = append(ops, op)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return ops, nil
}

// ReadFiles reads the port and op files of a test.
func (r *Reader) ReadFiles(f Files) (*port.Map, []stimulus.Operation, error) {
	pf, err := os.Open(f.Ports)
	if err != nil {
		return nil, nil, err
	}
	defer pf.Close()

	m, _, err := r.ReadPorts(pf)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "reading %s", f.Ports)
	}

	of, err := os.Open(f.Ops)
	if err != nil {
		return nil, nil, err
	}
	defer of.Close()

	ops, err := r.ReadOps(of, m)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "reading %s", f.Ops)
	}

	return m, ops, nil
}
