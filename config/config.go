// Package config loads the run files that describe which device instances to
// generate and where to write them.
package config

import (
	"bytes"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/vstim/devices"
	"github.com/sarchlab/vstim/naming"
	"github.com/sarchlab/vstim/tracing"
	"github.com/sarchlab/vstim/wire"
)

// ErrInvalidRun is returned when a run file is malformed.
var ErrInvalidRun = errors.New("invalid run configuration")

// DefaultOutDir is where outputs go when neither the run file nor the
// environment name a directory.
const DefaultOutDir = "."

// A Device is one instance to generate.
type Device struct {
	Name       string            `yaml:"name"`
	Class      string            `yaml:"class"`
	Cycles     uint64            `yaml:"cycles"`
	Seed       *int64            `yaml:"seed,omitempty"`
	DirectMode bool              `yaml:"directMode,omitempty"`
	ClockPort  string            `yaml:"clockPort,omitempty"`
	Macros     map[string]string `yaml:"macros,omitempty"`
}

// A Run is the content of a run file.
type Run struct {
	Schema     string   `yaml:"schema,omitempty"`
	OutDir     string   `yaml:"outDir,omitempty"`
	Seed       *int64   `yaml:"seed,omitempty"`
	Record     bool     `yaml:"record,omitempty"`
	RecordPath string   `yaml:"recordPath,omitempty"`
	Verbosity  string   `yaml:"verbosity,omitempty"`
	Devices    []Device `yaml:"devices"`
}

// Load reads and validates a run file.
func Load(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading run file %s", path)
	}

	r, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "run file %s", path)
	}

	return r, nil
}

// Parse decodes a run file. Unknown fields are rejected.
func Parse(data []byte) (*Run, error) {
	r := &Run{}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(r); err != nil {
		return nil, errors.Wrapf(ErrInvalidRun, "%v", err)
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}

	return r, nil
}

// Validate checks the fields that can be checked without a device registry.
func (r *Run) Validate() error {
	if _, err := r.SchemaVersion(); err != nil {
		return errors.Wrapf(ErrInvalidRun, "%v", err)
	}

	if _, err := r.TraceVerbosity(); err != nil {
		return errors.Wrapf(ErrInvalidRun, "%v", err)
	}

	if len(r.Devices) == 0 {
		return errors.Wrap(ErrInvalidRun, "no devices")
	}

	seen := make(map[string]bool)

	for i, d := range r.Devices {
		if _, err := naming.Parse(d.Name); err != nil {
			return errors.Wrapf(ErrInvalidRun, "device %d: %v", i, err)
		}

		if seen[d.Name] {
			return errors.Wrapf(ErrInvalidRun, "device %s listed twice", d.Name)
		}

		seen[d.Name] = true

		if d.Class == "" {
			return errors.Wrapf(ErrInvalidRun, "device %s has no class", d.Name)
		}

		if d.Cycles == 0 {
			return errors.Wrapf(ErrInvalidRun, "device %s has no cycles", d.Name)
		}
	}

	return nil
}

// SchemaVersion returns the wire schema of the outputs.
func (r *Run) SchemaVersion() (wire.Schema, error) {
	if r.Schema == "" {
		return wire.DefaultSchema, nil
	}

	return wire.ParseSchema(r.Schema)
}

// TraceVerbosity returns the categories to trace.
func (r *Run) TraceVerbosity() (tracing.Verbosity, error) {
	return tracing.ParseVerbosity(r.Verbosity)
}

// Output returns the directory the outputs are written to.
func (r *Run) Output() string {
	if r.OutDir == "" {
		return DefaultOutDir
	}

	return r.OutDir
}

// Options returns the generator options of d. A device seed takes precedence
// over the run seed, and devices.DefaultSeed is used when neither is set.
func (r *Run) Options(d Device) devices.Options {
	seed := devices.DefaultSeed

	switch {
	case d.Seed != nil:
		seed = *d.Seed
	case r.Seed != nil:
		seed = *r.Seed
	}

	return devices.Options{
		DirectMode: d.DirectMode,
		ClockPort:  d.ClockPort,
	}.WithSeed(seed)
}
