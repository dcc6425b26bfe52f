// Package simulation provides the build context that device instances are
// declared in and generated from.
package simulation

import (
	"github.com/pkg/errors"

	"github.com/sarchlab/vstim/datarecording"
	"github.com/sarchlab/vstim/devices"
	"github.com/sarchlab/vstim/naming"
	"github.com/sarchlab/vstim/port"
	"github.com/sarchlab/vstim/stimulus"
	"github.com/sarchlab/vstim/tracing"
)

// ErrDuplicateInstance is returned when an instance name is registered twice.
var ErrDuplicateInstance = errors.New("instance already registered")

// ErrUnknownInstance is returned when an instance name was never registered.
var ErrUnknownInstance = errors.New("unknown instance")

// A Result is what the harness needs to replay one instance.
type Result struct {
	Ports *port.Map
	Ops   *stimulus.Sequence
}

type instance struct {
	name   string
	class  string
	macros devices.Params
}

// A Simulation is the build context of a run. It owns the device registry,
// the declared instances with their macros, and the tracers.
type Simulation struct {
	id       string
	registry *devices.Registry

	instances     []*instance
	instanceIndex map[string]int

	dataRecorder datarecording.DataRecorder
	dbTracer     *tracing.DBTracer
	logTracer    *tracing.LogTracer
}

// ID returns the unique ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// Registry returns the device classes available to the simulation.
func (s *Simulation) Registry() *devices.Registry {
	return s.registry
}

// GetDataRecorder returns the data recorder, or nil if recording is off.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// GetDBTracer returns the tracer that records operations, or nil if recording
// is off.
func (s *Simulation) GetDBTracer() *tracing.DBTracer {
	return s.dbTracer
}

// RegisterDevice declares an instance of class. The name must be a valid
// hierarchical name.
func (s *Simulation) RegisterDevice(name, class string) error {
	naming.MustBeValid(name)

	if _, found := s.instanceIndex[name]; found {
		return errors.Wrapf(ErrDuplicateInstance, "instance %s", name)
	}

	if !s.registry.Has(class) {
		return errors.Wrapf(devices.ErrUnknownClass,
			"instance %s of class %q", name, class)
	}

	s.instances = append(s.instances, &instance{
		name:   name,
		class:  class,
		macros: make(devices.Params),
	})
	s.instanceIndex[name] = len(s.instances) - 1

	return nil
}

// Instances returns the instance names in registration order.
func (s *Simulation) Instances() []string {
	names := make([]string, len(s.instances))
	for i, inst := range s.instances {
		names[i] = inst.name
	}

	return names
}

// ClassOf returns the class of an instance.
func (s *Simulation) ClassOf(name string) (string, error) {
	inst, err := s.lookup(name)
	if err != nil {
		return "", err
	}

	return inst.class, nil
}

// Macros returns a copy of the macros of an instance.
func (s *Simulation) Macros(name string) (devices.Params, error) {
	inst, err := s.lookup(name)
	if err != nil {
		return nil, err
	}

	return inst.macros.Clone(), nil
}

// DefineMacro sets one macro of an instance. A later definition replaces an
// earlier one.
func (s *Simulation) DefineMacro(name, key, value string) error {
	inst, err := s.lookup(name)
	if err != nil {
		return err
	}

	if key == "" {
		return errors.Wrapf(devices.ErrInvalidConfig,
			"instance %s: macro without a name", name)
	}

	inst.macros[key] = value

	return nil
}

// DefineMacros sets several macros of an instance.
func (s *Simulation) DefineMacros(name string, macros map[string]string) error {
	for _, key := range devices.Params(macros).Keys() {
		if err := s.DefineMacro(name, key, macros[key]); err != nil {
			return err
		}
	}

	return nil
}

func (s *Simulation) lookup(name string) (*instance, error) {
	i, found := s.instanceIndex[name]
	if !found {
		return nil, errors.Wrapf(ErrUnknownInstance, "instance %s", name)
	}

	return s.instances[i], nil
}

// Generate builds the operation sequence of an instance. The sequence is
// checked against the port map and frozen before it is returned.
func (s *Simulation) Generate(
	name string,
	cycles uint64,
	opts devices.Options,
) (*Result, error) {
	inst, err := s.lookup(name)
	if err != nil {
		return nil, err
	}

	opts.Observe = s.observer(opts.Observe)

	g, err := s.registry.Create(inst.class, inst.name, inst.macros.Clone(), opts)
	if err != nil {
		return nil, err
	}

	s.attachObservers(g)

	if s.logTracer != nil {
		s.logTracer.TracePorts(inst.name, g.Ports())
	}

	seq, err := g.Generate(cycles)
	if err != nil {
		return nil, errors.Wrapf(err, "generating %s", inst.name)
	}

	if err := stimulus.Validate(seq.Ops(), g.Ports()); err != nil {
		return nil, errors.Wrapf(err, "generating %s", inst.name)
	}

	seq.Freeze()

	return &Result{Ports: g.Ports(), Ops: seq}, nil
}

// observer attaches the tracers to a new sequence after calling next.
func (s *Simulation) observer(
	next func(*stimulus.Sequence),
) func(*stimulus.Sequence) {
	return func(seq *stimulus.Sequence) {
		if next != nil {
			next(seq)
		}

		if s.logTracer != nil {
			tracing.Attach(seq, s.logTracer)
		}

		if s.dbTracer != nil {
			tracing.Attach(seq, s.dbTracer)
		}
	}
}

func (s *Simulation) attachObservers(g devices.Generator) {
	if s.logTracer == nil {
		return
	}

	if o, ok := g.(devices.QueueObserver); ok {
		o.AcceptQueueHook(s.logTracer)
	}

	if o, ok := g.(devices.FrameObserver); ok {
		o.AcceptFrameHook(s.logTracer)
	}
}

// Terminate flushes and closes the data recorder.
func (s *Simulation) Terminate() error {
	if s.dataRecorder == nil {
		return nil
	}

	return s.dataRecorder.Close()
}
