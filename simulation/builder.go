package simulation

import (
	"log"

	"github.com/rs/xid"

	"github.com/sarchlab/vstim/datarecording"
	"github.com/sarchlab/vstim/devices"
	"github.com/sarchlab/vstim/devices/catalog"
	"github.com/sarchlab/vstim/tracing"
)

// Builder can be used to build a simulation.
type Builder struct {
	registry   *devices.Registry
	recording  bool
	recordPath string
	logger     *log.Logger
	verbosity  tracing.Verbosity
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{}
}

// WithRegistry sets the device classes the simulation can instantiate. By
// default, every class in the catalog is available.
func (b Builder) WithRegistry(r *devices.Registry) Builder {
	b.registry = r
	return b
}

// WithRecording records every emitted operation into a SQLite database at
// path. An empty path derives the file name from the simulation ID.
func (b Builder) WithRecording(path string) Builder {
	b.recording = true
	b.recordPath = path

	return b
}

// WithLogger prints the trace categories in v to logger.
func (b Builder) WithLogger(logger *log.Logger, v tracing.Verbosity) Builder {
	b.logger = logger
	b.verbosity = v

	return b
}

// Build builds the simulation.
func (b Builder) Build() (*Simulation, error) {
	s := &Simulation{
		id:            xid.New().String(),
		registry:      b.registry,
		instanceIndex: make(map[string]int),
	}

	if s.registry == nil {
		s.registry = catalog.NewRegistry()
	}

	if b.logger != nil && b.verbosity != tracing.VerboseNone {
		s.logTracer = tracing.NewLogTracer(b.logger, b.verbosity)
	}

	if b.recording {
		outputPath := b.recordPath
		if outputPath == "" {
			outputPath = "vstim_sim_" + s.id
		}

		recorder, err := datarecording.New(outputPath)
		if err != nil {
			return nil, err
		}

		s.dataRecorder = recorder
		s.dbTracer = tracing.NewDBTracer(recorder)
	}

	return s, nil
}
