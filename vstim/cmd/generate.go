package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/xid"
	"github.com/spf13/cobra"

	"github.com/sarchlab/vstim/config"
	"github.com/sarchlab/vstim/simulation"
	"github.com/sarchlab/vstim/wire"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the record files of one or more device instances.",
	Long: "`generate --config run.yaml` generates every device listed in the " +
		"run file. `generate --class Counter --cycles 50` generates a single " +
		"instance without a run file.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		run, err := runFromFlags(cmd)
		if err != nil {
			return err
		}

		logger := log.New(cmd.ErrOrStderr(), "", 0)

		files, err := generate(run, logger)
		if err != nil {
			return err
		}

		reportFiles(cmd.OutOrStdout(), files)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	f := generateCmd.Flags()
	f.String("config", "", "Run file describing the devices to generate")
	f.String("env", ".env", "File with VSTIM_* overrides")
	f.String("class", "", "Device class, when no run file is given")
	f.String("name", "", "Instance name, defaults to the class")
	f.Uint64("cycles", 0, "Number of cycles to generate")
	f.StringToString("macro", nil, "Device macros, as KEY=VALUE")
	f.Bool("direct", false, "Drop clock writes, the harness drives the clock")
	f.String("clock-port", "", "Name of the clock port")
	f.String("out", "", "Output directory")
	f.String("schema", "", "Record schema, v1 or v2")
	f.Int64("seed", 0, "Seed of the random operands")
	f.Bool("record", false, "Record every op into a SQLite database")
	f.StringP("verbose", "v", "", "Trace categories: ports,ops,frames,queue or all")
}

// runFromFlags merges the run file, the environment and the flags, in
// increasing order of precedence.
func runFromFlags(cmd *cobra.Command) (*config.Run, error) {
	flags := cmd.Flags()

	path, _ := flags.GetString("config")
	class, _ := flags.GetString("class")

	var (
		run *config.Run
		err error
	)

	switch {
	case path != "" && class != "":
		return nil, errors.New("--config and --class cannot be used together")
	case path != "":
		run, err = config.Load(path)
		if err != nil {
			return nil, err
		}
	case class != "":
		run = &config.Run{Devices: []config.Device{singleDevice(cmd, class)}}
	default:
		return nil, errors.New("either --config or --class is required")
	}

	envFile, _ := flags.GetString("env")

	env, err := config.ReadEnv(envFile)
	if err != nil {
		return nil, err
	}

	if err := run.ApplyEnv(env); err != nil {
		return nil, err
	}

	if flags.Changed("out") {
		run.OutDir, _ = flags.GetString("out")
	}

	if flags.Changed("schema") {
		run.Schema, _ = flags.GetString("schema")
	}

	if flags.Changed("seed") {
		seed, _ := flags.GetInt64("seed")
		run.Seed = &seed
	}

	if flags.Changed("record") {
		run.Record, _ = flags.GetBool("record")
	}

	if flags.Changed("verbose") {
		run.Verbosity, _ = flags.GetString("verbose")
	}

	if err := run.Validate(); err != nil {
		return nil, err
	}

	return run, nil
}

func singleDevice(cmd *cobra.Command, class string) config.Device {
	flags := cmd.Flags()

	d := config.Device{Class: class, Name: class}

	if name, _ := flags.GetString("name"); name != "" {
		d.Name = name
	}

	d.Cycles, _ = flags.GetUint64("cycles")
	d.Macros, _ = flags.GetStringToString("macro")
	d.DirectMode, _ = flags.GetBool("direct")
	d.ClockPort, _ = flags.GetString("clock-port")

	return d
}

// generate builds every device of run and writes its record files.
func generate(run *config.Run, logger *log.Logger) ([]wire.Files, error) {
	schema, err := run.SchemaVersion()
	if err != nil {
		return nil, err
	}

	verbosity, err := run.TraceVerbosity()
	if err != nil {
		return nil, err
	}

	outDir := run.Output()
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating %s", outDir)
	}

	b := simulation.MakeBuilder().WithLogger(logger, verbosity)
	if run.Record {
		recordPath := run.RecordPath
		if recordPath == "" {
			recordPath = filepath.Join(outDir, "vstim_record_"+xid.New().String())
		}

		b = b.WithRecording(recordPath)
	}

	sim, err := b.Build()
	if err != nil {
		return nil, err
	}

	files, err := generateAll(sim, run, wire.NewWriter(schema))

	if termErr := sim.Terminate(); err == nil && termErr != nil {
		return nil, termErr
	}

	return files, err
}

func generateAll(
	sim *simulation.Simulation,
	run *config.Run,
	w *wire.Writer,
) ([]wire.Files, error) {
	for _, d := range run.Devices {
		if err := sim.RegisterDevice(d.Name, d.Class); err != nil {
			return nil, err
		}

		if err := sim.DefineMacros(d.Name, d.Macros); err != nil {
			return nil, err
		}
	}

	files := make([]wire.Files, 0, len(run.Devices))

	for _, d := range run.Devices {
		res, err := sim.Generate(d.Name, d.Cycles, run.Options(d))
		if err != nil {
			return nil, err
		}

		f := wire.FilesFor(run.Output(), d.Name)
		if err := w.WriteFiles(f, res.Ports, res.Ops.Ops()); err != nil {
			return nil, errors.Wrapf(err, "writing %s", d.Name)
		}

		files = append(files, f)
	}

	return files, nil
}

func reportFiles(out io.Writer, files []wire.Files) {
	for _, f := range files {
		fmt.Fprintf(out, "%s\n%s\n", f.Ports, f.Ops)
	}
}
