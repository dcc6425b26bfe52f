package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// The environment variables that override a run file.
const (
	EnvSeed   = "VSTIM_SEED"
	EnvSchema = "VSTIM_SCHEMA"
	EnvOutDir = "VSTIM_OUT_DIR"
	EnvRecord = "VSTIM_RECORD"
)

var envKeys = []string{EnvSeed, EnvSchema, EnvOutDir, EnvRecord}

// ReadEnv collects the overrides from the given .env files and the process
// environment. The process environment wins. Missing files are skipped.
func ReadEnv(files ...string) (map[string]string, error) {
	env := make(map[string]string)

	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			continue
		}

		vars, err := godotenv.Read(f)
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", f)
		}

		for _, k := range envKeys {
			if v, ok := vars[k]; ok {
				env[k] = v
			}
		}
	}

	for _, k := range envKeys {
		if v, ok := os.LookupEnv(k); ok {
			env[k] = v
		}
	}

	return env, nil
}

// ApplyEnv overrides the run-level fields of r with env.
func (r *Run) ApplyEnv(env map[string]string) error {
	if v, ok := env[EnvSeed]; ok {
		seed, err := strconv.ParseInt(v, 0, 64)
		if err != nil {
			return errors.Wrapf(ErrInvalidRun, "%s=%q", EnvSeed, v)
		}

		r.Seed = &seed
	}

	if v, ok := env[EnvSchema]; ok {
		r.Schema = v
	}

	if v, ok := env[EnvOutDir]; ok {
		r.OutDir = v
	}

	if v, ok := env[EnvRecord]; ok {
		record, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrapf(ErrInvalidRun, "%s=%q", EnvRecord, v)
		}

		r.Record = record
	}

	if _, err := r.SchemaVersion(); err != nil {
		return errors.Wrapf(ErrInvalidRun, "%v", err)
	}

	return nil
}
