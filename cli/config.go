package cli

// This file contains the resolved option surface and the optional YAML
// config file underneath it. Explicit flags always win over file values.

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

const defaultConfigFile = ".goldrun.yaml"

// fileConfig mirrors the run flag surface in .goldrun.yaml.
type fileConfig struct {
	Jobs        int     `yaml:"jobs"`
	Timeout     int     `yaml:"timeout"`
	Tolerance   float64 `yaml:"tolerance"`
	Include     string  `yaml:"include"`
	Exclude     string  `yaml:"exclude"`
	MPILauncher string  `yaml:"mpi-launcher"`
	AlwaysMPI   bool    `yaml:"always-mpi"`
	DiffTool    string  `yaml:"diff-tool"`
	Executable  string  `yaml:"executable"`
	Keep        bool    `yaml:"keep"`
}

// options is the resolved configuration consumed by the run orchestration.
type options struct {
	Jobs        int
	Timeout     time.Duration
	Tolerance   float64
	Verbose     bool
	Include     string
	Exclude     string
	MPILauncher string
	AlwaysMPI   bool
	DiffTool    string
	Executable  string
	Keep        bool
}

// resolveOptions merges flags over the optional config file.
func (a *App) resolveOptions(ctx *cli.Context) (*options, error) {
	cfg, err := a.loadConfigFile(ctx.String("config"))
	if err != nil {
		return nil, err
	}

	opts := &options{
		Jobs:        ctx.Int("jobs"),
		Timeout:     time.Duration(ctx.Int("timeout")) * time.Second,
		Tolerance:   ctx.Float64("tolerance"),
		Verbose:     ctx.Bool("verbose"),
		Include:     ctx.String("include"),
		Exclude:     ctx.String("exclude"),
		MPILauncher: ctx.String("mpi-launcher"),
		AlwaysMPI:   ctx.Bool("always-mpi"),
		DiffTool:    ctx.String("diff-tool"),
		Executable:  ctx.String("executable"),
		Keep:        ctx.Bool("keep"),
	}

	if cfg != nil {
		if !ctx.IsSet("jobs") && cfg.Jobs > 0 {
			opts.Jobs = cfg.Jobs
		}
		if !ctx.IsSet("timeout") && cfg.Timeout > 0 {
			opts.Timeout = time.Duration(cfg.Timeout) * time.Second
		}
		if !ctx.IsSet("tolerance") && cfg.Tolerance > 0 {
			opts.Tolerance = cfg.Tolerance
		}
		if !ctx.IsSet("include") && cfg.Include != "" {
			opts.Include = cfg.Include
		}
		if !ctx.IsSet("exclude") && cfg.Exclude != "" {
			opts.Exclude = cfg.Exclude
		}
		if !ctx.IsSet("mpi-launcher") && cfg.MPILauncher != "" {
			opts.MPILauncher = cfg.MPILauncher
		}
		if !ctx.IsSet("always-mpi") && cfg.AlwaysMPI {
			opts.AlwaysMPI = true
		}
		if !ctx.IsSet("diff-tool") && cfg.DiffTool != "" {
			opts.DiffTool = cfg.DiffTool
		}
		if !ctx.IsSet("executable") && cfg.Executable != "" {
			opts.Executable = cfg.Executable
		}
		if !ctx.IsSet("keep") && cfg.Keep {
			opts.Keep = true
		}
	}

	if opts.Jobs < 1 {
		return nil, fmt.Errorf("jobs must be at least 1, got %d", opts.Jobs)
	}
	return opts, nil
}

func (a *App) loadConfigFile(path string) (*fileConfig, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	a.logger.Debug().Str("path", path).Msg("Loaded config file")
	return &cfg, nil
}
