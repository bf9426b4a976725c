package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"shadeweave/internal/diag"
	"shadeweave/internal/shader"
)

const configFileName = "shadeweave.toml"

type projectConfig struct {
	Compiler compilerConfig `toml:"compiler"`
	Output   outputConfig   `toml:"output"`
	// Path is where the config was read from, "" for defaults.
	Path string `toml:"-"`
}

type compilerConfig struct {
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
	Timeout duration `toml:"timeout"`
}

type outputConfig struct {
	Format      string `toml:"format"`
	ShowSource  bool   `toml:"show_source"`
	MinSeverity string `toml:"min_severity"`
}

// duration decodes TOML strings such as "10s".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func defaultConfig() projectConfig {
	return projectConfig{
		Compiler: compilerConfig{
			Command: shader.DefaultCommand,
			Timeout: duration{10 * time.Second},
		},
		Output: outputConfig{Format: "pretty", MinSeverity: "info"},
	}
}

func findConfig(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, configFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// loadConfig reads path on top of the defaults.
func loadConfig(path string) (projectConfig, error) {
	cfg := defaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return projectConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return projectConfig{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if strings.TrimSpace(cfg.Compiler.Command) == "" {
		return projectConfig{}, fmt.Errorf("%s: [compiler].command is empty", path)
	}
	if cfg.Compiler.Timeout.Duration < 0 {
		return projectConfig{}, fmt.Errorf("%s: [compiler].timeout is negative", path)
	}
	if err := checkFormat(cfg.Output.Format); err != nil {
		return projectConfig{}, fmt.Errorf("%s: [output].format: %w", path, err)
	}
	if _, err := diag.ParseSeverity(cfg.Output.MinSeverity); err != nil {
		return projectConfig{}, fmt.Errorf("%s: [output].min_severity: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

func checkFormat(format string) error {
	switch format {
	case "pretty", "short", "json", "sarif":
		return nil
	}
	return fmt.Errorf("unknown format %q (expected pretty|short|json|sarif)", format)
}

// resolveConfig loads the config named by --config, or the nearest
// shadeweave.toml, or the defaults, and applies command flags on top.
func resolveConfig(cmd *cobra.Command) (projectConfig, error) {
	explicit, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return projectConfig{}, fmt.Errorf("failed to get config flag: %w", err)
	}

	cfg := defaultConfig()
	path := explicit
	if path == "" {
		found, ok, err := findConfig(".")
		if err != nil {
			return projectConfig{}, err
		}
		if ok {
			path = found
		}
	}
	if path != "" {
		if cfg, err = loadConfig(path); err != nil {
			return projectConfig{}, err
		}
	}

	flags := cmd.Flags()
	if f := flags.Lookup("format"); f != nil && f.Changed {
		cfg.Output.Format = f.Value.String()
	}
	if flags.Changed("show-source") {
		if cfg.Output.ShowSource, err = flags.GetBool("show-source"); err != nil {
			return projectConfig{}, err
		}
	}
	if flags.Changed("min-severity") {
		if cfg.Output.MinSeverity, err = flags.GetString("min-severity"); err != nil {
			return projectConfig{}, err
		}
		if _, err := diag.ParseSeverity(cfg.Output.MinSeverity); err != nil {
			return projectConfig{}, fmt.Errorf("--min-severity: %w", err)
		}
	}
	if flags.Changed("compiler") {
		if cfg.Compiler.Command, err = flags.GetString("compiler"); err != nil {
			return projectConfig{}, err
		}
	}
	if flags.Changed("compiler-timeout") {
		if cfg.Compiler.Timeout.Duration, err = flags.GetDuration("compiler-timeout"); err != nil {
			return projectConfig{}, err
		}
	}
	if err := checkFormat(cfg.Output.Format); err != nil {
		return projectConfig{}, err
	}
	return cfg, nil
}

func (c projectConfig) compiler() *shader.ExecCompiler {
	return shader.NewExecCompiler(c.Compiler.Command, c.Compiler.Args, c.Compiler.Timeout.Duration)
}

// addCompilerFlags registers the flags that override [compiler].
func addCompilerFlags(cmd *cobra.Command) {
	cmd.Flags().String("compiler", "", "shader compiler executable (overrides [compiler].command)")
	cmd.Flags().Duration("compiler-timeout", 0, "shader compiler timeout (overrides [compiler].timeout)")
}

// addOutputFlags registers the flags that override [output].
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "pretty", "output format (pretty|short|json|sarif)")
	cmd.Flags().Bool("show-source", false, "print generated code and compiler output with unattributed diagnostics")
	cmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	cmd.Flags().Bool("fullpath", false, "emit absolute scene paths in output")
	cmd.Flags().String("min-severity", "info", "hide diagnostics below this severity (info|warning|error)")
}
