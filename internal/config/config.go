// Package config loads the plx configuration from plx.yaml, PLX_* environment
// variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/plx-project/plx/internal/log"
)

const (
	// FileName is looked up in the project directory and in the user config directory.
	FileName  = "plx.yaml"
	EnvPrefix = "PLX"
	// LogAuto logs to a file in the project while the TUI runs, to stderr otherwise.
	LogAuto = "auto"
	// StateDir is created in the project directory for logs and build output.
	StateDir = ".plx"
)

type Config struct {
	Editor     string  `mapstructure:"editor"`
	OpenEditor bool    `mapstructure:"open_editor"`
	Verbose    bool    `mapstructure:"verbose"`
	Log        string  `mapstructure:"log"`
	BuildDir   string  `mapstructure:"build_dir"`
	Jobs       int     `mapstructure:"jobs"`
	Watch      Watch   `mapstructure:"watch"`
	Compile    Compile `mapstructure:"compile"`
	Run        Run     `mapstructure:"run"`
}

type Watch struct {
	Enabled  bool          `mapstructure:"enabled"`
	Debounce time.Duration `mapstructure:"debounce"`
}

type Compile struct {
	// CC and CXX override the gcc and g++ binaries.
	CC      string        `mapstructure:"cc"`
	CXX     string        `mapstructure:"cxx"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type Run struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

func Default() Config {
	return Config{
		OpenEditor: true,
		Log:        LogAuto,
		BuildDir:   filepath.Join(StateDir, "build"),
		Jobs:       4,
		Watch: Watch{
			Enabled:  true,
			Debounce: 500 * time.Millisecond,
		},
		Compile: Compile{
			Timeout: time.Minute,
		},
		Run: Run{
			Timeout: 10 * time.Second,
		},
	}
}

// flags maps configuration keys to command line flag names.
var flags = map[string]string{
	"editor":      "editor",
	"open_editor": "open-editor",
	"verbose":     "verbose",
	"log":         "log",
	"build_dir":   "build-dir",
	"jobs":        "jobs",
}

// New returns a viper instance with defaults, PLX_* environment variables and
// every known flag of fs bound. If path is empty, plx.yaml is searched in dirs.
// A missing plx.yaml is not an error, an explicitly given one is.
func New(path string, fs *pflag.FlagSet, dirs ...string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for key, name := range flags {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		return v, nil
	}

	v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
	for _, d := range dirs {
		v.AddConfigPath(d)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading %s: %w", FileName, err)
		}
	}
	return v, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("editor", d.Editor)
	v.SetDefault("open_editor", d.OpenEditor)
	v.SetDefault("verbose", d.Verbose)
	v.SetDefault("log", d.Log)
	v.SetDefault("build_dir", d.BuildDir)
	v.SetDefault("jobs", d.Jobs)
	v.SetDefault("watch.enabled", d.Watch.Enabled)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
	v.SetDefault("compile.cc", d.Compile.CC)
	v.SetDefault("compile.cxx", d.Compile.CXX)
	v.SetDefault("compile.timeout", d.Compile.Timeout)
	v.SetDefault("run.timeout", d.Run.Timeout)
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Log) == "" {
		errs = append(errs, errors.New("log: must not be empty"))
	}
	if strings.TrimSpace(c.BuildDir) == "" {
		errs = append(errs, errors.New("build_dir: must not be empty"))
	}
	if c.Jobs < 1 {
		errs = append(errs, fmt.Errorf("jobs: must be at least 1, got %d", c.Jobs))
	}
	if c.Watch.Debounce < 0 {
		errs = append(errs, fmt.Errorf("watch.debounce: must not be negative, got %s", c.Watch.Debounce))
	}
	if c.Compile.Timeout < 0 {
		errs = append(errs, fmt.Errorf("compile.timeout: must not be negative, got %s", c.Compile.Timeout))
	}
	if c.Run.Timeout < 0 {
		errs = append(errs, fmt.Errorf("run.timeout: must not be negative, got %s", c.Run.Timeout))
	}
	return errors.Join(errs...)
}

// BuildPath returns the build directory, relative ones are resolved against
// the project directory.
func (c Config) BuildPath(projectDir string) string {
	if filepath.IsAbs(c.BuildDir) {
		return c.BuildDir
	}
	return filepath.Join(projectDir, c.BuildDir)
}

// LogPath returns the log destination. With LogAuto it is a file in the
// project state directory when tui is set and stderr otherwise.
func (c Config) LogPath(projectDir string, tui bool) string {
	if c.Log != LogAuto {
		return c.Log
	}
	if tui {
		return filepath.Join(projectDir, StateDir, "plx.log")
	}
	return log.Stderr
}

// UserDir returns the directory holding the user wide plx.yaml.
func UserDir() (string, error) {
	d, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "plx"), nil
}

// YAML renders the configuration in the plx.yaml format.
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(map[string]any{
		"editor":      c.Editor,
		"open_editor": c.OpenEditor,
		"verbose":     c.Verbose,
		"log":         c.Log,
		"build_dir":   c.BuildDir,
		"jobs":        c.Jobs,
		"watch": map[string]any{
			"enabled":  c.Watch.Enabled,
			"debounce": c.Watch.Debounce.String(),
		},
		"compile": map[string]any{
			"cc":      c.Compile.CC,
			"cxx":     c.Compile.CXX,
			"timeout": c.Compile.Timeout.String(),
		},
		"run": map[string]any{
			"timeout": c.Run.Timeout.String(),
		},
	})
}
