package config

import (
	"path/filepath"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigtoml"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// FileName is looked up in the workspace root.
const FileName = "omuws.toml"

// Config describes all configuration options
type Config struct {
	PackagesDir string   `default:"packages" env:"PACKAGES_DIR" toml:"packages_dir" usage:"Directory whose subdirectories are the workspace packages"`
	Jobs        int      `default:"1" env:"JOBS" toml:"jobs" usage:"Number of packages processed at the same time"`
	FailFast    bool     `default:"false" env:"FAIL_FAST" toml:"fail_fast" usage:"Stop after the first package that fails"`
	StateDir    string   `default:".omuws" env:"STATE_DIR" toml:"state_dir" usage:"Directory for run state, relative to the workspace root"`
	EnvFiles    []string `env:"ENV_FILES" toml:"env_files" usage:"dotenv files loaded into the environment of every command"`
	Log         struct {
		Level string `default:"info" env:"LEVEL" toml:"level"`
		JSON  bool   `default:"false" env:"JSON" toml:"json" usage:"Output JSONND instead of pretty console messages"`
	} `env:"LOG" toml:"log"`
}

var logLevels = map[string]zerolog.Level{
	"trace":   zerolog.TraceLevel,
	"debug":   zerolog.DebugLevel,
	"info":    zerolog.InfoLevel,
	"warn":    zerolog.WarnLevel,
	"warning": zerolog.WarnLevel,
	"error":   zerolog.ErrorLevel,
	"fatal":   zerolog.FatalLevel,
}

// Loader initializes an empty config object and returns a new Loader for this object. Values are read
// from the struct defaults, <root>/omuws.toml and OMUWS_* environment variables. Flags are left to the
// CLI.
func Loader(root string) (*Config, *aconfig.Loader) {
	cfg := Config{}
	return &cfg, aconfig.LoaderFor(&cfg, aconfig.Config{
		SkipFlags: true,
		// commands started by omuws see OMUWS_PACKAGE & co. which aren't config options
		AllowUnknownEnvs: true,
		EnvPrefix:        "OMUWS",
		Files:            []string{filepath.Join(root, FileName)},
		FileDecoders: map[string]aconfig.FileDecoder{
			".toml": aconfigtoml.New(),
		},
	})
}

// Load is a shortcut for Loader followed by Load and Validate.
func Load(root string) (*Config, error) {
	cfg, loader := Loader(root)
	if err := loader.Load(); err != nil {
		return nil, eris.Wrap(err, "failed to load configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate verifies that all config fields have valid values
func (cfg *Config) Validate() error {
	if _, err := ParseLogLevel(cfg.Log.Level); err != nil {
		return eris.Wrap(err, "invalid value for log.level")
	}

	if cfg.Jobs < 1 {
		return eris.Errorf(`Invalid value for jobs: %d (must be at least 1)`, cfg.Jobs)
	}

	if cfg.PackagesDir == "" {
		return eris.New(`Invalid value for packages_dir: must not be empty`)
	}

	return nil
}

// LogLevel converts the .Log.Level field to a zerolog.Level
func (cfg *Config) LogLevel() zerolog.Level {
	return logLevels[cfg.Log.Level]
}

// ParseLogLevel converts a level name to a zerolog.Level
func ParseLogLevel(name string) (zerolog.Level, error) {
	level, ok := logLevels[name]
	if !ok {
		return zerolog.NoLevel, eris.Errorf("unknown log level %s", name)
	}

	return level, nil
}
