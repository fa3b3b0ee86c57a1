// Package config loads realty settings from a YAML file.
//
// The file is decoded strictly, checked against an embedded CUE schema,
// and merged over Default. Every key is optional.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/realty/internal/region"
)

//go:embed schema.cue
var schemaSource string

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DefaultDBPath is the SQLite file used when none is configured.
const DefaultDBPath = "realty.db"

// DefaultQueryTimeout bounds each repository call.
const DefaultQueryTimeout = 5 * time.Second

// Config is the resolved configuration.
type Config struct {
	Storage Storage
	Limits  Limits
	Log     Log
}

// Storage selects and locates the backing database.
type Storage struct {
	Driver string
	Path   string
	DSN    string
}

// Limits are the registry's policy knobs.
type Limits struct {
	MaxVolume    int64
	AdminLevel   int
	QueryTimeout time.Duration
}

// Log configures the slog handler.
type Log struct {
	Level  string
	Format string
}

// file mirrors the YAML layout. Pointers distinguish unset from zero.
type file struct {
	Storage *fileStorage `yaml:"storage" json:"storage,omitempty"`
	Limits  *fileLimits  `yaml:"limits" json:"limits,omitempty"`
	Log     *fileLog     `yaml:"log" json:"log,omitempty"`
}

type fileStorage struct {
	Driver *string `yaml:"driver" json:"driver,omitempty"`
	Path   *string `yaml:"path" json:"path,omitempty"`
	DSN    *string `yaml:"dsn" json:"dsn,omitempty"`
}

type fileLimits struct {
	MaxVolume    *int64  `yaml:"max_volume" json:"max_volume,omitempty"`
	AdminLevel   *int    `yaml:"admin_level" json:"admin_level,omitempty"`
	QueryTimeout *string `yaml:"query_timeout" json:"query_timeout,omitempty"`
}

type fileLog struct {
	Level  *string `yaml:"level" json:"level,omitempty"`
	Format *string `yaml:"format" json:"format,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Storage: Storage{Driver: DriverSQLite, Path: DefaultDBPath},
		Limits: Limits{
			MaxVolume:    region.DefaultMaxVolume,
			AdminLevel:   region.DefaultAdminLevel,
			QueryTimeout: DefaultQueryTimeout,
		},
		Log: Log{Level: "info", Format: "text"},
	}
}

// Load reads path and returns the merged configuration. An empty path
// returns Default.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML bytes into a Config.
func Parse(data []byte) (Config, error) {
	var f file
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if err := checkSchema(f); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := f.mergeInto(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func checkSchema(f file) error {
	cctx := cuecontext.New()
	schema := cctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	v := def.Unify(cctx.Encode(f))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (f file) mergeInto(cfg *Config) error {
	if s := f.Storage; s != nil {
		setString(&cfg.Storage.Driver, s.Driver)
		setString(&cfg.Storage.Path, s.Path)
		setString(&cfg.Storage.DSN, s.DSN)
	}
	if l := f.Limits; l != nil {
		if l.MaxVolume != nil {
			cfg.Limits.MaxVolume = *l.MaxVolume
		}
		if l.AdminLevel != nil {
			cfg.Limits.AdminLevel = *l.AdminLevel
		}
		if l.QueryTimeout != nil {
			d, err := time.ParseDuration(*l.QueryTimeout)
			if err != nil {
				return fmt.Errorf("limits.query_timeout: %w", err)
			}
			cfg.Limits.QueryTimeout = d
		}
	}
	if l := f.Log; l != nil {
		setString(&cfg.Log.Level, l.Level)
		setString(&cfg.Log.Format, l.Format)
	}
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// Validate checks cross-field rules the schema cannot express.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.Path == "" {
			return errors.New("storage.path is required for sqlite")
		}
	case DriverPostgres:
		if c.Storage.DSN == "" {
			return errors.New("storage.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("storage.driver: unknown driver %q", c.Storage.Driver)
	}
	if c.Limits.MaxVolume <= 0 {
		return errors.New("limits.max_volume must be positive")
	}
	if c.Limits.QueryTimeout <= 0 {
		return errors.New("limits.query_timeout must be positive")
	}
	return nil
}

// SlogLevel maps Log.Level onto slog. Unknown levels fall back to Info.
func (l Log) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds a slog.Logger writing to w in the configured format.
// verbose forces debug level.
func (l Log) NewLogger(w io.Writer, verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: l.SlogLevel()}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
