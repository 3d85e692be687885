// Package config reads the cgmap settings file.
//
// The file is TOML. Every section is optional; missing keys keep their
// defaults and unknown keys are reported, not rejected:
//
//	[render]
//	quality = 7
//	convert_inner = true
//
//	[output]
//	width = 1200
//	height = 1200
//	formats = ["svg", "png"]
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//
// A MongoDB deployment works the same way with backend = "mongo",
// mongo_url and an optional mongo_database.
//
//	[server]
//	addr = ":8080"
//	session_ttl = "1h"
//
// Command-line flags override file values.
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/cgmap/pkg/errors"
	"github.com/matzehuels/cgmap/pkg/pipeline"
	"github.com/matzehuels/cgmap/pkg/render"
	"github.com/matzehuels/cgmap/pkg/session"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// FileName is the settings file looked up in the user config directory.
const FileName = "config.toml"

// File is the decoded settings file.
type File struct {
	Render render.Config `toml:"render"`
	Output Output        `toml:"output"`
	Cache  Cache         `toml:"cache"`
	Server Server        `toml:"server"`
}

// Output holds canvas and format defaults.
type Output struct {
	Width   float64  `toml:"width"`
	Height  float64  `toml:"height"`
	Formats []string `toml:"formats"`
	// Scale is the PNG pixel density.
	Scale float64 `toml:"scale"`
}

// Cache selects the artifact cache.
type Cache struct {
	Backend  string   `toml:"backend"`
	Dir      string   `toml:"dir"`
	RedisURL string   `toml:"redis_url"`
	MongoURL string   `toml:"mongo_url"`
	MongoDB  string   `toml:"mongo_database"`
	TTL      Duration `toml:"ttl"`
}

// Server configures cgmap serve.
type Server struct {
	Addr       string   `toml:"addr"`
	SessionTTL Duration `toml:"session_ttl"`
}

// Duration decodes TOML strings such as "90m".
type Duration struct{ time.Duration }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in settings.
func Default() File {
	return File{
		Render: render.DefaultConfig(),
		Output: Output{
			Width:   pipeline.DefaultWidth,
			Height:  pipeline.DefaultHeight,
			Formats: []string{pipeline.FormatSVG},
		},
		Cache:  Cache{Backend: BackendFile},
		Server: Server{Addr: ":8080", SessionTTL: Duration{session.DefaultTTL}},
	}
}

// DefaultPath is the settings file in the user config directory, or ""
// when that directory is unknown.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "cgmap", FileName)
}

// Load decodes the file at path over the defaults. A missing file at the
// default path is not an error; a missing explicit path is.
func Load(path string, logger *log.Logger) (File, error) {
	f := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
		if path == "" {
			return f, nil
		}
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return f, nil
		}
		return f, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
	}
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return f, errors.Wrap(errors.ErrCodeInvalidFormat, err, "config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 && logger != nil {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		logger.Warn("unknown config keys", "file", path, "keys", strings.Join(keys, ", "))
	}
	if err := f.Validate(); err != nil {
		return f, errors.Wrap(errors.ErrCodeInvalidOptions, err, "config %s", path)
	}
	return f, nil
}

// Validate checks values that have no sensible fallback.
func (f File) Validate() error {
	if err := f.Render.Validate(); err != nil {
		return err
	}
	switch f.Cache.Backend {
	case "", BackendFile, BackendRedis, BackendMongo, BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidOptions, "cache backend %q (must be one of: file, redis, mongo, none)", f.Cache.Backend)
	}
	if f.Cache.Backend == BackendMongo && f.Cache.MongoURL == "" {
		return errors.New(errors.ErrCodeInvalidOptions, "cache backend mongo needs mongo_url")
	}
	if f.Cache.Backend == BackendRedis && f.Cache.RedisURL == "" {
		return errors.New(errors.ErrCodeInvalidOptions, "cache backend redis needs redis_url")
	}
	if f.Output.Width < 0 || f.Output.Height < 0 || f.Output.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "output sizes cannot be negative")
	}
	return pipeline.ValidateFormats(f.Output.Formats)
}

// Encode writes f as TOML.
func (f File) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write saves f to path, creating parent directories.
func (f File) Write(path string) error {
	data, err := f.Encode()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// PipelineOptions returns run options seeded from the file.
func (f File) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Width:   f.Output.Width,
		Height:  f.Output.Height,
		Formats: append([]string(nil), f.Output.Formats...),
		Scale:   f.Output.Scale,
		Render:  f.Render,
	}
}
