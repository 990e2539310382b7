// Package config loads the YAML configuration shared by the CLI and the HTTP service.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	automaton "github.com/geange/automata"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = ".automata.yaml"

const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Store       StoreConfig       `yaml:"store"`
	Server      ServerConfig      `yaml:"server"`
	Turing      TuringConfig      `yaml:"turing"`
	Equivalence EquivalenceConfig `yaml:"equivalence"`
	Determinize DeterminizeConfig `yaml:"determinize"`
}

// StoreConfig selects and configures the automaton log backend.
type StoreConfig struct {
	Backend string      `yaml:"backend"`
	Path    string      `yaml:"path"`
	Redis   RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type TuringConfig struct {
	StepLimit int `yaml:"step_limit"`
}

// EquivalenceConfig holds the sampling defaults and the largest values a server request may
// ask for.
type EquivalenceConfig struct {
	Samples     int `yaml:"samples"`
	MaxLength   int `yaml:"max_length"`
	SampleLimit int `yaml:"sample_limit"`
	LengthLimit int `yaml:"length_limit"`
}

type DeterminizeConfig struct {
	// WorkLimit bounds the subsets explored by one subset construction.
	WorkLimit int `yaml:"work_limit"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Store: StoreConfig{
			Backend: BackendFile,
			Path:    "automata.json",
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "automata:log:",
			},
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Turing: TuringConfig{
			StepLimit: 100000,
		},
		Equivalence: EquivalenceConfig{
			Samples:     automaton.DefaultSampleSize,
			MaxLength:   automaton.DefaultMaxLength,
			SampleLimit: 1000,
			LengthLimit: 64,
		},
		Determinize: DeterminizeConfig{
			WorkLimit: 10000,
		},
	}
}

// Load reads the file at path on top of the defaults. Keys absent from the file keep their
// default value. A missing file is reported with an error wrapping fs.ErrNotExist.
func Load(path string) (Config, error) {
	config := Default()
	if path == "" {
		path = DefaultPath
	}

	f, err := os.Open(path)
	if err != nil {
		return config, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return config, fmt.Errorf("parse %s: %w", path, err)
	}

	return config, config.Validate()
}

// Write stores config as YAML at path, replacing any existing file.
func Write(path string, config Config) error {
	if path == "" {
		path = DefaultPath
	}

	d, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(d)
	return err
}

// Validate reports the first unusable setting.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case BackendFile:
		if c.Store.Path == "" {
			return fmt.Errorf("%w: store.path is required for the file backend", ErrInvalidConfig)
		}
	case BackendRedis:
		if c.Store.Redis.Addr == "" {
			return fmt.Errorf("%w: store.redis.addr is required for the redis backend", ErrInvalidConfig)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("%w: unknown store backend %q", ErrInvalidConfig, c.Store.Backend)
	}
	if c.Turing.StepLimit <= 0 {
		return fmt.Errorf("%w: turing.step_limit must be positive", ErrInvalidConfig)
	}
	if c.Equivalence.Samples <= 0 || c.Equivalence.MaxLength <= 0 {
		return fmt.Errorf("%w: equivalence.samples and equivalence.max_length must be positive", ErrInvalidConfig)
	}
	if c.Equivalence.SampleLimit < c.Equivalence.Samples || c.Equivalence.SampleLimit > automaton.MaxSampleSize {
		return fmt.Errorf("%w: equivalence.sample_limit must be in [samples, %d]", ErrInvalidConfig, automaton.MaxSampleSize)
	}
	if c.Equivalence.LengthLimit < c.Equivalence.MaxLength || c.Equivalence.LengthLimit > automaton.MaxWordLength {
		return fmt.Errorf("%w: equivalence.length_limit must be in [max_length, %d]", ErrInvalidConfig, automaton.MaxWordLength)
	}
	if c.Determinize.WorkLimit <= 0 {
		return fmt.Errorf("%w: determinize.work_limit must be positive", ErrInvalidConfig)
	}
	return nil
}
