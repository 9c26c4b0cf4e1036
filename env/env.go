//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

// Package env implements global environment for the MPC system.
package env

import (
	"crypto/rand"
	"encoding/hex"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/markkurossi/rep3/compiler/local"
	"github.com/markkurossi/rep3/compiler/utils"
	"github.com/markkurossi/rep3/prg"
)

// Randomness source names.
const (
	RandomCounter  = "counter"
	RandomChaCha20 = "chacha20"
)

// Config defines the global system configuration for the MPC system.
// It configures system operation for all MPC modules. Config must not
// be modified after being passed to any MPC module.  It is safe for
// concurrent use by multiple modules as they do not modify it.
type Config struct {
	Rand io.Reader `yaml:"-"`

	// Protocol names the nonlinear protocol: generic or aby3.
	Protocol string `yaml:"protocol"`

	// Randomness names the correlated randomness source.
	Randomness string `yaml:"randomness"`

	// Key is the hex encoded ChaCha20 master key. A random key is
	// generated if the key is empty.
	Key string `yaml:"key"`

	FixedPoint uint8 `yaml:"fixed_point"`
	Verbose    bool  `yaml:"verbose"`
}

// NewConfig creates a configuration with the default values.
func NewConfig() *Config {
	params := utils.NewParams()
	return &Config{
		Protocol:   params.Protocol,
		Randomness: RandomCounter,
		FixedPoint: params.FixedPoint,
	}
}

// Load reads the YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	config, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return config, nil
}

// Parse parses the YAML configuration data. Missing values keep
// their defaults.
func Parse(data []byte) (*Config, error) {
	config := NewConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the configuration values.
func (config *Config) Validate() error {
	switch config.Protocol {
	case "generic", "aby3":
	default:
		return errors.Newf("unknown protocol %q", config.Protocol)
	}
	switch config.Randomness {
	case RandomCounter, RandomChaCha20:
	default:
		return errors.Newf("unknown randomness source %q", config.Randomness)
	}
	if config.FixedPoint >= 32 {
		return errors.Newf("fixed point %d out of range", config.FixedPoint)
	}
	if len(config.Key) > 0 {
		key, err := hex.DecodeString(config.Key)
		if err != nil {
			return errors.Wrap(err, "key")
		}
		if len(key) != prg.KeySize {
			return errors.Newf("key must be %d bytes, got %d",
				prg.KeySize, len(key))
		}
	}
	return nil
}

// GetRandom returns the source of entropy for input sharing and key
// generation.
func (config *Config) GetRandom() io.Reader {
	if config.Rand != nil {
		return config.Rand
	}
	return rand.Reader
}

// Params returns the compiler parameters of the configuration.
func (config *Config) Params() *utils.Params {
	params := utils.NewParams()
	params.Protocol = config.Protocol
	params.FixedPoint = config.FixedPoint
	params.Verbose = config.Verbose
	return params
}

// Source creates the correlated randomness source.
func (config *Config) Source() (local.Source, error) {
	switch config.Randomness {
	case RandomCounter:
		return prg.Counter{}, nil

	case RandomChaCha20:
		var key []byte
		var err error
		if len(config.Key) > 0 {
			key, err = hex.DecodeString(config.Key)
			if err != nil {
				return nil, errors.Wrap(err, "key")
			}
		} else {
			key = make([]byte, prg.KeySize)
			if _, err = io.ReadFull(config.GetRandom(), key); err != nil {
				return nil, err
			}
		}
		return prg.NewChaCha20(key)

	default:
		return nil, errors.Newf("unknown randomness source %q",
			config.Randomness)
	}
}
