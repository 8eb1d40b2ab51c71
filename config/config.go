// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package config loads and validates the protocol configuration.
package config

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/restake/restake"
	"github.com/vechain/restake/slasher"
)

// Config is the yaml-encoded protocol configuration. Epoch schedule and the
// slash lifecycle windows are immutable once a deployment is live, so they
// are only ever read from here at startup.
type Config struct {
	EpochInit     uint64 `yaml:"epochInit"`
	EpochDuration uint64 `yaml:"epochDuration"`

	VetoDuration           uint64 `yaml:"vetoDuration"`
	ExecuteDuration        uint64 `yaml:"executeDuration"`
	ResolverSetEpochsDelay uint64 `yaml:"resolverSetEpochsDelay"`

	// LimitDelayEpochs is the delay applied to delegation limit decreases.
	LimitDelayEpochs uint64 `yaml:"limitDelayEpochs"`

	Burner string `yaml:"burner"`
}

// Validate checks the configuration against the same constraints the
// components enforce at construction, so a bad file fails fast.
func (c *Config) Validate() error {
	if c.EpochDuration == 0 {
		return errors.New("epochDuration must be nonzero")
	}
	if c.ExecuteDuration == 0 {
		return errors.New("executeDuration must be nonzero")
	}
	if c.VetoDuration+c.ExecuteDuration > c.EpochDuration {
		return errors.New("vetoDuration plus executeDuration exceeds epochDuration")
	}
	if c.ResolverSetEpochsDelay < slasher.MinResolverSetEpochsDelay {
		return errors.Errorf("resolverSetEpochsDelay must be at least %d", slasher.MinResolverSetEpochsDelay)
	}
	if _, err := restake.ParseAddress(c.Burner); err != nil {
		return errors.Wrap(err, "invalid burner address")
	}
	return nil
}

// BurnerAddress returns the parsed burn sink address.
// Validate must have passed.
func (c *Config) BurnerAddress() restake.Address {
	return restake.MustParseAddress(c.Burner)
}

// Load reads and validates a configuration.
func Load(r io.Reader) (*Config, error) {
	var c Config
	if err := yaml.NewDecoder(r).Decode(&c); err != nil {
		return nil, errors.Wrap(err, "failed to decode config")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadFile reads and validates a configuration file.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open config file")
	}
	defer f.Close()
	return Load(f)
}
