// Package config loads btrfs-usage settings from embedded defaults, an
// optional TOML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

const (
	// DefaultPath is read when no explicit configuration file is given.
	DefaultPath = "/etc/btrfs-usage.toml"
	// PathEnv names the environment variable holding a configuration path.
	PathEnv = "BTRFS_USAGE_CONFIG"

	unitsHuman = "human"
	unitsBytes = "bytes"

	maxBatchSize = 1 << 16
)

var defaultConfig = `
[output]
units = "human"
tabular = false

[scan]
batch_size = 4096

[log]
level = "warn"
`

var (
	errInvalidUnits     = errors.New(`units must be "human" or "bytes"`)
	errInvalidBatchSize = fmt.Errorf("batch_size must be between 1 and %d", maxBatchSize)
)

type OutputConfiguration struct {
	Units   string `toml:"units"`
	Tabular bool   `toml:"tabular"`
}

type ScanConfiguration struct {
	BatchSize int `toml:"batch_size"`
}

type LogConfiguration struct {
	Level string `toml:"level"`
}

// Configuration holds all runtime settings.
type Configuration struct {
	Output OutputConfiguration `toml:"output"`
	Scan   ScanConfiguration   `toml:"scan"`
	Log    LogConfiguration    `toml:"log"`
}

// Load returns the defaults overlaid with the file at path and the
// environment. An empty path falls back to $BTRFS_USAGE_CONFIG, then to
// DefaultPath; a missing default file is not an error, a missing explicit
// one is.
func Load(path string) (*Configuration, error) {
	c := &Configuration{}
	c.LoadDefaults()

	explicit := path != ""
	if !explicit {
		path = os.Getenv(PathEnv)
		explicit = path != ""
	}
	if !explicit {
		path = DefaultPath
	}

	if err := c.LoadFromFile(path, explicit); err != nil {
		return nil, err
	}

	c.LoadFromEnvironment()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadDefaults resets c to the embedded defaults.
func (c *Configuration) LoadDefaults() {
	// Embedded defaults always decode
	if _, err := toml.Decode(defaultConfig, c); err != nil {
		panic(err.Error())
	}
}

// LoadFromFile overlays the TOML file at path. A missing file is only an
// error when required is set.
func (c *Configuration) LoadFromFile(path string, required bool) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !required {
			return nil
		}
		return err
	}

	if _, err := toml.DecodeFile(path, c); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// LoadFromEnvironment applies BTRFS_USAGE_UNITS, BTRFS_USAGE_TABULAR and
// BTRFS_USAGE_LOG_LEVEL when set.
func (c *Configuration) LoadFromEnvironment() {
	if units := os.Getenv("BTRFS_USAGE_UNITS"); units != "" {
		c.Output.Units = units
	}

	if tabular := os.Getenv("BTRFS_USAGE_TABULAR"); tabular != "" {
		if v, err := strconv.ParseBool(tabular); err == nil {
			c.Output.Tabular = v
		}
	}

	if level := os.Getenv("BTRFS_USAGE_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
}

// Validate checks the settings for values no report can use.
func (c *Configuration) Validate() error {
	if c.Output.Units != unitsHuman && c.Output.Units != unitsBytes {
		return errInvalidUnits
	}
	if c.Scan.BatchSize < 1 || c.Scan.BatchSize > maxBatchSize {
		return errInvalidBatchSize
	}
	return nil
}

// HumanUnits reports whether sizes print human-scaled.
func (c *Configuration) HumanUnits() bool {
	return c.Output.Units == unitsHuman
}
