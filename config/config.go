// Package config handles classguard.toml project configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/dhamidi/classguard/bytecode"
)

// FileName is the configuration file looked up by FindAndLoad.
const FileName = "classguard.toml"

// Config represents a classguard.toml file.
type Config struct {
	Target Target `toml:"target"`
	Strip  Strip  `toml:"strip"`
	Output Output `toml:"output"`

	// Dir is the directory containing the classguard.toml file (set at load
	// time). Empty for the defaults.
	Dir string `toml:"-"`
}

// Target names the VM whose internal opcodes appear in the classes.
type Target struct {
	VM string `toml:"vm"`
}

// Strip configures the stripper.
type Strip struct {
	Enabled bool `toml:"enabled"`
}

// Output configures where stripped classes are written.
type Output struct {
	// Suffix is appended to the input path when no output path is given.
	Suffix string `toml:"suffix"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		Target: Target{VM: bytecode.DefaultProfile.Name},
		Strip:  Strip{Enabled: true},
		Output: Output{Suffix: ".stripped"},
	}
}

// Load parses a classguard.toml file from the given directory. Keys the
// file leaves out keep their default values.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := Default()
	if _, err := toml.Decode(string(data), c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if _, err := bytecode.LookupProfile(c.Target.VM); err != nil {
		return nil, fmt.Errorf("%s: target.vm: %w", path, err)
	}

	c.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	return c, nil
}

// FindAndLoad walks up from startDir to find a classguard.toml file and
// loads it. Without one it returns Default().
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, FileName)); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}

// Profile returns the VM profile named by target.vm.
func (c *Config) Profile() bytecode.Profile {
	p, err := bytecode.LookupProfile(c.Target.VM)
	if err != nil {
		return bytecode.DefaultProfile
	}
	return p
}

// OutputPath is where the stripped form of input goes.
func (c *Config) OutputPath(input string) string {
	return input + c.Output.Suffix
}
