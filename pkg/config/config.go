// Package config loads the run configuration from a YAML file.
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration parses yaml strings like "5m" or "90s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type Config struct {
	Destination DestinationConfig `yaml:"destination"`
	Sources     []SourceConfig    `yaml:"sources"`
	Schedule    string            `yaml:"schedule"`
	Parallel    int               `yaml:"parallel"`
	IndexPath   string            `yaml:"indexPath"`
}

type DestinationConfig struct {
	Root          string   `yaml:"root"`
	MaxArchives   int      `yaml:"maxArchives"`
	CreateTimeout Duration `yaml:"createTimeout"`
}

type SourceConfig struct {
	Path string `yaml:"path"`
}

func (c *Config) Validate() error {
	if c.Destination.Root == "" {
		return fmt.Errorf("destination.root must be set")
	}
	if c.Destination.MaxArchives < 1 {
		return fmt.Errorf("destination.maxArchives must be at least 1, got %d", c.Destination.MaxArchives)
	}
	if len(c.Sources) == 0 {
		return fmt.Errorf("at least one source must be configured")
	}
	for i, source := range c.Sources {
		if source.Path == "" {
			return fmt.Errorf("sources[%d].path must be set", i)
		}
	}
	return nil
}
