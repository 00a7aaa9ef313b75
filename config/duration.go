package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration read from YAML as a string ("30s") or as a
// number of seconds.
type Duration time.Duration

// UnmarshalYAML implements the yaml.Unmarshaler interface for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	switch value.Tag {
	case "!!int", "!!float":
		var secs float64
		if err := value.Decode(&secs); err != nil {
			return err
		}
		*d = Duration(time.Duration(secs * float64(time.Second)))
	case "!!str":
		parsed, err := time.ParseDuration(value.Value)
		if err != nil {
			return fmt.Errorf("cannot unmarshal %q into Duration: %w", value.Value, err)
		}
		*d = Duration(parsed)
	default:
		return fmt.Errorf("cannot unmarshal %s into Duration", value.Tag)
	}
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}
