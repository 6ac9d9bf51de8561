package fog

import (
	"errors"
	"fmt"
)

// ErrConfiguration is matched by every configuration error reported by the fog package.
var ErrConfiguration = errors.New("invalid fog configuration")

// ConfigError describes a fog setting that cannot be rendered.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s = %v: %s", ErrConfiguration, e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfiguration
}
