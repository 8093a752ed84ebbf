package settings

import "fmt"

type InvalidModeError struct {
	Mode Mode
}

func (e *InvalidModeError) Error() string {
	return fmt.Sprintf("unrecognized mode, '%s'", e.Mode)
}

// ConfigError reports a page embedded or file based configuration that could
// not be read as a structured object.
type ConfigError struct {
	Err    error
	Source string
}

func (e *ConfigError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("unable to parse configuration object from %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("unable to parse configuration object: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
