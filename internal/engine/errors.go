package engine

// ConfigError reports an invalid optimization configuration: an unknown
// method, missing constraints for the Lagrange method, or a missing or
// mis-sized initial point for the iterative methods. Configuration errors
// are surfaced to the caller immediately and never defaulted away.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return "invalid configuration: " + e.Reason }
