package elastic

import (
	"fmt"
)

// ConfigError reports an invalid cluster endpoint or a client construction
// failure. It is fatal: no export work starts once configuration has failed.
type ConfigError struct {
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid configuration: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid configuration: %s", e.Reason)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// TransportError reports a network or HTTP-level failure issuing a request.
// StatusCode is zero when the request never produced a response. A scroll
// cursor that expired on the engine side surfaces here as a non-2xx status.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s request failed with status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s request failed: %v", e.Op, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProtocolError reports a response envelope that does not match the engine's
// wire contract: a missing or malformed documents array or continuation
// cursor. The owning session terminates without issuing further requests.
type ProtocolError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	return fmt.Sprintf("malformed response: %s: %s", e.Field, e.Reason)
}
