package provider

import (
	"errors"
	"fmt"
)

// Common errors for provider operations.
var (
	// ErrZoneNotFound indicates no zone (or more than one zone, which the
	// provider contract forbids) matched the apex domain.
	ErrZoneNotFound = errors.New("zone not found")

	// ErrRecordNotFound indicates a record was not found.
	ErrRecordNotFound = errors.New("record not found")

	// ErrRecordAmbiguous indicates more than one record matched a
	// (zone, name, type) that should identify at most one. Reconciliation
	// must stop rather than pick one.
	ErrRecordAmbiguous = errors.New("ambiguous record state")

	// ErrRecordExists indicates a record already exists with the same name
	// and type.
	ErrRecordExists = errors.New("record already exists")

	// ErrUnauthorized indicates authentication failed.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnavailable indicates the provider API is unreachable or failing
	// (timeouts, 5xx, rate limiting).
	ErrUnavailable = errors.New("provider unavailable")

	// ErrMalformedResponse indicates the provider returned a body that could
	// not be decoded.
	ErrMalformedResponse = errors.New("malformed provider response")
)

// ConfigError represents a configuration error.
type ConfigError struct {
	Field   string
	Value   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("configuration error: %s=%q: %s", e.Field, e.Value, e.Message)
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Message)
}

// ErrConfigMissing creates an error for a missing required configuration field.
func ErrConfigMissing(field string) error {
	return &ConfigError{
		Field:   field,
		Message: "required but not set",
	}
}

// ErrConfigInvalid creates an error for an invalid configuration value.
func ErrConfigInvalid(field, value, message string) error {
	return &ConfigError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ProviderError wraps an error with provider context: which provider, during
// which operation.
type ProviderError struct {
	Provider  string
	Operation string
	Err       error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %s: %v", e.Provider, e.Operation, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// WrapError wraps an error with provider context.
func WrapError(provider, operation string, err error) error {
	if err == nil {
		return nil
	}
	return &ProviderError{
		Provider:  provider,
		Operation: operation,
		Err:       err,
	}
}

// IsZoneNotFound returns true if the error indicates no zone matched.
func IsZoneNotFound(err error) bool {
	return errors.Is(err, ErrZoneNotFound)
}

// IsRecordNotFound returns true if the error indicates a record was not found.
func IsRecordNotFound(err error) bool {
	return errors.Is(err, ErrRecordNotFound)
}

// IsRecordAmbiguous returns true if the error indicates multiple records
// matched where at most one is allowed.
func IsRecordAmbiguous(err error) bool {
	return errors.Is(err, ErrRecordAmbiguous)
}

// IsUnauthorized returns true if the error indicates authentication failed.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsUnavailable returns true if the error indicates the provider is unreachable.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
