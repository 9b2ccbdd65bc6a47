package diagnostic

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration              = errors.New("mapping configuration error")
	ErrReadOnlyTarget             = errors.New("read-only target cannot be populated")
	ErrCircularReference          = errors.New("circular reference detected")
	ErrDiscriminator              = errors.New("unmatched discriminator value")
	ErrMissingConstructorArgument = errors.New("missing constructor argument")
	ErrSourceType                 = errors.New("source value does not match the mapper")
)

// ConfigurationError reports a (source, target) pair that cannot be compiled.
// It is raised at resolution time and nothing is cached for the pair.
type ConfigurationError struct {
	Source string
	Target string
	Reason string
	Cause  error
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("cannot map %s to %s: %s", e.Source, e.Target, e.Reason)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}

	return msg
}

func (e *ConfigurationError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrConfiguration}
	}

	return []error{ErrConfiguration, e.Cause}
}

// ReadOnlyTargetError is returned before any write when a read-only target
// type is given as the target to populate.
type ReadOnlyTargetError struct {
	Target string
}

func (e *ReadOnlyTargetError) Error() string {
	return fmt.Sprintf("target %s is read-only and cannot be populated; "+
		"construct it through the mapper or allow read-only targets to populate", e.Target)
}

func (e *ReadOnlyTargetError) Unwrap() error {
	return ErrReadOnlyTarget
}

// CircularReferenceError is the default outcome once an object has been
// revisited more often than the configured limit.
type CircularReferenceError struct {
	Source string
	Target string
	Limit  int
}

func (e *CircularReferenceError) Error() string {
	if e.Limit <= 0 {
		return fmt.Sprintf("circular reference detected while mapping %s to %s: object is still being constructed",
			e.Source, e.Target)
	}

	return fmt.Sprintf("circular reference detected while mapping %s to %s: limit of %d reached",
		e.Source, e.Target, e.Limit)
}

func (e *CircularReferenceError) Unwrap() error {
	return ErrCircularReference
}

// DiscriminatorError reports a discriminator value with no mapped type.
type DiscriminatorError struct {
	Target   string
	Property string
	Value    any
}

func (e *DiscriminatorError) Error() string {
	return fmt.Sprintf("discriminator %s=%v does not map to a concrete type of %s", e.Property, e.Value, e.Target)
}

func (e *DiscriminatorError) Unwrap() error {
	return ErrDiscriminator
}

// MissingConstructorArgumentError is returned when a required constructor
// parameter has no source value, no override and no default.
type MissingConstructorArgumentError struct {
	Target    string
	Parameter string
}

func (e *MissingConstructorArgumentError) Error() string {
	return fmt.Sprintf("cannot construct %s: no value for constructor parameter %q", e.Target, e.Parameter)
}

func (e *MissingConstructorArgumentError) Unwrap() error {
	return ErrMissingConstructorArgument
}

// SourceTypeError is returned when a mapper is handed a value of a type other
// than the source type it was compiled for.
type SourceTypeError struct {
	Mapper string
	Want   string
	Got    string
}

func (e *SourceTypeError) Error() string {
	return fmt.Sprintf("mapper %s expects %s, got %s", e.Mapper, e.Want, e.Got)
}

func (e *SourceTypeError) Unwrap() error {
	return ErrSourceType
}
