package automap

import (
	"errors"

	"mapper-generator/internal/diagnostic"
	"mapper-generator/internal/transform"
)

// Errors returned by the registry and by compiled mappers. Use errors.Is to
// test for them; the concrete errors carry the type names involved.
var (
	ErrConfiguration              = diagnostic.ErrConfiguration
	ErrReadOnlyTarget             = diagnostic.ErrReadOnlyTarget
	ErrCircularReference          = diagnostic.ErrCircularReference
	ErrDiscriminator              = diagnostic.ErrDiscriminator
	ErrMissingConstructorArgument = diagnostic.ErrMissingConstructorArgument
	ErrSourceType                 = diagnostic.ErrSourceType
	ErrNoTransformer              = transform.ErrNoTransformer

	ErrInvalidTarget = errors.New("target must be a non-nil pointer or map")
)

// Typed errors, for errors.As.
type (
	ConfigurationError              = diagnostic.ConfigurationError
	ReadOnlyTargetError             = diagnostic.ReadOnlyTargetError
	CircularReferenceError          = diagnostic.CircularReferenceError
	DiscriminatorError              = diagnostic.DiscriminatorError
	MissingConstructorArgumentError = diagnostic.MissingConstructorArgumentError
	SourceTypeError                 = diagnostic.SourceTypeError
)
