package automap

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/viant/xreflect"

	"mapper-generator/internal/access"
	"mapper-generator/internal/common"
	"mapper-generator/internal/mapping"
	"mapper-generator/primitive"
)

// Option configures a Registry. Options are applied in order, so defaults
// of a constructor must follow the constructor itself.
type Option func(*Registry) error

// WithConstructor registers fn as the constructor of the struct it returns.
// params name the parameters of fn in order; they are matched against the
// target property names.
func WithConstructor(fn any, params ...string) Option {
	return func(r *Registry) error {
		return r.provider.RegisterConstructor(fn, params...)
	}
}

// WithConstructorDefault sets the value of a constructor parameter used when
// neither the source nor the call supplies one.
func WithConstructorDefault(target reflect.Type, param string, value any) Option {
	return func(r *Registry) error {
		return r.provider.RegisterConstructorDefault(target, param, value)
	}
}

// WithReadOnly marks types that must be built through their constructor and
// are never populated in place.
func WithReadOnly(types ...reflect.Type) Option {
	return func(r *Registry) error {
		for _, t := range types {
			r.provider.RegisterReadOnly(t)
		}

		return nil
	}
}

// WithImplementations declares the concrete types a value of iface may hold.
func WithImplementations(iface reflect.Type, impls ...reflect.Type) Option {
	return func(r *Registry) error {
		return r.provider.RegisterImplementations(iface, impls...)
	}
}

// WithCaster registers a conversion function used whenever a source property
// of its input type maps to a target property of its output type. fn has one
// of the forms func(S) T, func(S) (T, error), func(S) (T, bool) or
// func(S) (T, bool, error); false skips the property.
func WithCaster(fn any) Option {
	return func(r *Registry) error {
		return r.casters.Register(fn)
	}
}

// WithTypes registers types that mapping configuration may refer to by
// "alias.Name", such as the concrete targets of a discriminator.
func WithTypes(types ...reflect.Type) Option {
	return func(r *Registry) error {
		for _, t := range types {
			for t.Kind() == reflect.Pointer {
				t = t.Elem()
			}

			if t.Name() == "" {
				return fmt.Errorf("cannot register unnamed type %s", t)
			}

			err := r.types.Register(t.Name(),
				xreflect.WithPackage(common.PkgAlias(t.PkgPath())),
				xreflect.WithReflectType(t),
			)
			if err != nil {
				return fmt.Errorf("register %s: %w", common.TypeName(t), err)
			}
		}

		return nil
	}
}

// WithDiscriminator maps target, usually an interface, to the concrete type
// named by the value of property in the source. Type names are resolved
// among the types given to WithTypes.
func WithDiscriminator(target reflect.Type, property string, types map[string]string) Option {
	return func(r *Registry) error {
		if property == "" {
			return fmt.Errorf("discriminator of %s: property is required", common.TypeName(target))
		}

		r.mappings.Discriminators = append(r.mappings.Discriminators, mapping.Discriminator{
			Target:   common.TypeName(target),
			Property: property,
			Types:    types,
		})

		return nil
	}
}

// WithMappingFile loads property overrides and discriminators from a YAML file.
func WithMappingFile(path string) Option {
	return func(r *Registry) error {
		mf, err := mapping.LoadFile(path)
		if err != nil {
			return err
		}

		return r.addMappings(mf)
	}
}

// WithMappingYAML is WithMappingFile for an in-memory document.
func WithMappingYAML(data []byte) Option {
	return func(r *Registry) error {
		mf, err := mapping.Parse(data)
		if err != nil {
			return err
		}

		return r.addMappings(mf)
	}
}

// WithExtractor reads property of source values through fn instead of a field.
func WithExtractor(source reflect.Type, property string, fn func(src any) (any, error)) Option {
	return func(r *Registry) error {
		r.hooks.extractors[hookKey{base(source), property}] = access.ExtractFunc(fn)
		return nil
	}
}

// WithHydrator writes property of target values through fn instead of a field.
// dst is the *T being built.
func WithHydrator(target reflect.Type, property string, fn func(dst any, v any) error) Option {
	return func(r *Registry) error {
		r.hooks.hydrators[hookKey{base(target), property}] = access.HydrateFunc(fn)
		return nil
	}
}

// WithPrototype makes new instances of the type of proto start as a copy of
// proto instead of the zero value.
func WithPrototype(proto any) Option {
	return func(r *Registry) error {
		v := reflect.ValueOf(proto)
		if !v.IsValid() || (v.Kind() == reflect.Pointer && v.IsNil()) {
			return fmt.Errorf("prototype %T: %w", proto, ErrInvalidTarget)
		}

		if v.Kind() == reflect.Pointer {
			v = v.Elem()
		}

		r.prototypes[v.Type()] = v

		return nil
	}
}

// WithAllowUnexported lets mappers read and write unexported fields directly.
func WithAllowUnexported() Option {
	return func(r *Registry) error {
		r.config.AllowUnexported = true
		return nil
	}
}

// WithStrict fails the compilation of a pair when a required target property
// has no source.
func WithStrict() Option {
	return func(r *Registry) error {
		r.config.Strict = true
		return nil
	}
}

// WithCategories restricts the scalar conversions mappers may apply. The
// default is primitive.CategoryAll, which includes CategoryUnsafeNumber:
// 37.9 maps to an int as 37 and 300 maps to a uint8 as 44. Pass
// primitive.CategoryLossless to leave such pairs without a transformer.
func WithCategories(categories primitive.CategoryEnum) Option {
	return func(r *Registry) error {
		r.categories = categories
		return nil
	}
}

// WithDateTimeFormat sets the layout used between time.Time and strings when
// neither the property nor the call configures one.
func WithDateTimeFormat(layout string) Option {
	return func(r *Registry) error {
		r.dateFormat = layout
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) error {
		r.logger = logger
		return nil
	}
}
