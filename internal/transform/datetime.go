package transform

import (
	"fmt"
	"reflect"
	"time"

	"mapper-generator/internal/analyze"
	"mapper-generator/primitive"
)

// DateTime parses or formats time.Time values. The layout is taken from
// the call context first, then the property, then the resolver, and
// defaults to RFC 3339.
type DateTime struct {
	parse  bool
	layout string
	target *analyze.TypeDescriptor
}

func (d *DateTime) Transform(in reflect.Value, s Scope) (reflect.Value, error) {
	in = unwrap(in)
	if !in.IsValid() {
		return reflect.Value{}, nil
	}

	layout := d.Layout(s)

	if d.parse {
		t, err := time.Parse(layout, in.String())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%w: parse %q with layout %q: %w", primitive.ErrCast, in.String(), layout, err)
		}

		return reflect.ValueOf(t).Convert(d.target.Type), nil
	}

	t, ok := in.Interface().(time.Time)
	if !ok {
		return reflect.Value{}, fmt.Errorf("%w: %s is not a time", primitive.ErrCast, in.Type())
	}

	return reflect.ValueOf(t.Format(layout)).Convert(d.target.Type), nil
}

// Layout returns the layout in effect for a call.
func (d *DateTime) Layout(s Scope) string {
	if s.Context != nil && s.Context.DateFormat() != "" {
		return s.Context.DateFormat()
	}

	if d.layout != "" {
		return d.layout
	}

	return time.RFC3339
}

func (d *DateTime) String() string {
	direction := "format"
	if d.parse {
		direction = "parse"
	}

	if d.layout == "" {
		return "datetime(" + direction + ")"
	}

	return "datetime(" + direction + " " + d.layout + ")"
}

type dateTimeFactory struct{}

func (dateTimeFactory) Priority() int { return PriorityDateTime }

func (dateTimeFactory) Create(r *Resolver, sources, targets []*analyze.TypeDescriptor, meta Meta) (Transformer, bool) {
	src, tgt, ok := single(sources, targets)
	if !ok || src.Nullable || tgt.Nullable || r.categories&primitive.CategoryDatetime == 0 {
		return nil, false
	}

	layout := meta.DateFormat
	if layout == "" {
		layout = r.dateFormat
	}

	switch {
	case src.Primitive == primitive.KindString && tgt.Primitive == primitive.KindTime:
		return &DateTime{parse: true, layout: layout, target: tgt}, true
	case src.Primitive == primitive.KindTime && tgt.Primitive == primitive.KindString:
		return &DateTime{layout: layout, target: tgt}, true
	default:
		return nil, false
	}
}
