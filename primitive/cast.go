package primitive

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// CastFunc converts in into a value of type out. The kinds of in and out are
// fixed when the function is looked up.
type CastFunc func(in reflect.Value, out reflect.Type) (reflect.Value, error)

var ErrCast = errors.New("primitive cast failed")

// Lookup returns the cast for the (from, to) pair if the allowed categories
// permit it. Same-kind casts are always available.
func Lookup(from, to KindEnum, allowed CategoryEnum) (CastFunc, bool) {
	pair := ConversionPair{from, to}
	if from == 0 || to == 0 || !IsAllowed(pair, allowed) {
		return nil, false
	}

	if from == to {
		return convertCast, true
	}

	switch CategoryOf(pair) {
	case CategorySafeNumber, CategoryUnsafeNumber, CategoryNanoseconds:
		return convertCast, true
	case CategoryTextNumber:
		if from == KindString {
			return parseNumberCast(to), true
		}

		return formatNumberCast(from), true
	case CategoryNumericBool:
		if from == KindBool {
			return boolToNumberCast, true
		}

		return numberToBoolCast, true
	case CategoryTextualBool:
		if from == KindString {
			return parseBoolCast, true
		}

		return formatBoolCast, true
	case CategoryDatetime:
		if from == KindString {
			return parseTimeCast(time.RFC3339Nano), true
		}

		return FormatTimeCast(time.RFC3339Nano), true
	case CategoryTimestamp:
		if from == KindTime {
			return timeToUnixCast, true
		}

		return unixToTimeCast, true
	case CategoryDuration:
		if from == KindString {
			return parseDurationCast, true
		}

		return formatDurationCast, true
	case CategorySeconds:
		if from == KindDuration {
			return durationToSecondsCast, true
		}

		return secondsToDurationCast, true
	default:
		return nil, false
	}
}

// FormatTimeCast renders time.Time values with layout.
func FormatTimeCast(layout string) CastFunc {
	return func(in reflect.Value, out reflect.Type) (reflect.Value, error) {
		t, ok := in.Interface().(time.Time)
		if !ok {
			return reflect.Value{}, castError(in, out, nil)
		}

		return reflect.ValueOf(t.Format(layout)).Convert(out), nil
	}
}

func parseTimeCast(layout string) CastFunc {
	return func(in reflect.Value, out reflect.Type) (reflect.Value, error) {
		t, err := time.Parse(layout, in.String())
		if err != nil {
			return reflect.Value{}, castError(in, out, err)
		}

		return reflect.ValueOf(t), nil
	}
}

func convertCast(in reflect.Value, out reflect.Type) (reflect.Value, error) {
	if !in.Type().ConvertibleTo(out) {
		return reflect.Value{}, castError(in, out, nil)
	}

	return in.Convert(out), nil
}

func parseNumberCast(to KindEnum) CastFunc {
	return func(in reflect.Value, out reflect.Type) (reflect.Value, error) {
		text := strings.TrimSpace(in.String())

		var (
			v   any
			err error
		)

		switch {
		case to.IsSigned():
			v, err = strconv.ParseInt(text, 10, to.Bits())
		case to.IsUnsigned():
			v, err = strconv.ParseUint(text, 10, to.Bits())
		default:
			v, err = strconv.ParseFloat(text, to.Bits())
		}

		if err != nil {
			return reflect.Value{}, castError(in, out, err)
		}

		return reflect.ValueOf(v).Convert(out), nil
	}
}

func formatNumberCast(from KindEnum) CastFunc {
	return func(in reflect.Value, out reflect.Type) (reflect.Value, error) {
		var text string

		switch {
		case from.IsSigned():
			text = strconv.FormatInt(in.Int(), 10)
		case from.IsUnsigned():
			text = strconv.FormatUint(in.Uint(), 10)
		default:
			text = strconv.FormatFloat(in.Float(), 'f', -1, from.Bits())
		}

		return reflect.ValueOf(text).Convert(out), nil
	}
}

func boolToNumberCast(in reflect.Value, out reflect.Type) (reflect.Value, error) {
	var n int64
	if in.Bool() {
		n = 1
	}

	return reflect.ValueOf(n).Convert(out), nil
}

func numberToBoolCast(in reflect.Value, out reflect.Type) (reflect.Value, error) {
	var b bool
	if in.CanInt() {
		b = in.Int() != 0
	} else {
		b = in.Uint() != 0
	}

	return reflect.ValueOf(b).Convert(out), nil
}

func parseBoolCast(in reflect.Value, out reflect.Type) (reflect.Value, error) {
	var b bool

	switch strings.ToLower(strings.TrimSpace(in.String())) {
	case "yes", "y", "on", "true", "1":
		b = true
	case "no", "n", "off", "false", "0", "":
		b = false
	default:
		return reflect.Value{}, castError(in, out, nil)
	}

	return reflect.ValueOf(b).Convert(out), nil
}

func formatBoolCast(in reflect.Value, out reflect.Type) (reflect.Value, error) {
	return reflect.ValueOf(strconv.FormatBool(in.Bool())).Convert(out), nil
}

func timeToUnixCast(in reflect.Value, out reflect.Type) (reflect.Value, error) {
	t, ok := in.Interface().(time.Time)
	if !ok {
		return reflect.Value{}, castError(in, out, nil)
	}

	return reflect.ValueOf(t.Unix()).Convert(out), nil
}

func unixToTimeCast(in reflect.Value, out reflect.Type) (reflect.Value, error) {
	var seconds int64
	if in.CanInt() {
		seconds = in.Int()
	} else {
		seconds = int64(in.Uint())
	}

	return reflect.ValueOf(time.Unix(seconds, 0).UTC()), nil
}

func parseDurationCast(in reflect.Value, out reflect.Type) (reflect.Value, error) {
	d, err := time.ParseDuration(strings.TrimSpace(in.String()))
	if err != nil {
		return reflect.Value{}, castError(in, out, err)
	}

	return reflect.ValueOf(d), nil
}

func formatDurationCast(in reflect.Value, out reflect.Type) (reflect.Value, error) {
	return reflect.ValueOf(time.Duration(in.Int()).String()).Convert(out), nil
}

func durationToSecondsCast(in reflect.Value, out reflect.Type) (reflect.Value, error) {
	return reflect.ValueOf(time.Duration(in.Int()).Seconds()).Convert(out), nil
}

func secondsToDurationCast(in reflect.Value, out reflect.Type) (reflect.Value, error) {
	return reflect.ValueOf(time.Duration(in.Float() * float64(time.Second))), nil
}

func castError(in reflect.Value, out reflect.Type, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: cannot convert %v (%s) to %s", ErrCast, in.Interface(), in.Type(), out)
	}

	return fmt.Errorf("%w: cannot convert %v (%s) to %s: %w", ErrCast, in.Interface(), in.Type(), out, cause)
}
