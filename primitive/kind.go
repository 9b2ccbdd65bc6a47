package primitive

import (
	"reflect"
	"time"
)

//go:generate go tool stringer -type=KindEnum -output=kind_string.go

// KindEnum identifies the scalar kinds a mapper can cast between. The zero
// value is not a primitive.
type KindEnum int

const (
	_ KindEnum = iota

	KindInt
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindBool
	KindString
	KindTime
	KindDuration

	KindTotal = int(iota)
)

type traitSet uint8

const (
	signed traitSet = 1 << iota
	unsigned
	float
	platform // int and uint: 32 or 64 bits depending on GOARCH
)

type kindTraits struct {
	traits traitSet
	bits   int
	name   string // Go spelling, as reported by go/types
	rkind  reflect.Kind
}

var kinds = [KindTotal]kindTraits{
	KindInt:      {signed | platform, 32 << (^uint(0) >> 63), "int", reflect.Int},
	KindInt8:     {signed, 8, "int8", reflect.Int8},
	KindInt16:    {signed, 16, "int16", reflect.Int16},
	KindInt32:    {signed, 32, "int32", reflect.Int32},
	KindInt64:    {signed, 64, "int64", reflect.Int64},
	KindUint:     {unsigned | platform, 32 << (^uint(0) >> 63), "uint", reflect.Uint},
	KindUint8:    {unsigned, 8, "uint8", reflect.Uint8},
	KindUint16:   {unsigned, 16, "uint16", reflect.Uint16},
	KindUint32:   {unsigned, 32, "uint32", reflect.Uint32},
	KindUint64:   {unsigned, 64, "uint64", reflect.Uint64},
	KindFloat32:  {float, 32, "float32", reflect.Float32},
	KindFloat64:  {float, 64, "float64", reflect.Float64},
	KindBool:     {0, 0, "bool", reflect.Bool},
	KindString:   {0, 0, "string", reflect.String},
	KindTime:     {0, 0, "time.Time", reflect.Invalid},
	KindDuration: {0, 0, "time.Duration", reflect.Invalid},
}

var (
	byName = map[string]KindEnum{
		"byte": KindUint8,
		"rune": KindInt32,
	}
	byReflectKind = map[reflect.Kind]KindEnum{}
)

func init() {
	for k := KindInt; int(k) < KindTotal; k++ {
		byName[kinds[k].name] = k

		if kinds[k].rkind != reflect.Invalid {
			byReflectKind[kinds[k].rkind] = k
		}
	}
}

func (k KindEnum) has(t traitSet) bool {
	return k > 0 && int(k) < KindTotal && kinds[k].traits&t != 0
}

func (k KindEnum) IsNumber() bool   { return k.has(signed | unsigned | float) }
func (k KindEnum) IsInteger() bool  { return k.has(signed | unsigned) }
func (k KindEnum) IsFloat() bool    { return k.has(float) }
func (k KindEnum) IsSigned() bool   { return k.has(signed) }
func (k KindEnum) IsUnsigned() bool { return k.has(unsigned) }

// IsTemporal reports whether k is time.Time or time.Duration.
func (k KindEnum) IsTemporal() bool {
	return k == KindTime || k == KindDuration
}

// Bits returns the storage size of a number kind on the running platform.
func (k KindEnum) Bits() int {
	if !k.IsNumber() {
		panic("bits requested for a non-number kind: " + k.String())
	}

	return kinds[k].bits
}

// minBits is the narrowest size k can have on any platform.
func (k KindEnum) minBits() int {
	if k.has(platform) {
		return 32
	}

	return k.Bits()
}

// maxBits is the widest size k can have on any platform.
func (k KindEnum) maxBits() int {
	if k.has(platform) {
		return 64
	}

	return k.Bits()
}

// magnitude is the number of value bits of an integer kind.
func (k KindEnum) magnitude() int {
	if k.IsSigned() {
		return k.maxBits() - 1
	}

	return k.maxBits()
}

func (k KindEnum) mantissa() int {
	if k == KindFloat32 {
		return 24
	}

	return 53
}

var (
	timeType     = reflect.TypeFor[time.Time]()
	durationType = reflect.TypeFor[time.Duration]()
)

// FromReflectType returns the primitive kind of rtype. Named types report the
// kind of their underlying type, so `type Status string` is KindString.
// time.Time and time.Duration are recognized before their underlying kinds.
func FromReflectType(rtype reflect.Type) KindEnum {
	switch rtype {
	case nil:
		return 0
	case timeType:
		return KindTime
	case durationType:
		return KindDuration
	}

	return byReflectKind[rtype.Kind()]
}

// FromName returns the primitive kind for a Go basic type name, as seen by
// static analysis ("int64", "byte", "time.Time", ...).
func FromName(name string) KindEnum {
	return byName[name]
}
