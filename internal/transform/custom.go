package transform

import (
	"errors"
	"fmt"
	"path"
	"reflect"
	"runtime"
	"sync"

	"mapper-generator/internal/access"
	"mapper-generator/internal/analyze"
)

var (
	ErrNotFunction     = errors.New("caster is not a function")
	ErrCasterSignature = errors.New("caster must take one argument and return a value, an optional bool and an optional error")
	ErrCasterDoublePtr = errors.New("caster argument and result cannot be pointers to pointers")
)

var errorType = reflect.TypeFor[error]()

// Caster is a caller supplied conversion function of one of the forms
//
//	func(S) T
//	func(S) (T, bool)
//	func(S) (T, error)
//	func(S) (T, bool, error)
//
// A false bool leaves the target property untouched.
type Caster struct {
	Src, Dst reflect.Type
	Func     string // qualified as pkg.Name
	CanSkip  bool
	CanFail  bool

	fn reflect.Value
}

// ParseCaster classifies fn by its signature.
func ParseCaster(fn any) (Caster, error) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return Caster{}, ErrNotFunction
	}

	t := v.Type()
	if t.NumIn() != 1 || t.IsVariadic() {
		return Caster{}, ErrCasterSignature
	}

	outs := make([]reflect.Type, t.NumOut())
	for i := range outs {
		outs[i] = t.Out(i)
	}

	c := Caster{Src: t.In(0), Func: funcName(v), fn: v}

	if n := len(outs); n > 1 && outs[n-1].Kind() == reflect.Interface && outs[n-1].Implements(errorType) {
		c.CanFail = true
		outs = outs[:n-1]
	}

	if n := len(outs); n > 1 && outs[n-1].Kind() == reflect.Bool {
		c.CanSkip = true
		outs = outs[:n-1]
	}

	if len(outs) != 1 {
		return Caster{}, ErrCasterSignature
	}

	c.Dst = outs[0]

	if isDoublePointer(c.Src) || isDoublePointer(c.Dst) {
		return Caster{}, ErrCasterDoublePtr
	}

	return c, nil
}

func isDoublePointer(t reflect.Type) bool {
	return t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Pointer
}

// funcName turns the runtime name "path/to/pkg.Name" into "pkg.Name".
func funcName(fn reflect.Value) string {
	rf := runtime.FuncForPC(fn.Pointer())
	if rf == nil {
		return "func"
	}

	return path.Base(rf.Name())
}

// Call runs the caster on in.
func (c Caster) Call(in reflect.Value) (reflect.Value, error) {
	arg := reflect.New(c.Src).Elem()
	access.Assign(arg, unwrap(in))

	out := c.fn.Call([]reflect.Value{arg})

	if c.CanFail {
		if err, _ := out[len(out)-1].Interface().(error); err != nil {
			return reflect.Value{}, err
		}
	}

	if c.CanSkip && !out[1].Bool() {
		return reflect.Value{}, ErrSkip
	}

	return out[0], nil
}

func (c Caster) String() string {
	return c.Func
}

// Custom runs a registered caster. Pointer sources are dereferenced when
// the caster takes the pointed-to type; nil stays nil.
type Custom struct {
	caster Caster
	deref  bool
}

func (c *Custom) Transform(in reflect.Value, _ Scope) (reflect.Value, error) {
	if c.deref {
		if access.IsNil(in) {
			return reflect.Value{}, nil
		}

		in = in.Elem()
	}

	out, err := c.caster.Call(in)
	if err != nil && !errors.Is(err, ErrSkip) {
		return reflect.Value{}, fmt.Errorf("caster %s: %w", c.caster, err)
	}

	return out, err
}

func (c *Custom) String() string {
	return "custom(" + c.caster.String() + ")"
}

type casterKey struct {
	src, dst reflect.Type
}

// CustomFactory holds the casters registered by the caller.
type CustomFactory struct {
	mu      sync.RWMutex
	casters map[casterKey]Caster
}

func NewCustomFactory() *CustomFactory {
	return &CustomFactory{casters: make(map[casterKey]Caster)}
}

// Register adds fn as the caster of its (argument, result) type pair,
// replacing any previous one.
func (f *CustomFactory) Register(fn any) error {
	c, err := ParseCaster(fn)
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.casters[casterKey{c.Src, c.Dst}] = c
	f.mu.Unlock()

	return nil
}

func (f *CustomFactory) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return len(f.casters)
}

func (f *CustomFactory) Priority() int { return PriorityCustom }

func (f *CustomFactory) Create(_ *Resolver, sources, targets []*analyze.TypeDescriptor, _ Meta) (Transformer, bool) {
	src, tgt, ok := single(sources, targets)
	if !ok || src.Type == nil || tgt.Type == nil {
		return nil, false
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if c, ok := f.casters[casterKey{src.Type, tgt.Type}]; ok {
		return &Custom{caster: c}, true
	}

	if src.Elem != nil {
		if c, ok := f.casters[casterKey{src.Elem.Type, tgt.Type}]; ok {
			return &Custom{caster: c, deref: true}, true
		}
	}

	return nil, false
}
