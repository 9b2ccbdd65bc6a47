package access

import (
	"reflect"

	"mapper-generator/internal/analyze"
)

// AdderRemover fills a collection property item by item through AddX and,
// when present, drops stale items through RemoveX.
type AdderRemover struct {
	adder   reflect.Method
	remover reflect.Method
	current Reader
	names   string
}

// NewAdderRemover creates a writer for a collection property. current reads
// the collection before the write, it may be nil when the property is not
// readable; removal is skipped then.
func NewAdderRemover(owner *analyze.TypeDescriptor, adder, remover string, current Reader) *AdderRemover {
	a := &AdderRemover{current: current, names: adder + "()"}
	if remover != "" {
		a.names += "/" + remover + "()"
	}

	if st := owner.Base().Type; st != nil {
		ptr := reflect.PointerTo(st)
		a.adder, _ = ptr.MethodByName(adder)

		if remover != "" {
			a.remover, _ = ptr.MethodByName(remover)
		}
	}

	return a
}

func (a *AdderRemover) Write(dst reflect.Value, v reflect.Value) error {
	var existing []reflect.Value

	if a.current != nil {
		current, ok, err := a.current.Read(dst)
		if err != nil {
			return err
		}

		if ok {
			existing = items(current)
		}
	}

	next := items(v)

	if a.remover.Func.IsValid() {
		for _, old := range existing {
			if contains(next, old) {
				continue
			}

			if err := a.call(a.remover, dst, old); err != nil {
				return err
			}
		}
	}

	for _, item := range next {
		if contains(existing, item) {
			continue
		}

		if err := a.call(a.adder, dst, item); err != nil {
			return err
		}
	}

	return nil
}

func (a *AdderRemover) call(m reflect.Method, dst, item reflect.Value) error {
	arg := reflect.New(m.Type.In(1)).Elem()
	Assign(arg, item)

	return callError(m.Func.Call([]reflect.Value{dst, arg}), 0)
}

func (a *AdderRemover) String() string {
	return "adder " + a.names
}

func items(collection reflect.Value) []reflect.Value {
	if IsNil(collection) {
		return nil
	}

	// copies: removals may shift the backing array
	result := make([]reflect.Value, 0, collection.Len())
	for i := range collection.Len() {
		item := reflect.New(collection.Type().Elem()).Elem()
		item.Set(collection.Index(i))
		result = append(result, item)
	}

	return result
}

func contains(list []reflect.Value, v reflect.Value) bool {
	for _, item := range list {
		if reflect.DeepEqual(item.Interface(), v.Interface()) {
			return true
		}
	}

	return false
}
