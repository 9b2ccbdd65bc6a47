package access_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapper-generator/internal/access"
	"mapper-generator/internal/analyze"
	"mapper-generator/store"
	"mapper-generator/warehouse"
)

type Inner struct {
	Code string
}

type Outer struct {
	Inner
	Name   string
	secret int
	Next   *Outer
}

type Status string

type Account struct {
	balance int
	Status  Status
}

var errNegative = errors.New("negative balance")

func (a *Account) Balance() (int, error) { return a.balance, nil }

func (a *Account) SetBalance(v int) error {
	if v < 0 {
		return errNegative
	}

	a.balance = v

	return nil
}

func fieldOf(p *analyze.ReflectProvider, t reflect.Type, goName string) (*analyze.TypeDescriptor, analyze.FieldDescriptor) {
	owner := p.Describe(t)
	for _, f := range p.ListFields(owner) {
		if f.GoName == goName {
			return owner, f
		}
	}

	panic("no field " + goName)
}

func TestField(t *testing.T) {
	t.Parallel()

	p := analyze.NewReflectProvider()
	src := &Outer{Inner: Inner{Code: "c1"}, Name: "n", secret: 7}
	ptr := reflect.ValueOf(src)

	tests := []struct {
		field string
		want  any
		write any
	}{
		{"Name", "n", "m"},
		{"secret", 7, 8},
		{"Code", "c1", "c2"},
	}

	for _, tt := range tests {
		owner, fd := fieldOf(p, reflect.TypeFor[Outer](), tt.field)
		f := access.NewField(owner, fd)

		v, ok, err := f.Read(ptr)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, tt.want, v.Interface())

		require.NoError(t, f.Write(ptr, reflect.ValueOf(tt.write)))
		assert.Equal(t, "field "+tt.field, f.String())
	}

	assert.Equal(t, "m", src.Name)
	assert.Equal(t, 8, src.secret)
	assert.Equal(t, "c2", src.Code)
}

func TestFieldNamedConversionAndZero(t *testing.T) {
	t.Parallel()

	p := analyze.NewReflectProvider()
	owner, fd := fieldOf(p, reflect.TypeFor[Account](), "Status")
	f := access.NewField(owner, fd)

	acc := &Account{}
	require.NoError(t, f.Write(reflect.ValueOf(acc), reflect.ValueOf("open")))
	assert.Equal(t, Status("open"), acc.Status)

	require.NoError(t, f.Write(reflect.ValueOf(acc), reflect.Value{}))
	assert.Empty(t, acc.Status)
}

func TestMethod(t *testing.T) {
	t.Parallel()

	p := analyze.NewReflectProvider()
	owner := p.Describe(reflect.TypeFor[Account]())
	acc := &Account{balance: 10}
	ptr := reflect.ValueOf(acc)

	getter := access.NewGetter(owner, "Balance")
	v, ok, err := getter.Read(ptr)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 10, v.Interface())
	assert.Equal(t, "getter Balance()", getter.String())

	setter := access.NewSetter(owner, "SetBalance")
	require.NoError(t, setter.Write(ptr, reflect.ValueOf(20)))
	assert.Equal(t, 20, acc.balance)

	err = setter.Write(ptr, reflect.ValueOf(-1))
	require.ErrorIs(t, err, errNegative)
	assert.Equal(t, 20, acc.balance)
	assert.Equal(t, "setter SetBalance()", setter.String())
}

func TestKey(t *testing.T) {
	t.Parallel()

	k := access.NewKey("age")
	src := reflect.ValueOf(map[string]any{"age": 37})

	v, ok, err := k.Read(src)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 37, v.Interface())

	_, ok, err = access.NewKey("name").Read(src)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, _ = k.Read(reflect.ValueOf(map[string]any(nil)))
	assert.False(t, ok)

	dst := map[string]int{}
	require.NoError(t, k.Write(reflect.ValueOf(dst), reflect.ValueOf(5)))
	assert.Equal(t, map[string]int{"age": 5}, dst)
	assert.Equal(t, "key age", k.String())
}

func TestPath(t *testing.T) {
	t.Parallel()

	p := analyze.NewReflectProvider()
	owner, next := fieldOf(p, reflect.TypeFor[Outer](), "Next")
	_, name := fieldOf(p, reflect.TypeFor[Outer](), "Name")

	path := access.NewPath([]string{"Next", "Name"}, []access.Reader{
		access.NewField(owner, next),
		access.NewField(owner, name),
	})

	v, ok, err := path.Read(reflect.ValueOf(&Outer{Next: &Outer{Name: "child"}}))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "child", v.Interface())

	_, ok, err = path.Read(reflect.ValueOf(&Outer{}))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "path Next.Name", path.String())

	mapPath := access.NewPath([]string{"address", "city"}, []access.Reader{access.NewKey("address"), access.NewKey("city")})
	v, ok, err = mapPath.Read(reflect.ValueOf(map[string]any{"address": map[string]any{"city": "Oslo"}}))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Oslo", v.Interface())
}

func TestAdderRemover(t *testing.T) {
	t.Parallel()

	p := analyze.NewReflectProvider()
	owner, tags := fieldOf(p, reflect.TypeFor[warehouse.Order](), "tags")

	w := access.NewAdderRemover(owner, tags.Adder, tags.Remover, access.NewGetter(owner, tags.Getter))
	assert.Equal(t, "adder AddTag()/RemoveTag()", w.String())

	order := &warehouse.Order{}
	order.AddTag("old")
	order.AddTag("keep")

	require.NoError(t, w.Write(reflect.ValueOf(order), reflect.ValueOf([]string{"keep", "new"})))
	assert.Equal(t, []string{"keep", "new"}, order.Tags())

	addOnly := access.NewAdderRemover(owner, tags.Adder, "", nil)
	require.NoError(t, addOnly.Write(reflect.ValueOf(order), reflect.ValueOf([]string{"x"})))
	assert.Equal(t, []string{"keep", "new", "x"}, order.Tags())
}

func TestCallbacks(t *testing.T) {
	t.Parallel()

	extract := access.NewExtract("fullName", func(src any) (any, error) {
		c := src.(*store.Customer)
		return c.FullName + " <" + c.Email + ">", nil
	})

	v, ok, err := extract.Read(reflect.ValueOf(&store.Customer{FullName: "Jack", Email: "j@x"}))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Jack <j@x>", v.Interface())

	var got any

	hydrate := access.NewHydrate("notes", func(dst any, v any) error {
		dst.(*warehouse.Customer).Notes = v.(string)
		got = v

		return nil
	})

	target := &warehouse.Customer{}
	require.NoError(t, hydrate.Write(reflect.ValueOf(target), reflect.ValueOf("vip")))
	assert.Equal(t, "vip", target.Notes)
	assert.Equal(t, "vip", got)
	assert.Equal(t, "constructor argument id", access.Argument{Name: "id"}.String())
}

func TestHelpers(t *testing.T) {
	t.Parallel()

	assert.True(t, access.IsNil(reflect.Value{}))
	assert.True(t, access.IsNil(reflect.ValueOf((*int)(nil))))
	assert.False(t, access.IsNil(reflect.ValueOf(0)))

	v := access.Addressable(reflect.ValueOf(Inner{Code: "x"}))
	assert.Equal(t, reflect.Pointer, v.Kind())
	assert.Equal(t, "x", v.Elem().Field(0).Interface())

	assert.Equal(t, reflect.Int, access.Addressable(reflect.ValueOf(1)).Kind())
}
