package automap_test

import (
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapper-generator/automap"
	"mapper-generator/options"
	"mapper-generator/primitive"
	"mapper-generator/store"
	"mapper-generator/warehouse"
)

type person struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Age  int    `json:"age"`
}

// Employee is only built through NewEmployee; SetName counts writes made
// after construction.
type Employee struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Age  int    `json:"age"`

	writes int
}

func NewEmployee(id int, name string, age int) *Employee {
	return &Employee{ID: id, Name: name, Age: age}
}

func (e *Employee) SetName(name string) {
	e.Name = name
	e.writes++
}

type addressCopy struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
}

type node struct {
	Name string
	Next *node
}

type nodeDTO struct {
	Name string
	Next *nodeDTO
}

type Shape interface {
	Area() float64
}

type Square struct {
	Side float64 `json:"side"`
}

func (s *Square) Area() float64 { return s.Side * s.Side }

type Circle struct {
	Radius float64 `json:"radius"`
}

func (c *Circle) Area() float64 { return 3 * c.Radius * c.Radius }

type shapeSource struct {
	Type   string  `json:"type"`
	Side   float64 `json:"side"`
	Radius float64 `json:"radius"`
}

type account struct {
	Login string `automap:",required"`
	Name  string
}

type badge struct {
	Notes string `json:"notes"`
	email string
}

type price struct {
	Cents int64
}

type priceTag struct {
	Cents string
}

func newRegistry(t *testing.T, opts ...automap.Option) *automap.Registry {
	t.Helper()

	opts = append([]automap.Option{automap.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)

	r, err := automap.New(opts...)
	require.NoError(t, err)

	return r
}

func TestNullSource(t *testing.T) {
	r := newRegistry(t)

	out, err := automap.Map[*warehouse.Customer](r, nil)
	require.NoError(t, err)
	assert.Nil(t, out)

	out, err = automap.Map[*warehouse.Customer](r, (*store.Customer)(nil))
	require.NoError(t, err)
	assert.Nil(t, out)

	m, err := automap.Map[map[string]any](r, (*store.Address)(nil))
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestIdentityAndRoundTrip(t *testing.T) {
	r := newRegistry(t)
	src := store.Address{Street: "Main 1", City: "Riga", PostalCode: "LV-1050"}

	cp, err := automap.Map[addressCopy](r, src)
	require.NoError(t, err)
	assert.Equal(t, addressCopy{Street: "Main 1", City: "Riga", PostalCode: "LV-1050"}, cp)

	back, err := automap.Map[*store.Address](r, &cp)
	require.NoError(t, err)
	assert.Equal(t, src, *back)
}

func TestSourceTypeIsChecked(t *testing.T) {
	r := newRegistry(t)
	src := &store.Address{Street: "Main 1", City: "Riga", PostalCode: "LV-1050"}
	want := addressCopy{Street: "Main 1", City: "Riga", PostalCode: "LV-1050"}

	cp, err := automap.Map[addressCopy](r, src)
	require.NoError(t, err)
	assert.Equal(t, want, cp)

	cp, err = automap.Map[addressCopy](r, &src)
	require.NoError(t, err)
	assert.Equal(t, want, cp)

	var nilAddr *store.Address

	cp, err = automap.Map[addressCopy](r, &nilAddr)
	require.NoError(t, err)
	assert.Zero(t, cp)

	m, err := r.GetMapper(reflect.TypeFor[store.Address](), reflect.TypeFor[addressCopy]())
	require.NoError(t, err)

	_, err = m.MapValue(reflect.ValueOf(&person{ID: 1, Name: "Ann"}), options.New())
	require.ErrorIs(t, err, automap.ErrSourceType)

	var typeErr *automap.SourceTypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, "store.Address", typeErr.Want)
	assert.Equal(t, "*automap_test.person", typeErr.Got)

	_, err = m.MapValue(reflect.ValueOf(42), options.New())
	assert.ErrorIs(t, err, automap.ErrSourceType)
}

func TestSelfReferentialMap(t *testing.T) {
	r := newRegistry(t)
	catalog := store.Catalog{"books": {"fiction": {}, "poetry": {}}, "games": {}}

	loose, err := automap.Map[map[string]any](r, catalog)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"books": store.Catalog{"fiction": {}, "poetry": {}},
		"games": store.Catalog{},
	}, loose)

	cp, err := automap.Map[store.Catalog](r, catalog)
	require.NoError(t, err)
	assert.Equal(t, catalog, cp)

	cp["books"]["drama"] = store.Catalog{}
	assert.NotContains(t, catalog["books"], "drama")
}

func TestNumberCategories(t *testing.T) {
	r := newRegistry(t)

	n, err := automap.Map[int](r, 37.9)
	require.NoError(t, err)
	assert.Equal(t, 37, n)

	b, err := automap.Map[uint8](r, 300)
	require.NoError(t, err)
	assert.Equal(t, uint8(44), b)

	lossless := newRegistry(t, automap.WithCategories(primitive.CategoryLossless))

	_, err = automap.Map[int](lossless, 37.9)
	assert.ErrorIs(t, err, automap.ErrConfiguration)

	_, err = automap.Map[uint8](lossless, 300)
	assert.ErrorIs(t, err, automap.ErrConfiguration)

	wide, err := automap.Map[float64](lossless, int32(7))
	require.NoError(t, err)
	assert.InDelta(t, 7.0, wide, 0)
}

func TestMapperIsCompiledOnce(t *testing.T) {
	r := newRegistry(t)

	first, err := r.GetMapper(reflect.TypeFor[store.Customer](), reflect.TypeFor[warehouse.Customer]())
	require.NoError(t, err)

	second, err := r.GetMapper(reflect.TypeFor[*store.Customer](), reflect.TypeFor[*warehouse.Customer]())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int64(1), r.Compiles())

	src := &store.Customer{ID: 7, FullName: "Jack"}

	a, err := first.Map(src)
	require.NoError(t, err)
	b, err := second.Map(src)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	// nested mappers are linked on first use only
	assert.Equal(t, int64(1), r.Compiles())

	src.Address = &store.Address{City: "Riga"}
	_, err = first.Map(src)
	require.NoError(t, err)
	assert.Equal(t, int64(2), r.Compiles())

	_, err = first.Map(src)
	require.NoError(t, err)
	assert.Equal(t, int64(2), r.Compiles())
}

func TestConcurrentCompilation(t *testing.T) {
	r := newRegistry(t)

	const workers = 16

	var (
		wg      sync.WaitGroup
		mappers [workers]*automap.Mapper
		errs    [workers]error
	)

	for i := range workers {
		wg.Add(1)

		go func() {
			defer wg.Done()
			mappers[i], errs[i] = r.GetMapper(reflect.TypeFor[store.Address](), reflect.TypeFor[addressCopy]())
		}()
	}

	wg.Wait()

	for i := range workers {
		require.NoError(t, errs[i])
		assert.Same(t, mappers[0], mappers[i])
	}

	assert.Equal(t, int64(1), r.Compiles())
}

func TestNullableProperty(t *testing.T) {
	r := newRegistry(t)

	out, err := automap.Map[*warehouse.Customer](r, store.Customer{ID: 1})
	require.NoError(t, err)
	assert.Nil(t, out.Address)
	assert.Nil(t, out.Orders)
}

func TestCollectionOrder(t *testing.T) {
	r := newRegistry(t)

	items := []store.OrderItem{
		{ProductID: 1, Name: "pen", Quantity: 3},
		{ProductID: 2, Name: "ink", Quantity: 1},
		{ProductID: 3, Name: "pad", Quantity: 2},
	}

	out, err := automap.Map[*warehouse.Order](r, store.Order{ID: 2, Items: items, Tags: []string{"a", "b", "c"}})
	require.NoError(t, err)
	assert.Equal(t, []warehouse.Item{
		{ProductID: 1, Name: "pen", Quantity: 3},
		{ProductID: 2, Name: "ink", Quantity: 1},
		{ProductID: 3, Name: "pad", Quantity: 2},
	}, out.Items)
	assert.Equal(t, []string{"a", "b", "c"}, out.Tags())
}

func TestCircularReference(t *testing.T) {
	r := newRegistry(t)

	a := &node{Name: "a"}
	a.Next = a

	out, err := automap.Map[*nodeDTO](r, a)
	require.NoError(t, err)
	assert.Same(t, out, out.Next)

	customer := &store.Customer{ID: 1, FullName: "Jack"}
	customer.Orders = []*store.Order{{ID: 10, Customer: customer}, {ID: 11, Customer: customer}}

	t.Run("customer graph", func(t *testing.T) {
		out, err := automap.Map[*warehouse.Customer](r, customer)
		require.NoError(t, err)
		require.Len(t, out.Orders, 2)
		assert.Same(t, out, out.Orders[0].Customer)
		assert.Same(t, out, out.Orders[1].Customer)
	})

	t.Run("limit and handler", func(t *testing.T) {
		_, err := automap.Map[*warehouse.Customer](r, customer, options.WithCircularReferenceLimit(1))
		require.Error(t, err)
		assert.ErrorIs(t, err, automap.ErrCircularReference)

		stop := func(reflect.Value, reflect.Type, *options.Context) (reflect.Value, error) {
			return reflect.Value{}, nil
		}

		out, err := automap.Map[*warehouse.Customer](r, customer,
			options.WithCircularReferenceLimit(1),
			options.WithCircularReferenceHandler(stop),
		)
		require.NoError(t, err)
		require.Len(t, out.Orders, 2)
		assert.Same(t, out, out.Orders[0].Customer)
		assert.Nil(t, out.Orders[1].Customer)
	})
}

func TestPlainMapToStruct(t *testing.T) {
	r := newRegistry(t)

	out, err := automap.Map[person](r, map[string]any{"id": 1, "name": "Jack", "age": 37})
	require.NoError(t, err)
	assert.Equal(t, person{ID: 1, Name: "Jack", Age: 37}, out)
}

func TestConstructorBinding(t *testing.T) {
	typ := reflect.TypeFor[Employee]()
	src := map[string]any{"id": 1, "name": "Jack", "age": 37}

	r := newRegistry(t,
		automap.WithConstructor(NewEmployee, "id", "name", "age"),
		automap.WithReadOnly(typ),
	)

	out, err := automap.Map[*Employee](r, src)
	require.NoError(t, err)
	assert.Equal(t, &Employee{ID: 1, Name: "Jack", Age: 37}, out)
	assert.Zero(t, out.writes, "no writes after construction")

	out, err = automap.Map[*Employee](r, src, options.WithConstructorArgument(typ, "name", "Joe"))
	require.NoError(t, err)
	assert.Equal(t, "Joe", out.Name)

	_, err = automap.Map[*Employee](r, map[string]any{"id": 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, automap.ErrMissingConstructorArgument)

	t.Run("default", func(t *testing.T) {
		r := newRegistry(t,
			automap.WithConstructor(NewEmployee, "id", "name", "age"),
			automap.WithConstructorDefault(typ, "age", 18),
		)

		out, err := automap.Map[*Employee](r, map[string]any{"id": 2, "name": "Jill"})
		require.NoError(t, err)
		assert.Equal(t, 18, out.Age)
	})

	t.Run("invalid constructor", func(t *testing.T) {
		_, err := automap.New(automap.WithConstructor(NewEmployee, "id"))
		require.Error(t, err)
	})
}

func TestReadOnlyTarget(t *testing.T) {
	r := newRegistry(t,
		automap.WithConstructor(NewEmployee, "id", "name", "age"),
		automap.WithReadOnly(reflect.TypeFor[Employee]()),
	)

	existing := NewEmployee(9, "Old", 50)

	err := automap.MapInto(r, map[string]any{"id": 1, "name": "Jack", "age": 37}, existing)
	require.Error(t, err)

	var readOnly *automap.ReadOnlyTargetError
	require.ErrorAs(t, err, &readOnly)
	assert.ErrorIs(t, err, automap.ErrReadOnlyTarget)
	assert.Equal(t, &Employee{ID: 9, Name: "Old", Age: 50}, existing)
}

func TestDiscriminator(t *testing.T) {
	r := newRegistry(t,
		automap.WithTypes(reflect.TypeFor[Square](), reflect.TypeFor[*Circle]()),
		automap.WithDiscriminator(reflect.TypeFor[Shape](), "type", map[string]string{
			"A": "automap_test.Square",
			"B": "automap_test.Circle",
		}),
	)

	a, err := automap.Map[Shape](r, shapeSource{Type: "A", Side: 2})
	require.NoError(t, err)
	assert.Equal(t, &Square{Side: 2}, a)

	b, err := automap.Map[Shape](r, shapeSource{Type: "B", Radius: 1})
	require.NoError(t, err)
	assert.Equal(t, &Circle{Radius: 1}, b)

	_, err = automap.Map[Shape](r, shapeSource{Type: "C"})
	require.Error(t, err)

	var unmatched *automap.DiscriminatorError
	require.ErrorAs(t, err, &unmatched)
	assert.Equal(t, "C", unmatched.Value)

	fromMap, err := automap.Map[Shape](r, map[string]any{"type": "A", "side": 3.0})
	require.NoError(t, err)
	assert.InDelta(t, 9.0, fromMap.Area(), 1e-9)

	t.Run("unregistered type", func(t *testing.T) {
		r := newRegistry(t,
			automap.WithDiscriminator(reflect.TypeFor[Shape](), "type", map[string]string{"A": "automap_test.Square"}),
		)

		_, err := automap.Map[Shape](r, shapeSource{Type: "A"})
		assert.ErrorIs(t, err, automap.ErrConfiguration)
	})
}

func TestConfigurationErrorsAreNotCached(t *testing.T) {
	r := newRegistry(t, automap.WithStrict())

	for range 2 {
		_, err := automap.Map[*account](r, person{Name: "Jack"})
		require.Error(t, err)

		var cfg *automap.ConfigurationError
		require.ErrorAs(t, err, &cfg)
		assert.ErrorIs(t, err, automap.ErrConfiguration)
	}

	assert.Zero(t, r.Compiles())

	_, err := r.GetMapper(reflect.TypeFor[any](), reflect.TypeFor[person]())
	assert.ErrorIs(t, err, automap.ErrConfiguration)

	lenient := newRegistry(t)

	out, err := automap.Map[*account](lenient, person{Name: "Jack"})
	require.NoError(t, err)
	assert.Equal(t, &account{Name: "Jack"}, out)

	m, err := lenient.GetMapper(reflect.TypeFor[person](), reflect.TypeFor[account]())
	require.NoError(t, err)
	require.Len(t, m.Unmapped(), 1)
	assert.Equal(t, "Login", m.Unmapped()[0].Property)
}

func TestMappingYAML(t *testing.T) {
	type contactCard struct {
		Name string `json:"name"`
		City string `json:"city"`
		ID   int64  `json:"id"`
	}

	doc := `
version: "1"
mappings:
  - source: store.Customer
    target: automap_test.contactCard
    "121":
      full_name: name
    fields:
      - target: city
        source: address.city
    ignore: [id]
`

	r := newRegistry(t, automap.WithMappingYAML([]byte(doc)))

	out, err := automap.Map[contactCard](r, &store.Customer{
		ID:       4,
		FullName: "Jack",
		Address:  &store.Address{City: "Riga"},
	})
	require.NoError(t, err)
	assert.Equal(t, contactCard{Name: "Jack", City: "Riga"}, out)

	_, err = automap.New(automap.WithMappingYAML([]byte(`version: "2"`)))
	require.Error(t, err)
}

func TestHooks(t *testing.T) {
	var written []string

	r := newRegistry(t,
		automap.WithExtractor(reflect.TypeFor[store.Customer](), "notes", func(src any) (any, error) {
			c := src.(*store.Customer)
			return strings.ToUpper(c.FullName), nil
		}),
		automap.WithHydrator(reflect.TypeFor[badge](), "email", func(dst any, v any) error {
			b := dst.(*badge)
			b.email = fmt.Sprint(v)
			written = append(written, b.email)

			return nil
		}),
	)

	out, err := automap.Map[*badge](r, store.Customer{FullName: "Jack", Email: "jack@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "JACK", out.Notes)
	assert.Equal(t, "jack@example.com", out.email)
	assert.Equal(t, []string{"jack@example.com"}, written)
}

func TestCasterAndPrototype(t *testing.T) {
	r := newRegistry(t,
		automap.WithCaster(func(cents int64) string {
			return fmt.Sprintf("%d.%02d", cents/100, cents%100)
		}),
		automap.WithPrototype(&person{Name: "unnamed", Age: 18}),
	)

	tag, err := automap.Map[priceTag](r, price{Cents: 1250})
	require.NoError(t, err)
	assert.Equal(t, "12.50", tag.Cents)

	p, err := automap.Map[person](r, map[string]any{"id": 3})
	require.NoError(t, err)
	assert.Equal(t, person{ID: 3, Name: "unnamed", Age: 18}, p)

	_, err = automap.New(automap.WithPrototype(nil))
	assert.ErrorIs(t, err, automap.ErrInvalidTarget)
}

func TestMapIntoAndMapSlice(t *testing.T) {
	r := newRegistry(t)

	dst := warehouse.Address{Country: "LV"}
	require.NoError(t, automap.MapInto(r, store.Address{Street: "Main 1", City: "Riga"}, &dst))
	assert.Equal(t, warehouse.Address{Street: "Main 1", City: "Riga", Country: "LV"}, dst)

	var values map[string]any
	require.NoError(t, automap.MapInto(r, store.Address{City: "Riga"}, &values))
	assert.Equal(t, "Riga", values["city"])

	assert.ErrorIs(t, automap.MapInto(r, store.Address{}, dst), automap.ErrInvalidTarget)
	assert.ErrorIs(t, automap.MapInto(r, store.Address{}, (*warehouse.Address)(nil)), automap.ErrInvalidTarget)

	src := []store.Address{{City: "Riga"}, {City: "Tartu"}, {City: "Vilnius"}}

	out, err := automap.MapSlice[warehouse.Address](r, src)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, []string{"Riga", "Tartu", "Vilnius"}, []string{out[0].City, out[1].City, out[2].City})

	none, err := automap.MapSlice[warehouse.Address, store.Address](r, nil)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestReport(t *testing.T) {
	r := newRegistry(t)

	m, err := r.GetMapper(reflect.TypeFor[store.Customer](), reflect.TypeFor[warehouse.Customer]())
	require.NoError(t, err)
	assert.Equal(t, "store.Customer->warehouse.Customer", m.String())

	var sb strings.Builder
	require.NoError(t, m.Report(&sb))
	assert.Contains(t, sb.String(), "store.Customer -> warehouse.Customer")
	assert.Contains(t, sb.String(), "full_name")
}
