package plan_test

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapper-generator/internal/access"
	"mapper-generator/internal/analyze"
	"mapper-generator/internal/diagnostic"
	"mapper-generator/internal/mapping"
	"mapper-generator/internal/plan"
	"mapper-generator/internal/transform"
	"mapper-generator/store"
	"mapper-generator/warehouse"
)

type credentials struct {
	Password string `json:"password"`
}

type contact struct {
	FullNme string `json:"fullname"`
}

type account struct {
	Login string `automap:",required"`
}

type price struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type parcelSource struct {
	Kind    string `json:"kind"`
	Company string `json:"company"`
	Point   string `json:"point"`
}

type hooks struct{}

func (hooks) Extractor(source *analyze.TypeDescriptor, property string) (access.ExtractFunc, bool) {
	if property != "notes" {
		return nil, false
	}

	return func(src any) (any, error) { return "vip", nil }, true
}

func (hooks) Hydrator(*analyze.TypeDescriptor, string) (access.HydrateFunc, bool) {
	return nil, false
}

type fixture struct {
	provider *analyze.ReflectProvider
	resolver *plan.Resolver
}

func newFixture(t *testing.T, opts ...plan.Option) *fixture {
	t.Helper()

	p := analyze.NewReflectProvider()
	f := &fixture{provider: p}

	var planner *plan.Resolver

	transformers := transform.NewResolver(p,
		transform.WithDescriber(p.Describe),
		transform.WithPolymorphic(func(d *analyze.TypeDescriptor) bool { return planner.IsPolymorphic(d) }),
	)

	planner = plan.NewResolver(p, transformers, opts...)
	f.resolver = planner

	return f
}

func (f *fixture) resolve(src, dst reflect.Type) (*plan.ResolvedMapping, error) {
	return f.resolver.Resolve(f.provider.Describe(src), f.provider.Describe(dst))
}

func codes(ds []diagnostic.Diagnostic) []string {
	result := make([]string, 0, len(ds))
	for _, d := range ds {
		result = append(result, d.Code+":"+d.Property)
	}

	return result
}

func TestResolveObjectPair(t *testing.T) {
	f := newFixture(t)

	m, err := f.resolve(reflect.TypeFor[store.Customer](), reflect.TypeFor[*warehouse.Customer]())
	require.NoError(t, err)

	assert.Equal(t, plan.ShapeObject, m.SourceShape)
	assert.Equal(t, plan.ShapeObject, m.TargetShape)
	assert.Equal(t, "warehouse.Customer", m.Target.Name, "pointer levels are stripped")
	assert.True(t, m.Tracked())

	for _, name := range []string{"id", "email", "full_name", "address", "orders"} {
		p, ok := m.Property(name)
		require.True(t, ok, name)
		assert.NotNil(t, p.Read, name)
		assert.NotNil(t, p.Write, name)
		assert.NotNil(t, p.Transformer, name)
		assert.Equal(t, plan.MappingSourceName, p.Origin, name)
	}

	orders, _ := m.Property("orders")
	assert.Equal(t, 1, orders.MaxDepth)

	password, ok := m.Property("Password")
	require.True(t, ok)
	assert.True(t, password.Ignored)
	assert.Equal(t, plan.MappingSourceTag, password.Origin)

	_, ok = m.Property("notes")
	assert.False(t, ok)
	require.Len(t, m.Unmapped, 1)
	assert.Equal(t, "notes", m.Unmapped[0].Property)
	assert.Contains(t, codes(m.Diagnostics.Warnings), diagnostic.CodeUnmappedProperty+":notes")

	deps := m.Dependencies()
	names := make([]string, 0, len(deps))
	for _, d := range deps {
		names = append(names, d.Name())
	}

	assert.Contains(t, names, "store.Address->warehouse.Address")
	assert.Contains(t, names, "store.Order->warehouse.Order")
}

func TestResolveAccessors(t *testing.T) {
	f := newFixture(t)

	t.Run("getter", func(t *testing.T) {
		m, err := f.resolve(reflect.TypeFor[store.Customer](), reflect.TypeFor[credentials]())
		require.NoError(t, err)

		p, ok := m.Property("password")
		require.True(t, ok)
		assert.Equal(t, "getter Password()", p.Read.String())
	})

	t.Run("adder and datetime", func(t *testing.T) {
		m, err := f.resolve(reflect.TypeFor[store.Order](), reflect.TypeFor[warehouse.Order]())
		require.NoError(t, err)

		tags, ok := m.Property("tags")
		require.True(t, ok)
		assert.True(t, strings.HasPrefix(tags.Write.String(), "adder "), tags.Write.String())

		orderedAt, ok := m.Property("ordered_at")
		require.True(t, ok)
		assert.Equal(t, "datetime(format 2006-01-02)", orderedAt.Transformer.String())

		delivery, ok := m.Property("delivery")
		require.True(t, ok)
		assert.Equal(t, "dynamic(warehouse.Parcel)", delivery.Transformer.String())
	})

	t.Run("extract hook", func(t *testing.T) {
		hooked := newFixture(t, plan.WithHooks(hooks{}))

		m, err := hooked.resolve(reflect.TypeFor[store.Customer](), reflect.TypeFor[warehouse.Customer]())
		require.NoError(t, err)

		notes, ok := m.Property("notes")
		require.True(t, ok)
		assert.Equal(t, "extract callback notes", notes.Read.String())
		assert.True(t, notes.SourceType.IsMixed())
		assert.Empty(t, m.Unmapped)
	})
}

func TestResolveConstructor(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.provider.RegisterConstructor(warehouse.NewMoney, "amount", "currency"))
	f.provider.RegisterReadOnly(reflect.TypeFor[warehouse.Money]())

	m, err := f.resolve(reflect.TypeFor[price](), reflect.TypeFor[warehouse.Money]())
	require.NoError(t, err)

	assert.True(t, m.ReadOnly)
	require.NotNil(t, m.Constructor)

	for i, name := range []string{"amount", "currency"} {
		p, ok := m.Property(name)
		require.True(t, ok, name)
		require.True(t, p.IsConstructorBound(), name)
		assert.Equal(t, i, p.Argument.Position)
		assert.Nil(t, p.Write, "unexported fields are not writable")
	}

	assert.Empty(t, m.Diagnostics.Warnings)
}

func TestResolveConfigurationErrors(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(p *analyze.ReflectProvider)
		src    reflect.Type
		dst    reflect.Type
		reason string
	}{
		{
			name:   "read-only without constructor",
			setup:  func(p *analyze.ReflectProvider) { p.RegisterReadOnly(reflect.TypeFor[warehouse.Address]()) },
			src:    reflect.TypeFor[store.Address](),
			dst:    reflect.TypeFor[warehouse.Address](),
			reason: "read-only target without constructor",
		},
		{
			name:   "shapeless source",
			src:    reflect.TypeFor[any](),
			dst:    reflect.TypeFor[warehouse.Address](),
			reason: "only array/plain-object targets accepted when source has no declared shape",
		},
		{
			name:   "polymorphic target without discriminator",
			src:    reflect.TypeFor[parcelSource](),
			dst:    reflect.TypeFor[warehouse.Parcel](),
			reason: "polymorphic target without discriminator",
		},
		{
			name:   "no transformer",
			src:    reflect.TypeFor[[]int](),
			dst:    reflect.TypeFor[bool](),
			reason: "no transformer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.setup != nil {
				tt.setup(f.provider)
			}

			_, err := f.resolve(tt.src, tt.dst)
			require.Error(t, err)
			assert.ErrorIs(t, err, diagnostic.ErrConfiguration)

			var cfg *diagnostic.ConfigurationError
			require.True(t, errors.As(err, &cfg))
			assert.Equal(t, tt.reason, cfg.Reason)
		})
	}
}

func TestResolveKeyedShapes(t *testing.T) {
	f := newFixture(t)

	t.Run("map source", func(t *testing.T) {
		m, err := f.resolve(reflect.TypeFor[map[string]any](), reflect.TypeFor[warehouse.Address]())
		require.NoError(t, err)
		assert.Equal(t, plan.ShapeMap, m.SourceShape)

		city, ok := m.Property("city")
		require.True(t, ok)
		assert.True(t, city.CheckExists)
		assert.Equal(t, "key city", city.Read.String())
		assert.Empty(t, m.Unmapped)
	})

	t.Run("map target", func(t *testing.T) {
		m, err := f.resolve(reflect.TypeFor[store.Address](), reflect.TypeFor[map[string]any]())
		require.NoError(t, err)
		assert.False(t, m.Tracked())

		require.Len(t, m.Properties, 3)
		assert.Equal(t, "key postal_code", m.Properties[2].Write.String())
	})

	t.Run("value pair", func(t *testing.T) {
		m, err := f.resolve(reflect.TypeFor[[]int](), reflect.TypeFor[[]string]())
		require.NoError(t, err)
		assert.Equal(t, plan.ShapeValue, m.TargetShape)
		assert.NotNil(t, m.Transformer)
		assert.Empty(t, m.Properties)
	})
}

func TestResolveDiscriminator(t *testing.T) {
	mf := &mapping.MappingFile{Discriminators: []mapping.Discriminator{{
		Target:   "warehouse.Parcel",
		Property: "kind",
		Types:    map[string]string{"door": "warehouse.DoorParcel", "point": "warehouse.PointParcel"},
	}}}

	p := analyze.NewReflectProvider()
	known := map[string]reflect.Type{
		"warehouse.DoorParcel":  reflect.TypeFor[warehouse.DoorParcel](),
		"warehouse.PointParcel": reflect.TypeFor[warehouse.PointParcel](),
	}
	lookup := func(name string) (*analyze.TypeDescriptor, error) {
		typ, ok := known[name]
		if !ok {
			return nil, fmt.Errorf("unknown type %s", name)
		}

		return p.Describe(typ), nil
	}

	r := plan.NewResolver(p, transform.NewResolver(p), plan.WithMappings(mf), plan.WithTypeLookup(lookup))
	assert.True(t, r.IsPolymorphic(p.Describe(reflect.TypeFor[warehouse.Parcel]())))

	m, err := r.Resolve(p.Describe(reflect.TypeFor[parcelSource]()), p.Describe(reflect.TypeFor[warehouse.Parcel]()))
	require.NoError(t, err)
	require.NotNil(t, m.Discriminator)
	assert.Equal(t, plan.ShapePolymorphic, m.TargetShape)
	assert.Equal(t, []string{"door", "point"}, m.Discriminator.Values())
	assert.Len(t, m.Dependencies(), 2)

	mf.Discriminators[0].Types["parcel"] = "warehouse.Unknown"

	_, err = r.Resolve(p.Describe(reflect.TypeFor[parcelSource]()), p.Describe(reflect.TypeFor[warehouse.Parcel]()))
	assert.ErrorIs(t, err, diagnostic.ErrConfiguration)
}

func TestResolveOverrides(t *testing.T) {
	mf := &mapping.MappingFile{TypeMappings: []mapping.TypeMapping{{
		Source:   "store.Customer",
		Target:   "warehouse.Customer",
		OneToOne: map[string]string{"full_name": "notes"},
		Fields: []mapping.FieldMapping{
			{Target: "email", Ignore: true},
			{Target: "address", MaxDepth: 3, Groups: mapping.GroupList{"shipping"}},
			{Target: "nickname"},
		},
	}}}

	f := newFixture(t, plan.WithMappings(mf))

	m, err := f.resolve(reflect.TypeFor[store.Customer](), reflect.TypeFor[warehouse.Customer]())
	require.NoError(t, err)

	notes, ok := m.Property("notes")
	require.True(t, ok)
	assert.Equal(t, plan.MappingSourceYAML121, notes.Origin)
	assert.Equal(t, []string{"full_name"}, notes.SourcePath)
	assert.Equal(t, []string{"internal"}, notes.TargetGroups, "tag groups survive a rename")

	email, _ := m.Property("email")
	assert.True(t, email.Ignored)
	assert.Equal(t, plan.MappingSourceYAMLFields, email.Origin)

	address, _ := m.Property("address")
	assert.Equal(t, 3, address.MaxDepth)
	assert.Equal(t, []string{"shipping"}, address.TargetGroups)

	assert.Contains(t, codes(m.Diagnostics.Warnings), diagnostic.CodeUnknownOverride+":nickname")
	assert.Empty(t, m.Unmapped)
}

func TestResolveNestedSourcePath(t *testing.T) {
	mf := &mapping.MappingFile{TypeMappings: []mapping.TypeMapping{{
		Source: "store.Order",
		Target: "warehouse.Address",
		Fields: []mapping.FieldMapping{{Target: "city", Source: "customer.address.city"}},
	}}}

	f := newFixture(t, plan.WithMappings(mf))

	m, err := f.resolve(reflect.TypeFor[store.Order](), reflect.TypeFor[warehouse.Address]())
	require.NoError(t, err)

	city, ok := m.Property("city")
	require.True(t, ok)
	assert.Equal(t, "path customer.address.city", city.Read.String())
}

func TestResolveStrict(t *testing.T) {
	lenient := newFixture(t)

	m, err := lenient.resolve(reflect.TypeFor[store.Customer](), reflect.TypeFor[account]())
	require.NoError(t, err)
	assert.Contains(t, codes(m.Diagnostics.Warnings), diagnostic.CodeUnmappedProperty+":Login")

	strict := newFixture(t, plan.WithConfig(plan.Config{Strict: true, MaxSuggestions: 3}))

	_, err = strict.resolve(reflect.TypeFor[store.Customer](), reflect.TypeFor[account]())
	require.Error(t, err)
	assert.ErrorIs(t, err, diagnostic.ErrConfiguration)
	assert.Contains(t, err.Error(), "Login")
}

func TestSuggestionsAndExport(t *testing.T) {
	f := newFixture(t)

	m, err := f.resolve(reflect.TypeFor[store.Customer](), reflect.TypeFor[contact]())
	require.NoError(t, err)

	require.Len(t, m.Unmapped, 1)
	require.NotEmpty(t, m.Unmapped[0].Suggestions)
	assert.Equal(t, "full_name", m.Unmapped[0].Suggestions[0])

	mf := plan.Export(m)
	require.Len(t, mf.TypeMappings, 1)
	assert.Equal(t, "store.Customer", mf.TypeMappings[0].Source)
	assert.Equal(t, []mapping.FieldMapping{{Target: "fullname", Source: "full_name"}}, mf.TypeMappings[0].Fields)
	assert.False(t, mapping.Validate(mf).HasErrors())
}

func TestReport(t *testing.T) {
	f := newFixture(t)

	m, err := f.resolve(reflect.TypeFor[store.Customer](), reflect.TypeFor[warehouse.Customer]())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, m.Report(&buf))

	out := buf.String()
	assert.Contains(t, out, "store.Customer -> warehouse.Customer (object to object)")
	assert.Contains(t, out, "notes")
	assert.Contains(t, out, "unmapped")
}
