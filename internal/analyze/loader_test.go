package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapper-generator/primitive"
)

func TestStaticProvider_Lookup(t *testing.T) {
	provider, err := LoadPackages("mapper-generator/store", "mapper-generator/warehouse")
	require.NoError(t, err)
	require.NotNil(t, provider)

	order, err := provider.Lookup("store.Order")
	require.NoError(t, err)
	assert.Equal(t, KindObject, order.Kind)
	assert.Equal(t, "store.Order", order.ClassName)
	assert.Nil(t, order.Type)

	byPath, err := provider.Lookup("mapper-generator/warehouse.Order")
	require.NoError(t, err)
	assert.Equal(t, "warehouse.Order", byPath.Name)

	_, err = provider.Lookup("Order")
	require.Error(t, err)

	_, err = provider.Lookup("store.Missing")
	require.Error(t, err)
}

func TestStaticProvider_SelfReferentialType(t *testing.T) {
	provider, err := LoadPackages("mapper-generator/store")
	require.NoError(t, err)

	catalog, err := provider.Lookup("store.Catalog")
	require.NoError(t, err)

	assert.Equal(t, KindMap, catalog.Kind)
	assert.Equal(t, KindString, catalog.KeyType.Kind)
	assert.Same(t, catalog, catalog.ValueType)
}

func TestStaticProvider_ListFields(t *testing.T) {
	provider, err := LoadPackages("mapper-generator/store")
	require.NoError(t, err)

	customer, err := provider.Lookup("store.Customer")
	require.NoError(t, err)

	fields := provider.ListFields(customer)
	byName := make(map[string]FieldDescriptor)

	for _, f := range fields {
		byName[f.Name] = f
	}

	assert.Contains(t, byName, "id")
	assert.Contains(t, byName, "full_name")
	assert.Contains(t, byName, "orders")

	password := byName["password"]
	assert.False(t, password.Exported)
	assert.Equal(t, "Password", password.Getter)
	assert.Equal(t, "SetPassword", password.Setter)

	address := byName["address"]
	assert.True(t, address.Type.Nullable)
	assert.Equal(t, "store.Address", address.Type.ClassName)

	orders := byName["orders"]
	assert.Equal(t, KindArray, orders.Type.Kind)
	assert.Equal(t, "*store.Order", orders.Type.ValueType.Name)

	order, err := provider.Lookup("store.Order")
	require.NoError(t, err)

	for _, f := range provider.ListFields(order) {
		switch f.Name {
		case "ordered_at":
			assert.Equal(t, primitive.KindTime, f.Type.Primitive)
		case "status":
			assert.Equal(t, KindString, f.Type.Kind)
			assert.Equal(t, "store.OrderStatus", f.Type.ClassName)
		}
	}
}

func TestStaticProvider_ConstructorsAndInterfaces(t *testing.T) {
	provider, err := LoadPackages("mapper-generator/warehouse")
	require.NoError(t, err)

	money, err := provider.Lookup("warehouse.Money")
	require.NoError(t, err)

	ctor := provider.Constructor(money)
	require.NotNil(t, ctor)
	assert.Equal(t, "NewMoney", ctor.Name)
	assert.True(t, ctor.ReturnsError)
	require.Len(t, ctor.Params, 2)
	assert.Equal(t, "amount", ctor.Params[0].Name)
	assert.Equal(t, "currency", ctor.Params[1].Name)
	assert.True(t, provider.IsReadOnly(money))

	order, err := provider.Lookup("warehouse.Order")
	require.NoError(t, err)
	assert.Nil(t, provider.Constructor(order))
	assert.False(t, provider.IsReadOnly(order))

	for _, f := range provider.ListFields(order) {
		if f.GoName != "Parcel" {
			continue
		}

		declared := provider.DeclaredTypes(order, f)
		require.Len(t, declared, 2)
		assert.Equal(t, "*warehouse.DoorParcel", declared[0].Name)
		assert.Equal(t, "*warehouse.PointParcel", declared[1].Name)
	}
}
