package mapping

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
mappings:
  - source: store.Order
    target: warehouse.Order
    121:
      TotalCents: amount
    fields:
      - target: OrderedAt
        dateTimeFormat: "2006-01-02"
      - target: amount
        groups: internal
        maxDepth: 2
      - target: City
        source: Customer.Address.City
      - target: Notes
        ignore: true
    ignore:
      - Password
      - Notes
discriminators:
  - target: warehouse.Parcel
    property: kind
    types:
      door: warehouse.DoorParcel
      point: warehouse.PointParcel
`

func TestParse(t *testing.T) {
	mf, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "1", mf.Version)
	require.Len(t, mf.TypeMappings, 1)

	tm := mf.Find("store.Order", "warehouse.Order")
	require.NotNil(t, tm)
	assert.Nil(t, mf.Find("warehouse.Order", "store.Order"))

	assert.Equal(t, "amount", tm.OneToOne["TotalCents"])
	require.Len(t, tm.Fields, 4)
	assert.Equal(t, GroupList{"internal"}, tm.Fields[1].Groups)
	assert.Equal(t, 2, tm.Fields[1].MaxDepth)
	assert.Equal(t, []string{"Password", "Notes"}, tm.Ignore)

	d := mf.FindDiscriminator("warehouse.Parcel")
	require.NotNil(t, d)
	assert.Equal(t, "kind", d.Property)
	assert.Equal(t, "warehouse.DoorParcel", d.Types["door"])
	assert.Nil(t, mf.FindDiscriminator("warehouse.Order"))

	assert.False(t, Validate(mf).HasErrors())
}

func TestOverrides(t *testing.T) {
	mf, err := Parse([]byte(sample))
	require.NoError(t, err)

	overrides, err := mf.TypeMappings[0].Overrides()
	require.NoError(t, err)

	amount := overrides["amount"]
	assert.Equal(t, PriorityOneToOne, amount.Priority)
	assert.Equal(t, "TotalCents", amount.Source.String())
	assert.Equal(t, []string{"internal"}, amount.Groups)
	assert.Equal(t, 2, amount.MaxDepth)

	city := overrides["City"]
	assert.Equal(t, PriorityFields, city.Priority)
	assert.Equal(t, []string{"Customer", "Address", "City"}, city.Source.Names())
	assert.False(t, city.Source.IsSimple())

	assert.Equal(t, "2006-01-02", overrides["OrderedAt"].DateTimeFormat)
	assert.True(t, overrides["OrderedAt"].Source.IsEmpty())

	assert.True(t, overrides["Password"].Ignore)
	assert.Equal(t, PriorityIgnore, overrides["Password"].Priority)

	notes := overrides["Notes"]
	assert.True(t, notes.Ignore)
	assert.Equal(t, PriorityFields, notes.Priority)
}

func TestParsePath(t *testing.T) {
	tests := []struct {
		path    string
		want    []string
		wantErr bool
	}{
		{path: "Name", want: []string{"Name"}},
		{path: "address.city", want: []string{"address", "city"}},
		{path: "full_name", want: []string{"full_name"}},
		{path: "", wantErr: true},
		{path: "a..b", wantErr: true},
		{path: "Items[]", wantErr: true},
		{path: "1st", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			p, err := ParsePath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Names())
			assert.Equal(t, tt.want[0], p.Root())
		})
	}
}

func TestValidate(t *testing.T) {
	mf := &MappingFile{
		Version: "1",
		TypeMappings: []TypeMapping{
			{Source: "a.A", Target: "b.B", Fields: []FieldMapping{
				{Target: "X", MaxDepth: -1},
				{Target: "X", Source: "bad..path"},
			}},
			{Source: "a.A", Target: "b.B"},
			{Source: "a.A"},
		},
		Discriminators: []Discriminator{
			{Target: "b.I", Property: "kind"},
		},
	}

	codes := make(map[string]int)
	for _, d := range Validate(mf).Errors {
		codes[d.Code]++
	}

	assert.Equal(t, 1, codes["invalid_max_depth"])
	assert.Equal(t, 1, codes["duplicate_property"])
	assert.Equal(t, 1, codes["invalid_path"])
	assert.Equal(t, 1, codes["duplicate_mapping"])
	assert.Equal(t, 1, codes["missing_type"])
	assert.Equal(t, 1, codes["empty_discriminator"])

	assert.True(t, Validate(nil).HasErrors())
}

func TestWriteAndLoadFile(t *testing.T) {
	mf := &MappingFile{
		Version: "1",
		TypeMappings: []TypeMapping{{
			Source: "store.Customer",
			Target: "warehouse.Customer",
			Fields: []FieldMapping{{Target: "Notes", Groups: GroupList{"internal", "admin"}}},
			Ignore: []string{"Password"},
		}},
	}

	path := filepath.Join(t.TempDir(), "mapping.yaml")
	require.NoError(t, WriteFile(mf, path))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, mf, loaded)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Parse([]byte("mappings: ["))
	assert.Error(t, err)
}
