package common_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"mapper-generator/internal/common"
)

func TestPkgAlias(t *testing.T) {
	t.Parallel()

	assert.Empty(t, common.PkgAlias(""))
	assert.Equal(t, "store", common.PkgAlias("example.com/shop/store"))
}

func TestTypeName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "time.Time", common.TypeName(reflect.TypeFor[time.Time]()))
	assert.Equal(t, "*time.Time", common.TypeName(reflect.TypeFor[*time.Time]()))
	assert.Equal(t, "[]int", common.TypeName(reflect.TypeFor[[]int]()))
	assert.Equal(t, "nil", common.TypeName(nil))
}

func TestIntersects(t *testing.T) {
	t.Parallel()

	assert.True(t, common.Intersects([]string{"a", "b"}, []string{"c", "b"}))
	assert.False(t, common.Intersects([]string{"a"}, nil))
}
