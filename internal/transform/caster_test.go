package transform_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapper-generator/internal/transform"
)

type moreThanError interface {
	error
	More()
}

func empty()                          { panic("not implemented") }
func wrong(int) (string, error, bool) { panic("not implemented") }
func twice(**int) string              { panic("not implemented") }

func full(int) (string, bool, error)          { panic("not implemented") }
func customError(int) (string, moreThanError) { panic("not implemented") }

func TestParseCaster(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		fn      any
		want    string
		canSkip bool
		canFail bool
	}{
		{"bool and error", full, "transform_test.full", true, true},
		{"plain", strconv.Itoa, "strconv.Itoa", false, false},
		{"error", strconv.Atoi, "strconv.Atoi", false, true},
		{"error subtype", customError, "transform_test.customError", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, err := transform.ParseCaster(tt.fn)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.String())
			assert.Equal(t, tt.canSkip, c.CanSkip)
			assert.Equal(t, tt.canFail, c.CanFail)
		})
	}

	_, err := transform.ParseCaster(empty)
	require.ErrorIs(t, err, transform.ErrCasterSignature)

	_, err = transform.ParseCaster(wrong)
	require.ErrorIs(t, err, transform.ErrCasterSignature)

	_, err = transform.ParseCaster(twice)
	require.ErrorIs(t, err, transform.ErrCasterDoublePtr)

	_, err = transform.ParseCaster(42)
	require.ErrorIs(t, err, transform.ErrNotFunction)
}
