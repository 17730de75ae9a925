package otc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeLengthAndCharset(t *testing.T) {
	for _, length := range []int{4, 6, 8} {
		code, err := Code(length)
		require.NoError(t, err)
		require.Len(t, code, length)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9', "non-digit %q in code %q", r, code)
		}
	}
}

func TestCodeRejectsInvalidLength(t *testing.T) {
	_, err := Code(0)
	require.Error(t, err)
}

func TestSessionTokenShape(t *testing.T) {
	token, err := SessionToken()
	require.NoError(t, err)
	require.Len(t, token, 64)

	other, err := SessionToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestHashCodeIsStableAndOneWay(t *testing.T) {
	h := HashCode("482913")
	assert.Equal(t, h, HashCode("482913"))
	assert.NotEqual(t, h, HashCode("482914"))
	assert.NotContains(t, h, "482913")
	assert.Len(t, h, 64)
}
