package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	t.Parallel()

	h, err := HashPassword("pw123456")
	require.NoError(t, err)
	require.NotEmpty(t, h)
	assert.NotEqual(t, "pw123456", h)

	assert.True(t, CheckPassword(h, "pw123456"))
	assert.False(t, CheckPassword(h, "wrong"))
	assert.False(t, CheckPassword("not-a-hash", "pw123456"))
}
