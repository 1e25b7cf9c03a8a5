package snowflake

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextMessageID(t *testing.T) {
	require.NoError(t, Init(1, 1))

	a, err := NextMessageID("streak_reset")
	require.NoError(t, err)
	b, err := NextMessageID("streak_reset")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(a, "streak_reset_"))
	assert.NotEqual(t, a, b)
}
