package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenResetCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code, err := GenResetCode()
		require.NoError(t, err)
		assert.Regexp(t, `^[0-9A-F]{6}$`, code)
		seen[code] = true
	}
	// 100 draws from a 16M space should practically never all collide.
	assert.Greater(t, len(seen), 1)
}
