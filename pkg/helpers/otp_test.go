package helpers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenOTPCodeRange(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := GenOTPCode()
		require.NoError(t, err)
		require.GreaterOrEqual(t, code, 100000)
		require.LessOrEqual(t, code, 999999)
	}
}

func TestGenOTPCodeVaries(t *testing.T) {
	seen := map[int]bool{}
	for i := 0; i < 50; i++ {
		code, err := GenOTPCode()
		require.NoError(t, err)
		seen[code] = true
	}
	require.Greater(t, len(seen), 1)
}
