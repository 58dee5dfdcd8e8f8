// internal/utils/crypto_test.go
package utils

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRandomStringLengthAndCharset(t *testing.T) {
	s, err := GenerateRandomString(16)
	require.NoError(t, err)
	assert.Len(t, s, 16)

	// Ambiguous characters are excluded from the charset
	for _, forbidden := range []string{"0", "1", "I", "O"} {
		assert.NotContains(t, s, forbidden)
	}
}

func TestGenerateBatchCodeFormat(t *testing.T) {
	code, err := GenerateBatchCode()
	require.NoError(t, err)

	matched, _ := regexp.MatchString(`^BAT-\d{14}-[A-Z2-9]{6}$`, code)
	assert.True(t, matched, "unexpected batch code format: %s", code)
}

func TestGenerateOrderNumberFormat(t *testing.T) {
	number, err := GenerateOrderNumber()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(number, "ORD-"))
}

func TestGenerateBatchCodeUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := GenerateBatchCode()
		require.NoError(t, err)
		assert.False(t, seen[code], "duplicate batch code: %s", code)
		seen[code] = true
	}
}

func TestHashStringDeterministic(t *testing.T) {
	a := HashString("batch-evidence")
	b := HashString("batch-evidence")
	c := HashString("other")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
