package meeting

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCodeFormat(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := NewCode()
		assert.True(t, ValidCode(code), "generated code %q must match the pattern", code)
		for _, c := range "01IO" {
			assert.NotContains(t, code, string(c))
		}
	}
}

func TestNewCodeUniqueness(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		seen[NewCode()] = struct{}{}
	}
	// Probabilistic: 50 draws from ~1.07e9 combinations should be almost
	// always distinct; > 40 distinct keeps the test deterministic enough.
	assert.Greater(t, len(seen), 40)
}

func TestValidCode(t *testing.T) {
	assert.True(t, ValidCode("ABC-234"))
	assert.False(t, ValidCode("abc-234"))
	assert.False(t, ValidCode("AB-2345"))
	assert.False(t, ValidCode("ABO-234"), "O is excluded from the alphabet")
	assert.False(t, ValidCode("ABC234"))
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "ABC-234", NormalizeCode("  abc-234 "))
	assert.Equal(t, strings.ToUpper("xyz-789"), NormalizeCode("xyz-789"))
}
