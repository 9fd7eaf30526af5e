package credentials

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrongPasswordClasses(t *testing.T) {
	gen := NewGenerator(MinBcryptCost)
	for i := 0; i < 50; i++ {
		pw, err := gen.StrongPassword()
		require.NoError(t, err)
		require.Len(t, pw, 12)
		assert.True(t, strings.ContainsAny(pw, upperAlphabet), "missing uppercase: %s", pw)
		assert.True(t, strings.ContainsAny(pw, lowerAlphabet), "missing lowercase: %s", pw)
		assert.True(t, strings.ContainsAny(pw, digitAlphabet), "missing digit: %s", pw)
		assert.True(t, strings.ContainsAny(pw, symbolAlphabet), "missing symbol: %s", pw)
	}
}

func TestStrongPasswordExcludesConfusables(t *testing.T) {
	gen := NewGenerator(MinBcryptCost)
	for i := 0; i < 50; i++ {
		pw, err := gen.StrongPassword()
		require.NoError(t, err)
		assert.False(t, strings.ContainsAny(pw, "0O1lI"), "confusable character in %s", pw)
	}
}

func TestMemorablePasswordShape(t *testing.T) {
	gen := NewGenerator(MinBcryptCost)
	shape := regexp.MustCompile(`^[a-z]+[2-9]-[a-z]+[2-9]$`)
	for i := 0; i < 50; i++ {
		pw, err := gen.MemorablePassword()
		require.NoError(t, err)
		assert.Regexp(t, shape, pw)
	}
}

func TestHashAndVerify(t *testing.T) {
	gen := NewGenerator(MinBcryptCost)
	pw, err := gen.MemorablePassword()
	require.NoError(t, err)

	hash, err := gen.Hash(pw)
	require.NoError(t, err)
	assert.NotEqual(t, pw, hash)
	assert.True(t, gen.Verify(pw, hash))
	assert.False(t, gen.Verify(pw+"x", hash))
}

func TestGeneratorClampsCost(t *testing.T) {
	gen := NewGenerator(4)
	assert.Equal(t, MinBcryptCost, gen.cost)
}
