package venues

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectory_ResolveByCode(t *testing.T) {
	dir := NewDirectory()

	v, ok := dir.Resolve("S16")
	require.True(t, ok)
	assert.Equal(t, "S16", v.Code)
	assert.NotZero(t, v.Latitude)
	assert.NotZero(t, v.Longitude)
}

func TestDirectory_ResolveCaseInsensitive(t *testing.T) {
	dir := NewDirectory()

	v, ok := dir.Resolve("utown")
	require.True(t, ok)
	assert.Equal(t, "Utown", v.Code)

	v, ok = dir.Resolve("  COM1 ")
	require.True(t, ok)
	assert.Equal(t, "Com1", v.Code)
}

func TestDirectory_ResolveByAlias(t *testing.T) {
	dir := NewDirectory()

	v, ok := dir.Resolve("University Town")
	require.True(t, ok)
	assert.Equal(t, "Utown", v.Code)

	v, ok = dir.Resolve("computing")
	require.True(t, ok)
	assert.Equal(t, "Com1", v.Code)
}

func TestDirectory_UnresolvableIsAMissNotAnError(t *testing.T) {
	dir := NewDirectory()

	_, ok := dir.Resolve("PGP")
	assert.False(t, ok)

	_, ok = dir.Resolve("")
	assert.False(t, ok)
}

func TestDirectory_All(t *testing.T) {
	dir := NewDirectory()
	all := dir.All()
	assert.NotEmpty(t, all)

	// The returned slice is a copy
	all[0].Name = "mutated"
	v, ok := dir.Resolve(all[0].Code)
	require.True(t, ok)
	assert.NotEqual(t, "mutated", v.Name)
}
