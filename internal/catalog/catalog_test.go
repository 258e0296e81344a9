package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTaxonomyShape(t *testing.T) {
	require.Len(t, Categories, 10)
	require.Equal(t, All, Categories[0].Key)

	seen := map[string]bool{}
	for _, c := range Categories {
		require.False(t, seen[c.Key], "duplicate key %s", c.Key)
		seen[c.Key] = true
		require.NotEmpty(t, c.Label)
	}
}

func TestValid(t *testing.T) {
	require.True(t, Valid("Button"))
	require.True(t, Valid("Tooltips"))
	require.False(t, Valid(All), "the pseudo-category is not a storable value")
	require.False(t, Valid(""))
	require.False(t, Valid("button"), "keys are case sensitive")
}

func TestWide(t *testing.T) {
	require.True(t, Wide("Card"))
	require.True(t, Wide("Forms"))
	require.False(t, Wide("Button"))
	require.False(t, Wide(All))
}

func TestResolve(t *testing.T) {
	v := Resolve("Button", "hover")
	require.Equal(t, "Button", v.Get("category"))
	require.Equal(t, "hover", v.Get("search"))

	// "All" must translate to no category constraint, not a literal match.
	v = Resolve(All, "")
	require.Empty(t, v.Encode())

	v = Resolve("", "glow")
	require.False(t, v.Has("category"))
	require.Equal(t, "glow", v.Get("search"))
}
