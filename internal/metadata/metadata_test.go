package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func names(components []Component) []string {
	result := make([]string, len(components))
	for i, component := range components {
		result[i] = component.Name
	}
	return result
}

func TestCommandsOfIncludesKernel(t *testing.T) {
	store := newTestStore(t)

	commands, err := store.CommandsOf(nil)
	require.NoError(t, err)
	assert.Contains(t, names(commands), "section")
	assert.NotContains(t, names(commands), "includegraphics")
}

func TestCommandsOfScopesToPackages(t *testing.T) {
	store := newTestStore(t)

	commands, err := store.CommandsOf([]string{"graphicx", "hyperref"})
	require.NoError(t, err)

	got := names(commands)
	assert.Contains(t, got, "includegraphics")
	assert.Contains(t, got, "href")
	assert.Contains(t, got, "label")
	assert.NotContains(t, got, "textcolor")
}

func TestEnvironmentsOf(t *testing.T) {
	store := newTestStore(t)

	environments, err := store.EnvironmentsOf([]string{"amsmath"})
	require.NoError(t, err)

	got := names(environments)
	assert.Contains(t, got, "align")
	assert.Contains(t, got, "itemize")
}

func TestColorsSeeded(t *testing.T) {
	store := newTestStore(t)

	colors, err := store.Colors()
	require.NoError(t, err)
	assert.Contains(t, colors, "red")
	assert.Contains(t, colors, "JungleGreen")
}

func TestRelevanceRoundTrip(t *testing.T) {
	store := newTestStore(t)
	uri := "file:///proj/main.tex"

	_, err := store.RelevantPackages(uri)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.UpsertRelevance(uri, []string{"graphicx", "amsmath"}))
	packages, err := store.RelevantPackages(uri)
	require.NoError(t, err)
	assert.Equal(t, []string{"amsmath", "graphicx"}, packages)

	// Upsert replaces, not appends.
	require.NoError(t, store.UpsertRelevance(uri, []string{"xcolor"}))
	packages, err = store.RelevantPackages(uri)
	require.NoError(t, err)
	assert.Equal(t, []string{"xcolor"}, packages)
}

func TestEmptyStoreFallback(t *testing.T) {
	var store Store = NewEmptyStore()

	commands, err := store.CommandsOf([]string{"graphicx"})
	require.NoError(t, err)
	assert.Empty(t, commands)

	_, err = store.RelevantPackages("file:///x.tex")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, store.UpsertRelevance("file:///x.tex", nil))
}
