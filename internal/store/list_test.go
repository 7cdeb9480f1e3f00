package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSort(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Sort{Field: "created_at", Desc: true}, ParseSort("-created_at"))
	assert.Equal(t, Sort{Field: "name"}, ParseSort("name"))
	assert.Equal(t, Sort{Field: "name"}, ParseSort(" +name "))
	assert.Equal(t, Sort{}, ParseSort(""))
	assert.Equal(t, "-due", Sort{Field: "due", Desc: true}.String())
}

func TestSortOrderBy(t *testing.T) {
	t.Parallel()

	allowed := map[string]string{"created_at": "d.created_at", "name": "d.name"}

	clause, err := ParseSort("-created_at").OrderBy(allowed)
	require.NoError(t, err)
	assert.Equal(t, "d.created_at DESC", clause)

	clause, err = ParseSort("name").OrderBy(allowed)
	require.NoError(t, err)
	assert.Equal(t, "d.name ASC", clause)

	_, err = ParseSort("name; DROP TABLE decks").OrderBy(allowed)
	assert.ErrorIs(t, err, ErrInvalidSort)
}

func TestListOptionsNormalize(t *testing.T) {
	t.Parallel()

	def := Sort{Field: "created_at", Desc: true}

	got := ListOptions{}.Normalize(def)
	assert.Equal(t, ListOptions{Limit: DefaultListLimit, Sort: def}, got)

	got = ListOptions{Limit: 10_000, Offset: -3, Sort: Sort{Field: "name"}}.Normalize(def)
	assert.Equal(t, MaxListLimit, got.Limit)
	assert.Zero(t, got.Offset)
	assert.Equal(t, "name", got.Sort.Field)
}
