package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	token, err := EncodeCursor(Cursor{ID: "42", CreatedAt: "2025-06-01T12:00:00Z"})
	require.NoError(t, err)

	cursor, err := DecodeCursor(token)
	require.NoError(t, err)
	assert.Equal(t, "42", cursor.ID)
	assert.Equal(t, "2025-06-01T12:00:00Z", cursor.CreatedAt)
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	_, err := DecodeCursor("!!not-base64!!")
	assert.Error(t, err)

	// Valid base64 that is not JSON.
	_, err = DecodeCursor("bm90IGpzb24=")
	assert.Error(t, err)
}

type row struct{ id string }

func TestBuildCursorPageInfo(t *testing.T) {
	extract := func(r *row) string { return r.id }

	info := BuildCursorPageInfo(nil, 10, extract)
	assert.False(t, info.HasMore)
	assert.Empty(t, info.NextPageToken)

	// An extra row past the limit signals another page; the token
	// points at the last row of the trimmed page.
	rows := []*row{{id: "a"}, {id: "b"}, {id: "c"}}
	info = BuildCursorPageInfo(rows, 2, extract)
	assert.True(t, info.HasMore)
	assert.Equal(t, "b", info.NextPageToken)

	// A short page keeps its own tail as the token with no more pages.
	info = BuildCursorPageInfo(rows, 5, extract)
	assert.False(t, info.HasMore)
	assert.Equal(t, "c", info.NextPageToken)
}
