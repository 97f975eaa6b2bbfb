package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%cat%", containsPattern("cat"))
	assert.Equal(t, `%100\%%`, containsPattern("100%"))
	assert.Equal(t, `%a\_b%`, containsPattern("a_b"))
	assert.Equal(t, `%c:\\dir%`, containsPattern(`c:\dir`))
	assert.Equal(t, "%%", containsPattern(""))
}

func TestDecodeTitles(t *testing.T) {
	titles, err := decodeTitles(`["a","b"]`)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, titles)

	titles, err = decodeTitles("")
	require.NoError(t, err)
	assert.NotNil(t, titles)
	assert.Empty(t, titles)

	_, err = decodeTitles("not json")
	assert.Error(t, err)
}
