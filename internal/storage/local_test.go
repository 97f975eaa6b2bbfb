package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocal(t *testing.T) *Local {
	t.Helper()
	l, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	return l
}

func TestLocal_PutGet(t *testing.T) {
	l := newTestLocal(t)
	ctx := context.Background()
	want := []byte("GIF89a-payload")

	info, err := l.Put(ctx, "abc", bytes.NewReader(want), PutObjectOptions{Size: int64(len(want)), ContentType: ContentType})
	require.NoError(t, err)
	assert.Equal(t, int64(len(want)), info.Size)
	assert.FileExists(t, filepath.Join(l.root, "abc.gif"))

	rc, got, err := l.Get(ctx, "abc")
	require.NoError(t, err)
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	assert.Equal(t, want, body)
	assert.Equal(t, int64(len(want)), got.Size)
	assert.Equal(t, ContentType, got.ContentType)
}

func TestLocal_GetMissing(t *testing.T) {
	l := newTestLocal(t)
	_, _, err := l.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocal_DeleteIsIdempotent(t *testing.T) {
	l := newTestLocal(t)
	ctx := context.Background()

	_, err := l.Put(ctx, "k", strings.NewReader("x"), PutObjectOptions{})
	require.NoError(t, err)

	require.NoError(t, l.Delete(ctx, "k"))
	require.NoError(t, l.Delete(ctx, "k"))

	_, _, err = l.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestLocal_FailedPutLeavesNothing(t *testing.T) {
	l := newTestLocal(t)
	ctx := context.Background()

	_, err := l.Put(ctx, "partial", io.MultiReader(strings.NewReader("head"), failingReader{}), PutObjectOptions{})
	require.Error(t, err)

	_, _, err = l.Get(ctx, "partial")
	assert.ErrorIs(t, err, ErrNotFound)

	entries, err := os.ReadDir(l.root)
	require.NoError(t, err)
	assert.Empty(t, entries, "temp file must be cleaned up")
}

func TestLocal_OverwriteIsClean(t *testing.T) {
	l := newTestLocal(t)
	ctx := context.Background()

	_, err := l.Put(ctx, "f", strings.NewReader("first-and-longer"), PutObjectOptions{})
	require.NoError(t, err)
	_, err = l.Put(ctx, "f", strings.NewReader("second"), PutObjectOptions{})
	require.NoError(t, err)

	rc, _, err := l.Get(ctx, "f")
	require.NoError(t, err)
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	assert.Equal(t, "second", string(body))
}

func TestLocal_RejectsTraversal(t *testing.T) {
	l := newTestLocal(t)
	ctx := context.Background()

	for _, key := range []string{"", "..", "../escape", "a/b", "."} {
		_, err := l.Put(ctx, key, strings.NewReader("x"), PutObjectOptions{})
		assert.Error(t, err, key)
	}
}

func TestLocal_PutHonoursCancelledContext(t *testing.T) {
	l := newTestLocal(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.Put(ctx, "k", strings.NewReader("x"), PutObjectOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}
