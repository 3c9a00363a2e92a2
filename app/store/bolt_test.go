package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBolt(t *testing.T) {
	ctx := context.Background()

	b, err := NewBolt(t.TempDir())
	require.NoError(t, err)
	defer func() { require.NoError(t, b.Close()) }()

	_, err = b.Get(ctx, "@bookmarks")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, b.Put(ctx, "@bookmarks", []byte(`[{"url":"a"}]`)))
	v, err := b.Get(ctx, "@bookmarks")
	require.NoError(t, err)
	assert.Equal(t, `[{"url":"a"}]`, string(v))

	require.NoError(t, b.Put(ctx, "@bookmarks", []byte(`[]`)))
	v, err = b.Get(ctx, "@bookmarks")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(v))

	_, err = b.Get(ctx, "@bookmarks.corrupt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBolt_Reopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	b, err := NewBolt(dir)
	require.NoError(t, err)
	require.NoError(t, b.Put(ctx, "key", []byte("value")))
	require.NoError(t, b.Close())

	b, err = NewBolt(dir)
	require.NoError(t, err)
	defer func() { require.NoError(t, b.Close()) }()

	v, err := b.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, "value", string(v))
}
