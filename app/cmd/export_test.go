package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Semior001/newsreader/app/bookmark"
	"github.com/Semior001/newsreader/app/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExport_Execute(t *testing.T) {
	dir := t.TempDir()

	t.Run("empty", func(t *testing.T) {
		buf := &bytes.Buffer{}
		require.NoError(t, Export{StoreOpts: StoreOpts{StorePath: dir}, out: buf}.Execute(nil))
		assert.JSONEq(t, `[]`, buf.String())
	})

	articles := []store.Article{
		{URL: "https://example.com/1", Title: "first"},
		{URL: "https://example.com/2", Title: "second"},
	}

	kv, err := store.NewBolt(dir)
	require.NoError(t, err)

	bms := bookmark.NewStore(kv)
	require.NoError(t, bms.Load(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = bms.Run(ctx)
	}()

	for _, a := range articles {
		_, err = bms.Toggle(ctx, a)
		require.NoError(t, err)
	}

	fctx, fcancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer fcancel()
	require.NoError(t, bms.Flush(fctx))

	cancel()
	<-done
	require.NoError(t, kv.Close())

	buf := &bytes.Buffer{}
	require.NoError(t, Export{StoreOpts: StoreOpts{StorePath: dir}, out: buf}.Execute(nil))

	var got []store.Article
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, articles, got)
}
