package logx

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/slog"
)

func TestChain_RequestID(t *testing.T) {
	buf := &bytes.Buffer{}
	lg := slog.New(&Chain{
		Middleware: []Middleware{RequestID},
		Handler:    slog.NewTextHandler(buf),
	})

	lg.InfoCtx(ContextWithRequestID(context.Background(), "req-1"), "toggled")
	assert.Contains(t, buf.String(), "request_id=req-1")

	buf.Reset()
	lg.With(slog.String("prefix", "bookmarks")).InfoCtx(context.Background(), "loaded")
	assert.Contains(t, buf.String(), "prefix=bookmarks")
	assert.NotContains(t, buf.String(), "request_id")
}

func TestNoOp(t *testing.T) {
	lg := slog.New(NoOp())
	assert.False(t, lg.Handler().Enabled(context.Background(), slog.LevelError))
	lg.Error("nothing happens")
}
