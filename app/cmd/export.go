package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Semior001/newsreader/app/bookmark"
	"github.com/Semior001/newsreader/app/store"
	"golang.org/x/exp/slog"
)

// Export is a command to print stored bookmarks.
type Export struct {
	StoreOpts

	out io.Writer
}

// Execute prints the bookmarks as a JSON array, in the order they were added.
func (e Export) Execute(_ []string) error {
	lg := slog.Default()

	kv, err := store.NewBolt(e.StorePath)
	if err != nil {
		return fmt.Errorf("make store: %w", err)
	}

	defer func() {
		if err := kv.Close(); err != nil {
			lg.Error("close bolt store", slog.Any("err", err))
		}
	}()

	bms := bookmark.NewStore(kv, bookmark.WithLogger(lg.With(slog.String("prefix", "bookmarks"))))
	if err = bms.Load(context.Background()); err != nil {
		return fmt.Errorf("load bookmarks: %w", err)
	}

	out := e.out
	if out == nil {
		out = os.Stdout
	}

	articles := bms.Bookmarks()
	if articles == nil {
		articles = []store.Article{}
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err = enc.Encode(articles); err != nil {
		return fmt.Errorf("write bookmarks: %w", err)
	}

	return nil
}
