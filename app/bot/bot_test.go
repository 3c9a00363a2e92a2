package bot

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Semior001/newsreader/app/bookmark"
	"github.com/Semior001/newsreader/app/revisor"
	"github.com/Semior001/newsreader/app/store"
	"github.com/Semior001/newsreader/pkg/botx"
	"github.com/Semior001/newsreader/pkg/logx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

var (
	first = store.Article{
		URL:         "https://example.com/1",
		Title:       "Title one",
		Description: "first description",
		Source:      store.Source{Name: "BBC"},
		PublishedAt: time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC),
	}
	second = store.Article{
		URL:         "https://example.com/2",
		Title:       "snake_case title",
		Description: "second description",
	}
)

func TestCtrl_NewsAndStar(t *testing.T) {
	ctx := context.Background()
	bms := loadedStore(t)
	rtr := newCtrl(t, bms, &DetailsMock{}).Routes()

	resps, err := rtr.Handle(ctx, request("/news"))
	require.NoError(t, err)
	require.Len(t, resps, 2)

	assert.Equal(t, "1. *Title one*\n_BBC, May 1, 10:30_\n\nfirst description", resps[0].Text)
	assert.Equal(t, "2. *snake\\_case title*\n\nsecond description", resps[1].Text)

	require.Len(t, resps[0].Buttons, 1)
	require.Len(t, resps[0].Buttons[0], 2)
	starBtn, openBtn := resps[0].Buttons[0][0], resps[0].Buttons[0][1]
	assert.Equal(t, "☆ Bookmark", starBtn.Text)
	assert.True(t, strings.HasPrefix(starBtn.Data, "/star "))
	assert.True(t, strings.HasSuffix(starBtn.Data, ".1"))
	assert.Equal(t, "Open", openBtn.Text)
	assert.Equal(t, "/open "+strings.TrimPrefix(starBtn.Data, "/star "), openBtn.Data)

	// pressing the button updates the card in place
	req := request(starBtn.Data)
	req.Callback, req.MessageID = true, "100"
	resps, err = rtr.Handle(ctx, req)
	require.NoError(t, err)
	require.Len(t, resps, 1)
	assert.Equal(t, "100", resps[0].EditMessageID)
	assert.Equal(t, "★ Bookmarked", resps[0].Buttons[0][0].Text)
	assert.Equal(t, starBtn.Data, resps[0].Buttons[0][0].Data)
	assert.True(t, bms.IsBookmarked(first.URL))

	// typed command refers to the latest list
	resps, err = rtr.Handle(ctx, request("/star 2"))
	require.NoError(t, err)
	assert.Equal(t, []botx.Response{{ChatID: "1", Text: "Bookmarked: snake\\_case title"}}, resps)
	assert.Equal(t, []store.Article{first, second}, bms.Bookmarks())

	// a button of the older list still points to its article
	resps, err = rtr.Handle(ctx, request("/bookmarks"))
	require.NoError(t, err)
	require.Len(t, resps, 2)
	assert.Equal(t, "★ Bookmarked", resps[0].Buttons[0][0].Text)

	resps, err = rtr.Handle(ctx, request(starBtn.Data))
	require.NoError(t, err)
	assert.Equal(t, []botx.Response{{ChatID: "1", Text: "Removed from bookmarks: Title one"}}, resps)
	assert.Equal(t, []store.Article{second}, bms.Bookmarks())
}

func TestCtrl_Bookmarks(t *testing.T) {
	ctx := context.Background()
	bms := loadedStore(t)
	rtr := newCtrl(t, bms, &DetailsMock{}).Routes()

	resps, err := rtr.Handle(ctx, request("/bookmarks"))
	require.NoError(t, err)
	assert.Equal(t, []botx.Response{{ChatID: "1", Text: emptyBookmarksText}}, resps)

	_, err = bms.Toggle(ctx, second)
	require.NoError(t, err)

	resps, err = rtr.Handle(ctx, request("/bookmarks"))
	require.NoError(t, err)
	require.Len(t, resps, 1)
	assert.Equal(t, "1. *snake\\_case title*\n\nsecond description", resps[0].Text)
	assert.Equal(t, "★ Bookmarked", resps[0].Buttons[0][0].Text)
}

func TestCtrl_Open(t *testing.T) {
	ctx := context.Background()

	details := &DetailsMock{DetailFunc: func(_ context.Context, a store.Article) (revisor.Detail, error) {
		if a.URL == second.URL {
			return revisor.Detail{}, errors.New("forbidden")
		}
		return revisor.Detail{
			Article:      a,
			Text:         "full text",
			Byline:       "Jane Doe",
			BulletPoints: "- point",
		}, nil
	}}

	bms := loadedStore(t)
	rtr := newCtrl(t, bms, details).Routes()

	_, err := rtr.Handle(ctx, request("/news"))
	require.NoError(t, err)

	resps, err := rtr.Handle(ctx, request("/open 1"))
	require.NoError(t, err)
	require.Len(t, resps, 1)
	assert.Equal(t, "*Title one*\n_Jane Doe_\n\n- point\n\nfull text\n\n[Read at the source](https://example.com/1)",
		resps[0].Text)
	require.Len(t, resps[0].Buttons, 1)
	require.Len(t, resps[0].Buttons[0], 1)
	starBtn := resps[0].Buttons[0][0]
	assert.Equal(t, "☆ Bookmark", starBtn.Text)
	assert.True(t, strings.HasPrefix(starBtn.Data, "/star "))
	assert.True(t, strings.HasSuffix(starBtn.Data, ".1 d"))

	// the detail button keeps the detail layout
	req := request(starBtn.Data)
	req.Callback, req.MessageID = true, "7"
	resps, err = rtr.Handle(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, []botx.Response{{
		ChatID:        "1",
		EditMessageID: "7",
		Buttons:       [][]botx.Button{{{Text: "★ Bookmarked", Data: starBtn.Data}}},
	}}, resps)
	assert.True(t, bms.IsBookmarked(first.URL))

	// page can't be fetched, the feed version is shown
	resps, err = rtr.Handle(ctx, request("/open 2"))
	require.NoError(t, err)
	require.Len(t, resps, 1)
	assert.Equal(t, "*snake\\_case title*\n\nsecond description\n\n[Read at the source](https://example.com/2)",
		resps[0].Text)
}

func TestCtrl_DetailButtonOutlivesLatestList(t *testing.T) {
	ctx := context.Background()
	bms := loadedStore(t)
	details := &DetailsMock{DetailFunc: func(_ context.Context, a store.Article) (revisor.Detail, error) {
		return revisor.Fallback(a), nil
	}}
	rtr := newCtrl(t, bms, details).Routes()

	handle := func(text string) []botx.Response {
		resps, err := rtr.Handle(ctx, request(text))
		require.NoError(t, err)
		return resps
	}

	handle("/news")
	handle("/star 2")
	handle("/star 1")
	handle("/news")

	detail := handle("/open 1")
	require.Len(t, detail, 1)
	starData := detail[0].Buttons[0][0].Data
	assert.Equal(t, "★ Bookmarked", detail[0].Buttons[0][0].Text)

	// the latest list is now [second, first]
	handle("/bookmarks")

	req := request(starData)
	req.Callback, req.MessageID = true, "9"
	resps, err := rtr.Handle(ctx, req)
	require.NoError(t, err)
	require.Len(t, resps, 1)
	assert.Equal(t, "☆ Bookmark", resps[0].Buttons[0][0].Text)

	assert.Equal(t, []store.Article{second}, bms.Bookmarks())
}

func TestCtrl_OpenLinkWithParentheses(t *testing.T) {
	ctx := context.Background()
	a := store.Article{URL: "https://en.wikipedia.org/wiki/Go_(programming_language)", Title: "Go"}

	ctrl := newCtrl(t, loadedStore(t), &DetailsMock{DetailFunc: func(_ context.Context, a store.Article) (revisor.Detail, error) {
		return revisor.Detail{Article: a, Text: "text"}, nil
	}})
	ctrl.Headlines = &HeadlinesMock{TopHeadlinesFunc: func(context.Context) ([]store.Article, error) {
		return []store.Article{a}, nil
	}}
	rtr := ctrl.Routes()

	_, err := rtr.Handle(ctx, request("/news"))
	require.NoError(t, err)

	resps, err := rtr.Handle(ctx, request("/open 1"))
	require.NoError(t, err)
	require.Len(t, resps, 1)
	assert.True(t, strings.HasSuffix(resps[0].Text,
		"[Read at the source](https://en.wikipedia.org/wiki/Go_%28programming_language%29)"), resps[0].Text)
}

func TestCtrl_StaleReferences(t *testing.T) {
	ctx := context.Background()
	rtr := newCtrl(t, loadedStore(t), &DetailsMock{}).Routes()

	for _, text := range []string{"/star 1", "/open 1", "/star abc.1"} {
		resps, err := rtr.Handle(ctx, request(text))
		require.NoError(t, err)
		assert.Equal(t, []botx.Response{{ChatID: "1", Text: staleListText}}, resps, text)
	}

	_, err := rtr.Handle(ctx, request("/news"))
	require.NoError(t, err)

	for _, text := range []string{"/star 0", "/star 3", "/open x"} {
		resps, err := rtr.Handle(ctx, request(text))
		require.NoError(t, err)
		assert.Equal(t, []botx.Response{{ChatID: "1", Text: staleListText}}, resps, text)
	}

	resps, err := rtr.Handle(ctx, request("/star"))
	require.NoError(t, err)
	assert.Equal(t, []botx.Response{{ChatID: "1", Text: "Usage: /star N"}}, resps)
}

func TestCtrl_NotLoaded(t *testing.T) {
	ctx := context.Background()
	bms := bookmark.NewStore(newBolt(t))
	rtr := newCtrl(t, bms, &DetailsMock{}).Routes()

	_, err := rtr.Handle(ctx, request("/news"))
	require.NoError(t, err)

	resps, err := rtr.Handle(ctx, request("/star 1"))
	require.NoError(t, err)
	assert.Equal(t, []botx.Response{{ChatID: "1", Text: "Bookmarks are not available yet, try again later."}}, resps)
}

func TestCtrl_NewsFailed(t *testing.T) {
	ctrl := newCtrl(t, loadedStore(t), &DetailsMock{})
	ctrl.Headlines = &HeadlinesMock{TopHeadlinesFunc: func(context.Context) ([]store.Article, error) {
		return nil, errors.New("newsapi is down")
	}}

	resps, err := ctrl.Routes().Handle(logx.ContextWithRequestID(context.Background(), "x"), request("/news"))
	require.Error(t, err)
	require.Len(t, resps, 1)
	assert.Contains(t, resps[0].Text, "Something went wrong")
}

func TestCtrl_EnsureAllowed(t *testing.T) {
	ctrl := newCtrl(t, loadedStore(t), &DetailsMock{})
	ctrl.AllowedIDs = []string{"42"}
	rtr := ctrl.Routes()

	resps, err := rtr.Handle(context.Background(), request("/news"))
	require.NoError(t, err)
	assert.Equal(t, []botx.Response{{ChatID: "1", Text: "Sorry, this is a private bot."}}, resps)

	req := request("/start")
	req.Chat.ID = "42"
	resps, err = rtr.Handle(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []botx.Response{{ChatID: "42", Text: helpText}}, resps)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 3))
	assert.Equal(t, "ab…", truncate("abc", 2))
	assert.Equal(t, "сл…", truncate("слово", 2))
}

func newCtrl(t *testing.T, bms Bookmarks, details Details) *Ctrl {
	t.Helper()
	return &Ctrl{
		Logger:    slog.New(logx.NoOp()),
		Bookmarks: bms,
		Headlines: &HeadlinesMock{TopHeadlinesFunc: func(context.Context) ([]store.Article, error) {
			return []store.Article{first, second}, nil
		}},
		Details:        details,
		HandlerTimeout: time.Second,
		MaxCards:       10,
		ListTTL:        time.Minute,
	}
}

func request(text string) botx.Request {
	return botx.Request{Chat: botx.Chat{ID: "1", Username: "reader"}, Text: text}
}

func newBolt(t *testing.T) *store.Bolt {
	b, err := store.NewBolt(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, b.Close()) })
	return b
}

func loadedStore(t *testing.T) *bookmark.Store {
	s := bookmark.NewStore(newBolt(t))
	require.NoError(t, s.Load(context.Background()))
	return s
}
