package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Semior001/newsreader/app/bookmark"
	"github.com/Semior001/newsreader/app/revisor"
	"github.com/Semior001/newsreader/app/store"
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
		Author:      "Jane Doe",
		PublishedAt: time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC),
	}
	second = store.Article{URL: "https://example.com/2", Title: "Title two"}
)

func TestServer_Headlines(t *testing.T) {
	bms := loadedStore(t)
	_, err := bms.Toggle(context.Background(), second)
	require.NoError(t, err)

	srv := newServer(bms)

	rec := serve(srv, http.MethodGet, "/v1/headlines", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var resp []struct {
		URL        string `json:"url"`
		Title      string `json:"title"`
		Bookmarked bool   `json:"bookmarked"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp, 2)
	assert.Equal(t, first.URL, resp[0].URL)
	assert.Equal(t, "Title one", resp[0].Title)
	assert.False(t, resp[0].Bookmarked)
	assert.Equal(t, second.URL, resp[1].URL)
	assert.True(t, resp[1].Bookmarked)

	t.Run("source failed", func(t *testing.T) {
		srv.Headlines = &HeadlinesMock{TopHeadlinesFunc: func(context.Context) ([]store.Article, error) {
			return nil, errors.New("newsapi is down")
		}}

		req := httptest.NewRequest(http.MethodGet, "/v1/headlines", http.NoBody)
		req.Header.Set("X-Request-ID", "req-1")
		rec := httptest.NewRecorder()
		srv.routes().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.JSONEq(t, `{"error":"failed to get headlines","request_id":"req-1"}`, rec.Body.String())
	})
}

func TestServer_ToggleAndList(t *testing.T) {
	bms := loadedStore(t)
	srv := newServer(bms)

	rec := serve(srv, http.MethodGet, "/v1/bookmarks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	body, err := json.Marshal(first)
	require.NoError(t, err)

	rec = serve(srv, http.MethodPost, "/v1/bookmarks/toggle", string(body))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"bookmarked":true}`, rec.Body.String())

	rec = serve(srv, http.MethodGet, "/v1/bookmarks/check?url=https%3A%2F%2Fexample.com%2F1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"bookmarked":true}`, rec.Body.String())

	rec = serve(srv, http.MethodGet, "/v1/bookmarks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []store.Article
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	assert.Equal(t, []store.Article{first}, list)

	rec = serve(srv, http.MethodPost, "/v1/bookmarks/toggle", string(body))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"bookmarked":false}`, rec.Body.String())
	assert.Empty(t, bms.Bookmarks())

	rec = serve(srv, http.MethodGet, "/v1/bookmarks/check?url=https%3A%2F%2Fexample.com%2F1", "")
	assert.JSONEq(t, `{"bookmarked":false}`, rec.Body.String())
}

func TestServer_ToggleErrors(t *testing.T) {
	t.Run("bad json", func(t *testing.T) {
		rec := serve(newServer(loadedStore(t)), http.MethodPost, "/v1/bookmarks/toggle", "{")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty url", func(t *testing.T) {
		rec := serve(newServer(loadedStore(t)), http.MethodPost, "/v1/bookmarks/toggle", `{"title":"x"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not loaded", func(t *testing.T) {
		srv := newServer(bookmark.NewStore(newBolt(t)))
		rec := serve(srv, http.MethodPost, "/v1/bookmarks/toggle", `{"url":"https://example.com/1"}`)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("wrong method", func(t *testing.T) {
		rec := serve(newServer(loadedStore(t)), http.MethodGet, "/v1/bookmarks/toggle", "")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	t.Run("check without url", func(t *testing.T) {
		rec := serve(newServer(loadedStore(t)), http.MethodGet, "/v1/bookmarks/check", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestServer_Detail(t *testing.T) {
	srv := newServer(loadedStore(t))
	srv.Details = &DetailsMock{DetailFunc: func(_ context.Context, a store.Article) (revisor.Detail, error) {
		if a.URL == second.URL {
			return revisor.Detail{}, errors.New("forbidden")
		}
		return revisor.Detail{Article: a, Text: "full text", BulletPoints: "- point"}, nil
	}}

	rec := serve(srv, http.MethodGet, "/v1/articles/detail?url=https%3A%2F%2Fexample.com%2F1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		URL          string `json:"url"`
		Text         string `json:"text"`
		BulletPoints string `json:"bulletPoints"`
		Bookmarked   bool   `json:"bookmarked"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, first.URL, resp.URL)
	assert.Equal(t, "full text", resp.Text)
	assert.Equal(t, "- point", resp.BulletPoints)
	assert.False(t, resp.Bookmarked)

	t.Run("fallback", func(t *testing.T) {
		rec := serve(srv, http.MethodGet, "/v1/articles/detail?url=https%3A%2F%2Fexample.com%2F2", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"title":"Title two"`)
	})

	t.Run("bookmarked article is found without headlines", func(t *testing.T) {
		a := store.Article{URL: "https://example.com/old", Title: "Old one"}
		_, err := srv.Bookmarks.Toggle(context.Background(), a)
		require.NoError(t, err)

		rec := serve(srv, http.MethodGet, "/v1/articles/detail?url=https%3A%2F%2Fexample.com%2Fold", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"bookmarked":true`)
	})

	t.Run("unknown", func(t *testing.T) {
		rec := serve(srv, http.MethodGet, "/v1/articles/detail?url=https%3A%2F%2Fexample.com%2F3", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestServer_RSS(t *testing.T) {
	bms := loadedStore(t)
	for _, a := range []store.Article{first, second} {
		_, err := bms.Toggle(context.Background(), a)
		require.NoError(t, err)
	}

	rec := serve(newServer(bms), http.MethodGet, "/rss", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/rss+xml")

	body := rec.Body.String()
	assert.Contains(t, body, "<link>https://news.example.com/rss</link>")
	assert.Contains(t, body, "<title>Title one</title>")
	assert.Contains(t, body, "<link>https://example.com/1</link>")
	assert.Contains(t, body, "<title>Title two</title>")
	assert.Less(t, strings.Index(body, "Title one"), strings.Index(body, "Title two"))
}

func TestServer_Run(t *testing.T) {
	srv := newServer(loadedStore(t))
	srv.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func newServer(bms Bookmarker) *Server {
	return &Server{
		Logger:    slog.New(logx.NoOp()),
		Bookmarks: bms,
		Headlines: &HeadlinesMock{TopHeadlinesFunc: func(context.Context) ([]store.Article, error) {
			return []store.Article{first, second}, nil
		}},
		Details:    &DetailsMock{},
		RSSBaseURL: "https://news.example.com/",
	}
}

func serve(srv *Server, method, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))
	return rec
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
