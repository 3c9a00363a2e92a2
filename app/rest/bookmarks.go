package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Semior001/newsreader/app/bookmark"
	"github.com/Semior001/newsreader/app/revisor"
	"github.com/Semior001/newsreader/app/store"
	"github.com/samber/lo"
	"golang.org/x/exp/slog"
)

type headline struct {
	store.Article
	Bookmarked bool `json:"bookmarked"`
}

// GET /v1/headlines
func (s *Server) headlines(w http.ResponseWriter, r *http.Request) {
	articles, err := s.Headlines.TopHeadlines(r.Context())
	if err != nil {
		s.renderError(w, r, http.StatusBadGateway, err, "failed to get headlines")
		return
	}

	resp := lo.Map(articles, func(a store.Article, _ int) headline {
		return headline{Article: a, Bookmarked: s.Bookmarks.IsBookmarked(a.URL)}
	})

	s.renderJSON(w, r, http.StatusOK, resp)
}

// GET /v1/bookmarks
func (s *Server) bookmarks(w http.ResponseWriter, r *http.Request) {
	articles := s.Bookmarks.Bookmarks()
	if articles == nil {
		articles = []store.Article{}
	}

	s.renderJSON(w, r, http.StatusOK, articles)
}

type bookmarkedResp struct {
	Bookmarked bool `json:"bookmarked"`
}

// GET /v1/bookmarks/check?url=
func (s *Server) check(w http.ResponseWriter, r *http.Request) {
	u := r.URL.Query().Get("url")
	if u == "" {
		s.renderError(w, r, http.StatusBadRequest, errors.New("empty url"), "url is required")
		return
	}

	s.renderJSON(w, r, http.StatusOK, bookmarkedResp{Bookmarked: s.Bookmarks.IsBookmarked(u)})
}

// POST /v1/bookmarks/toggle
func (s *Server) toggle(w http.ResponseWriter, r *http.Request) {
	var a store.Article
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		s.renderError(w, r, http.StatusBadRequest, err, "failed to decode article")
		return
	}

	if a.URL == "" {
		s.renderError(w, r, http.StatusBadRequest, errors.New("empty url"), "article url is required")
		return
	}

	bookmarked, err := s.Bookmarks.Toggle(r.Context(), a)
	switch {
	case errors.Is(err, bookmark.ErrNotLoaded):
		s.renderError(w, r, http.StatusServiceUnavailable, err, "bookmarks are not loaded yet")
		return
	case err != nil:
		s.renderError(w, r, http.StatusInternalServerError, err, "failed to toggle bookmark")
		return
	}

	s.Logger.InfoCtx(r.Context(), "bookmark toggled",
		slog.String("url", a.URL), slog.Bool("bookmarked", bookmarked))

	s.renderJSON(w, r, http.StatusOK, bookmarkedResp{Bookmarked: bookmarked})
}

type detailResp struct {
	revisor.Detail
	Bookmarked bool `json:"bookmarked"`
}

// GET /v1/articles/detail?url=
func (s *Server) detail(w http.ResponseWriter, r *http.Request) {
	u := r.URL.Query().Get("url")
	if u == "" {
		s.renderError(w, r, http.StatusBadRequest, errors.New("empty url"), "url is required")
		return
	}

	a, found, err := s.find(r, u)
	if err != nil {
		s.renderError(w, r, http.StatusBadGateway, err, "failed to look up article")
		return
	}
	if !found {
		s.renderError(w, r, http.StatusNotFound, fmt.Errorf("article %q not found", u), "article not found")
		return
	}

	d, err := s.Details.Detail(r.Context(), a)
	if err != nil {
		s.Logger.WarnCtx(r.Context(), "failed to get article detail, responding with the feed version",
			slog.String("url", a.URL), slog.Any("err", err))
		d = revisor.Fallback(a)
	}

	s.renderJSON(w, r, http.StatusOK, detailResp{Detail: d, Bookmarked: s.Bookmarks.IsBookmarked(a.URL)})
}

// find looks for the article among bookmarks first and then among headlines.
func (s *Server) find(r *http.Request, u string) (store.Article, bool, error) {
	byURL := func(a store.Article) bool { return a.URL == u }

	if a, ok := lo.Find(s.Bookmarks.Bookmarks(), byURL); ok {
		return a, true, nil
	}

	articles, err := s.Headlines.TopHeadlines(r.Context())
	if err != nil {
		return store.Article{}, false, fmt.Errorf("get headlines: %w", err)
	}

	a, ok := lo.Find(articles, byURL)
	return a, ok, nil
}
