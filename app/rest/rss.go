package rest

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	"golang.org/x/exp/slog"
)

// GET /rss
func (s *Server) rss(w http.ResponseWriter, r *http.Request) {
	feed := &feeds.Feed{
		Title:       "Bookmarks",
		Link:        &feeds.Link{Href: strings.TrimSuffix(s.RSSBaseURL, "/") + "/rss"},
		Description: "Articles saved to read later",
		Created:     time.Now(),
	}

	for _, a := range s.Bookmarks.Bookmarks() {
		item := &feeds.Item{
			Id:          a.URL,
			IsPermaLink: "true",
			Title:       a.Title,
			Link:        &feeds.Link{Href: a.URL},
			Description: a.Description,
			Created:     a.PublishedAt,
		}
		if a.Author != "" {
			item.Author = &feeds.Author{Name: a.Author}
		}
		feed.Items = append(feed.Items, item)
	}

	rss, err := feed.ToRss()
	if err != nil {
		s.renderError(w, r, http.StatusInternalServerError, err, "failed to format feed as rss")
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	if _, err = fmt.Fprint(w, rss); err != nil {
		s.Logger.WarnCtx(r.Context(), "failed to write rss feed", slog.Any("err", err))
	}
}
