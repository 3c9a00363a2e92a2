// Package revisor builds the detail view of an article:
// the full readable text of the page and an optional summary.
package revisor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Semior001/newsreader/app/store"
	"golang.org/x/exp/slog"
)

// Detail is an article with its extracted content.
type Detail struct {
	store.Article
	Text         string `json:"text"`
	Byline       string `json:"byline,omitempty"`
	SiteName     string `json:"siteName,omitempty"`
	BulletPoints string `json:"bulletPoints,omitempty"`
}

// Fallback makes a detail from the article itself,
// for the cases when the page can't be fetched.
func Fallback(a store.Article) Detail {
	text := a.Content
	if text == "" {
		text = a.Description
	}
	return Detail{Article: a, Text: text}
}

// Summarizer makes a short summary of the article.
type Summarizer interface {
	BulletPoints(ctx context.Context, d Detail) (string, error)
}

// Service is a main application service.
type Service struct {
	log        *slog.Logger
	cl         *http.Client
	summarizer Summarizer
	extractor  Extractor
}

// NewService creates new service. Summarizer might be nil.
func NewService(lg *slog.Logger, cl *http.Client, summarizer Summarizer) *Service {
	return &Service{
		log:        lg,
		cl:         cl,
		summarizer: summarizer,
		extractor:  Extractor{},
	}
}

// Detail fetches the article page and extracts its content.
// Summarizer failures are logged and don't fail the call.
func (s *Service) Detail(ctx context.Context, a store.Article) (Detail, error) {
	s.log.DebugCtx(ctx, "extracting article", slog.String("url", a.URL))

	u, err := url.Parse(a.URL)
	if err != nil {
		return Detail{}, fmt.Errorf("parse article url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return Detail{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := s.cl.Do(req)
	if err != nil {
		return Detail{}, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			s.log.WarnCtx(ctx, "failed to close response body", slog.Any("err", err))
		}
	}()

	ok := resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices
	if !ok {
		return Detail{}, fmt.Errorf("bad status code: %d", resp.StatusCode)
	}

	ex, err := s.extractor.Extract(resp.Body, u)
	if err != nil {
		return Detail{}, fmt.Errorf("extract article: %w", err)
	}

	d := Detail{Article: a, Text: ex.Text, Byline: ex.Byline, SiteName: ex.SiteName}
	if d.Title == "" {
		d.Title = ex.Title
	}
	if d.URLToImage == "" {
		d.URLToImage = ex.Image
	}

	if s.summarizer == nil {
		return d, nil
	}

	if d.BulletPoints, err = s.summarizer.BulletPoints(ctx, d); err != nil {
		lvl := slog.LevelWarn
		if errors.Is(err, ErrTooManyTokens) {
			lvl = slog.LevelInfo
		}
		s.log.LogAttrs(ctx, lvl, "article is not summarized", slog.String("url", a.URL), slog.Any("err", err))
	}

	return d, nil
}
