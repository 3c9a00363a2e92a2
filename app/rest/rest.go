// Package rest provides the HTTP API over headlines and bookmarks.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Semior001/newsreader/app/revisor"
	"github.com/Semior001/newsreader/app/store"
	"github.com/Semior001/newsreader/pkg/logx"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/exp/slog"
)

//go:generate moq -out mock_deps.go . Headlines Details

// Bookmarker provides the bookmark set and the way to change it.
type Bookmarker interface {
	Bookmarks() []store.Article
	IsBookmarked(url string) bool
	Toggle(ctx context.Context, a store.Article) (bool, error)
}

// Headlines provides the top headlines.
type Headlines interface {
	TopHeadlines(ctx context.Context) ([]store.Article, error)
}

// Details provides the detail view of an article.
type Details interface {
	Detail(ctx context.Context, a store.Article) (revisor.Detail, error)
}

// Server serves the HTTP API.
type Server struct {
	Addr      string
	Logger    *slog.Logger
	Bookmarks Bookmarker
	Headlines Headlines
	Details   Details

	// RSSBaseURL is the public address of the server, used for links in the feed.
	RSSBaseURL string
	Timeout    time.Duration
}

// Run starts the server and shuts it down when the context is canceled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      s.Timeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("starting http server", slog.String("addr", s.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen and serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return ctx.Err()
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.Use(requestID, s.logging)

	r.HandleFunc("/v1/headlines", s.headlines).Methods(http.MethodGet)
	r.HandleFunc("/v1/bookmarks", s.bookmarks).Methods(http.MethodGet)
	r.HandleFunc("/v1/bookmarks/check", s.check).Methods(http.MethodGet)
	r.HandleFunc("/v1/bookmarks/toggle", s.toggle).Methods(http.MethodPost)
	r.HandleFunc("/v1/articles/detail", s.detail).Methods(http.MethodGet)
	r.HandleFunc("/rss", s.rss).Methods(http.MethodGet)

	return r
}

const requestIDHeader = "X-Request-ID"

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}

		w.Header().Set(requestIDHeader, reqID)
		next.ServeHTTP(w, r.WithContext(logx.ContextWithRequestID(r.Context(), reqID)))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (s *Server) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		s.Logger.LogAttrs(r.Context(), slog.LevelDebug, "http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", sw.status),
			slog.Duration("elapsed", time.Since(start)),
		)
	})
}

type errResp struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, err error, msg string) {
	ctx := r.Context()
	if status >= http.StatusInternalServerError {
		s.Logger.ErrorCtx(ctx, msg, slog.Any("err", err))
	} else {
		s.Logger.DebugCtx(ctx, msg, slog.Any("err", err))
	}

	reqID, _ := logx.RequestIDFromContext(ctx)
	s.renderJSON(w, r, status, errResp{Error: msg, RequestID: reqID})
}

func (s *Server) renderJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.WarnCtx(r.Context(), "failed to write response", slog.Any("err", err))
	}
}
