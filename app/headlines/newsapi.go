// Package headlines provides a client for the remote source of top headlines.
package headlines

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Semior001/newsreader/app/store"
	"github.com/Semior001/newsreader/pkg/logx"
	cache "github.com/go-pkgz/expirable-cache/v2"
	"github.com/go-pkgz/requester"
	"github.com/go-pkgz/requester/middleware"
	"github.com/samber/lo"
	"golang.org/x/exp/slog"
)

// DefaultBaseURL is the base URL of newsapi.org v2.
const DefaultBaseURL = "https://newsapi.org/v2"

// removedTitle is a placeholder newsapi.org returns instead of taken down articles.
const removedTitle = "[Removed]"

// NewsAPI is a client for newsapi.org top headlines.
type NewsAPI struct {
	log     *slog.Logger
	rq      *requester.Requester
	baseURL string
	country string

	cacheTTL time.Duration
	cache    cache.Cache[string, []store.Article]
}

// Params defines parameters for NewsAPI.
type Params struct {
	Client   http.Client
	BaseURL  string
	APIKey   string
	Country  string
	CacheTTL time.Duration
}

// NewNewsAPI makes a new NewsAPI client.
func NewNewsAPI(lg *slog.Logger, p Params) *NewsAPI {
	if p.BaseURL == "" {
		p.BaseURL = DefaultBaseURL
	}

	return &NewsAPI{
		log: lg,
		rq: requester.New(p.Client,
			middleware.Header("X-Api-Key", p.APIKey),
			middleware.Header("Accept", "application/json"),
			logx.LoggingRoundTripper(lg, logx.RoundTripperOpts{
				Level:         slog.LevelDebug,
				SecretHeaders: []string{"X-Api-Key"},
				SecretQuery:   []string{"apiKey"},
			}),
		),
		baseURL:  strings.TrimSuffix(p.BaseURL, "/"),
		country:  p.Country,
		cacheTTL: p.CacheTTL,
		cache:    cache.NewCache[string, []store.Article]().WithMaxKeys(10),
	}
}

// cached returns headlines from the cache, zero TTL disables it.
func (n *NewsAPI) cached() ([]store.Article, bool) {
	if n.cacheTTL <= 0 {
		return nil, false
	}
	return n.cache.Get(n.country)
}

// APIError is an error reported by newsapi.org in the response body.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

// Error implements error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("newsapi error %s (status %d): %s", e.Code, e.StatusCode, e.Message)
}

type topHeadlinesResp struct {
	Status       string          `json:"status"`
	TotalResults int             `json:"totalResults"`
	Articles     []store.Article `json:"articles"`
	Code         string          `json:"code"`
	Message      string          `json:"message"`
}

// TopHeadlines returns the current top headlines for the configured country.
func (n *NewsAPI) TopHeadlines(ctx context.Context) ([]store.Article, error) {
	if articles, ok := n.cached(); ok {
		st := n.cache.Stat()
		n.log.DebugCtx(ctx, "headlines are taken from cache",
			slog.String("country", n.country),
			slog.Int("cache_hits", st.Hits),
			slog.Int("cache_misses", st.Misses))
		return articles, nil
	}

	q := url.Values{}
	if n.country != "" {
		q.Set("country", n.country)
	}

	u := n.baseURL + "/top-headlines?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := n.rq.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			n.log.WarnCtx(ctx, "failed to close response body", slog.Any("err", err))
		}
	}()

	var body topHeadlinesResp
	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response with status %d: %w", resp.StatusCode, err)
	}

	if body.Status != "ok" || resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Code: body.Code, Message: body.Message}
	}

	articles := lo.Filter(body.Articles, func(a store.Article, _ int) bool {
		return a.URL != "" && a.Title != removedTitle
	})

	if n.cacheTTL > 0 {
		n.cache.Set(n.country, articles, n.cacheTTL)
	}
	n.log.DebugCtx(ctx, "headlines fetched",
		slog.Int("total", body.TotalResults),
		slog.Int("received", len(articles)),
	)

	return articles, nil
}
