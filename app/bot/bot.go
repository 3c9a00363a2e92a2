// Package bot contains routers and controllers for bots.
package bot

import (
	"context"
	"time"

	"github.com/Semior001/newsreader/app/revisor"
	"github.com/Semior001/newsreader/app/store"
	"github.com/Semior001/newsreader/pkg/botx"
	"github.com/Semior001/newsreader/pkg/botx/botmw"
	cache "github.com/go-pkgz/expirable-cache/v2"
	"github.com/samber/lo"
	"golang.org/x/exp/slog"
)

//go:generate moq -out mock_deps.go . Headlines Details

// Bookmarks provides the bookmark set and the way to change it.
type Bookmarks interface {
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

// Ctrl provides routes and controllers for bot updates.
type Ctrl struct {
	Logger         *slog.Logger
	Bookmarks      Bookmarks
	Headlines      Headlines
	Details        Details
	AllowedIDs     []string
	HandlerTimeout time.Duration
	MaxCards       int
	ListTTL        time.Duration

	lists cache.Cache[string, []store.Article]
}

// Routes returns a multiplexer for bot controllers.
func (c *Ctrl) Routes() *botx.Router {
	ttl := c.ListTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	c.lists = cache.NewCache[string, []store.Article]().WithTTL(ttl).WithMaxKeys(1000)

	rtr := botx.NewRouter()

	rtr.Use(
		botmw.RequestID(),
		botmw.AppendRequestIDOnError(),
		botmw.Logger(c.Logger),
	)
	if c.HandlerTimeout > 0 {
		rtr.Use(botmw.Timeout(c.HandlerTimeout))
	}
	// handler runs in the goroutine of Timeout, recover must be inside it
	rtr.Use(botmw.Recover(c.Logger), c.ensureAllowed)

	rtr.NotFound(c.help)
	rtr.Add("/start", c.help)
	rtr.Add("/help", c.help)
	rtr.Add("/news", c.news)
	rtr.Add("/bookmarks", c.bookmarks)
	rtr.Add("/star", c.star)
	rtr.Add("/open", c.open)

	return rtr
}

const helpText = "I show the latest news and keep the ones you want to read later.\n\n" +
	"/news - top headlines\n" +
	"/bookmarks - saved articles\n" +
	"/star N - save or remove article N of the last list\n" +
	"/open N - read article N of the last list"

func (c *Ctrl) help(_ context.Context, req botx.Request) ([]botx.Response, error) {
	return []botx.Response{{ChatID: req.Chat.ID, Text: helpText}}, nil
}

func (c *Ctrl) ensureAllowed(h botx.Handler) botx.Handler {
	return func(ctx context.Context, req botx.Request) ([]botx.Response, error) {
		if len(c.AllowedIDs) > 0 && !lo.Contains(c.AllowedIDs, req.Chat.ID) {
			c.Logger.WarnCtx(ctx, "request from a chat that is not allowed",
				slog.String("chat_id", req.Chat.ID),
				slog.String("chat_username", req.Chat.Username))

			return []botx.Response{{
				ChatID: req.Chat.ID,
				Text:   "Sorry, this is a private bot.",
			}}, nil
		}

		return h(ctx, req)
	}
}
