// Package cmd contains commands for the application.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Semior001/newsreader/app/bookmark"
	"github.com/Semior001/newsreader/app/bot"
	"github.com/Semior001/newsreader/app/headlines"
	"github.com/Semior001/newsreader/app/rest"
	"github.com/Semior001/newsreader/app/revisor"
	"github.com/Semior001/newsreader/app/store"
	"github.com/Semior001/newsreader/pkg/botx"
	"github.com/Semior001/newsreader/pkg/botx/botapi"
	"golang.org/x/exp/slog"
	"golang.org/x/sync/errgroup"
)

// Run is a command to run the reader.
type Run struct {
	StoreOpts

	Bookmarks struct {
		RetryInterval time.Duration `long:"retry-interval" env:"RETRY_INTERVAL" default:"1s" description:"interval between attempts to save bookmarks"`
		FlushTimeout  time.Duration `long:"flush-timeout" env:"FLUSH_TIMEOUT" default:"5s" description:"time to save bookmarks on shutdown"`
	} `group:"bookmarks" namespace:"bookmarks" env-namespace:"BOOKMARKS"`

	News struct {
		APIKey   string        `long:"api-key" env:"API_KEY" required:"true" description:"newsapi.org key"`
		BaseURL  string        `long:"base-url" env:"BASE_URL" default:"https://newsapi.org/v2" description:"newsapi.org base url"`
		Country  string        `long:"country" env:"COUNTRY" default:"us" description:"country of the top headlines"`
		CacheTTL time.Duration `long:"cache-ttl" env:"CACHE_TTL" default:"5m" description:"ttl of the headlines cache, 0 to disable"`
		Timeout  time.Duration `long:"timeout" env:"TIMEOUT" default:"10s" description:"timeout for newsapi.org requests"`
	} `group:"news" namespace:"news" env-namespace:"NEWS"`

	Bot struct {
		Timeout    time.Duration `long:"timeout" env:"TIMEOUT" default:"2m" description:"timeout for requests"`
		AllowedIDs []string      `long:"allowed-ids" env:"ALLOWED_IDS" env-delim:"," description:"chat IDs allowed to use the bot, everyone if empty"`
		MaxCards   int           `long:"max-cards" env:"MAX_CARDS" default:"10" description:"max articles in a single list"`
		ListTTL    time.Duration `long:"list-ttl" env:"LIST_TTL" default:"24h" description:"how long a shown list is remembered"`

		Telegram struct {
			Token string `long:"token" env:"TOKEN" description:"telegram token, bot is disabled if empty"`
		} `group:"telegram" namespace:"telegram" env-namespace:"TELEGRAM"`
	} `group:"bot" namespace:"bot" env-namespace:"BOT"`

	Revisor struct {
		Timeout time.Duration `long:"timeout" env:"TIMEOUT" default:"10s" description:"timeout for fetching article pages"`

		OpenAI struct {
			Token     string        `long:"token" env:"TOKEN" description:"OpenAI token, summaries are disabled if empty"`
			MaxTokens int           `long:"max-tokens" env:"MAX_TOKENS" default:"1000" description:"max tokens for OpenAI"`
			Timeout   time.Duration `long:"timeout" env:"TIMEOUT" default:"5m" description:"timeout for OpenAI calls"`
		} `group:"openai" namespace:"openai" env-namespace:"OPENAI"`
	} `group:"revisor" namespace:"revisor" env-namespace:"REVISOR"`

	HTTP struct {
		Addr       string        `long:"addr" env:"ADDR" description:"address to listen, http api is disabled if empty"`
		RSSBaseURL string        `long:"rss-base-url" env:"RSS_BASE_URL" default:"http://localhost:8080" description:"public url of the server for rss links"`
		Timeout    time.Duration `long:"timeout" env:"TIMEOUT" default:"30s" description:"write timeout"`
	} `group:"http" namespace:"http" env-namespace:"HTTP"`
}

// StoreOpts defines the location of the bookmarks storage.
type StoreOpts struct {
	StorePath string `long:"store-path" env:"STORE_PATH" default:"." description:"parent dir for bolt files"`
}

// Execute runs the command.
func (r Run) Execute(_ []string) error {
	lg := slog.Default()

	if r.Bot.Telegram.Token == "" && r.HTTP.Addr == "" {
		return errors.New("nothing to run, set either telegram token or http address")
	}

	kv, err := store.NewBolt(r.StorePath)
	if err != nil {
		return fmt.Errorf("make store: %w", err)
	}

	defer func() {
		if err := kv.Close(); err != nil {
			lg.Error("close bolt store", slog.Any("err", err))
		}
	}()

	bms := bookmark.NewStore(kv,
		bookmark.WithLogger(lg.With(slog.String("prefix", "bookmarks"))),
		bookmark.WithRetryInterval(r.Bookmarks.RetryInterval),
		bookmark.WithFlushTimeout(r.Bookmarks.FlushTimeout),
	)

	news := headlines.NewNewsAPI(lg.With(slog.String("prefix", "newsapi")), headlines.Params{
		Client:   http.Client{Timeout: r.News.Timeout},
		BaseURL:  r.News.BaseURL,
		APIKey:   r.News.APIKey,
		Country:  r.News.Country,
		CacheTTL: r.News.CacheTTL,
	})

	rev := revisor.NewService(
		lg.With(slog.String("prefix", "revisor")),
		&http.Client{Timeout: r.Revisor.Timeout},
		r.summarizer(lg),
	)

	consumers := []consumer{signals(lg)}

	if r.HTTP.Addr != "" {
		srv := &rest.Server{
			Addr:       r.HTTP.Addr,
			Logger:     lg.With(slog.String("prefix", "rest")),
			Bookmarks:  bms,
			Headlines:  news,
			Details:    rev,
			RSSBaseURL: r.HTTP.RSSBaseURL,
			Timeout:    r.HTTP.Timeout,
		}
		consumers = append(consumers, srv.Run)
	}

	if r.Bot.Telegram.Token != "" {
		runBot, err := r.makeBot(lg, bms, news, rev)
		if err != nil {
			return fmt.Errorf("make bot: %w", err)
		}
		consumers = append(consumers, runBot)
	}

	return serve(context.Background(), lg, bms, consumers...)
}

// consumer serves bookmarks to users until the context is canceled.
type consumer func(ctx context.Context) error

// serve loads bookmarks and runs consumers until one of them fails or the
// context is canceled. The bookmarks writer has its own context and is
// stopped only after all consumers have returned, so a toggle made by
// a request that was in flight during shutdown is still written.
func serve(ctx context.Context, lg *slog.Logger, bms *bookmark.Store, consumers ...consumer) error {
	wctx, stopWriter := context.WithCancel(context.Background())
	defer stopWriter()

	writerDone := make(chan error, 1)
	go func() { writerDone <- bms.Run(wctx) }()

	ewg, ctx := errgroup.WithContext(ctx)
	ewg.Go(func() error {
		// consumers are already serving, toggles wait for the load to finish
		if err := bms.Load(ctx); err != nil {
			lg.Warn("bookmarks are loaded with errors, starting from what is available",
				slog.Any("err", err))
		}
		return nil
	})

	for _, c := range consumers {
		c := c
		ewg.Go(func() error { return c(ctx) })
	}

	err := ewg.Wait()

	stopWriter()
	if werr := <-writerDone; werr != nil && !errors.Is(werr, context.Canceled) {
		lg.Error("bookmarks writer stopped with error", slog.Any("err", werr))
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

// signals stops the group on SIGINT or SIGTERM.
func signals(lg *slog.Logger) consumer {
	return func(ctx context.Context) error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sig)

		select {
		case sig := <-sig:
			lg.Warn("caught signal, stopping", slog.String("signal", sig.String()))
			return fmt.Errorf("caught %s: %w", sig, context.Canceled)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (r Run) summarizer(lg *slog.Logger) revisor.Summarizer {
	if r.Revisor.OpenAI.Token == "" {
		lg.Info("openai token is not set, summaries are disabled")
		return nil
	}

	return revisor.NewChatGPT(
		lg.With(slog.String("prefix", "chatgpt")),
		&http.Client{Timeout: r.Revisor.OpenAI.Timeout},
		r.Revisor.OpenAI.Token,
		r.Revisor.OpenAI.MaxTokens,
	)
}

// makeBot makes the telegram bot, the returned consumer listens for updates
// and stops listening after the workers are done.
func (r Run) makeBot(
	lg *slog.Logger,
	bms *bookmark.Store,
	news *headlines.NewsAPI,
	rev *revisor.Service,
) (consumer, error) {
	api, err := botapi.NewTelegram(lg.With(slog.String("prefix", "telegram")), r.Bot.Telegram.Token, 100)
	if err != nil {
		return nil, fmt.Errorf("make telegram controller: %w", err)
	}

	ctrl := &bot.Ctrl{
		Logger:         lg.With(slog.String("prefix", "bot")),
		Bookmarks:      bms,
		Headlines:      news,
		Details:        rev,
		AllowedIDs:     r.Bot.AllowedIDs,
		HandlerTimeout: r.Bot.Timeout,
		MaxCards:       r.Bot.MaxCards,
		ListTTL:        r.Bot.ListTTL,
	}

	b := botx.NewBot(
		ctrl.Routes().Handle,
		api,
		botx.WithLogger(lg.With(slog.String("prefix", "botx"))),
		botx.WithWorkers(10),
	)

	return func(ctx context.Context) error {
		apiStopped := make(chan struct{})
		go func() {
			lg.Info("starting telegram api")
			api.Run()
			lg.Warn("telegram api stopped listening for updates")
			close(apiStopped)
		}()

		lg.Info("starting bot")
		b.Run(ctx)
		lg.Warn("bot stopped")

		api.Stop()
		<-apiStopped
		return nil
	}, nil
}
