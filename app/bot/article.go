package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/Semior001/newsreader/app/bookmark"
	"github.com/Semior001/newsreader/app/revisor"
	"github.com/Semior001/newsreader/app/store"
	"github.com/Semior001/newsreader/pkg/botx"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

const (
	emptyBookmarksText = "No bookmarks yet.\n" +
		"Save articles you want to read later by tapping the bookmark button."
	staleListText = "I don't remember this list anymore, please request it again with /news or /bookmarks."
)

// maxDetailRunes keeps the detail message within telegram limits.
const maxDetailRunes = 3500

func (c *Ctrl) news(ctx context.Context, req botx.Request) ([]botx.Response, error) {
	articles, err := c.Headlines.TopHeadlines(ctx)
	if err != nil {
		return nil, fmt.Errorf("get top headlines: %w", err)
	}

	if len(articles) == 0 {
		return []botx.Response{{ChatID: req.Chat.ID, Text: "No news at the moment, try again later."}}, nil
	}

	return c.cards(req.Chat.ID, articles)
}

func (c *Ctrl) bookmarks(_ context.Context, req botx.Request) ([]botx.Response, error) {
	articles := c.Bookmarks.Bookmarks()
	if len(articles) == 0 {
		return []botx.Response{{ChatID: req.Chat.ID, Text: emptyBookmarksText}}, nil
	}

	return c.cards(req.Chat.ID, articles)
}

// cards remembers the list for the chat and renders a card per article.
func (c *Ctrl) cards(chatID string, articles []store.Article) ([]botx.Response, error) {
	if c.MaxCards > 0 && len(articles) > c.MaxCards {
		articles = articles[:c.MaxCards]
	}

	listID := c.remember(chatID, articles)
	c.lists.Set(chatID+"/"+latestList, articles, 0)

	resps := make([]botx.Response, 0, len(articles))
	for i, a := range articles {
		text, err := render(cardTmpl, a)
		if err != nil {
			return nil, fmt.Errorf("render card %d: %w", i, err)
		}

		ref := fmt.Sprintf("%s.%d", listID, i+1)
		resps = append(resps, botx.Response{
			ChatID:  chatID,
			Text:    fmt.Sprintf("%d. %s", i+1, text),
			Buttons: c.cardButtons(ref, a, false),
		})
	}

	return resps, nil
}

// latestList is the list that references without the list id point to.
const latestList = "latest"

// remember keeps the list for the chat and returns its id.
func (c *Ctrl) remember(chatID string, articles []store.Article) (listID string) {
	listID = uuid.NewString()[:8]
	c.lists.Set(chatID+"/"+listID, articles, 0)
	return listID
}

func (c *Ctrl) cardButtons(ref string, a store.Article, detail bool) [][]botx.Button {
	star := botx.Button{Text: "☆ Bookmark", Data: "/star " + ref}
	if c.Bookmarks.IsBookmarked(a.URL) {
		star.Text = "★ Bookmarked"
	}

	if detail {
		star.Data += " " + detailFlag
		return [][]botx.Button{{star}}
	}

	return [][]botx.Button{{star, {Text: "Open", Data: "/open " + ref}}}
}

// detailFlag marks star buttons of the detail message.
const detailFlag = "d"

func (c *Ctrl) star(ctx context.Context, req botx.Request) ([]botx.Response, error) {
	args := botx.Args(req.Text)
	if len(args) == 0 {
		return []botx.Response{{ChatID: req.Chat.ID, Text: "Usage: /star N"}}, nil
	}

	a, ok := c.resolve(req.Chat.ID, args[0])
	if !ok {
		return []botx.Response{{ChatID: req.Chat.ID, Text: staleListText}}, nil
	}

	bookmarked, err := c.Bookmarks.Toggle(ctx, a)
	if err != nil {
		if errors.Is(err, bookmark.ErrNotLoaded) {
			return []botx.Response{{ChatID: req.Chat.ID, Text: "Bookmarks are not available yet, try again later."}}, nil
		}
		return nil, fmt.Errorf("toggle bookmark: %w", err)
	}

	if req.Callback && req.MessageID != "" {
		detail := len(args) > 1 && args[1] == detailFlag
		return []botx.Response{{
			ChatID:        req.Chat.ID,
			EditMessageID: req.MessageID,
			Buttons:       c.cardButtons(args[0], a, detail),
		}}, nil
	}

	text := "Removed from bookmarks: "
	if bookmarked {
		text = "Bookmarked: "
	}

	return []botx.Response{{ChatID: req.Chat.ID, Text: text + escapeMarkdown(a.Title)}}, nil
}

func (c *Ctrl) open(ctx context.Context, req botx.Request) ([]botx.Response, error) {
	args := botx.Args(req.Text)
	if len(args) == 0 {
		return []botx.Response{{ChatID: req.Chat.ID, Text: "Usage: /open N"}}, nil
	}

	a, ok := c.resolve(req.Chat.ID, args[0])
	if !ok {
		return []botx.Response{{ChatID: req.Chat.ID, Text: staleListText}}, nil
	}

	d, err := c.Details.Detail(ctx, a)
	if err != nil {
		c.Logger.WarnCtx(ctx, "failed to get article detail, showing the feed version",
			slog.String("url", a.URL), slog.Any("err", err))
		d = revisor.Fallback(a)
	}

	// the latest list changes over time, the button must stay with this article
	ref := args[0]
	if !strings.Contains(ref, ".") {
		ref = c.remember(req.Chat.ID, []store.Article{a}) + ".1"
	}

	d.Text = truncate(d.Text, maxDetailRunes)
	text, err := render(detailTmpl, d)
	if err != nil {
		return nil, fmt.Errorf("render detail: %w", err)
	}

	return []botx.Response{{
		ChatID:  req.Chat.ID,
		Text:    text,
		Buttons: c.cardButtons(ref, a, true),
	}}, nil
}

// resolve finds the article by reference, which is either "<list>.<n>",
// as in buttons, or just "<n>" for the latest list shown in the chat.
func (c *Ctrl) resolve(chatID, ref string) (store.Article, bool) {
	listID, num, found := strings.Cut(ref, ".")
	if !found {
		listID, num = latestList, ref
	}

	idx, err := strconv.Atoi(num)
	if err != nil {
		return store.Article{}, false
	}

	articles, ok := c.lists.Get(chatID + "/" + listID)
	if !ok || idx < 1 || idx > len(articles) {
		return store.Article{}, false
	}

	return articles[idx-1], true
}

var funcs = template.FuncMap{"md": escapeMarkdown, "mdURL": escapeLinkURL}

var cardTmpl = template.Must(template.New("card").Funcs(funcs).Parse(
	`*{{md .Title}}*
{{if .Source.Name}}_{{md .Source.Name}}{{if not .PublishedAt.IsZero}}, {{.PublishedAt.Format "Jan 2, 15:04"}}{{end}}_
{{end}}{{with .Description}}
{{md .}}{{end}}`))

var detailTmpl = template.Must(template.New("detail").Funcs(funcs).Parse(
	`*{{md .Title}}*
{{if .Byline}}_{{md .Byline}}_
{{end}}{{if .BulletPoints}}
{{md .BulletPoints}}
{{end}}
{{md .Text}}

[Read at the source]({{mdURL .URL}})`))

func render(tmpl *template.Template, data any) (string, error) {
	sb := &strings.Builder{}
	if err := tmpl.Execute(sb, data); err != nil {
		return "", fmt.Errorf("execute %s template: %w", tmpl.Name(), err)
	}
	return sb.String(), nil
}

// legacy telegram markdown supports escaping only these
var mdEscaper = strings.NewReplacer(
	`*`, `\*`,
	`_`, `\_`,
	"`", "\\`",
	"[", "\\[",
)

func escapeMarkdown(s string) string {
	return mdEscaper.Replace(s)
}

// a closing parenthesis ends the link target, so parentheses are percent-encoded
var linkEscaper = strings.NewReplacer("(", "%28", ")", "%29")

func escapeLinkURL(u string) string {
	return linkEscaper.Replace(u)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
