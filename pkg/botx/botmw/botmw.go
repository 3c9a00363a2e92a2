// Package botmw provides middlewares for bot handler.
package botmw

import (
	"context"
	"fmt"
	"time"

	"github.com/Semior001/newsreader/pkg/botx"
	"github.com/samber/lo"
	"golang.org/x/exp/slog"
)

// Logger is a middleware that logs all requests
func Logger(lg *slog.Logger) botx.Middleware {
	return func(next botx.Handler) botx.Handler {
		return func(ctx context.Context, req botx.Request) ([]botx.Response, error) {
			debug := lg.Handler().Enabled(ctx, slog.LevelDebug)

			args := []any{
				slog.String("chat_id", req.Chat.ID),
				slog.String("chat_username", req.Chat.Username),
				slog.String("command", botx.Command(req.Text)),
				slog.Bool("callback", req.Callback),
			}

			if debug {
				lg.DebugCtx(ctx, "request received", append(args, slog.String("text", req.Text))...)
			}

			start := time.Now()
			res, err := next(ctx, req)
			args = append(args, slog.Duration("elapsed", time.Since(start)), slog.Any("err", err))

			if debug {
				lg.DebugCtx(ctx, "request processed", append(args, slog.Any("responses", res))...)
				return res, err
			}

			lg.InfoCtx(ctx, "request processed", append(args,
				slog.Any("responses", lo.Map(res, func(r botx.Response, _ int) botx.Response {
					return botx.Response{ChatID: r.ChatID, EditMessageID: r.EditMessageID}
				})),
			)...)

			return res, err
		}
	}
}

// Recover is a middleware that recovers from panics and turns them into errors.
func Recover(lg *slog.Logger) botx.Middleware {
	return func(next botx.Handler) botx.Handler {
		return func(ctx context.Context, req botx.Request) (resps []botx.Response, err error) {
			defer func() {
				if r := recover(); r != nil {
					lg.ErrorCtx(ctx, "panic recovered", slog.Any("panic", r))
					resps, err = nil, fmt.Errorf("panic: %v", r)
				}
			}()

			return next(ctx, req)
		}
	}
}
