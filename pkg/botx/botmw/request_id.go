package botmw

import (
	"context"
	"fmt"

	"github.com/Semior001/newsreader/pkg/botx"
	"github.com/Semior001/newsreader/pkg/logx"
	"github.com/google/uuid"
)

// RequestID is a middleware that adds request id to context.
func RequestID() botx.Middleware {
	return func(next botx.Handler) botx.Handler {
		return func(ctx context.Context, req botx.Request) ([]botx.Response, error) {
			return next(logx.ContextWithRequestID(ctx, uuid.NewString()), req)
		}
	}
}

// AppendRequestIDOnError is a middleware that adds the request id to the
// responses of a failed request, so that the user can report it.
// If none of the responses is addressed to the requester, adds one.
func AppendRequestIDOnError() botx.Middleware {
	return func(next botx.Handler) botx.Handler {
		return func(ctx context.Context, req botx.Request) ([]botx.Response, error) {
			resps, err := next(ctx, req)
			if err == nil {
				return resps, nil
			}

			reqID, _ := logx.RequestIDFromContext(ctx)
			footer := fmt.Sprintf("\n\nRequest ID: `%s`", reqID)

			hasRequester := false
			for i := range resps {
				if resps[i].EditMessageID != "" {
					continue
				}
				resps[i].Text += footer
				if resps[i].ChatID == req.Chat.ID {
					hasRequester = true
				}
			}

			if !hasRequester {
				resps = append(resps, botx.Response{
					ChatID: req.Chat.ID,
					Text:   "Something went wrong, please try again later." + footer,
				})
			}

			return resps, err
		}
	}
}
