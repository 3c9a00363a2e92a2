package botx

import "context"

// Handler handles requests.
type Handler func(ctx context.Context, req Request) ([]Response, error)

// Middleware wraps a handler.
type Middleware func(Handler) Handler

// Request is a request for handler.
// Pressed inline buttons come as requests with the button data as Text.
type Request struct {
	MessageID string
	Chat      Chat
	Text      string
	Callback  bool
}

// Chat contains chat information.
type Chat struct {
	ID       string
	Username string
}

// Response is a response from handler.
type Response struct {
	ReplyToMessageID string
	// EditMessageID, if set, makes the API replace buttons
	// of the existing message instead of sending a new one.
	EditMessageID string
	ChatID        string
	Text          string
	Buttons       [][]Button
}

// Button is an inline button attached to the message.
// Pressing it sends Data back as a request.
type Button struct {
	Text string
	Data string
}

// NotFound is a default handler for not found commands.
func NotFound(_ context.Context, req Request) ([]Response, error) {
	return []Response{{
		ChatID: req.Chat.ID,
		Text:   "command not found",
	}}, nil
}
