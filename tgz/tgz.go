package tgz

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot/models"
)

// TGZ is the client handed to route handlers. It owns the API transport and
// the default outgoing-message settings, and — during dispatch — is bound to
// the update being processed. Binding produces a shallow copy, so one TGZ
// can serve concurrent updates as long as routes are registered up front.
type TGZ struct {
	api       *APIClient
	parseMode models.ParseMode
	log       *slog.Logger
	upd       *UpdateContext
}

// New creates a TGZ client for the given bot token.
func New(token string, opts ...Option) *TGZ {
	o := newOptions(opts...)
	return &TGZ{
		api: &APIClient{
			token:      token,
			apiURL:     o.apiURL,
			httpClient: o.httpClient,
			log:        o.log,
		},
		parseMode: o.parseMode,
		log:       o.log,
	}
}

// WithUpdate returns a copy of the client bound to one update. The copy
// shares the transport; the original is left untouched.
func (t *TGZ) WithUpdate(upd *UpdateContext) *TGZ {
	bound := *t
	bound.upd = upd
	return &bound
}

// Update returns the update the client is bound to, or nil outside dispatch.
func (t *TGZ) Update() *UpdateContext {
	return t.upd
}

// API exposes the underlying API client for direct calls.
func (t *TGZ) API() *APIClient {
	return t.api
}

// CallAPI invokes an arbitrary Bot API method. This is the escape hatch for
// methods the typed builders do not cover.
func (t *TGZ) CallAPI(ctx context.Context, method string, params map[string]any) (*APIResponse, error) {
	return t.api.Call(ctx, method, params)
}

// Msg starts a message builder bound to the current update's chat.
func (t *TGZ) Msg(text string) *Message {
	return &Message{
		tg:        t,
		text:      text,
		parseMode: t.parseMode,
	}
}

// Poll starts a poll builder of the given kind bound to the current chat.
func (t *TGZ) Poll(kind PollKind) *Poll {
	if kind != PollQuiz {
		kind = PollRegular
	}
	return &Poll{
		tg:   t,
		kind: kind,
	}
}

// Inline starts an inline query result builder. The default parse mode of
// the client is applied to the result content.
func (t *TGZ) Inline(kind InlineType) *Inline {
	return newInline(kind, t.parseMode)
}

// AnswerCallbackQuery acknowledges a callback query. Extra params (text,
// show_alert, url, cache_time) are merged into the call.
func (t *TGZ) AnswerCallbackQuery(ctx context.Context, queryID string, params map[string]any) (*APIResponse, error) {
	merged := map[string]any{"callback_query_id": queryID}
	for k, v := range params {
		merged[k] = v
	}
	return t.api.Call(ctx, "answerCallbackQuery", merged)
}

// SendMessage sends a plain text message to the given chat.
func (t *TGZ) SendMessage(ctx context.Context, chatID int64, text string) (*APIResponse, error) {
	return t.api.Call(ctx, "sendMessage", map[string]any{
		"chat_id": chatID,
		"text":    text,
	})
}
