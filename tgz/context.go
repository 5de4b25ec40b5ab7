package tgz

import (
	"encoding/json"

	"github.com/go-telegram/bot/models"
)

// UpdateType classifies an incoming update by its top-level shape.
type UpdateType string

const (
	TypeText          UpdateType = "text"
	TypeBotCommand    UpdateType = "bot_command"
	TypeCallbackQuery UpdateType = "callback_query"
	TypeEditedMessage UpdateType = "edited_message"
	TypeInlineQuery   UpdateType = "inline_query"
	TypeUnknown       UpdateType = "unknown"
)

// UpdateContext is a read-only view over one incoming update.
// It is constructed once per update and exposes derived fields without
// ever failing: missing data yields zero values.
type UpdateContext struct {
	upd *models.Update
}

// NewUpdateContext wraps an already decoded update.
func NewUpdateContext(upd *models.Update) *UpdateContext {
	return &UpdateContext{upd: upd}
}

// ParseUpdate decodes one raw update payload, e.g. a webhook request body.
func ParseUpdate(data []byte) (*UpdateContext, error) {
	var upd models.Update
	if err := json.Unmarshal(data, &upd); err != nil {
		return nil, err
	}
	return &UpdateContext{upd: &upd}, nil
}

// Update returns the underlying update. Callers must treat it as read-only.
func (c *UpdateContext) Update() *models.Update {
	if c == nil {
		return nil
	}
	return c.upd
}

// Type classifies the update. The precedence is fixed: callback_query, then
// edited_message, then inline_query, then message. A message is a bot_command
// only when its first entity is a bot_command anchored at offset 0.
func (c *UpdateContext) Type() UpdateType {
	if c == nil || c.upd == nil {
		return TypeUnknown
	}
	switch {
	case c.upd.CallbackQuery != nil:
		return TypeCallbackQuery
	case c.upd.EditedMessage != nil:
		return TypeEditedMessage
	case c.upd.InlineQuery != nil:
		return TypeInlineQuery
	case c.upd.Message != nil:
		ents := c.upd.Message.Entities
		if len(ents) > 0 && ents[0].Type == models.MessageEntityTypeBotCommand && ents[0].Offset == 0 {
			return TypeBotCommand
		}
		return TypeText
	}
	return TypeUnknown
}

// Message returns the message carried by the update, if any. Covers both
// plain and edited messages.
func (c *UpdateContext) Message() *models.Message {
	if c == nil || c.upd == nil {
		return nil
	}
	if c.upd.Message != nil {
		return c.upd.Message
	}
	return c.upd.EditedMessage
}

// ChatID returns the chat the update originates from, or 0.
func (c *UpdateContext) ChatID() int64 {
	if c == nil || c.upd == nil {
		return 0
	}
	if m := c.Message(); m != nil {
		return m.Chat.ID
	}
	if cq := c.upd.CallbackQuery; cq != nil {
		if cq.Message.Message != nil {
			return cq.Message.Message.Chat.ID
		}
		if cq.Message.InaccessibleMessage != nil {
			return cq.Message.InaccessibleMessage.Chat.ID
		}
	}
	return 0
}

// UserID returns the id of the user who produced the update, or 0.
func (c *UpdateContext) UserID() int64 {
	if c == nil || c.upd == nil {
		return 0
	}
	if m := c.Message(); m != nil && m.From != nil {
		return m.From.ID
	}
	if cq := c.upd.CallbackQuery; cq != nil {
		return cq.From.ID
	}
	if iq := c.upd.InlineQuery; iq != nil && iq.From != nil {
		return iq.From.ID
	}
	return 0
}

// Text returns the textual payload of the update. It falls back through
// message text, message caption and inline query text, in that order.
func (c *UpdateContext) Text() string {
	if c == nil || c.upd == nil {
		return ""
	}
	if m := c.Message(); m != nil {
		if m.Text != "" {
			return m.Text
		}
		return m.Caption
	}
	if iq := c.upd.InlineQuery; iq != nil {
		return iq.Query
	}
	return ""
}

// MessageID returns the id of the update's message, or of the message a
// callback query was attached to. 0 when the update carries no message.
func (c *UpdateContext) MessageID() int {
	if c == nil || c.upd == nil {
		return 0
	}
	if m := c.Message(); m != nil {
		return m.ID
	}
	if cq := c.upd.CallbackQuery; cq != nil {
		if cq.Message.Message != nil {
			return cq.Message.Message.ID
		}
		if cq.Message.InaccessibleMessage != nil {
			return cq.Message.InaccessibleMessage.MessageID
		}
	}
	return 0
}

// InlineMessageID returns the inline message id of a callback query sent
// from an inline-mode message, or "".
func (c *UpdateContext) InlineMessageID() string {
	if c == nil || c.upd == nil || c.upd.CallbackQuery == nil {
		return ""
	}
	return c.upd.CallbackQuery.InlineMessageID
}

// CallbackData returns the data of a callback query, or "".
func (c *UpdateContext) CallbackData() string {
	if c == nil || c.upd == nil || c.upd.CallbackQuery == nil {
		return ""
	}
	return c.upd.CallbackQuery.Data
}

// QueryID returns the callback query id or the inline query id, or "".
func (c *UpdateContext) QueryID() string {
	if c == nil || c.upd == nil {
		return ""
	}
	if cq := c.upd.CallbackQuery; cq != nil {
		return cq.ID
	}
	if iq := c.upd.InlineQuery; iq != nil {
		return iq.ID
	}
	return ""
}
