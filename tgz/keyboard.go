package tgz

import (
	"github.com/go-telegram/bot/models"
	"github.com/pkg/errors"
)

// Button is one entry of a declarative keyboard row. It is either a
// reference to a button registered with Bot.Btn (ID set) or a literal
// button. Literal buttons use Text plus at most one action field.
type Button struct {
	ID              string // reference to a registered button
	Text            string
	Data            string // callback data
	URL             string
	WebApp          string // web app URL
	RequestContact  bool
	RequestLocation bool
}

// BtnID references a button registered with Bot.Btn by its id.
func BtnID(id string) Button {
	return Button{ID: id}
}

// BtnText is a plain reply-keyboard button.
func BtnText(text string) Button {
	return Button{Text: text}
}

// BtnData is an inline button firing a callback query with the given data.
func BtnData(text, data string) Button {
	return Button{Text: text, Data: data}
}

// BtnURL is an inline button opening a URL.
func BtnURL(text, url string) Button {
	return Button{Text: text, URL: url}
}

// BtnWebApp is an inline button opening a Telegram web app.
func BtnWebApp(text, url string) Button {
	return Button{Text: text, WebApp: url}
}

// BtnContact is a reply-keyboard button requesting the user's contact.
func BtnContact(text string) Button {
	return Button{Text: text, RequestContact: true}
}

// BtnLocation is a reply-keyboard button requesting the user's location.
func BtnLocation(text string) Button {
	return Button{Text: text, RequestLocation: true}
}

// BtnPayload is an inline button whose callback data carries a structured
// payload encoded as "route:payload". Handlers decode it with UnmarshalData.
func BtnPayload[T any](text, route string, payload T) Button {
	return Button{Text: text, Data: MarshalData(route, payload)}
}

func (b Button) toInline() (models.InlineKeyboardButton, error) {
	out := models.InlineKeyboardButton{Text: b.Text}
	switch {
	case b.Data != "":
		out.CallbackData = b.Data
	case b.URL != "":
		out.URL = b.URL
	case b.WebApp != "":
		out.WebApp = &models.WebAppInfo{URL: b.WebApp}
	default:
		return out, errors.Wrapf(ErrBadKeyboardButton, "inline button %q needs callback data, url or web app", b.Text)
	}
	if out.Text == "" {
		return out, errors.Wrap(ErrBadKeyboardButton, "inline button has no text")
	}
	return out, nil
}

func (b Button) toReply() (models.KeyboardButton, error) {
	if b.Text == "" {
		return models.KeyboardButton{}, errors.Wrap(ErrBadKeyboardButton, "reply button has no text")
	}
	out := models.KeyboardButton{
		Text:            b.Text,
		RequestContact:  b.RequestContact,
		RequestLocation: b.RequestLocation,
	}
	if b.WebApp != "" {
		out.WebApp = &models.WebAppInfo{URL: b.WebApp}
	}
	return out, nil
}

// InlineKeyboard assembles rows of literal buttons into inline markup.
// Rows that end up empty are dropped; malformed buttons fail the build.
func InlineKeyboard(rows [][]Button) (*models.InlineKeyboardMarkup, error) {
	keyboard := make([][]models.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		out := make([]models.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			btn, err := b.toInline()
			if err != nil {
				return nil, err
			}
			out = append(out, btn)
		}
		if len(out) > 0 {
			keyboard = append(keyboard, out)
		}
	}
	if len(keyboard) == 0 {
		return nil, nil
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: keyboard}, nil
}

// ReplyKeyboard assembles rows of literal buttons into reply markup.
func ReplyKeyboard(rows [][]Button, oneTime, resize bool) (*models.ReplyKeyboardMarkup, error) {
	keyboard := make([][]models.KeyboardButton, 0, len(rows))
	for _, row := range rows {
		out := make([]models.KeyboardButton, 0, len(row))
		for _, b := range row {
			btn, err := b.toReply()
			if err != nil {
				return nil, err
			}
			out = append(out, btn)
		}
		if len(out) > 0 {
			keyboard = append(keyboard, out)
		}
	}
	if len(keyboard) == 0 {
		return nil, nil
	}
	return &models.ReplyKeyboardMarkup{
		Keyboard:        keyboard,
		OneTimeKeyboard: oneTime,
		ResizeKeyboard:  resize,
	}, nil
}
