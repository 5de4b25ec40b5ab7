package tgz

import (
	"context"

	"github.com/go-telegram/bot/models"
	"github.com/pkg/errors"
)

// Message is a fluent builder for one outgoing message. It is bound to the
// chat of the update it was created from; Send ships it, SendEdit rewrites
// an existing message instead.
type Message struct {
	tg        *TGZ
	text      string
	parseMode models.ParseMode

	img     []string
	gif     string
	video   string
	audio   string
	voice   string
	doc     string
	sticker string
	dice    string

	kbdRows   [][]Button
	kbdSet    bool
	inline    bool
	oneTime   bool
	resize    bool
	removeKbd bool

	replyAuto bool
	replyTo   int
	params    map[string]any
}

// Text replaces the message text.
func (m *Message) Text(text string) *Message {
	m.text = text
	return m
}

// ParseMode overrides the client's default parse mode for this message.
func (m *Message) ParseMode(mode models.ParseMode) *Message {
	m.parseMode = mode
	return m
}

// Img attaches one photo, or a media group when called with several URLs or
// file ids.
func (m *Message) Img(urls ...string) *Message {
	m.img = append(m.img, urls...)
	return m
}

// Gif attaches an animation.
func (m *Message) Gif(url string) *Message {
	m.gif = url
	return m
}

// Video attaches a video.
func (m *Message) Video(url string) *Message {
	m.video = url
	return m
}

// Audio attaches an audio file.
func (m *Message) Audio(url string) *Message {
	m.audio = url
	return m
}

// Voice attaches a voice note.
func (m *Message) Voice(url string) *Message {
	m.voice = url
	return m
}

// Doc attaches a document.
func (m *Message) Doc(url string) *Message {
	m.doc = url
	return m
}

// Sticker turns the message into a sticker.
func (m *Message) Sticker(fileID string) *Message {
	m.sticker = fileID
	return m
}

// Dice turns the message into a dice roll of the given emoji.
func (m *Message) Dice(emoji string) *Message {
	m.dice = emoji
	return m
}

// Kbd attaches a reply keyboard of literal buttons.
func (m *Message) Kbd(rows [][]Button, oneTime, resize bool) *Message {
	m.kbdRows = rows
	m.kbdSet = true
	m.inline = false
	m.oneTime = oneTime
	m.resize = resize
	return m
}

// InlineKbd attaches an inline keyboard of literal buttons.
func (m *Message) InlineKbd(rows [][]Button) *Message {
	m.kbdRows = rows
	m.kbdSet = true
	m.inline = true
	return m
}

// RemoveKbd removes the chat's reply keyboard with this message.
func (m *Message) RemoveKbd() *Message {
	m.removeKbd = true
	return m
}

// Reply marks the message as a reply to the triggering message.
func (m *Message) Reply() *Message {
	m.replyAuto = true
	return m
}

// ReplyTo marks the message as a reply to an explicit message id.
func (m *Message) ReplyTo(messageID int) *Message {
	m.replyTo = messageID
	return m
}

// Params merges arbitrary extra fields into the outgoing call, overriding
// anything the builder produced.
func (m *Message) Params(params map[string]any) *Message {
	m.params = params
	return m
}

func (m *Message) replyMarkup() (any, error) {
	if m.kbdSet {
		if m.inline {
			markup, err := InlineKeyboard(m.kbdRows)
			if err != nil || markup == nil {
				return nil, err
			}
			return markup, nil
		}
		markup, err := ReplyKeyboard(m.kbdRows, m.oneTime, m.resize)
		if err != nil || markup == nil {
			return nil, err
		}
		return markup, nil
	}
	if m.removeKbd {
		return &models.ReplyKeyboardRemove{RemoveKeyboard: true}, nil
	}
	return nil, nil
}

// method picks the API method and its media payload.
func (m *Message) method() (string, map[string]any) {
	switch {
	case len(m.img) == 1:
		return "sendPhoto", map[string]any{"photo": m.img[0], "caption": m.text}
	case len(m.img) > 1:
		media := make([]map[string]any, 0, len(m.img))
		for i, url := range m.img {
			item := map[string]any{"type": "photo", "media": url}
			if i == 0 && m.text != "" {
				item["caption"] = m.text
				if m.parseMode != "" {
					item["parse_mode"] = m.parseMode
				}
			}
			media = append(media, item)
		}
		return "sendMediaGroup", map[string]any{"media": media}
	case m.gif != "":
		return "sendAnimation", map[string]any{"animation": m.gif, "caption": m.text}
	case m.video != "":
		return "sendVideo", map[string]any{"video": m.video, "caption": m.text}
	case m.audio != "":
		return "sendAudio", map[string]any{"audio": m.audio, "caption": m.text}
	case m.voice != "":
		return "sendVoice", map[string]any{"voice": m.voice, "caption": m.text}
	case m.doc != "":
		return "sendDocument", map[string]any{"document": m.doc, "caption": m.text}
	case m.sticker != "":
		return "sendSticker", map[string]any{"sticker": m.sticker}
	case m.dice != "":
		return "sendDice", map[string]any{"emoji": m.dice}
	default:
		return "sendMessage", map[string]any{"text": m.text}
	}
}

func (m *Message) buildParams(chatID int64, base map[string]any) (map[string]any, error) {
	base["chat_id"] = chatID
	if m.parseMode != "" {
		if _, isMedia := base["caption"]; isMedia || base["text"] != nil {
			base["parse_mode"] = m.parseMode
		}
	}
	markup, err := m.replyMarkup()
	if err != nil {
		return nil, err
	}
	if markup != nil {
		base["reply_markup"] = markup
	}
	replyTo := m.replyTo
	if replyTo == 0 && m.replyAuto {
		replyTo = m.tg.Update().MessageID()
	}
	if replyTo != 0 {
		base["reply_to_message_id"] = replyTo
	}
	for k, v := range m.params {
		base[k] = v
	}
	return base, nil
}

// Send ships the message to the chat of the bound update.
func (m *Message) Send(ctx context.Context) (*APIResponse, error) {
	return m.SendTo(ctx, m.tg.Update().ChatID())
}

// SendTo ships the message to an explicit chat.
func (m *Message) SendTo(ctx context.Context, chatID int64) (*APIResponse, error) {
	method, base := m.method()
	params, err := m.buildParams(chatID, base)
	if err != nil {
		return nil, err
	}
	return m.tg.api.Call(ctx, method, params)
}

// SendEdit rewrites the text of the message the bound update refers to,
// typically the message a pressed button was attached to.
func (m *Message) SendEdit(ctx context.Context) (*APIResponse, error) {
	return m.SendEditTo(ctx, m.tg.Update().ChatID(), m.tg.Update().MessageID())
}

// SendEditTo rewrites the text of an explicit message.
func (m *Message) SendEditTo(ctx context.Context, chatID int64, messageID int) (*APIResponse, error) {
	return m.sendEdit(ctx, "editMessageText", map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       m.text,
	})
}

// SendEditCaption rewrites the caption of the message the bound update
// refers to.
func (m *Message) SendEditCaption(ctx context.Context) (*APIResponse, error) {
	return m.sendEdit(ctx, "editMessageCaption", map[string]any{
		"chat_id":    m.tg.Update().ChatID(),
		"message_id": m.tg.Update().MessageID(),
		"caption":    m.text,
	})
}

func (m *Message) sendEdit(ctx context.Context, method string, params map[string]any) (*APIResponse, error) {
	if params["message_id"] == 0 {
		return nil, errors.New("tgz: no message to edit in this update")
	}
	if m.parseMode != "" {
		params["parse_mode"] = m.parseMode
	}
	markup, err := m.replyMarkup()
	if err != nil {
		return nil, err
	}
	if markup != nil {
		params["reply_markup"] = markup
	}
	for k, v := range m.params {
		params[k] = v
	}
	return m.tg.api.Call(ctx, method, params)
}
