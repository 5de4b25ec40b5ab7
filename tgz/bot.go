package tgz

import (
	"context"
	"fmt"
)

type tableKind int

// Route tables in matching priority order.
const (
	tableBotCommand tableKind = iota
	tableCommand
	tableTextExact
	tableTextPreg
	tableCallback
	tableCount
)

type slotKind int

// Singleton fallback slots. Each slot is addressable by a fixed action id
// (slotIDs) for redirects and direct runs.
const (
	slotMessage slotKind = iota
	slotPhoto
	slotAudio
	slotVideo
	slotSticker
	slotVoice
	slotDocument
	slotVideoNote
	slotNewChatMembers
	slotLeftChatMember
	slotDefault
	slotCount
)

var slotIDs = [slotCount]string{
	"message",
	"photo",
	"audio",
	"video",
	"sticker",
	"voice",
	"document",
	"video_note",
	"new_chat_members",
	"left_chat_member",
	"fallback",
}

type redirectPair struct {
	from string
	to   string
}

// Bot is the dispatch engine. Routes, buttons and middleware are registered
// during a setup phase; after that the bot is read-only and a single Run
// call matches one update to at most one action and resolves it.
//
// Action ids are unique across every table, slot and button. Registering a
// duplicate id panics, as does an OnTextPreg or OnCommand pattern that does
// not compile: both are programming errors caught at setup.
type Bot struct {
	tg *TGZ

	tables [tableCount][]*Action
	slots  [slotCount]*Action

	btnText  map[string]string
	btnOrder []*Action

	index map[string]*Action

	middlewares      []MiddlewareFunc
	pendingRedirects []redirectPair
}

// NewBot creates a dispatch engine on top of a TGZ client.
func NewBot(tg *TGZ) *Bot {
	return &Bot{
		tg:      tg,
		btnText: make(map[string]string),
		index:   make(map[string]*Action),
	}
}

func (b *Bot) addIndex(a *Action) {
	if _, exists := b.index[a.id]; exists {
		panic(fmt.Sprintf("tgz: duplicate action id %q", a.id))
	}
	b.index[a.id] = a
}

func (b *Bot) register(kind tableKind, id string, conditions []string) *Action {
	a := newAction(id, conditions)
	switch kind {
	case tableCommand:
		compileCommandConditions(a)
	case tableTextPreg:
		compileRegexConditions(a)
	}
	b.addIndex(a)
	b.tables[kind] = append(b.tables[kind], a)
	return a
}

func (b *Bot) registerSlot(kind slotKind) *Action {
	if old := b.slots[kind]; old != nil {
		delete(b.index, old.id)
	}
	a := newAction(slotIDs[kind], nil)
	b.addIndex(a)
	b.slots[kind] = a
	return a
}

// Btn registers a button. Its display text doubles as a text route, and its
// id matches callback queries. The returned action configures the response.
func (b *Bot) Btn(id string, text ...string) *Action {
	display := id
	if len(text) > 0 {
		display = text[0]
	}
	a := newAction(id, []string{display})
	b.addIndex(a)
	b.btnText[id] = display
	b.btnOrder = append(b.btnOrder, a)
	return a
}

// OnBotCommand routes a slash command such as "/start". The command is
// matched case-insensitively against the first word of the message. When no
// command is given the id itself is the command.
func (b *Bot) OnBotCommand(id string, command ...string) *Action {
	return b.register(tableBotCommand, id, command)
}

// OnCommand routes a text command with a custom prefix, such as "!say".
// Patterns may contain the %s, %w and %n placeholders; they compile to
// matchers at registration time.
func (b *Bot) OnCommand(id string, command ...string) *Action {
	return b.register(tableCommand, id, command)
}

// OnText routes an exact text match.
func (b *Bot) OnText(id string, text ...string) *Action {
	return b.register(tableTextExact, id, text)
}

// OnTextPreg routes text by regular expression. Invalid patterns panic at
// registration. The handler receives the whole match followed by the
// capture groups.
func (b *Bot) OnTextPreg(id string, pattern ...string) *Action {
	return b.register(tableTextPreg, id, pattern)
}

// OnCallback routes a callback query by literal data equality.
func (b *Bot) OnCallback(id string, data ...string) *Action {
	return b.register(tableCallback, id, data)
}

// OnMessage sets the fallback for any text message no other route matched.
func (b *Bot) OnMessage() *Action { return b.registerSlot(slotMessage) }

// OnPhoto sets the fallback for photo messages.
func (b *Bot) OnPhoto() *Action { return b.registerSlot(slotPhoto) }

// OnAudio sets the fallback for audio messages.
func (b *Bot) OnAudio() *Action { return b.registerSlot(slotAudio) }

// OnVideo sets the fallback for video messages.
func (b *Bot) OnVideo() *Action { return b.registerSlot(slotVideo) }

// OnSticker sets the fallback for sticker messages.
func (b *Bot) OnSticker() *Action { return b.registerSlot(slotSticker) }

// OnVoice sets the fallback for voice messages.
func (b *Bot) OnVoice() *Action { return b.registerSlot(slotVoice) }

// OnDocument sets the fallback for document messages.
func (b *Bot) OnDocument() *Action { return b.registerSlot(slotDocument) }

// OnVideoNote sets the fallback for video note messages.
func (b *Bot) OnVideoNote() *Action { return b.registerSlot(slotVideoNote) }

// OnNewChatMember fires when users join the chat. The handler receives the
// joined user ids as args.
func (b *Bot) OnNewChatMember() *Action { return b.registerSlot(slotNewChatMembers) }

// OnLeftChatMember fires when a user leaves the chat. The handler receives
// the user id as its only arg.
func (b *Bot) OnLeftChatMember() *Action { return b.registerSlot(slotLeftChatMember) }

// OnDefault sets the final catch-all fired when nothing else matched.
func (b *Bot) OnDefault() *Action { return b.registerSlot(slotDefault) }

// Use appends bot-wide interceptors wrapping the entire dispatch.
func (b *Bot) Use(mw ...MiddlewareFunc) {
	b.middlewares = append(b.middlewares, mw...)
}

// Redirect queues a route-to-route copy: the target's handler, message data
// and popup text replace the source's. Queued redirects are resolved once,
// before the next full dispatch.
func (b *Bot) Redirect(fromID, toID string) {
	b.pendingRedirects = append(b.pendingRedirects, redirectPair{from: fromID, to: toID})
}

// resolveRedirects drains the queue. It must not touch the bot once the
// queue is empty: after setup, Run is called concurrently and the tables
// are only safe for shared reads.
func (b *Bot) resolveRedirects() error {
	if len(b.pendingRedirects) == 0 {
		return nil
	}
	for _, r := range b.pendingRedirects {
		source := b.findActionByID(r.from)
		if source == nil {
			return &ConfigError{Op: "redirect source", ID: r.from}
		}
		target := b.findActionByID(r.to)
		if target == nil {
			return &ConfigError{Op: "redirect target", ID: r.to}
		}
		source.handler = target.handler
		source.msg = target.msg
		source.queryText = target.queryText
	}
	b.pendingRedirects = nil
	return nil
}

// findActionByID resolves an action id across every table, slot and button.
// Ids are globally unique, so the flat index answers in one lookup.
func (b *Bot) findActionByID(id string) *Action {
	return b.index[id]
}

// Run performs one full dispatch pass for the update: resolve queued
// redirects, classify, match, and resolve the winning action through the
// bot-wide middleware chain.
func (b *Bot) Run(ctx context.Context, upd *UpdateContext) error {
	if err := b.resolveRedirects(); err != nil {
		return err
	}
	sess := b.tg.WithUpdate(upd)
	h := chain(func(ctx context.Context, tg *TGZ, _ []string) error {
		return b.dispatch(ctx, tg)
	}, b.middlewares...)
	return h(ctx, sess, nil)
}

// RunAction executes one action by id, bypassing matching, middleware and
// access control. An unknown id is a configuration error.
func (b *Bot) RunAction(ctx context.Context, upd *UpdateContext, id string) error {
	a := b.findActionByID(id)
	if a == nil {
		return &ConfigError{Op: "run", ID: id}
	}
	return b.executeAction(ctx, b.tg.WithUpdate(upd), a, nil)
}
