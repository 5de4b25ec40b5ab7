package tgz

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"
)

// matchKind tags how an action was reached; the per-route resolution uses
// it to decide between sending a message and acknowledging a callback.
type matchKind int

const (
	kindText matchKind = iota
	kindBotCommand
	kindTextButton
	kindCallback
	kindButtonCallback
)

func (k matchKind) callbackDriven() bool {
	return k == kindCallback || k == kindButtonCallback
}

// dispatch runs the matching algorithm for one update. Tables are consulted
// in fixed priority order and the first match wins; at most one action fires
// per update.
func (b *Bot) dispatch(ctx context.Context, tg *TGZ) error {
	upd := tg.Update()
	typ := upd.Type()
	text := upd.Text()

	if typ == TypeCallbackQuery {
		data := upd.CallbackData()
		for _, a := range b.btnOrder {
			if a.id == data {
				return b.dispatchAnswer(ctx, tg, a, kindButtonCallback, nil)
			}
		}
		for _, a := range b.tables[tableCallback] {
			if matchLiteral(a, data) {
				return b.dispatchAnswer(ctx, tg, a, kindCallback, nil)
			}
		}
		tg.log.Debug("unmatched callback query", slog.String("data", data))
		return nil
	}

	if (typ == TypeText || typ == TypeBotCommand) && text != "" {
		kind := kindText
		if typ == TypeBotCommand {
			kind = kindBotCommand
			command, rest, _ := strings.Cut(text, " ")
			command = strings.ToLower(command)
			for _, a := range b.tables[tableBotCommand] {
				if matchBotCommand(a, command) {
					return b.dispatchAnswer(ctx, tg, a, kindBotCommand, []string{rest})
				}
			}
		}

		for _, a := range b.tables[tableCommand] {
			if args, ok := matchCommand(a, text); ok {
				return b.dispatchAnswer(ctx, tg, a, kind, args)
			}
		}

		for _, a := range b.tables[tableTextExact] {
			if matchLiteral(a, text) {
				return b.dispatchAnswer(ctx, tg, a, kind, nil)
			}
		}

		// Button display texts match like routes. A button with a redirect
		// target skips its own body entirely.
		for _, a := range b.btnOrder {
			if matchLiteral(a, text) {
				if a.redirectTo != "" {
					target := b.findActionByID(a.redirectTo)
					if target == nil {
						return &ConfigError{Op: "redirect target", ID: a.redirectTo}
					}
					return b.executeAction(ctx, tg, target, nil)
				}
				return b.dispatchAnswer(ctx, tg, a, kindTextButton, nil)
			}
		}

		for _, a := range b.tables[tableTextPreg] {
			if args, ok := matchRegex(a, text); ok {
				return b.dispatchAnswer(ctx, tg, a, kind, args)
			}
		}

		if slot := b.slots[slotMessage]; slot != nil {
			return b.dispatchAnswer(ctx, tg, slot, kindText, nil)
		}
	}

	return b.dispatchFallback(ctx, tg)
}

// dispatchFallback tries the media, membership and default fallback slots,
// in that order. Callback queries never reach this point.
func (b *Bot) dispatchFallback(ctx context.Context, tg *TGZ) error {
	if msg := tg.Update().Message(); msg != nil {
		mediaSlots := []struct {
			kind    slotKind
			present bool
		}{
			{slotPhoto, len(msg.Photo) > 0},
			{slotAudio, msg.Audio != nil},
			{slotVideo, msg.Video != nil},
			{slotSticker, msg.Sticker != nil},
			{slotVoice, msg.Voice != nil},
			{slotDocument, msg.Document != nil},
			{slotVideoNote, msg.VideoNote != nil},
		}
		for _, s := range mediaSlots {
			if s.present && b.slots[s.kind] != nil {
				return b.dispatchAnswer(ctx, tg, b.slots[s.kind], kindText, nil)
			}
		}

		if len(msg.NewChatMembers) > 0 && b.slots[slotNewChatMembers] != nil {
			args := make([]string, 0, len(msg.NewChatMembers))
			for _, u := range msg.NewChatMembers {
				args = append(args, strconv.FormatInt(u.ID, 10))
			}
			return b.dispatchAnswer(ctx, tg, b.slots[slotNewChatMembers], kindText, args)
		}
		if msg.LeftChatMember != nil && b.slots[slotLeftChatMember] != nil {
			args := []string{strconv.FormatInt(msg.LeftChatMember.ID, 10)}
			return b.dispatchAnswer(ctx, tg, b.slots[slotLeftChatMember], kindText, args)
		}
	}

	if slot := b.slots[slotDefault]; slot != nil {
		return b.dispatchAnswer(ctx, tg, slot, kindText, nil)
	}
	return nil
}

// dispatchAnswer resolves one matched action. The action's own middleware
// wraps all remaining steps as next.
func (b *Bot) dispatchAnswer(ctx context.Context, tg *TGZ, a *Action, kind matchKind, args []string) error {
	core := func(ctx context.Context, tg *TGZ, args []string) error {
		return b.resolveAction(ctx, tg, a, kind, args)
	}
	if a.middleware != nil {
		return a.middleware(core)(ctx, tg, args)
	}
	return core(ctx, tg, args)
}

func (b *Bot) resolveAction(ctx context.Context, tg *TGZ, a *Action, kind matchKind, args []string) error {
	userID := tg.Update().UserID()
	if len(a.allow) > 0 && !slices.Contains(a.allow, userID) {
		if a.allowFallback != nil {
			return a.allowFallback(ctx, tg, args)
		}
		return nil
	}
	if len(a.deny) > 0 && slices.Contains(a.deny, userID) {
		if a.denyFallback != nil {
			return a.denyFallback(ctx, tg, args)
		}
		return nil
	}

	if a.redirectTo != "" {
		target := b.findActionByID(a.redirectTo)
		if target == nil {
			return &ConfigError{Op: "redirect target", ID: a.redirectTo}
		}
		if kind.callbackDriven() && a.queryText != "" {
			if err := b.answerQuery(ctx, tg, a.queryText); err != nil {
				return err
			}
		}
		return b.executeAction(ctx, tg, target, args)
	}

	if a.handler != nil {
		return a.handler(ctx, tg, args)
	}

	if !kind.callbackDriven() {
		if a.msg.empty() {
			return nil
		}
		return b.composeMessage(ctx, tg, &a.msg)
	}

	// Callback-driven: the query is acknowledged before anything is sent,
	// so the client stops its spinner even when there is no payload.
	if err := b.answerQuery(ctx, tg, a.queryText); err != nil {
		return err
	}
	if a.msg.empty() {
		if kind == kindButtonCallback {
			// A button with no payload of its own delegates to a route
			// keyed by the same callback data.
			data := tg.Update().CallbackData()
			for _, next := range b.tables[tableCallback] {
				if matchLiteral(next, data) {
					return b.dispatchAnswer(ctx, tg, next, kindCallback, nil)
				}
			}
		}
		return nil
	}
	return b.composeMessage(ctx, tg, &a.msg)
}

// executeAction invokes an action's handler or message data directly,
// bypassing matching, middleware and access control. Used for redirect
// targets and RunAction.
func (b *Bot) executeAction(ctx context.Context, tg *TGZ, a *Action, args []string) error {
	if a.handler != nil {
		return a.handler(ctx, tg, args)
	}
	if !a.msg.empty() {
		return b.composeMessage(ctx, tg, &a.msg)
	}
	return nil
}

func (b *Bot) answerQuery(ctx context.Context, tg *TGZ, text string) error {
	queryID := tg.Update().QueryID()
	if queryID == "" {
		return nil
	}
	params := map[string]any{}
	if text != "" {
		params["text"] = text
	}
	_, err := tg.AnswerCallbackQuery(ctx, queryID, params)
	return err
}

// composeMessage materializes an action's declarative response through the
// message builder and sends or edits accordingly.
func (b *Bot) composeMessage(ctx context.Context, tg *TGZ, md *messageData) error {
	msg := tg.Msg(md.text)
	if len(md.img) > 0 {
		msg.Img(md.img...)
	}
	if md.gif != "" {
		msg.Gif(md.gif)
	}
	if md.video != "" {
		msg.Video(md.video)
	}
	if md.audio != "" {
		msg.Audio(md.audio)
	}
	if md.voice != "" {
		msg.Voice(md.voice)
	}
	if md.doc != "" {
		msg.Doc(md.doc)
	}
	if md.sticker != "" {
		msg.Sticker(md.sticker)
	}
	if md.dice != "" {
		msg.Dice(md.dice)
	}
	if md.params != nil {
		msg.Params(md.params)
	}
	if md.reply {
		msg.Reply()
	}
	if md.replyTo != 0 {
		msg.ReplyTo(md.replyTo)
	}
	if md.kbdSet {
		rows := b.resolveButtons(md.kbd, md.inline)
		if md.inline {
			msg.InlineKbd(rows)
		} else {
			msg.Kbd(rows, md.oneTime, md.resize)
		}
	}
	if md.removeKbd {
		msg.RemoveKbd()
	}

	var err error
	switch {
	case md.editText:
		_, err = msg.SendEdit(ctx)
	case md.editCaption:
		_, err = msg.SendEditCaption(ctx)
	default:
		_, err = msg.Send(ctx)
	}
	return err
}

// resolveButtons replaces registered-button references with their literal
// form. Unknown ids are dropped; rows left empty disappear.
func (b *Bot) resolveButtons(rows [][]Button, inline bool) [][]Button {
	out := make([][]Button, 0, len(rows))
	for _, row := range rows {
		outRow := make([]Button, 0, len(row))
		for _, btn := range row {
			if btn.ID == "" {
				outRow = append(outRow, btn)
				continue
			}
			text, ok := b.btnText[btn.ID]
			if !ok {
				continue
			}
			if inline {
				outRow = append(outRow, Button{Text: text, Data: btn.ID})
			} else {
				outRow = append(outRow, Button{Text: text})
			}
		}
		if len(outRow) > 0 {
			out = append(out, outRow)
		}
	}
	return out
}
