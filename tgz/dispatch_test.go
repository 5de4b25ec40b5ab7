package tgz

import (
	"context"
	"sync"
	"testing"

	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hitRecorder(hits *[]string, name string) HandlerFunc {
	return func(ctx context.Context, tg *TGZ, args []string) error {
		*hits = append(*hits, name)
		return nil
	}
}

func TestDispatchPriorityOrder(t *testing.T) {
	tg, _ := newTestTGZ(t)
	bot := NewBot(tg)

	var hits []string
	bot.OnBotCommand("start", "/start").Func(hitRecorder(&hits, "botcmd"))
	bot.OnCommand("echo", "!echo %s").Func(hitRecorder(&hits, "command"))
	bot.OnText("greeting", "hi").Func(hitRecorder(&hits, "exact"))
	bot.Btn("menu", "Menu").Func(hitRecorder(&hits, "button"))
	bot.OnTextPreg("anything", ".+").Func(hitRecorder(&hits, "preg"))

	ctx := context.Background()
	require.NoError(t, bot.Run(ctx, commandUpdate("/start now")))
	require.NoError(t, bot.Run(ctx, textUpdate("!echo hello")))
	require.NoError(t, bot.Run(ctx, textUpdate("hi")))
	require.NoError(t, bot.Run(ctx, textUpdate("Menu")))
	require.NoError(t, bot.Run(ctx, textUpdate("something else")))

	assert.Equal(t, []string{"botcmd", "command", "exact", "button", "preg"}, hits)
}

func TestDispatchCommandArgs(t *testing.T) {
	tg, _ := newTestTGZ(t)
	bot := NewBot(tg)

	var got []string
	bot.OnBotCommand("start", "/start").Func(func(ctx context.Context, tg *TGZ, args []string) error {
		got = args
		return nil
	})

	require.NoError(t, bot.Run(context.Background(), commandUpdate("/start deep link")))
	assert.Equal(t, []string{"deep link"}, got, "a bot command passes the raw tail as one arg")

	require.NoError(t, bot.Run(context.Background(), commandUpdate("/start")))
	assert.Equal(t, []string{""}, got, "a bare command still passes one empty arg")
}

func TestDispatchUnknownBotCommandFallsThrough(t *testing.T) {
	tg, _ := newTestTGZ(t)
	bot := NewBot(tg)

	var hits []string
	bot.OnBotCommand("start", "/start").Func(hitRecorder(&hits, "start"))
	bot.OnTextPreg("preg", `^/w\w+$`).Func(hitRecorder(&hits, "preg"))
	bot.OnMessage().Func(hitRecorder(&hits, "message"))

	ctx := context.Background()
	require.NoError(t, bot.Run(ctx, commandUpdate("/weather")))
	require.NoError(t, bot.Run(ctx, commandUpdate("/unknown")))

	assert.Equal(t, []string{"preg", "message"}, hits,
		"an unmatched bot command keeps descending through the text tables")
}

func TestDispatchMessageSlotCatchesText(t *testing.T) {
	tg, _ := newTestTGZ(t)
	bot := NewBot(tg)

	var hits []string
	bot.OnText("greeting", "hi").Func(hitRecorder(&hits, "exact"))
	bot.OnMessage().Func(hitRecorder(&hits, "message"))
	bot.OnDefault().Func(hitRecorder(&hits, "default"))

	require.NoError(t, bot.Run(context.Background(), textUpdate("unmatched text")))
	assert.Equal(t, []string{"message"}, hits)
}

func TestDispatchCallbackAnswersBeforeSending(t *testing.T) {
	tg, api := newTestTGZ(t)
	bot := NewBot(tg)

	bot.Btn("menu", "Menu").Query("opening").Text("main menu")

	require.NoError(t, bot.Run(context.Background(), callbackUpdate("menu")))

	calls := api.recorded()
	require.Len(t, calls, 2)
	assert.Equal(t, "answerCallbackQuery", calls[0].Method)
	assert.Equal(t, "cbq-1", calls[0].Params["callback_query_id"])
	assert.Equal(t, "opening", calls[0].Params["text"])
	assert.Equal(t, "sendMessage", calls[1].Method)
	assert.Equal(t, "main menu", calls[1].Params["text"])
}

func TestDispatchCallbackAnswerOmitsEmptyText(t *testing.T) {
	tg, api := newTestTGZ(t)
	bot := NewBot(tg)

	bot.OnCallback("ping").Text("pong")

	require.NoError(t, bot.Run(context.Background(), callbackUpdate("ping")))

	calls := api.recorded()
	require.Len(t, calls, 2)
	assert.Equal(t, "answerCallbackQuery", calls[0].Method)
	_, hasText := calls[0].Params["text"]
	assert.False(t, hasText, "an empty popup text must not reach the API")
}

func TestDispatchEmptyButtonDelegatesToCallbackRoute(t *testing.T) {
	tg, api := newTestTGZ(t)
	bot := NewBot(tg)

	bot.Btn("page", "Page")
	bot.OnCallback("page_route", "page").Text("delegated")

	require.NoError(t, bot.Run(context.Background(), callbackUpdate("page")))

	methods := api.methods()
	require.NotEmpty(t, methods)
	assert.Equal(t, "answerCallbackQuery", methods[0])
	assert.Equal(t, "sendMessage", methods[len(methods)-1])
	assert.Equal(t, "delegated", api.recorded()[len(methods)-1].Params["text"])
}

func TestDispatchUnmatchedCallbackIsDropped(t *testing.T) {
	tg, api := newTestTGZ(t)
	bot := NewBot(tg)

	var hits []string
	bot.OnDefault().Func(hitRecorder(&hits, "default"))

	require.NoError(t, bot.Run(context.Background(), callbackUpdate("nope")))
	assert.Empty(t, api.recorded(), "unmatched callback queries have no fallback")
	assert.Empty(t, hits)
}

func TestDispatchButtonTextRedirect(t *testing.T) {
	tg, api := newTestTGZ(t)
	bot := NewBot(tg)

	bot.OnText("settings", "never typed").Text("settings menu")
	bot.Btn("btn_settings", "Settings").Redirect("settings")

	require.NoError(t, bot.Run(context.Background(), textUpdate("Settings")))

	calls := api.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, "sendMessage", calls[0].Method)
	assert.Equal(t, "settings menu", calls[0].Params["text"])
}

func TestDispatchActionRedirect(t *testing.T) {
	tg, api := newTestTGZ(t)
	bot := NewBot(tg)

	bot.OnText("a", "go").Redirect("b").Text("never sent")
	bot.OnText("b", "b").Text("Hi")

	require.NoError(t, bot.Run(context.Background(), textUpdate("go")))

	calls := api.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, "Hi", calls[0].Params["text"],
		"a redirecting action never executes its own body")
}

func TestDispatchCallbackButtonRedirect(t *testing.T) {
	tg, api := newTestTGZ(t)
	bot := NewBot(tg)

	bot.OnText("confirm", "never typed").Text("confirmed")
	bot.Btn("yes", "Yes").Query("Got it").Redirect("confirm")

	require.NoError(t, bot.Run(context.Background(), callbackUpdate("yes")))

	calls := api.recorded()
	require.Len(t, calls, 2)
	assert.Equal(t, "answerCallbackQuery", calls[0].Method)
	assert.Equal(t, "Got it", calls[0].Params["text"])
	assert.Equal(t, "sendMessage", calls[1].Method)
	assert.Equal(t, "confirmed", calls[1].Params["text"])
}

func TestDispatchDefaultSlotSendsText(t *testing.T) {
	tg, api := newTestTGZ(t)
	bot := NewBot(tg)

	bot.OnDefault().Text("Sorry, I didn't understand")

	sticker := textUpdate("")
	sticker.Update().Message.Sticker = &models.Sticker{FileID: "s1"}
	require.NoError(t, bot.Run(context.Background(), sticker))

	calls := api.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, "sendMessage", calls[0].Method)
	assert.Equal(t, "Sorry, I didn't understand", calls[0].Params["text"])
}

func TestDispatchRedirectToUnknownTarget(t *testing.T) {
	tg, _ := newTestTGZ(t)
	bot := NewBot(tg)

	bot.OnText("broken", "go").Redirect("missing")

	err := bot.Run(context.Background(), textUpdate("go"))
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "redirect target", cfgErr.Op)
	assert.Equal(t, "missing", cfgErr.ID)
}

func TestRedirectQueueIsResolvedOnce(t *testing.T) {
	tg, api := newTestTGZ(t)
	bot := NewBot(tg)

	bot.OnText("a", "a").Text("A")
	bot.OnText("b", "b").Text("B")
	bot.Redirect("a", "b")

	ctx := context.Background()
	require.NoError(t, bot.Run(ctx, textUpdate("a")))
	require.NoError(t, bot.Run(ctx, textUpdate("a")))

	calls := api.recorded()
	require.Len(t, calls, 2)
	for _, c := range calls {
		assert.Equal(t, "B", c.Params["text"])
	}
	assert.Empty(t, bot.pendingRedirects)
}

func TestConcurrentRunAfterSetup(t *testing.T) {
	tg, api := newTestTGZ(t)
	bot := NewBot(tg)

	bot.OnText("a", "a").Text("A")
	bot.OnText("b", "b").Text("B")
	bot.Redirect("a", "b")

	// One dispatch drains the redirect queue; from here on the bot must be
	// safe for shared reads only.
	require.NoError(t, bot.Run(context.Background(), textUpdate("a")))

	const concurrency = 8
	errs := make(chan error, concurrency)
	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- bot.Run(context.Background(), textUpdate("a"))
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	calls := api.recorded()
	require.Len(t, calls, concurrency+1)
	for _, c := range calls {
		assert.Equal(t, "B", c.Params["text"])
	}
}

func TestRedirectQueueUnknownSource(t *testing.T) {
	tg, _ := newTestTGZ(t)
	bot := NewBot(tg)

	bot.OnText("b", "b").Text("B")
	bot.Redirect("ghost", "b")

	err := bot.Run(context.Background(), textUpdate("b"))
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "redirect source", cfgErr.Op)
}

func TestDispatchAllowGate(t *testing.T) {
	tg, api := newTestTGZ(t)
	bot := NewBot(tg)

	var fallbackHit bool
	bot.OnText("admin", "admin").Allow(42).Text("secret")
	bot.OnText("vip", "vip").Allow(42).AllowFallback(func(ctx context.Context, tg *TGZ, args []string) error {
		fallbackHit = true
		return nil
	}).Text("vip stuff")

	ctx := context.Background()
	require.NoError(t, bot.Run(ctx, textUpdate("admin")))
	assert.Empty(t, api.recorded(), "a user outside the allow list gets nothing")

	require.NoError(t, bot.Run(ctx, textUpdate("vip")))
	assert.True(t, fallbackHit)
	assert.Empty(t, api.recorded())
}

func TestDispatchDenyGate(t *testing.T) {
	tg, api := newTestTGZ(t)
	bot := NewBot(tg)

	bot.OnText("open", "open").Deny(7).Text("welcome")

	require.NoError(t, bot.Run(context.Background(), textUpdate("open")))
	assert.Empty(t, api.recorded())
}

func TestRunActionBypassesGates(t *testing.T) {
	tg, api := newTestTGZ(t)
	bot := NewBot(tg)

	bot.OnText("admin", "admin").Allow(42).Text("secret")

	require.NoError(t, bot.RunAction(context.Background(), textUpdate("whatever"), "admin"))

	calls := api.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, "secret", calls[0].Params["text"])
}

func TestRunActionUnknownID(t *testing.T) {
	tg, _ := newTestTGZ(t)
	bot := NewBot(tg)

	err := bot.RunAction(context.Background(), textUpdate("x"), "ghost")
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "run", cfgErr.Op)
}

func TestDispatchMediaFallback(t *testing.T) {
	tg, _ := newTestTGZ(t)
	bot := NewBot(tg)

	var hits []string
	bot.OnPhoto().Func(hitRecorder(&hits, "photo"))
	bot.OnDefault().Func(hitRecorder(&hits, "default"))

	photo := textUpdate("")
	photo.Update().Message.Photo = []models.PhotoSize{{FileID: "f1"}}
	require.NoError(t, bot.Run(context.Background(), photo))

	voice := textUpdate("")
	voice.Update().Message.Voice = &models.Voice{FileID: "v1"}
	require.NoError(t, bot.Run(context.Background(), voice))

	assert.Equal(t, []string{"photo", "default"}, hits,
		"media without a registered slot lands in the default slot")
}

func TestDispatchMembershipArgs(t *testing.T) {
	tg, _ := newTestTGZ(t)
	bot := NewBot(tg)

	var joined, left []string
	bot.OnNewChatMember().Func(func(ctx context.Context, tg *TGZ, args []string) error {
		joined = args
		return nil
	})
	bot.OnLeftChatMember().Func(func(ctx context.Context, tg *TGZ, args []string) error {
		left = args
		return nil
	})

	join := textUpdate("")
	join.Update().Message.NewChatMembers = []models.User{{ID: 11}, {ID: 12}}
	require.NoError(t, bot.Run(context.Background(), join))

	leave := textUpdate("")
	leave.Update().Message.LeftChatMember = &models.User{ID: 13}
	require.NoError(t, bot.Run(context.Background(), leave))

	assert.Equal(t, []string{"11", "12"}, joined)
	assert.Equal(t, []string{"13"}, left)
}

func TestDuplicateActionIDPanics(t *testing.T) {
	tg, _ := newTestTGZ(t)
	bot := NewBot(tg)

	bot.OnText("dup", "a")
	require.Panics(t, func() { bot.OnCallback("dup", "b") })
}

func TestSlotReRegistrationReplaces(t *testing.T) {
	tg, _ := newTestTGZ(t)
	bot := NewBot(tg)

	var hits []string
	bot.OnMessage().Func(hitRecorder(&hits, "first"))
	bot.OnMessage().Func(hitRecorder(&hits, "second"))

	require.NoError(t, bot.Run(context.Background(), textUpdate("anything")))
	assert.Equal(t, []string{"second"}, hits)
}

func TestBotMiddlewareOrder(t *testing.T) {
	tg, _ := newTestTGZ(t)
	bot := NewBot(tg)

	var trace []string
	mw := func(name string) MiddlewareFunc {
		return func(next HandlerFunc) HandlerFunc {
			return func(ctx context.Context, tg *TGZ, args []string) error {
				trace = append(trace, name)
				return next(ctx, tg, args)
			}
		}
	}
	bot.Use(mw("outer"), mw("inner"))
	bot.OnText("hi", "hi").Func(hitRecorder(&trace, "handler"))

	require.NoError(t, bot.Run(context.Background(), textUpdate("hi")))
	assert.Equal(t, []string{"outer", "inner", "handler"}, trace)
}

func TestActionMiddlewareWrapsResolution(t *testing.T) {
	tg, api := newTestTGZ(t)
	bot := NewBot(tg)

	bot.OnText("guarded", "guarded").
		Middleware(func(next HandlerFunc) HandlerFunc {
			return func(ctx context.Context, tg *TGZ, args []string) error {
				return nil // swallow
			}
		}).
		Text("never sent")

	require.NoError(t, bot.Run(context.Background(), textUpdate("guarded")))
	assert.Empty(t, api.recorded())
}

func TestDispatchDeclarativeKeyboard(t *testing.T) {
	tg, api := newTestTGZ(t)
	bot := NewBot(tg)

	bot.Btn("buy", "Buy now")
	bot.OnText("shop", "shop").Text("choose").InlineKbd([][]Button{
		{BtnID("buy"), BtnID("unknown")},
		{BtnURL("site", "https://example.com")},
	})

	require.NoError(t, bot.Run(context.Background(), textUpdate("shop")))

	calls := api.recorded()
	require.Len(t, calls, 1)
	markup, ok := calls[0].Params["reply_markup"].(map[string]any)
	require.True(t, ok)
	rows, ok := markup["inline_keyboard"].([]any)
	require.True(t, ok)
	require.Len(t, rows, 2)

	firstRow := rows[0].([]any)
	require.Len(t, firstRow, 1, "unknown button references are dropped")
	btn := firstRow[0].(map[string]any)
	assert.Equal(t, "Buy now", btn["text"])
	assert.Equal(t, "buy", btn["callback_data"])
}
