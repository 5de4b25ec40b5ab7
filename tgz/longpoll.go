package tgz

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-telegram/bot/models"
)

// LongPoll pulls updates via getUpdates and feeds them to a Bot. It tracks
// the confirmed offset so each update is delivered once.
type LongPoll struct {
	bot     *Bot
	timeout int
	limit   int
	allowed []string
	offset  int64
	log     *slog.Logger
}

// LongPollOption configures a LongPoll loop.
type LongPollOption func(*LongPoll)

// WithPollTimeout sets the getUpdates long-poll timeout in seconds.
func WithPollTimeout(seconds int) LongPollOption {
	return func(lp *LongPoll) { lp.timeout = seconds }
}

// WithPollLimit caps how many updates one getUpdates call returns.
func WithPollLimit(limit int) LongPollOption {
	return func(lp *LongPoll) { lp.limit = limit }
}

// WithAllowedUpdates restricts the update kinds the Bot API delivers.
func WithAllowedUpdates(kinds ...string) LongPollOption {
	return func(lp *LongPoll) { lp.allowed = kinds }
}

// NewLongPoll creates a polling loop that dispatches into bot.
func NewLongPoll(bot *Bot, opts ...LongPollOption) *LongPoll {
	lp := &LongPoll{
		bot:     bot,
		timeout: 30,
		limit:   100,
		log:     bot.tg.log,
	}
	for _, opt := range opts {
		opt(lp)
	}
	return lp
}

// Run polls until ctx is cancelled. Transport errors back off and retry;
// dispatch errors are logged and do not stop the loop.
func (lp *LongPoll) Run(ctx context.Context) error {
	for {
		updates, err := lp.fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lp.log.Error("getUpdates failed", slog.Any("error", err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(3 * time.Second):
			}
			continue
		}
		for i := range updates {
			upd := &updates[i]
			if upd.ID >= lp.offset {
				lp.offset = upd.ID + 1
			}
			if err := lp.bot.Run(ctx, NewUpdateContext(upd)); err != nil {
				lp.log.Error("dispatch failed",
					slog.Int64("update_id", upd.ID),
					slog.Any("error", err))
			}
		}
	}
}

func (lp *LongPoll) fetch(ctx context.Context) ([]models.Update, error) {
	params := map[string]any{
		"offset":  lp.offset,
		"timeout": lp.timeout,
		"limit":   lp.limit,
	}
	if len(lp.allowed) > 0 {
		params["allowed_updates"] = lp.allowed
	}
	resp, err := lp.bot.tg.api.Call(ctx, "getUpdates", params)
	if err != nil {
		return nil, err
	}
	var updates []models.Update
	if err := resp.Decode(&updates); err != nil {
		return nil, err
	}
	return updates, nil
}
