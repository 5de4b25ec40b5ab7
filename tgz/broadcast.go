package tgz

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// Broadcast fans one message out to many chats without tripping the Bot API
// flood limits. Sends are serialized through a rate limiter; 429 responses
// honor the advertised retry_after once before the chat is reported failed.
type Broadcast struct {
	tg      *TGZ
	limiter *rate.Limiter
	stop    bool
	report  func(chatID int64, err error)
}

// BroadcastOption configures a Broadcast.
type BroadcastOption func(*Broadcast)

// WithBroadcastRate sets how many messages go out per second.
func WithBroadcastRate(perSecond float64) BroadcastOption {
	return func(b *Broadcast) { b.limiter = rate.NewLimiter(rate.Limit(perSecond), 1) }
}

// WithStopOnError aborts the whole broadcast on the first failed chat.
func WithStopOnError() BroadcastOption {
	return func(b *Broadcast) { b.stop = true }
}

// WithBroadcastReport installs a per-chat result callback. A nil err marks a
// delivered message.
func WithBroadcastReport(report func(chatID int64, err error)) BroadcastOption {
	return func(b *Broadcast) { b.report = report }
}

// NewBroadcast creates a broadcaster with the Bot API's documented bulk
// limit of 25 messages per second.
func (t *TGZ) NewBroadcast(opts ...BroadcastOption) *Broadcast {
	b := &Broadcast{
		tg:      t,
		limiter: rate.NewLimiter(rate.Limit(25), 1),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Send delivers the built message to every chat in chatIDs. It returns the
// number of successful deliveries and the first error when stop-on-error is
// set, or nil otherwise.
func (b *Broadcast) Send(ctx context.Context, msg *Message, chatIDs []int64) (int, error) {
	sent := 0
	for _, chatID := range chatIDs {
		if err := b.limiter.Wait(ctx); err != nil {
			return sent, err
		}
		err := b.sendOne(ctx, msg, chatID)
		if b.report != nil {
			b.report(chatID, err)
		}
		if err != nil {
			b.tg.log.Warn("broadcast send failed",
				slog.Int64("chat_id", chatID),
				slog.Any("error", err))
			if b.stop {
				return sent, err
			}
			continue
		}
		sent++
	}
	return sent, nil
}

func (b *Broadcast) sendOne(ctx context.Context, msg *Message, chatID int64) error {
	_, err := msg.SendTo(ctx, chatID)
	if retryAfter, ok := IsTooManyRequests(err); ok {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(retryAfter) * time.Second):
		}
		_, err = msg.SendTo(ctx, chatID)
	}
	return err
}
