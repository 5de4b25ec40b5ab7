package tgz

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

type (
	// HandlerFunc processes one matched update. args carries whatever the
	// matcher captured: command arguments, regex groups, or the user ids of
	// join/leave events.
	HandlerFunc = func(ctx context.Context, tg *TGZ, args []string) error
	// MiddlewareFunc wraps a HandlerFunc with additional behavior. It is
	// used both for bot-wide interceptors and for per-route interception.
	MiddlewareFunc = func(next HandlerFunc) HandlerFunc
)

func chain(h HandlerFunc, middleware ...MiddlewareFunc) HandlerFunc {
	for i := len(middleware) - 1; i >= 0; i-- {
		h = middleware[i](h)
	}
	return h
}

// NewSingleFlightMiddleware prevents duplicate processing of callback
// queries racing on the same message: while one press is in flight, further
// presses on that message share its result.
func NewSingleFlightMiddleware() MiddlewareFunc {
	sf := &singleflight.Group{}
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, tg *TGZ, args []string) error {
			upd := tg.Update()
			if upd == nil || upd.Type() != TypeCallbackQuery {
				return next(ctx, tg, args)
			}
			key := upd.QueryID()
			if id := upd.MessageID(); id != 0 {
				key = strconv.Itoa(id)
			}
			_, err, _ := sf.Do(key, func() (interface{}, error) {
				return nil, next(ctx, tg, args)
			})
			return err
		}
	}
}

// NewRecoveryMiddleware converts a handler panic into an error so a single
// bad route cannot take the host process down.
func NewRecoveryMiddleware(log *slog.Logger) MiddlewareFunc {
	if log == nil {
		log = slog.Default()
	}
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, tg *TGZ, args []string) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error("panic recovered in handler", slog.Any("error", r))
					err = errors.Errorf("handler panic: %v", r)
				}
			}()
			return next(ctx, tg, args)
		}
	}
}
