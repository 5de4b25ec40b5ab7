package tgz

import (
	"errors"
	"fmt"
)

// ErrBadKeyboardButton is returned when a declarative keyboard row contains
// a button that is neither a registered-button reference nor a valid literal
// button for the requested keyboard kind.
var ErrBadKeyboardButton = errors.New("tgz: malformed keyboard button")

// ConfigError reports a bot wiring mistake discovered at dispatch time:
// a redirect pointing at an unknown action, or a direct run of an unknown id.
// These indicate a programming error in the bot setup, not a runtime
// condition, and are never swallowed.
type ConfigError struct {
	Op string // "redirect source", "redirect target", "run"
	ID string // the action id that failed to resolve
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("tgz: %s: action %q not found", e.Op, e.ID)
}

// APIError is a Bot API level failure: a non-2xx response or an ok:false
// envelope. It carries enough of the request to debug the call.
type APIError struct {
	Method      string
	Params      map[string]any
	Code        int
	Description string
	RetryAfter  int // seconds, set on 429 responses
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram: %s failed with code %d: %s", e.Method, e.Code, e.Description)
}

// IsTooManyRequests reports whether err is a Bot API rate limit response.
func IsTooManyRequests(err error) (retryAfter int, ok bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Code == 429 {
		return apiErr.RetryAfter, true
	}
	return 0, false
}
