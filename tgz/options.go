package tgz

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-telegram/bot/models"
)

// options holds configuration shared by the client and the API transport.
type options struct {
	apiURL     string
	httpClient *http.Client
	parseMode  models.ParseMode
	log        *slog.Logger
}

// Option configures a TGZ client or an APIClient.
type Option = func(*options)

func newOptions(opts ...Option) *options {
	defaults := &options{
		apiURL:     defaultAPIURL,
		httpClient: &http.Client{Timeout: 90 * time.Second},
		parseMode:  "",
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(defaults)
	}
	return defaults
}

// WithAPIURL overrides the Bot API base URL. Useful for local Bot API
// servers and for tests.
func WithAPIURL(url string) Option {
	return func(o *options) {
		o.apiURL = url
	}
}

// WithHTTPClient replaces the HTTP client used for API calls.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithParseMode sets the default parse mode applied to outgoing messages
// that do not choose one themselves.
func WithParseMode(mode models.ParseMode) Option {
	return func(o *options) {
		o.parseMode = mode
	}
}

// WithLogger replaces the structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}
