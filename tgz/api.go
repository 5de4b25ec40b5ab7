package tgz

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/pkg/errors"
)

const defaultAPIURL = "https://api.telegram.org"

// APIResponse is the Bot API response envelope.
type APIResponse struct {
	OK          bool                `json:"ok"`
	Result      json.RawMessage     `json:"result"`
	Description string              `json:"description,omitempty"`
	ErrorCode   int                 `json:"error_code,omitempty"`
	Parameters  *ResponseParameters `json:"parameters,omitempty"`
}

// ResponseParameters carries extra error context from the Bot API.
type ResponseParameters struct {
	MigrateToChatID int64 `json:"migrate_to_chat_id,omitempty"`
	RetryAfter      int   `json:"retry_after,omitempty"`
}

// Decode unmarshals the result payload into v.
func (r *APIResponse) Decode(v any) error {
	return json.Unmarshal(r.Result, v)
}

// APIClient executes Bot API calls. Any method name can be invoked through
// Call; the rest of the package builds its typed surface on top of it.
type APIClient struct {
	token      string
	apiURL     string
	httpClient *http.Client
	log        *slog.Logger
}

// NewAPIClient creates a client for the given bot token.
func NewAPIClient(token string, opts ...Option) *APIClient {
	o := newOptions(opts...)
	return &APIClient{
		token:      token,
		apiURL:     o.apiURL,
		httpClient: o.httpClient,
		log:        o.log,
	}
}

// Call invokes a Bot API method with the given parameters. A transport
// failure is returned wrapped; a non-2xx status or an ok:false envelope is
// returned as *APIError.
func (c *APIClient) Call(ctx context.Context, method string, params map[string]any) (*APIResponse, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return nil, errors.Wrapf(err, "marshal %s params", method)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL(method), bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrapf(err, "build %s request", method)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "call %s", method)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s response", method)
	}

	var envelope APIResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, errors.Wrapf(err, "decode %s response", method)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !envelope.OK {
		apiErr := &APIError{
			Method:      method,
			Params:      params,
			Code:        envelope.ErrorCode,
			Description: envelope.Description,
		}
		if apiErr.Code == 0 {
			apiErr.Code = resp.StatusCode
		}
		if envelope.Parameters != nil {
			apiErr.RetryAfter = envelope.Parameters.RetryAfter
		}
		c.log.Debug("api call failed",
			slog.String("method", method),
			slog.Int("code", apiErr.Code),
			slog.String("description", apiErr.Description))
		return nil, apiErr
	}
	return &envelope, nil
}

func (c *APIClient) methodURL(method string) string {
	return c.apiURL + "/bot" + c.token + "/" + method
}

// FileURL returns the download URL for a file path obtained via getFile.
func (c *APIClient) FileURL(filePath string) string {
	return c.apiURL + "/file/bot" + c.token + "/" + filePath
}
