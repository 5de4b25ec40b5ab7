// Package webappauth validates Telegram Web App init data so HTTP backends
// serving a bot's mini app can trust the user identity it carries.
package webappauth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	initdata "github.com/telegram-mini-apps/init-data-golang"
)

// AuthScheme is the Authorization scheme mini app frontends use when
// passing init data, as in "Authorization: tma <init-data>".
const AuthScheme = "tma"

// InitData is the validated payload of one Web App launch.
type InitData = initdata.InitData

// Validator checks init data signatures against one bot token.
type Validator struct {
	token string
	expIn time.Duration
}

// NewValidator creates a validator. Init data older than expIn is rejected;
// a zero expIn disables the age check.
func NewValidator(token string, expIn time.Duration) *Validator {
	return &Validator{
		token: token,
		expIn: expIn,
	}
}

// Validate verifies the signature and age of raw init data and parses it.
func (v *Validator) Validate(raw string) (*InitData, error) {
	if err := initdata.Validate(raw, v.token, v.expIn); err != nil {
		return nil, errors.Wrap(err, "validate init data")
	}
	data, err := initdata.Parse(raw)
	if err != nil {
		return nil, errors.Wrap(err, "parse init data")
	}
	return &data, nil
}

// ValidateRequest extracts init data from the Authorization header of r and
// validates it.
func (v *Validator) ValidateRequest(r *http.Request) (*InitData, error) {
	scheme, raw, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || scheme != AuthScheme {
		return nil, errors.Errorf("authorization header is not a %q token", AuthScheme)
	}
	return v.Validate(raw)
}

// UserID returns the launching user's id, or 0 when absent.
func UserID(data *InitData) int64 {
	if data == nil {
		return 0
	}
	return data.User.ID
}

// Sign produces signed init data for the given payload, mirroring what a
// Telegram client would hand to a mini app. Meant for backend tests.
func Sign(data *InitData, token string, authDate time.Time) (string, error) {
	if data == nil {
		return "", errors.New("init data must not be nil")
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return "", errors.Wrap(err, "marshal init data")
	}
	fields := map[string]any{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return "", errors.Wrap(err, "decode init data fields")
	}
	delete(fields, "hash")
	delete(fields, "auth_date")

	params := make(map[string]string, len(fields))
	values := url.Values{}
	for k, field := range fields {
		var s string
		switch fv := field.(type) {
		case string:
			s = fv
		case json.Number:
			s = fv.String()
		default:
			b, err := json.Marshal(fv)
			if err != nil {
				return "", errors.Wrapf(err, "marshal field %s", k)
			}
			s = string(b)
		}
		params[k] = s
		values.Add(k, s)
	}
	values.Set("hash", initdata.Sign(params, token, authDate))
	values.Set("auth_date", strconv.FormatInt(authDate.Unix(), 10))
	return values.Encode(), nil
}
