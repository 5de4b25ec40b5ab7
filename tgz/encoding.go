package tgz

import (
	"strings"

	"github.com/go-sphere/jsoncompressor"
	"github.com/pkg/errors"
)

// Callback data is limited to 64 bytes, so structured payloads travel as
// "route:compressed_json". The route part pairs with OnCallback conditions
// or with manual prefix checks in handlers.

// MarshalData encodes a route and a typed payload into callback data.
func MarshalData[T any](route string, payload T) string {
	b, _ := jsoncompressor.Marshal(payload)
	return route + ":" + string(b)
}

// UnmarshalData decodes callback data produced by MarshalData. It returns
// the route and the typed payload.
func UnmarshalData[T any](data string) (string, *T, error) {
	route, raw, found := strings.Cut(data, ":")
	if !found {
		return "", nil, errors.Errorf("callback data %q has no payload separator", data)
	}
	var v T
	if err := jsoncompressor.Unmarshal([]byte(raw), &v); err != nil {
		return route, nil, errors.Wrap(err, "decode callback payload")
	}
	return route, &v, nil
}
