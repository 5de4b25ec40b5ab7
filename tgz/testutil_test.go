package tgz

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-telegram/bot/models"
)

type apiCall struct {
	Method string
	Params map[string]any
}

type apiFailure struct {
	status int
	body   string
}

// fakeAPI is an in-process Bot API. It records every call and answers with
// canned results, so dispatch and builder tests can assert on the exact
// methods and parameters the client produced.
type fakeAPI struct {
	server *httptest.Server

	mu      sync.Mutex
	calls   []apiCall
	results map[string]string
	fail    map[string]apiFailure
	files   map[string][]byte
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{
		results: make(map[string]string),
		fail:    make(map[string]apiFailure),
		files:   make(map[string][]byte),
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeAPI) handle(w http.ResponseWriter, r *http.Request) {
	if path, ok := strings.CutPrefix(r.URL.Path, "/file/"); ok {
		_, filePath, _ := strings.Cut(path, "/")
		f.mu.Lock()
		content, found := f.files[filePath]
		f.mu.Unlock()
		if !found {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write(content)
		return
	}

	method := r.URL.Path[strings.LastIndexByte(r.URL.Path, '/')+1:]
	var params map[string]any
	_ = json.NewDecoder(r.Body).Decode(&params)

	f.mu.Lock()
	f.calls = append(f.calls, apiCall{Method: method, Params: params})
	failure, failed := f.fail[method]
	result, hasResult := f.results[method]
	f.mu.Unlock()

	if failed {
		w.WriteHeader(failure.status)
		w.Write([]byte(failure.body))
		return
	}
	if !hasResult {
		result = "{}"
	}
	w.Write([]byte(`{"ok":true,"result":` + result + `}`))
}

func (f *fakeAPI) setResult(method, resultJSON string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[method] = resultJSON
}

func (f *fakeAPI) setFailure(method string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[method] = apiFailure{status: status, body: body}
}

func (f *fakeAPI) setFile(filePath string, content []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[filePath] = content
}

func (f *fakeAPI) recorded() []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]apiCall(nil), f.calls...)
}

func (f *fakeAPI) methods() []string {
	calls := f.recorded()
	out := make([]string, 0, len(calls))
	for _, c := range calls {
		out = append(out, c.Method)
	}
	return out
}

func newTestTGZ(t *testing.T, opts ...Option) (*TGZ, *fakeAPI) {
	t.Helper()
	f := newFakeAPI(t)
	opts = append([]Option{WithAPIURL(f.server.URL)}, opts...)
	return New("TESTTOKEN", opts...), f
}

func textUpdate(text string) *UpdateContext {
	return NewUpdateContext(&models.Update{
		ID: 1,
		Message: &models.Message{
			ID:   10,
			Text: text,
			Chat: models.Chat{ID: 100},
			From: &models.User{ID: 7},
		},
	})
}

func commandUpdate(text string) *UpdateContext {
	command := text
	if i := strings.IndexByte(text, ' '); i >= 0 {
		command = text[:i]
	}
	return NewUpdateContext(&models.Update{
		ID: 2,
		Message: &models.Message{
			ID:   11,
			Text: text,
			Chat: models.Chat{ID: 100},
			From: &models.User{ID: 7},
			Entities: []models.MessageEntity{{
				Type:   models.MessageEntityTypeBotCommand,
				Offset: 0,
				Length: len(command),
			}},
		},
	})
}

func callbackUpdate(data string) *UpdateContext {
	return NewUpdateContext(&models.Update{
		ID: 3,
		CallbackQuery: &models.CallbackQuery{
			ID:   "cbq-1",
			From: models.User{ID: 7},
			Data: data,
			Message: models.MaybeInaccessibleMessage{
				Message: &models.Message{
					ID:   10,
					Chat: models.Chat{ID: 100},
				},
			},
		},
	})
}
