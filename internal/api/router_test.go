package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-treelights/internal/command"
)

type stubBackend struct{}

func (stubBackend) Health() Health {
	return Health{FrameID: 42, FPS: 59.5, Mode: "attract", Scene: "snakes", Pixels: 900}
}

func (stubBackend) Names() ([]string, []string) {
	return []string{"nth", "snakes"}, []string{"attract", "game"}
}

func setup() (*gin.Engine, *command.Queue) {
	gin.SetMode(gin.TestMode)
	q := command.NewQueue(16)
	return NewRouter(stubBackend{}, q, nil), q
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func form(path string, v url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(v.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func queued(t *testing.T, q *command.Queue) []command.Message {
	t.Helper()
	var out []command.Message
	for _, b := range q.Drain() {
		m, err := command.Decode(b)
		require.NoError(t, err)
		out = append(out, m)
	}
	return out
}

func TestHealth(t *testing.T) {
	r, _ := setup()
	w := do(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var h Health
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &h))
	assert.Equal(t, uint64(42), h.FrameID)
	assert.Equal(t, "snakes", h.Scene)
	assert.Equal(t, 900, h.Pixels)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestScenes(t *testing.T) {
	r, _ := setup()
	w := do(r, httptest.NewRequest(http.MethodGet, "/scenes", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"scenes":["nth","snakes"],"modes":["attract","game"]}`, w.Body.String())
}

func TestActions(t *testing.T) {
	r, q := setup()
	assert.Equal(t, http.StatusAccepted, do(r, httptest.NewRequest(http.MethodPost, "/action/next", nil)).Code)
	assert.Equal(t, http.StatusAccepted, do(r, form("/ifttt", url.Values{"event": {"spin"}})).Code)
	w := do(r, form("/slack", url.Values{"text": {"Reverse now"}}))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok: reverse")
	assert.Equal(t, http.StatusBadRequest, do(r, form("/ifttt", url.Values{})).Code)

	assert.Equal(t, []command.Message{
		command.Action("next"),
		command.Action("spin"),
		command.Action("reverse"),
	}, queued(t, q))
}

func TestGameKey(t *testing.T) {
	r, q := setup()
	req := httptest.NewRequest(http.MethodPost, "/gamekey", strings.NewReader(`{"key":"left","state":true}`))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusAccepted, do(r, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/gamekey", strings.NewReader(`{"key":"up","state":true}`))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusBadRequest, do(r, req).Code)

	assert.Equal(t, []command.Message{command.GameKey("left", true)}, queued(t, q))
}

func TestRawMessage(t *testing.T) {
	r, q := setup()
	ok := httptest.NewRequest(http.MethodPost, "/message", strings.NewReader(`{"type":"ping"}`))
	assert.Equal(t, http.StatusAccepted, do(r, ok).Code)
	bad := httptest.NewRequest(http.MethodPost, "/message", strings.NewReader(`{"type":"pixels","leds":[1,2]}`))
	assert.Equal(t, http.StatusBadRequest, do(r, bad).Code)
	assert.Equal(t, 1, q.Len())
}
