package instruct

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ierrors "github.com/jamesprial/go-grip/internal/errors"
	"github.com/jamesprial/go-grip/internal/grip"
	"github.com/jamesprial/go-grip/internal/websocket"
)

func TestInstruct_LongPoll304(t *testing.T) {
	t.Parallel()

	g := New()
	require.NoError(t, g.AddChannel("foo", ""))
	require.NoError(t, g.SetHoldLongPoll(0))
	require.NoError(t, g.SetStatus(http.StatusNotModified))

	h := g.Headers()
	assert.Equal(t, "response", h.Get("Grip-Hold"))
	assert.Equal(t, "foo", h.Get("Grip-Channel"))
	assert.Equal(t, "304", h.Get("Grip-Status"))
	assert.Empty(t, h.Get("Grip-Timeout"))

	rec := httptest.NewRecorder()
	require.NoError(t, g.Write(rec))

	assert.Equal(t, http.StatusOK, rec.Code, "immediate response is always 200")
	assert.Equal(t, "application/grip-instruct", rec.Header().Get("Content-Type"))
	assert.Equal(t, "304", rec.Header().Get("Grip-Status"))
	assert.JSONEq(t, `{"hold":{"mode":"response","channels":[{"name":"foo"}]},"response":{"code":304}}`, rec.Body.String())
}

func TestInstruct_Headers(t *testing.T) {
	t.Parallel()

	g := New()
	require.NoError(t, g.AddChannel("a", "1"))
	require.NoError(t, g.AddChannel("b", ""))
	require.NoError(t, g.SetHoldStream())
	require.NoError(t, g.SetKeepAlive(grip.Text("ping\n"), 20))
	require.NoError(t, g.SetNextLink("http://backend/next?cursor=2", 10))
	require.NoError(t, g.SetMeta("user", `al"ice`))
	require.NoError(t, g.SetMeta("room", "lobby"))

	h := g.Headers()
	assert.Equal(t, "stream", h.Get("Grip-Hold"))
	assert.Equal(t, "a; prev-id=1, b", h.Get("Grip-Channel"))
	assert.Equal(t, `ping\n; format=cstring; timeout=20`, h.Get("Grip-Keep-Alive"))
	assert.Equal(t, "<http://backend/next?cursor=2>; rel=next; timeout=10", h.Get("Grip-Link"))
	assert.Equal(t, `room="lobby", user="al\"ice"`, h.Get("Grip-Set-Meta"))
	assert.Empty(t, h.Get("Grip-Status"))
}

func TestInstruct_AddChannelOverwrites(t *testing.T) {
	t.Parallel()

	g := New()
	require.NoError(t, g.AddChannel("a", ""))
	require.NoError(t, g.AddChannel("b", ""))
	require.NoError(t, g.AddChannel("a", "7"))

	chs := g.Channels()
	require.Len(t, chs, 2)
	assert.Equal(t, "a", chs[0].Name())
	assert.Equal(t, "7", chs[0].PrevID())
	assert.Equal(t, "b", chs[1].Name())

	err := g.AddChannel("", "")
	assert.True(t, errors.Is(err, grip.ErrEmptyChannelName))
}

func TestInstruct_HoldModeTransitions(t *testing.T) {
	t.Parallel()

	g := New()
	assert.Equal(t, ModeNone, g.Mode())

	require.NoError(t, g.SetHoldLongPoll(30))
	require.NoError(t, g.SetHoldLongPoll(60), "same mode is idempotent")
	assert.Equal(t, "60", g.Headers().Get("Grip-Timeout"), "timeout is last-write-wins")

	err := g.SetHoldStream()
	assert.True(t, errors.Is(err, ErrHoldModeConflict))
	assert.True(t, ierrors.IsInvalid(err))
	assert.Equal(t, ModeResponse, g.Mode(), "conflict leaves mode unchanged")

	assert.True(t, errors.Is(g.SetHoldWebSocket(), ErrHoldModeConflict))
}

func TestInstruct_Validation(t *testing.T) {
	t.Parallel()

	g := New()
	assert.True(t, errors.Is(g.SetHoldLongPoll(-1), ErrInvalidTimeout))
	assert.Equal(t, ModeNone, g.Mode())
	assert.True(t, errors.Is(g.SetStatus(99), ErrInvalidStatus))
	assert.True(t, errors.Is(g.SetStatus(600), ErrInvalidStatus))
	assert.True(t, errors.Is(g.SetKeepAlive(grip.Text("x"), -5), ErrInvalidTimeout))
	assert.True(t, errors.Is(g.SetNextLink("", 0), ErrEmptyLink))
	assert.True(t, errors.Is(g.SetNextLink("http://x", -1), ErrInvalidTimeout))
	assert.True(t, errors.Is(g.SetMeta("", "v"), ErrEmptyMetaKey))
}

func TestKeepAliveEncoding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content grip.Content
		timeout int
		want    string
	}{
		{name: "plain text", content: grip.Text("{}"), want: "{}; format=cstring"},
		{name: "escaped text", content: grip.Text("a\\b\r\n"), timeout: 5, want: `a\\b\r\n; format=cstring; timeout=5`},
		{name: "text with separator", content: grip.Text("a;b"), want: "YTti; format=base64"},
		{name: "text with control char", content: grip.Text("\x00"), want: "AA==; format=base64"},
		{name: "non-ascii text", content: grip.Text("é"), want: "w6k=; format=base64"},
		{name: "delete char", content: grip.Text("\x7f"), want: "fw==; format=base64"},
		{name: "binary", content: grip.Binary("hi"), want: "aGk=; format=base64"},
		{name: "empty", content: nil, want: "; format=base64"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			k := keepAlive{content: tt.content, timeout: tt.timeout}
			assert.Equal(t, tt.want, k.headerValue())
		})
	}
}

func TestInstruct_Body(t *testing.T) {
	t.Parallel()

	g := New()
	require.NoError(t, g.AddChannel("news", "42"))
	require.NoError(t, g.SetHoldStream())
	require.NoError(t, g.SetKeepAlive(grip.Binary{0x01}, 15))
	require.NoError(t, g.SetMeta("k", "v"))
	require.NoError(t, g.SetNextLink("http://b/next", 0))

	body, err := g.Body()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"hold": {
			"mode": "stream",
			"channels": [{"name": "news", "prev-id": "42"}],
			"keep-alive": {"content-bin": "AQ==", "timeout": 15},
			"meta": {"k": "v"}
		},
		"response": {"headers": {"Grip-Link": "<http://b/next>; rel=next"}}
	}`, string(body))
}

func TestInstruct_BodyCarriesResumeCursor(t *testing.T) {
	t.Parallel()

	g := New()
	require.NoError(t, g.AddChannel("foo", "42"))
	require.NoError(t, g.AddChannel("bar", ""))
	require.NoError(t, g.SetHoldLongPoll(0))

	body, err := g.Body()
	require.NoError(t, err)
	assert.JSONEq(t, `{"hold":{"mode":"response","channels":[{"name":"foo","prev-id":"42"},{"name":"bar"}]}}`, string(body))
	assert.NotContains(t, string(body), "prevId")
	assert.Equal(t, "foo; prev-id=42, bar", g.Headers().Get("Grip-Channel"))
}

func TestInstruct_BodyDefaultsToResponse(t *testing.T) {
	t.Parallel()

	g := New()
	require.NoError(t, g.AddChannel("c", ""))

	body, err := g.Body()
	require.NoError(t, err)
	assert.JSONEq(t, `{"hold":{"mode":"response","channels":[{"name":"c"}]}}`, string(body))
	assert.Empty(t, g.Headers().Get("Grip-Hold"))
}

func TestInstruct_WebSocket(t *testing.T) {
	t.Parallel()

	g := New()
	require.NoError(t, g.AddChannel("room", ""))
	require.NoError(t, g.SetHoldWebSocket())
	require.NoError(t, g.SetKeepAlive(grip.Text("{}"), 30))
	require.NoError(t, g.SetMeta("user", "bob"))

	events, err := g.WebSocketEvents()
	require.NoError(t, err)
	require.Len(t, events, 4)
	assert.Equal(t, websocket.EventOpen, events[0].Type)
	assert.Equal(t, `c:{"type":"subscribe","channel":"room"}`, string(events[1].Content))
	assert.Equal(t, `c:{"type":"keep-alive","content":"{}","timeout":30}`, string(events[2].Content))
	assert.Equal(t, `c:{"type":"set-meta","name":"user","value":"bob"}`, string(events[3].Content))

	_, err = g.Body()
	assert.True(t, errors.Is(err, ErrWebSocketBody))

	rec := httptest.NewRecorder()
	require.NoError(t, g.Write(rec))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/websocket-events", rec.Header().Get("Content-Type"))
	assert.Equal(t, "grip", rec.Header().Get("Sec-WebSocket-Extensions"))
	assert.Empty(t, rec.Header().Get("Grip-Hold"))
	assert.Equal(t, string(websocket.EncodeEvents(events)), rec.Body.String())
}
