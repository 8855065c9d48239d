package websocket

import (
	"errors"
	"testing"

	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvent_Encode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		event Event
		want  string
	}{
		{
			name:  "no content",
			event: Event{Type: EventOpen},
			want:  "OPEN\r\n",
		},
		{
			name:  "text content",
			event: NewTextEvent("hello"),
			want:  "TEXT 5\r\nhello\r\n",
		},
		{
			name:  "hex length",
			event: NewTextEvent("0123456789abcdefghij"),
			want:  "TEXT 14\r\n0123456789abcdefghij\r\n",
		},
		{
			name:  "empty content",
			event: Event{Type: EventText, Content: []byte{}},
			want:  "TEXT 0\r\n\r\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, string(tt.event.Encode()))
		})
	}
}

func TestEncodeDecodeEvents_RoundTrip(t *testing.T) {
	t.Parallel()

	events := []Event{
		{Type: EventOpen},
		NewTextEvent("hello\r\nworld"),
		NewBinaryEvent([]byte{0x00, 0x0d, 0x0a, 0xff}),
		NewCloseEvent(gws.CloseGoingAway, ""),
	}

	decoded, err := DecodeEvents(EncodeEvents(events))
	require.NoError(t, err)
	assert.Equal(t, events, decoded)
}

func TestDecodeEvents_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{name: "no terminator", body: "OPEN"},
		{name: "bad length", body: "TEXT zz\r\nhi\r\n"},
		{name: "truncated", body: "TEXT 5\r\nhi\r\n"},
		{name: "unterminated content", body: "TEXT 2\r\nhiXX"},
		{name: "empty type", body: " 2\r\nhi\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := DecodeEvents([]byte(tt.body))
			assert.True(t, errors.Is(err, ErrMalformedEvents), "got %v", err)
		})
	}
}

func TestDecodeEvents_Empty(t *testing.T) {
	t.Parallel()

	events, err := DecodeEvents(nil)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestCloseEvent_Code(t *testing.T) {
	t.Parallel()

	e := NewCloseEvent(gws.CloseNormalClosure, "bye")
	assert.Equal(t, gws.CloseNormalClosure, e.CloseCode())
	assert.Equal(t, []byte{0x03, 0xe8, 'b', 'y', 'e'}, e.Content)

	noStatus := NewCloseEvent(gws.CloseNoStatusReceived, "")
	assert.Equal(t, gws.CloseNoStatusReceived, noStatus.CloseCode())
}
