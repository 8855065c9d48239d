package grip

import (
	"testing"
)

func TestFormatNameConstants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		got      string
		want     string
		constant string
	}{
		{
			name:     "http-response",
			got:      FormatHTTPResponse,
			want:     "http-response",
			constant: "FormatHTTPResponse",
		},
		{
			name:     "http-stream",
			got:      FormatHTTPStream,
			want:     "http-stream",
			constant: "FormatHTTPStream",
		},
		{
			name:     "ws-message",
			got:      FormatWebSocketMessage,
			want:     "ws-message",
			constant: "FormatWebSocketMessage",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.got != tt.want {
				t.Errorf("%s = %q, want %q", tt.constant, tt.got, tt.want)
			}
		})
	}
}

func TestHoldModeConstants(t *testing.T) {
	t.Parallel()

	if HoldModeResponse != "response" {
		t.Errorf("HoldModeResponse = %q, want %q", HoldModeResponse, "response")
	}
	if HoldModeStream != "stream" {
		t.Errorf("HoldModeStream = %q, want %q", HoldModeStream, "stream")
	}
}

func TestContentTypeConstants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		got  string
		want string
	}{
		{got: ContentTypeJSON, want: "application/json"},
		{got: ContentTypeGripInstruct, want: "application/grip-instruct"},
		{got: ContentTypeWebSocketEvents, want: "application/websocket-events"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("content type = %q, want %q", tt.got, tt.want)
		}
	}
}
