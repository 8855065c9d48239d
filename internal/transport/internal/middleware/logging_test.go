package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// testLogHandler captures log entries for testing.
type testLogHandler struct {
	mu      sync.Mutex
	entries []map[string]any
}

func (h *testLogHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

func (h *testLogHandler) Handle(_ context.Context, r slog.Record) error {
	entry := map[string]any{
		"level":   r.Level,
		"message": r.Message,
	}
	r.Attrs(func(a slog.Attr) bool {
		entry[a.Key] = a.Value.Any()
		return true
	})
	h.mu.Lock()
	h.entries = append(h.entries, entry)
	h.mu.Unlock()
	return nil
}

func (h *testLogHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h *testLogHandler) WithGroup(string) slog.Handler { return h }

func (h *testLogHandler) last(t *testing.T) map[string]any {
	t.Helper()
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) == 0 {
		t.Fatal("no log entries recorded")
	}
	return h.entries[len(h.entries)-1]
}

func TestLogging(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		status    int
		gripSig   string
		connID    string
		holdMode  string
		wantLevel slog.Level
		wantAttrs map[string]any
	}{
		{
			name:      "direct request",
			status:    http.StatusOK,
			wantLevel: slog.LevelInfo,
			wantAttrs: map[string]any{"status": int64(200), "grip_sig": false},
		},
		{
			name:      "proxied hold",
			status:    http.StatusOK,
			gripSig:   "token",
			holdMode:  "stream",
			wantLevel: slog.LevelInfo,
			wantAttrs: map[string]any{"grip_sig": true, "grip_hold": "stream"},
		},
		{
			name:      "websocket connection",
			status:    http.StatusOK,
			gripSig:   "token",
			connID:    "conn-1",
			wantLevel: slog.LevelInfo,
			wantAttrs: map[string]any{"connection_id": "conn-1"},
		},
		{
			name:      "client error",
			status:    http.StatusBadRequest,
			wantLevel: slog.LevelInfo,
			wantAttrs: map[string]any{"status": int64(400)},
		},
		{
			name:      "server error",
			status:    http.StatusBadGateway,
			wantLevel: slog.LevelError,
			wantAttrs: map[string]any{"status": int64(502)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := &testLogHandler{}
			mw := NewLoggingMiddleware(slog.New(h))
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.holdMode != "" {
					w.Header().Set("Grip-Hold", tt.holdMode)
				}
				w.WriteHeader(tt.status)
			})

			req := httptest.NewRequest(http.MethodPost, "/websocket", nil)
			if tt.gripSig != "" {
				req.Header.Set("Grip-Sig", tt.gripSig)
			}
			if tt.connID != "" {
				req.Header.Set("Connection-Id", tt.connID)
			}
			rec := httptest.NewRecorder()
			mw(next).ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Errorf("response status = %d, want %d", rec.Code, tt.status)
			}

			entry := h.last(t)
			if entry["message"] != "http request" {
				t.Errorf("message = %v, want http request", entry["message"])
			}
			if entry["level"] != tt.wantLevel {
				t.Errorf("level = %v, want %v", entry["level"], tt.wantLevel)
			}
			if entry["method"] != http.MethodPost || entry["path"] != "/websocket" {
				t.Errorf("method/path = %v %v", entry["method"], entry["path"])
			}
			for k, want := range tt.wantAttrs {
				if entry[k] != want {
					t.Errorf("attr %s = %#v, want %#v", k, entry[k], want)
				}
			}
			if _, ok := entry["duration_ms"]; !ok {
				t.Error("duration_ms not logged")
			}
		})
	}
}

func TestLogging_ImplicitStatus(t *testing.T) {
	t.Parallel()

	h := &testLogHandler{}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	rec := httptest.NewRecorder()
	NewLoggingMiddleware(slog.New(h))(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if got := h.last(t)["status"]; got != int64(http.StatusOK) {
		t.Errorf("status = %#v, want 200", got)
	}
	if rec.Body.String() != "ok" {
		t.Errorf("body = %q, want ok", rec.Body.String())
	}
}

func TestLogging_NilLogger(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	rec := httptest.NewRecorder()
	NewLoggingMiddleware(nil)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
}
