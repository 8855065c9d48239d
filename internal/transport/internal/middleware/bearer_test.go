package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jamesprial/go-grip/internal/transport/internal/mocks"
	"github.com/jamesprial/go-grip/internal/transport/transportcore"
)

func TestBearerTokenMiddleware(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		header         string
		wantStatus     int
		wantNextCalled bool
	}{
		{name: "matching token", header: "Bearer s3cret", wantStatus: http.StatusOK, wantNextCalled: true},
		{name: "scheme is case-insensitive", header: "bearer s3cret", wantStatus: http.StatusOK, wantNextCalled: true},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong token", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "token prefix", header: "Bearer s3cre", wantStatus: http.StatusUnauthorized},
		{name: "basic scheme", header: "Basic czNjcmV0", wantStatus: http.StatusUnauthorized},
		{name: "scheme only", header: "Bearer", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			responder := &mocks.ErrorResponder{}
			nextCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				nextCalled = true
				w.WriteHeader(http.StatusOK)
			})

			handler := NewBearerTokenMiddleware("s3cret", responder)(next)
			req := httptest.NewRequest(http.MethodPost, "/publish/news", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if nextCalled != tt.wantNextCalled {
				t.Errorf("next called = %v, want %v", nextCalled, tt.wantNextCalled)
			}
			if !tt.wantNextCalled {
				if !errors.Is(responder.UnauthorizedErr, transportcore.ErrInvalidPublishToken) {
					t.Errorf("Unauthorized error = %v, want ErrInvalidPublishToken", responder.UnauthorizedErr)
				}
				if got := rec.Header().Get("WWW-Authenticate"); got != "Bearer" {
					t.Errorf("WWW-Authenticate = %q, want Bearer", got)
				}
			}
		})
	}
}

func TestBearerTokenMiddleware_PanicsOnEmptyToken(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("expected panic for empty token")
		}
	}()
	NewBearerTokenMiddleware("", &mocks.ErrorResponder{})
}
