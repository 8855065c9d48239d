package transport

import (
	"context"
	"testing"

	"github.com/jamesprial/go-grip/internal/publisher"
)

func TestSigStatusContext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status publisher.SigStatus
	}{
		{name: "zero status", status: publisher.SigStatus{}},
		{name: "proxied unsigned", status: publisher.SigStatus{IsProxied: true}},
		{name: "signed", status: publisher.SigStatus{IsProxied: true, NeedsSigned: true, IsSigned: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := ContextWithSigStatus(context.Background(), tt.status)
			got, ok := SigStatusFromContext(ctx)
			if !ok {
				t.Fatal("SigStatusFromContext() ok = false, want true")
			}
			if got != tt.status {
				t.Errorf("SigStatusFromContext() = %+v, want %+v", got, tt.status)
			}
		})
	}
}

func TestSigStatusFromContext_Missing(t *testing.T) {
	t.Parallel()

	if _, ok := SigStatusFromContext(context.Background()); ok {
		t.Error("SigStatusFromContext() ok = true on empty context")
	}

	//nolint:staticcheck // nil context is part of the contract
	if _, ok := SigStatusFromContext(nil); ok {
		t.Error("SigStatusFromContext(nil) ok = true")
	}
}

func TestContextWithSigStatus_NilContext(t *testing.T) {
	t.Parallel()

	//nolint:staticcheck // nil context is part of the contract
	ctx := ContextWithSigStatus(nil, publisher.SigStatus{IsProxied: true})
	got, ok := SigStatusFromContext(ctx)
	if !ok || !got.IsProxied {
		t.Errorf("SigStatusFromContext() = %+v, %v", got, ok)
	}
}

func TestSigStatusFromContext_WrongType(t *testing.T) {
	t.Parallel()

	ctx := context.WithValue(context.Background(), SigStatusContextKey, "not a status")
	if _, ok := SigStatusFromContext(ctx); ok {
		t.Error("SigStatusFromContext() ok = true for wrong value type")
	}
}
