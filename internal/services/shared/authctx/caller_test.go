package authctx

import (
	"context"
	"testing"
)

func TestCallerContextRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := WithCaller(context.Background(), Caller{UserID: "user-42", Privileged: true})
	caller, ok := CallerFromContext(ctx)
	if !ok {
		t.Fatal("expected caller in context")
	}
	if caller.UserID != "user-42" || !caller.Privileged {
		t.Fatalf("unexpected caller: %+v", caller)
	}
}

func TestCallerFromContextEmpty(t *testing.T) {
	t.Parallel()

	if _, ok := CallerFromContext(context.Background()); ok {
		t.Fatal("expected no caller")
	}
	if _, ok := CallerFromContext(nil); ok {
		t.Fatal("expected no caller for nil context")
	}
}

func TestWithCallerNilContext(t *testing.T) {
	t.Parallel()

	ctx := WithCaller(nil, Caller{UserID: "user-99"})
	if ctx == nil {
		t.Fatal("expected non-nil context")
	}
	caller, ok := CallerFromContext(ctx)
	if !ok || caller.UserID != "user-99" {
		t.Fatalf("unexpected caller: %+v ok=%v", caller, ok)
	}
}
