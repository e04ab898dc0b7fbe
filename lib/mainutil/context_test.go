package mainutil

import (
	"testing"
)

func TestRootContext(t *testing.T) {
	InitContext()
	ctx := RootContext()
	if err := ctx.Err(); err != nil {
		t.Fatalf("fresh root context: unexpected error: %v", err)
	}
	if RootContext() != ctx {
		t.Errorf("RootContext: expected the same context on every call")
	}

	CancelRootContext()
	select {
	case <-ctx.Done():
	default:
		t.Errorf("CancelRootContext: context not cancelled")
	}

	InitContext()
	if err := RootContext().Err(); err != nil {
		t.Errorf("after InitContext: unexpected error: %v", err)
	}
}
