package httpapi

import (
	"context"
	"testing"
	"time"
)

type ctxKey struct{}

func waitDone(t *testing.T, ctx context.Context, what string) {
	t.Helper()
	select {
	case <-ctx.Done():
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("joined context not canceled when %s", what)
	}
}

func TestJoinContexts_CancelsWhenEitherDone(t *testing.T) {
	base, baseCancel := context.WithCancel(context.Background())
	req, reqCancel := context.WithCancel(context.Background())
	defer reqCancel()
	j, cancel := joinContexts(base, req)
	defer cancel()
	baseCancel()
	waitDone(t, j, "base canceled")

	base2, baseCancel2 := context.WithCancel(context.Background())
	defer baseCancel2()
	req2, reqCancel2 := context.WithCancel(context.Background())
	j2, cancel2 := joinContexts(base2, req2)
	defer cancel2()
	reqCancel2()
	waitDone(t, j2, "request canceled")
}

func TestJoinContexts_KeepsRequestValues(t *testing.T) {
	req := context.WithValue(context.Background(), ctxKey{}, "rid-1")
	j, cancel := joinContexts(context.Background(), req)
	defer cancel()
	if v, _ := j.Value(ctxKey{}).(string); v != "rid-1" {
		t.Fatalf("value=%q", v)
	}
	cancel()
	waitDone(t, j, "cancel func called")
}

func TestSetBaseContext_NilResetsToBackground(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	SetBaseContext(ctx)
	// nolint:staticcheck // SA1012: nil is the documented reset
	SetBaseContext(nil)
	if serverBaseCtx != context.Background() {
		t.Fatalf("base context not reset")
	}
}
