package shutdown

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestHandler_RunsCallbacksInReverseOrder(t *testing.T) {
	h := New(time.Second)

	var order []string
	h.RegisterFunc("first", func() { order = append(order, "first") })
	h.RegisterFunc("second", func() { order = append(order, "second") })

	h.Shutdown()
	<-h.Done()

	if len(order) != 2 || order[0] != "second" || order[1] != "first" {
		t.Errorf("callback order = %v, want [second first]", order)
	}
}

func TestHandler_ContextCancelledOnShutdown(t *testing.T) {
	h := New(time.Second)

	select {
	case <-h.Context().Done():
		t.Fatal("context done before shutdown")
	default:
	}

	h.Shutdown()

	select {
	case <-h.Context().Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled by shutdown")
	}
}

func TestHandler_CollectsCallbackErrors(t *testing.T) {
	h := New(time.Second)

	want := errors.New("close failed")
	h.Register("bad", func(ctx context.Context) error { return want })
	h.Register("good", func(ctx context.Context) error { return nil })

	errs := h.Shutdown()
	if len(errs) != 1 || !errors.Is(errs[0], want) {
		t.Errorf("errs = %v, want [%v]", errs, want)
	}
}

func TestHandler_CallbackTimeout(t *testing.T) {
	h := New(50 * time.Millisecond)

	h.Register("slow", func(ctx context.Context) error {
		time.Sleep(time.Second)
		return nil
	})

	errs := h.Shutdown()
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
	var timeoutErr *TimeoutError
	if !errors.As(errs[0], &timeoutErr) {
		t.Errorf("err = %v, want TimeoutError", errs[0])
	}
	if timeoutErr.CallbackName != "slow" {
		t.Errorf("CallbackName = %q, want slow", timeoutErr.CallbackName)
	}
}

func TestHandler_SecondShutdownIsNoop(t *testing.T) {
	h := New(time.Second)

	calls := 0
	h.RegisterFunc("count", func() { calls++ })

	h.Shutdown()
	h.Shutdown()

	if calls != 1 {
		t.Errorf("callback ran %d times, want 1", calls)
	}
	if !h.IsShuttingDown() {
		t.Error("IsShuttingDown should be true")
	}
}

func TestHandler_Trigger(t *testing.T) {
	h := New(time.Second)
	h.Listen()

	called := make(chan struct{})
	h.RegisterFunc("notify", func() { close(called) })

	h.Trigger()

	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("Trigger did not start shutdown")
	}
}
