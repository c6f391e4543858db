package envtest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func testContext(kit Kit) Context {
	return Context{
		Kit:          kit,
		Mnemonic:     testMnemonic,
		Logger:       zap.NewNop(),
		StableTokens: []string{"cUSD"},
	}
}

func TestSuiteRunsInOrder(t *testing.T) {
	var order []string
	record := func(name string) TestFunc {
		return func(context.Context, Context) error {
			order = append(order, name)
			return nil
		}
	}

	s := NewSuite(testContext(newFakeKit()))
	s.AfterAll("cleanup", record("cleanup"))
	s.Register("first", record("first"))
	s.Register("second", record("second"))

	r := s.Run(context.Background())

	if got := strings.Join(order, ","); got != "first,second,cleanup" {
		t.Errorf("order = %s", got)
	}
	if r.Failed() {
		t.Errorf("report should pass:\n%s", r.Summary())
	}
	if len(r.Tests) != 2 || len(r.Hooks) != 1 {
		t.Errorf("report = %+v", r)
	}
}

func TestSuiteHooksRunAfterFailure(t *testing.T) {
	cleaned := false

	s := NewSuite(testContext(newFakeKit()))
	s.Register("broken", func(context.Context, Context) error {
		return errors.New("boom")
	})
	s.Register("still runs", func(context.Context, Context) error { return nil })
	s.AfterAll("cleanup", func(context.Context, Context) error {
		cleaned = true
		return nil
	})

	r := s.Run(context.Background())

	if !cleaned {
		t.Error("cleanup should run after a failing test")
	}
	if !r.Failed() {
		t.Error("report should fail")
	}
	if r.Tests[1].Err != nil {
		t.Error("a failure should not stop later tests")
	}
	if !strings.Contains(r.Summary(), "FAIL test broken") {
		t.Errorf("summary = %s", r.Summary())
	}
}

func TestSuiteTimeout(t *testing.T) {
	s := NewSuite(testContext(newFakeKit()), WithTimeout(10*time.Millisecond))
	s.Register("slow", func(ctx context.Context, _ Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	r := s.Run(context.Background())

	if !errors.Is(r.Tests[0].Err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", r.Tests[0].Err)
	}
}

func TestSuiteRecoversPanic(t *testing.T) {
	s := NewSuite(testContext(newFakeKit()))
	s.Register("panics", func(context.Context, Context) error {
		panic("nil kit")
	})

	r := s.Run(context.Background())

	if r.Tests[0].Err == nil || !strings.Contains(r.Tests[0].Err.Error(), "panic: nil kit") {
		t.Errorf("err = %v", r.Tests[0].Err)
	}
}

func TestSuiteCanceledSkipsTestsButRunsHooks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var hookErr error
	s := NewSuite(testContext(newFakeKit()))
	s.Register("cancels", func(context.Context, Context) error {
		cancel()
		return nil
	})
	s.Register("skipped", func(context.Context, Context) error {
		t.Error("should not run after cancel")
		return nil
	})
	s.AfterAll("cleanup", func(ctx context.Context, _ Context) error {
		hookErr = ctx.Err()
		return nil
	})

	r := s.Run(ctx)

	if !r.Tests[1].Skipped {
		t.Error("second test should be skipped")
	}
	if hookErr != nil {
		t.Errorf("hook context should not be canceled: %v", hookErr)
	}
	if r.Failed() {
		t.Errorf("skipped tests do not fail the run:\n%s", r.Summary())
	}
	if !strings.Contains(r.Summary(), "2 passed, 0 failed, 1 skipped") {
		t.Errorf("summary = %s", r.Summary())
	}
}

func TestSuiteNilLogger(t *testing.T) {
	tc := testContext(newFakeKit())
	tc.Logger = nil

	var got *zap.Logger
	s := NewSuite(tc)
	s.Register("logs", func(_ context.Context, tc Context) error {
		got = tc.Logger
		tc.Logger.Info("hello")
		return nil
	})
	s.Run(context.Background())

	if got == nil {
		t.Error("tests should receive a usable logger")
	}
}
