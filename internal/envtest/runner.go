package envtest

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/zarlcorp/zcircle/internal/celo"
	"go.uber.org/zap"
)

// DefaultTimeout bounds each test and each after-all hook.
const DefaultTimeout = 120 * time.Second

// Kit is the chain access tests need. *celo.Kit implements it.
type Kit interface {
	Accounts(ctx context.Context) ([]string, error)
	ContractAddress(ctx context.Context, name string) (string, error)
	BalanceOf(ctx context.Context, token, owner string) (*big.Int, error)
	Transfer(ctx context.Context, token, from, to string, amount *big.Int) (*celo.Receipt, error)
}

// Context is handed to every test and hook.
type Context struct {
	Kit                           Kit
	Mnemonic                      string
	Logger                        *zap.Logger
	ReserveSpenderMultiSigAddress string
	StableTokens                  []string
}

// TestFunc is a registered test or hook. A non-nil error fails it.
type TestFunc func(ctx context.Context, tc Context) error

type entry struct {
	name string
	fn   TestFunc
}

// Suite runs registered tests in order, then its after-all hooks.
type Suite struct {
	tc       Context
	timeout  time.Duration
	tests    []entry
	afterAll []entry
}

// Option configures a Suite.
type Option func(*Suite)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Suite) { s.timeout = d }
}

// NewSuite creates a suite. A nil logger is replaced with a no-op logger.
func NewSuite(tc Context, opts ...Option) *Suite {
	if tc.Logger == nil {
		tc.Logger = zap.NewNop()
	}
	s := &Suite{tc: tc, timeout: DefaultTimeout}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Register adds a test.
func (s *Suite) Register(name string, fn TestFunc) {
	s.tests = append(s.tests, entry{name, fn})
}

// AfterAll adds a hook that runs after every test, whatever the outcome.
func (s *Suite) AfterAll(name string, fn TestFunc) {
	s.afterAll = append(s.afterAll, entry{name, fn})
}

// Outcome is the result of one test or hook.
type Outcome struct {
	Name     string
	Err      error
	Skipped  bool
	Duration time.Duration
}

// Report collects the outcomes of a run.
type Report struct {
	Tests []Outcome
	Hooks []Outcome
}

// Failed reports whether any test or hook failed.
func (r Report) Failed() bool {
	for _, outcomes := range [][]Outcome{r.Tests, r.Hooks} {
		for _, o := range outcomes {
			if o.Err != nil && !o.Skipped {
				return true
			}
		}
	}
	return false
}

// Summary returns a human-readable report.
func (r Report) Summary() string {
	var b strings.Builder
	var passed, failed, skipped int

	write := func(kind string, o Outcome) {
		switch {
		case o.Skipped:
			skipped++
			fmt.Fprintf(&b, "SKIP %s %s: %v\n", kind, o.Name, o.Err)
		case o.Err != nil:
			failed++
			fmt.Fprintf(&b, "FAIL %s %s (%s): %v\n", kind, o.Name, o.Duration.Round(time.Millisecond), o.Err)
		default:
			passed++
			fmt.Fprintf(&b, "ok   %s %s (%s)\n", kind, o.Name, o.Duration.Round(time.Millisecond))
		}
	}

	for _, o := range r.Tests {
		write("test", o)
	}
	for _, o := range r.Hooks {
		write("hook", o)
	}

	fmt.Fprintf(&b, "%d passed, %d failed, %d skipped", passed, failed, skipped)
	return b.String()
}

// Run executes the tests in registration order. Once ctx is done the
// remaining tests are skipped, but the after-all hooks still run.
func (s *Suite) Run(ctx context.Context) Report {
	var r Report

	for _, e := range s.tests {
		if err := ctx.Err(); err != nil {
			r.Tests = append(r.Tests, Outcome{Name: e.name, Err: err, Skipped: true})
			continue
		}
		r.Tests = append(r.Tests, s.run(ctx, "test", e))
	}

	// hooks must not inherit a cancellation that stopped the tests
	hookCtx := context.WithoutCancel(ctx)
	for _, e := range s.afterAll {
		r.Hooks = append(r.Hooks, s.run(hookCtx, "hook", e))
	}

	return r
}

func (s *Suite) run(ctx context.Context, kind string, e entry) Outcome {
	log := s.tc.Logger.With(zap.String(kind, e.name))
	log.Info("starting")

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	err := call(ctx, e.fn, s.tc)
	o := Outcome{Name: e.name, Err: err, Duration: time.Since(start)}

	if err != nil {
		log.Error("failed", zap.Error(err), zap.Duration("took", o.Duration))
	} else {
		log.Info("passed", zap.Duration("took", o.Duration))
	}
	return o
}

// call runs fn, turning a panic into an error.
func call(ctx context.Context, fn TestFunc, tc Context) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return fn(ctx, tc)
}
