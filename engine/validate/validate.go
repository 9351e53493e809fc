// Package validate gates conversation actions before any narration is
// generated.
//
// Stage one is a set of deterministic checks against the character sheet.
// Stage two asks an external Checker whether the action is plausible. The
// external call runs under a timeout; when it fails the validator falls
// back to rejecting the action unless configured to fail open. A failed
// validation never produces state changes; it only blocks narration.
package validate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nathoo/rulecore/engine/action"
	"github.com/nathoo/rulecore/types"
)

// DefaultTimeout bounds the external plausibility check.
const DefaultTimeout = 15 * time.Second

// ErrCheckerUnavailable wraps every failure of the external check.
var ErrCheckerUnavailable = errors.New("plausibility checker unavailable")

// Result is the verdict on one action.
type Result struct {
	IsValid    bool   `json:"isValid"`
	Reason     string `json:"reason,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Request is what the external checker sees.
type Request struct {
	Character types.Character
	Text      string
	InCombat  bool
}

// Checker judges whether an action is physically and rules-wise possible.
type Checker interface {
	Check(ctx context.Context, req Request) (Result, error)
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context, req Request) (Result, error)

// Check calls f.
func (f CheckerFunc) Check(ctx context.Context, req Request) (Result, error) {
	return f(ctx, req)
}

// Options configures a Validator.
type Options struct {
	// Timeout bounds the external check. Zero means DefaultTimeout.
	Timeout time.Duration
	// FailOpen accepts actions when the external check fails.
	FailOpen bool
	Logger   *slog.Logger
}

// Validator runs both stages.
type Validator struct {
	checker  Checker
	timeout  time.Duration
	failOpen bool
	log      *slog.Logger
}

// New returns a validator. A nil checker disables the external stage.
func New(checker Checker, opts Options) *Validator {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Validator{
		checker:  checker,
		timeout:  opts.Timeout,
		failOpen: opts.FailOpen,
		log:      opts.Logger,
	}
}

// Fallback verdicts for a failed external check.
var (
	unavailable = Result{
		IsValid:    false,
		Reason:     "Unable to validate action",
		Suggestion: "Try a standard action like attack, travel, search, or rest, or describe what you want to do in a different way.",
	}
	skipped = Result{IsValid: true, Reason: "Validation skipped"}
)

// Validate judges a. Only conversation actions are checked; every other
// kind is already constrained by its resolver.
func (v *Validator) Validate(ctx context.Context, a action.Action, actor types.Character, inCombat bool) Result {
	conv, ok := a.(action.Conversation)
	if !ok {
		return Result{IsValid: true}
	}

	// 1. Deterministic checks.
	if r, decided := Deterministic(conv.Text, actor); decided {
		if !r.IsValid {
			v.log.Debug("action rejected", "actor", actor.ID, "reason", r.Reason)
		}
		return r
	}
	if v.checker == nil {
		return Result{IsValid: true}
	}

	// 2. External plausibility check.
	r, err := v.check(ctx, Request{Character: actor, Text: conv.Text, InCombat: inCombat})
	if err != nil {
		v.log.Warn("plausibility check failed", "actor", actor.ID, "fail_open", v.failOpen, "err", err)
		if v.failOpen {
			return skipped
		}
		return unavailable
	}
	return r
}

func (v *Validator) check(ctx context.Context, req Request) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	type reply struct {
		r   Result
		err error
	}
	done := make(chan reply, 1)
	go func() {
		r, err := v.checker.Check(ctx, req)
		done <- reply{r, err}
	}()

	select {
	case <-ctx.Done():
		return Result{}, fmt.Errorf("%w: %v", ErrCheckerUnavailable, ctx.Err())
	case rep := <-done:
		if rep.err != nil {
			if errors.Is(rep.err, ErrCheckerUnavailable) {
				return Result{}, rep.err
			}
			return Result{}, fmt.Errorf("%w: %v", ErrCheckerUnavailable, rep.err)
		}
		return rep.r, nil
	}
}

// FormatFailure renders a rejected verdict for the player.
func FormatFailure(r Result) string {
	if r.Suggestion != "" {
		return r.Suggestion
	}
	if r.Reason != "" {
		return "I can't do that. " + r.Reason
	}
	return "That action isn't possible right now."
}
