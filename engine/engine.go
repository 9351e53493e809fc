// Package engine provides the Step() orchestrator that wires together
// parsing, validation, rule dispatch, journaling, state application and
// result publishing into a single turn.
//
// An Engine is a single writer over its table and is not safe for
// concurrent Step calls.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nathoo/rulecore/engine/action"
	"github.com/nathoo/rulecore/engine/death"
	"github.com/nathoo/rulecore/engine/dice"
	"github.com/nathoo/rulecore/engine/effects"
	"github.com/nathoo/rulecore/engine/intent"
	"github.com/nathoo/rulecore/engine/rules"
	"github.com/nathoo/rulecore/engine/state"
	"github.com/nathoo/rulecore/engine/validate"
	"github.com/nathoo/rulecore/journal"
	"github.com/nathoo/rulecore/types"
)

// GameOver is shown for every command once the player is dead.
const GameOver = "You have died. Use /load to restore a save or /quit to exit."

// Journal records results before they are applied. Record must return an
// error wrapping journal.ErrDuplicateAction for an actionId it has seen.
type Journal interface {
	Record(ctx context.Context, res action.Result) error
}

// Publisher receives every applied result.
type Publisher interface {
	Publish(res action.Result) error
}

// Options configures an Engine. Every field is optional.
type Options struct {
	// Seed seeds the RNG when the table carries no seed. Zero picks a
	// random seed.
	Seed int64
	// Source replaces the seeded RNG, for tests. Positions are not tracked.
	Source    dice.Source
	Parser    *intent.Parser
	Validator *validate.Validator
	Journal   Journal
	Publisher Publisher
	Clock     func() time.Time
	// EnemyTurns lets living enemies act whenever the player starts a new
	// turn during combat.
	EnemyTurns bool
	Logger     *slog.Logger
}

// Engine holds the table and the collaborators of the turn pipeline.
type Engine struct {
	Table *types.Table
	RNG   *dice.RNG

	src        dice.Source
	parser     *intent.Parser
	rules      *rules.Engine
	validator  *validate.Validator
	journal    Journal
	publisher  Publisher
	enemyTurns bool
	log        *slog.Logger
}

// Turn is everything one Step produced.
type Turn struct {
	Input         string
	Action        action.Action
	Flavor        []string
	Clarification string
	Validation    *validate.Result
	// Results holds every applied result in order. Enemy turns come before
	// the player's own StartTurn.
	Results []action.Result
	Output  []string
}

// New creates an engine over a fresh table built from defs.
func New(defs *state.Defs, opts Options) (*Engine, error) {
	return NewWithTable(state.NewTable(defs), opts)
}

// NewWithTable creates an engine over an existing table, for example one
// restored from a save. The RNG resumes from the table's seed and position.
func NewWithTable(t *types.Table, opts Options) (*Engine, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Parser == nil {
		opts.Parser = intent.New()
	}
	if t.SessionID == "" {
		t.SessionID = uuid.NewString()
	}
	e := &Engine{
		Table:      t,
		parser:     opts.Parser,
		validator:  opts.Validator,
		journal:    opts.Journal,
		publisher:  opts.Publisher,
		enemyTurns: opts.EnemyTurns,
		log:        opts.Logger,
	}

	if opts.Source != nil {
		e.src = opts.Source
	} else {
		if t.RNGSeed == 0 {
			seed := opts.Seed
			if seed == 0 {
				var err error
				if seed, err = dice.NewSeed(); err != nil {
					return nil, fmt.Errorf("seeding rng: %w", err)
				}
			}
			t.RNGSeed = seed
			t.RNGPosition = 0
		}
		e.RNG = dice.Restore(t.RNGSeed, t.RNGPosition)
		e.src = e.RNG
	}

	e.rules = rules.New(e.src)
	if opts.Clock != nil {
		e.rules.SetClock(opts.Clock)
	}
	return e, nil
}

// RestoreRNG re-creates the RNG from seed and advances to the saved position.
func (e *Engine) RestoreRNG(seed int64, position int64) {
	e.RNG = dice.Restore(seed, position)
	e.src = e.RNG
	e.rules.SetSource(e.RNG)
	e.Table.RNGSeed = seed
	e.Table.RNGPosition = position
}

// InCombat reports whether an initiative order is active.
func (e *Engine) InCombat() bool {
	return len(e.Table.Initiative) > 0
}

// Step processes one player command.
func (e *Engine) Step(ctx context.Context, input string) (Turn, error) {
	return e.StepAs(ctx, e.Table.PlayerID, input)
}

// StepAs processes one command on behalf of actorID. Errors are reserved
// for malformed actions and failures of the journal or of applying
// changes. The command is logged only once the turn advances; a refused
// or failed command leaves the table as it was, apart from enemy results
// already committed earlier in the same turn.
func (e *Engine) StepAs(ctx context.Context, actorID, input string) (Turn, error) {
	turn := Turn{Input: input}

	// 0. A dead actor can do nothing.
	if actor, ok := state.Get(e.Table, actorID); ok && death.IsDead(actor.Combatant) {
		turn.Output = append(turn.Output, GameOver)
		return turn, nil
	}

	// 1. Parse input.
	parsed := e.parser.Parse(input, intent.Context{ActorID: actorID, Table: e.Table})
	e.log.Debug("parsed input", "actor_id", actorID, "normalized", parsed.Normalized,
		"suspicious", parsed.Suspicious, "multi_intent", parsed.MultiIntent)

	// 2. Rejected or ambiguous: ask again.
	if parsed.Action == nil {
		turn.Clarification = parsed.Clarification
		turn.Output = append(turn.Output, parsed.Clarification)
		return turn, nil
	}
	turn.Action = parsed.Action
	turn.Flavor = parsed.Flavor

	// 3. Validate conversation before anything is narrated.
	if parsed.Action.Kind() == action.KindConversation && e.validator != nil {
		actor, _ := state.Get(e.Table, actorID)
		v := e.validator.Validate(ctx, parsed.Action, actor, e.InCombat())
		e.log.Debug("validated conversation", "action_id", parsed.Action.Meta().ID, "valid", v.IsValid, "reason", v.Reason)
		if !v.IsValid {
			turn.Validation = &v
			turn.Output = append(turn.Output, validate.FormatFailure(v))
			return turn, nil
		}
		turn.Validation = &v
	}

	// 3a. Enemies act before the player's next turn begins.
	if parsed.Action.Kind() == action.KindStartTurn && e.enemyTurns && e.InCombat() {
		results, err := e.runEnemyTurns(ctx, actorID)
		turn.Results = append(turn.Results, results...)
		for _, r := range results {
			turn.Output = append(turn.Output, r.Narrative.Summary)
		}
		if err != nil {
			return turn, err
		}
		if actor, ok := state.Get(e.Table, actorID); ok && death.IsDead(actor.Combatant) {
			e.Table.CommandLog = append(e.Table.CommandLog, input)
			e.advance()
			turn.Output = append(turn.Output, GameOver)
			return turn, nil
		}
	}

	// 4. Dispatch.
	res, err := e.rules.Execute(parsed.Action, e.Table)
	if err != nil {
		return turn, fmt.Errorf("executing %s: %w", parsed.Action.Kind(), err)
	}
	e.log.Debug("resolved action", "action_id", res.ActionID, "kind", parsed.Action.Kind(),
		"outcome", res.Outcome, "changes", len(res.StateChanges))

	// 5-7. Journal, apply and publish.
	if _, err := e.Commit(ctx, res); err != nil {
		return turn, err
	}
	turn.Results = append(turn.Results, res)
	turn.Output = append(turn.Output, res.Narrative.Summary)

	// 8. Log the command, then advance the turn and RNG position.
	e.Table.CommandLog = append(e.Table.CommandLog, input)
	e.advance()
	return turn, nil
}

// Commit journals res, applies its changes to the table and publishes it.
// A result whose actionId was already journaled is skipped and reported
// as not applied. A result without a session joins the table's.
func (e *Engine) Commit(ctx context.Context, res action.Result) (bool, error) {
	if res.Source.SessionID == "" {
		res.Source.SessionID = e.Table.SessionID
	}
	if e.journal != nil {
		if err := e.journal.Record(ctx, res); err != nil {
			if errors.Is(err, journal.ErrDuplicateAction) {
				e.log.Warn("skipping duplicate action", "action_id", res.ActionID)
				return false, nil
			}
			return false, fmt.Errorf("journaling %s: %w", res.ActionID, err)
		}
	}

	if err := effects.Apply(e.Table, res.StateChanges); err != nil {
		return false, fmt.Errorf("applying %s: %w", res.ActionID, err)
	}

	if e.publisher != nil {
		if err := e.publisher.Publish(res); err != nil {
			e.log.Warn("publishing result failed", "action_id", res.ActionID, "err", err)
		}
	}
	return true, nil
}

// Execute dispatches a prebuilt action and commits its result without
// parsing or validation.
func (e *Engine) Execute(ctx context.Context, a action.Action) (action.Result, error) {
	res, err := e.rules.Execute(a, e.Table)
	if err != nil {
		return action.Result{}, err
	}
	if _, err := e.Commit(ctx, res); err != nil {
		return action.Result{}, err
	}
	e.advance()
	return res, nil
}

func (e *Engine) advance() {
	if e.RNG != nil {
		e.Table.RNGPosition = e.RNG.Position()
	}
	e.Table.TurnCount++
}
