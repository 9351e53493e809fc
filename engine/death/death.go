// Package death implements the death-and-dying state machine: damage with
// temporary hit points and massive damage, the death-save ladder,
// stabilization, and healing recovery.
//
// Functions take a combatant by value and return the updated copy inside a
// report. Nothing here modifies caller-owned state.
package death

import (
	"errors"
	"fmt"

	"github.com/nathoo/rulecore/types"
)

const (
	// SaveDC is the death saving throw difficulty.
	SaveDC = 10
	// StabilizeDC is the Medicine check difficulty to stabilize.
	StabilizeDC = 10
	// MaxMarks is where successes and failures stop counting.
	MaxMarks = 3
)

// ErrNotDying is returned when a death save or stabilization is attempted
// on a combatant that is not dying.
var ErrNotDying = errors.New("not dying")

// State is the derived life state of a combatant.
type State string

const (
	Conscious State = "conscious"
	Dying     State = "dying"
	Stable    State = "stable"
	Dead      State = "dead"
)

// IsDead reports whether c is dead.
func IsDead(c types.Combatant) bool {
	return c.Conditions.Has(types.CondDead) || (c.DeathSaves != nil && c.DeathSaves.Failures >= MaxMarks)
}

// IsDying reports whether c is at 0 HP and still rolling death saves.
func IsDying(c types.Combatant) bool {
	return c.Stats.HP == 0 && c.Conditions.Has(types.CondDying) &&
		(c.DeathSaves == nil || !c.DeathSaves.Stable) && !IsDead(c)
}

// IsStable reports whether c is at 0 HP, stabilized, and alive.
func IsStable(c types.Combatant) bool {
	return c.Stats.HP == 0 && c.DeathSaves != nil && c.DeathSaves.Stable && !IsDead(c)
}

// StateOf projects c onto the four life states.
func StateOf(c types.Combatant) State {
	switch {
	case IsDead(c):
		return Dead
	case IsStable(c):
		return Stable
	case IsDying(c):
		return Dying
	default:
		return Conscious
	}
}

// DamageReport is the outcome of ApplyDamage.
type DamageReport struct {
	Combatant      types.Combatant
	TempHPAbsorbed int
	DamageDealt    int
	NewHP          int
	KnockedOut     bool
	InstantDeath   bool
	Dead           bool
	// DeathSaveFailures is how many failures this hit added.
	DeathSaveFailures int
	TotalFailures     int
	Message           string
}

// ApplyDamage applies one instance of damage to c. Temporary HP absorbs
// first. Damage that drops c to 0 with overkill of at least max HP kills
// outright; otherwise dropping from above 0 to 0 starts the death-save
// ladder, and any hit taken at 0 HP adds one failure, two on a critical,
// even when temporary HP absorbs all of it.
func ApplyDamage(c types.Combatant, amount int, critical bool) DamageReport {
	rep := DamageReport{Combatant: c, NewHP: c.Stats.HP}
	if amount <= 0 || IsDead(c) {
		rep.Dead = IsDead(c)
		rep.Message = fmt.Sprintf("%s takes no damage.", c.Name)
		return rep
	}

	out := c
	remaining := amount
	if out.Stats.TempHP > 0 {
		absorbed := min(out.Stats.TempHP, remaining)
		out.Stats.TempHP -= absorbed
		remaining -= absorbed
		rep.TempHPAbsorbed = absorbed
	}
	rep.DamageDealt = remaining

	wasUp := c.Stats.HP > 0
	if remaining == 0 && wasUp {
		rep.Combatant = out
		rep.Message = fmt.Sprintf("%s's temporary hit points absorb the blow.", c.Name)
		return rep
	}

	overkill := remaining - out.Stats.HP
	if overkill >= 0 && overkill >= out.Stats.MaxHP {
		out.Stats.HP = 0
		out.Conditions = out.Conditions.Without(types.CondDying).With(types.CondDead)
		rep.Combatant = out
		rep.NewHP = 0
		rep.InstantDeath = true
		rep.Dead = true
		if out.DeathSaves != nil {
			rep.TotalFailures = out.DeathSaves.Failures
		}
		rep.Message = fmt.Sprintf("%s is slain outright by massive damage.", c.Name)
		return rep
	}

	if wasUp {
		out.Stats.HP = max(0, out.Stats.HP-remaining)
		rep.NewHP = out.Stats.HP
		if out.Stats.HP == 0 {
			out.Conditions = out.Conditions.With(types.CondUnconscious, types.CondDying)
			out.DeathSaves = &types.DeathSaveState{}
			rep.KnockedOut = true
			rep.Message = fmt.Sprintf("%s falls unconscious.", c.Name)
		} else {
			rep.Message = fmt.Sprintf("%s takes %d damage.", c.Name, remaining)
		}
		rep.Combatant = out
		return rep
	}

	// Already at 0 HP.
	added := 1
	if critical {
		added = 2
	}
	saves := types.DeathSaveState{}
	if out.DeathSaves != nil {
		saves = *out.DeathSaves
	}
	saves.Failures = min(MaxMarks, saves.Failures+added)
	saves.Stable = false
	out.DeathSaves = &saves
	out.Conditions = out.Conditions.With(types.CondUnconscious)
	rep.DeathSaveFailures = added
	rep.TotalFailures = saves.Failures
	if saves.Failures >= MaxMarks {
		out.Conditions = out.Conditions.Without(types.CondDying).With(types.CondDead)
		rep.Dead = true
		rep.Message = fmt.Sprintf("%s succumbs to their wounds.", c.Name)
	} else {
		out.Conditions = out.Conditions.With(types.CondDying)
		rep.Message = fmt.Sprintf("%s is struck while down (%d failures).", c.Name, saves.Failures)
	}
	rep.Combatant = out
	return rep
}

// GrantTempHP gives c temporary hit points. They do not stack; the higher
// pool is kept.
func GrantTempHP(c types.Combatant, amount int) types.Combatant {
	if amount > c.Stats.TempHP {
		c.Stats.TempHP = amount
	}
	return c
}

// HealReport is the outcome of ApplyHealing.
type HealReport struct {
	Combatant             types.Combatant
	Restored              int
	NewHP                 int
	RegainedConsciousness bool
	Message               string
}

// ApplyHealing restores up to amount HP, capped at max HP. Healing a
// combatant at 0 HP wakes it, clears unconscious and dying, and resets its
// death saves to stable and zeroed. The dead cannot be healed.
func ApplyHealing(c types.Combatant, amount int) HealReport {
	rep := HealReport{Combatant: c, NewHP: c.Stats.HP}
	if IsDead(c) {
		rep.Message = fmt.Sprintf("%s is beyond healing.", c.Name)
		return rep
	}
	if amount <= 0 {
		return rep
	}

	out := c
	out.Stats.HP = min(out.Stats.MaxHP, out.Stats.HP+amount)
	rep.Restored = out.Stats.HP - c.Stats.HP
	rep.NewHP = out.Stats.HP

	if c.Stats.HP == 0 && out.Stats.HP > 0 {
		out.Conditions = out.Conditions.Without(types.CondUnconscious, types.CondDying)
		out.DeathSaves = &types.DeathSaveState{Stable: true}
		rep.RegainedConsciousness = true
		rep.Message = fmt.Sprintf("%s regains consciousness with %d HP.", c.Name, out.Stats.HP)
	} else {
		rep.Message = fmt.Sprintf("%s recovers %d HP.", c.Name, rep.Restored)
	}
	rep.Combatant = out
	return rep
}
