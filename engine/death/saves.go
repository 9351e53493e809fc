package death

import (
	"fmt"

	"github.com/nathoo/rulecore/engine/dice"
	"github.com/nathoo/rulecore/types"
)

// SaveRoll is one death saving throw.
type SaveRoll struct {
	Roll        dice.D20Result
	Success     bool
	CritSuccess bool
	CritFailure bool
}

// RollSave rolls a death saving throw: one d20, no modifiers.
func RollSave(src dice.Source) SaveRoll {
	r := dice.RollD20(dice.D20Options{}, src)
	return SaveRoll{
		Roll:        r,
		Success:     r.Total >= SaveDC,
		CritSuccess: r.Critical,
		CritFailure: r.Fumble,
	}
}

// Ladder applies one save to a death-save state. It returns the new state
// and whether the save was a natural 20, which ends the ladder with the
// character back on its feet.
func Ladder(s types.DeathSaveState, roll SaveRoll) (types.DeathSaveState, bool) {
	switch {
	case roll.CritSuccess:
		return types.DeathSaveState{Stable: true}, true
	case roll.CritFailure:
		s.Failures = min(MaxMarks, s.Failures+2)
	case roll.Success:
		s.Successes = min(MaxMarks, s.Successes+1)
	default:
		s.Failures = min(MaxMarks, s.Failures+1)
	}
	if s.Successes >= MaxMarks && s.Failures < MaxMarks {
		s.Stable = true
	}
	return s, false
}

// SaveReport is the outcome of MakeSave.
type SaveReport struct {
	Combatant             types.Combatant
	Save                  SaveRoll
	DeathSaves            types.DeathSaveState
	RegainedConsciousness bool
	Stabilized            bool
	Dead                  bool
	Message               string
}

// MakeSave rolls a death save for a dying combatant and applies it. It
// returns ErrNotDying, without drawing, for anyone conscious, stable, or
// dead.
func MakeSave(c types.Combatant, src dice.Source) (SaveReport, error) {
	if !IsDying(c) {
		return SaveReport{}, fmt.Errorf("%s: %w", c.ID, ErrNotDying)
	}

	roll := RollSave(src)
	prev := types.DeathSaveState{}
	if c.DeathSaves != nil {
		prev = *c.DeathSaves
	}
	next, revived := Ladder(prev, roll)

	out := c
	out.DeathSaves = &next
	rep := SaveReport{Save: roll, DeathSaves: next}

	switch {
	case revived:
		out.Stats.HP = 1
		out.Conditions = out.Conditions.Without(types.CondUnconscious, types.CondDying)
		rep.RegainedConsciousness = true
		rep.Message = fmt.Sprintf("%s rolls a natural 20 and regains consciousness!", c.Name)
	case next.Failures >= MaxMarks:
		out.Conditions = out.Conditions.Without(types.CondDying).With(types.CondDead)
		rep.Dead = true
		rep.Message = fmt.Sprintf("%s has died.", c.Name)
	case next.Stable:
		out.Conditions = out.Conditions.Without(types.CondDying)
		rep.Stabilized = true
		rep.Message = fmt.Sprintf("%s is stable.", c.Name)
	case roll.Success:
		rep.Message = fmt.Sprintf("%s clings to life (%d successes, %d failures).", c.Name, next.Successes, next.Failures)
	default:
		rep.Message = fmt.Sprintf("%s slips closer to death (%d successes, %d failures).", c.Name, next.Successes, next.Failures)
	}

	rep.Combatant = out
	return rep, nil
}

// Stabilize returns c stabilized at 0 HP: no longer dying, counters zeroed.
func Stabilize(c types.Combatant) types.Combatant {
	c.DeathSaves = &types.DeathSaveState{Stable: true}
	c.Conditions = c.Conditions.Without(types.CondDying)
	return c
}

// StabilizeReport is the outcome of AttemptStabilization.
type StabilizeReport struct {
	Patient types.Combatant
	Check   dice.D20Result
	Success bool
	Message string
}

// AttemptStabilization rolls a healer's Medicine check (WIS, plus
// proficiency when trained) against StabilizeDC to stabilize a dying
// patient. It returns ErrNotDying, without drawing, for anyone else.
func AttemptStabilization(healerName string, wisMod, proficiency int, patient types.Combatant, src dice.Source) (StabilizeReport, error) {
	if !IsDying(patient) {
		return StabilizeReport{}, fmt.Errorf("%s: %w", patient.ID, ErrNotDying)
	}

	check := dice.RollD20(dice.D20Options{AbilityModifier: wisMod, ProficiencyBonus: proficiency}, src)
	rep := StabilizeReport{Patient: patient, Check: check}
	if check.Total < StabilizeDC {
		rep.Message = fmt.Sprintf("%s fails to stabilize %s (%d vs DC %d).", healerName, patient.Name, check.Total, StabilizeDC)
		return rep, nil
	}
	rep.Patient = Stabilize(patient)
	rep.Success = true
	rep.Message = fmt.Sprintf("%s stabilizes %s (%d vs DC %d).", healerName, patient.Name, check.Total, StabilizeDC)
	return rep, nil
}
