package loader

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nathoo/rulecore/engine/ability"
	"github.com/nathoo/rulecore/engine/dice"
	"github.com/nathoo/rulecore/engine/rules"
	"github.com/nathoo/rulecore/engine/state"
	"github.com/nathoo/rulecore/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// Known item kinds.
var validItemKinds = map[string]bool{
	"weapon": true,
	"armor":  true,
	"potion": true,
	"gear":   true,
}

// Known tutorial states.
var validTutorialStates = map[string]bool{
	rules.InterviewWelcome:    true,
	rules.InterviewClassIntro: true,
	rules.NeedsEquipment:      true,
	rules.InterviewBackstory:  true,
	rules.InterviewComplete:   true,
}

// Known conditions.
var validConditions = map[string]bool{
	types.CondUnconscious: true,
	types.CondDying:       true,
	types.CondDead:        true,
	types.CondProne:       true,
	types.CondGrappled:    true,
	types.CondRestrained:  true,
	types.CondHidden:      true,
	types.CondPoisoned:    true,
}

// validate checks the compiled defs for referential integrity and
// consistency. Problems are reported in entity ID order.
func validate(defs *state.Defs) *ValidationError {
	ve := &ValidationError{}

	if defs.Title == "" {
		ve.Errors = append(ve.Errors, "Table.title is required")
	}

	if defs.PlayerID == "" {
		ve.Errors = append(ve.Errors, "Table.player is required")
	} else if p, ok := defs.Characters[defs.PlayerID]; !ok {
		ve.Errors = append(ve.Errors, fmt.Sprintf("player %q not found in defined characters", defs.PlayerID))
	} else if p.Type != types.EntityCharacter {
		ve.Errors = append(ve.Errors, fmt.Sprintf("player %q must be a Character, not %s", defs.PlayerID, p.Type))
	}

	ids := make([]string, 0, len(defs.Characters))
	for id := range defs.Characters {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	enemies := 0
	for _, id := range ids {
		c := defs.Characters[id]
		if c.Type == types.EntityEnemy {
			enemies++
		}
		validateCharacter(id, c, ve)
	}

	if enemies == 0 {
		ve.Warnings = append(ve.Warnings, "no enemies defined; combat will have no opponents")
	}

	return ve
}

func validateCharacter(id string, c types.Character, ve *ValidationError) {
	errf := func(format string, args ...any) {
		ve.Errors = append(ve.Errors, fmt.Sprintf("%s %q: ", c.Type, id)+fmt.Sprintf(format, args...))
	}

	if c.Stats.MaxHP <= 0 {
		errf("max_hp must be positive")
	}
	if c.Stats.HP < 0 || c.Stats.HP > c.Stats.MaxHP {
		errf("hp %d must be within 0..%d", c.Stats.HP, c.Stats.MaxHP)
	}
	if c.Stats.HP == 0 && !c.Conditions.Has(types.CondDying) && !c.Conditions.Has(types.CondDead) && !c.Conditions.Has(types.CondUnconscious) {
		errf("hp 0 requires a dying, unconscious or dead condition")
	}
	if c.Stats.ArmorClass <= 0 {
		errf("ac must be positive")
	}
	if c.Stats.Damage == "" {
		errf("damage is required (or equip a weapon with damage)")
	} else if _, err := dice.Parse(c.Stats.Damage); err != nil {
		errf("damage: %v", err)
	}
	if c.Level < 1 || c.Level > 20 {
		errf("level %d must be within 1..20", c.Level)
	}

	if c.Abilities != (types.Abilities{}) {
		for _, s := range []struct {
			name  string
			score int
		}{
			{"STR", c.Abilities.STR}, {"DEX", c.Abilities.DEX}, {"CON", c.Abilities.CON},
			{"INT", c.Abilities.INT}, {"WIS", c.Abilities.WIS}, {"CHA", c.Abilities.CHA},
		} {
			if !ability.ValidScore(s.score) {
				errf("ability %s %d must be within %d..%d", s.name, s.score, ability.MinScore, ability.MaxScore)
			}
		}
	} else if c.Type == types.EntityCharacter {
		ve.Warnings = append(ve.Warnings, fmt.Sprintf("character %q has no ability scores; checks use +0", id))
	}

	for _, p := range c.Proficiencies {
		if !knownProficiency(p) {
			errf("unknown proficiency %q", p)
		}
	}
	for _, cond := range c.Conditions {
		if !validConditions[cond] {
			errf("unknown condition %q", cond)
		}
	}
	if c.TutorialState != "" && !validTutorialStates[c.TutorialState] {
		errf("unknown tutorial state %q", c.TutorialState)
	}

	equipped := map[string]string{}
	for _, it := range c.Inventory {
		if !validItemKinds[it.Kind] {
			errf("item %q has unknown kind %q", it.ID, it.Kind)
		}
		if it.Quantity <= 0 {
			errf("item %q quantity must be positive", it.ID)
		}
		for _, n := range [][2]string{{"damage", it.Damage}, {"healing", it.Healing}} {
			if n[1] == "" {
				continue
			}
			if _, err := dice.Parse(n[1]); err != nil {
				errf("item %q %s: %v", it.ID, n[0], err)
			}
		}
		if !it.Equipped {
			continue
		}
		if it.Kind != "weapon" && it.Kind != "armor" {
			errf("item %q of kind %s cannot be equipped", it.ID, it.Kind)
		} else if prev, ok := equipped[it.Kind]; ok {
			errf("items %q and %q are both equipped %s", prev, it.ID, it.Kind)
		} else {
			equipped[it.Kind] = it.ID
		}
	}
}

// knownProficiency accepts skill names and "<ability> save".
func knownProficiency(p string) bool {
	if _, ok := ability.SkillAbility(p); ok {
		return true
	}
	name, ok := strings.CutSuffix(ability.NormalizeSkill(p), "_save")
	if !ok {
		return false
	}
	_, ok = ability.Parse(name)
	return ok
}
