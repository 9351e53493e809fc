// Package effects implements centralized state mutation via the Apply function.
// Every StateChange is one atomic field write with an absolute value, so
// applying the same list twice leaves the table as applying it once.
package effects

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/nathoo/rulecore/types"
)

var (
	ErrUnknownEntity = errors.New("unknown entity")
	ErrUnknownField  = errors.New("unknown field")
	ErrBadValue      = errors.New("bad value")
)

type setter func(c *types.Character)

// Apply writes changes to the table. Every change is decoded and checked
// first; if any is invalid nothing is written.
func Apply(t *types.Table, changes []types.StateChange) error {
	type write struct {
		id  string
		set setter
	}
	var writes []write
	var initiative []string
	setInitiative := false

	for i, ch := range changes {
		if ch.EntityType == types.EntityTable {
			if ch.Field != types.FieldInitiative {
				return fmt.Errorf("change %d: table.%s: %w", i, ch.Field, ErrUnknownField)
			}
			order, err := toStrings(ch.NewValue)
			if err != nil {
				return fmt.Errorf("change %d: table.%s: %w", i, ch.Field, err)
			}
			initiative, setInitiative = order, true
			continue
		}
		if _, ok := t.Entities[ch.EntityID]; !ok {
			return fmt.Errorf("change %d: %q: %w", i, ch.EntityID, ErrUnknownEntity)
		}
		set, err := setterFor(ch.Field, ch.NewValue)
		if err != nil {
			return fmt.Errorf("change %d: %s.%s: %w", i, ch.EntityID, ch.Field, err)
		}
		writes = append(writes, write{id: ch.EntityID, set: set})
	}

	for _, w := range writes {
		c := t.Entities[w.id]
		w.set(&c)
		t.Entities[w.id] = c
	}
	if setInitiative {
		t.Initiative = initiative
	}
	return nil
}

func setterFor(field string, v any) (setter, error) {
	switch field {
	case types.FieldHP:
		n, err := toInt(v)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, fmt.Errorf("%w: negative HP %d", ErrBadValue, n)
		}
		return func(c *types.Character) { c.Stats.HP = n }, nil
	case types.FieldTempHP:
		n, err := toInt(v)
		if err != nil {
			return nil, err
		}
		return func(c *types.Character) { c.Stats.TempHP = n }, nil
	case types.FieldXP:
		n, err := toInt(v)
		if err != nil {
			return nil, err
		}
		return func(c *types.Character) { c.XP = n }, nil
	case types.FieldGold:
		n, err := toInt(v)
		if err != nil {
			return nil, err
		}
		return func(c *types.Character) { c.Gold = n }, nil
	case types.FieldPositionX:
		n, err := toInt(v)
		if err != nil {
			return nil, err
		}
		return func(c *types.Character) { c.Position.X = n }, nil
	case types.FieldPositionY:
		n, err := toInt(v)
		if err != nil {
			return nil, err
		}
		return func(c *types.Character) { c.Position.Y = n }, nil
	case types.FieldHasReaction:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: want bool, got %T", ErrBadValue, v)
		}
		return func(c *types.Character) { c.HasReaction = b }, nil
	case types.FieldDamage, types.FieldGrappling, types.FieldGrappledBy, types.FieldTutorialState:
		s, err := toString(v)
		if err != nil {
			return nil, err
		}
		return func(c *types.Character) {
			switch field {
			case types.FieldDamage:
				c.Stats.Damage = s
			case types.FieldGrappling:
				c.Grappling = s
			case types.FieldGrappledBy:
				c.GrappledBy = s
			case types.FieldTutorialState:
				c.TutorialState = s
			}
		}, nil
	case types.FieldConditions:
		list, err := toStrings(v)
		if err != nil {
			return nil, err
		}
		conds := types.Conditions(nil).With(list...)
		return func(c *types.Character) { c.Conditions = conds }, nil
	case types.FieldUsedActions, types.FieldReputationTags, types.FieldReviews:
		list, err := toStrings(v)
		if err != nil {
			return nil, err
		}
		return func(c *types.Character) {
			switch field {
			case types.FieldUsedActions:
				c.UsedActions = slices.Clone(list)
			case types.FieldReputationTags:
				c.ReputationTags = slices.Clone(list)
			case types.FieldReviews:
				c.Reviews = slices.Clone(list)
			}
		}, nil
	case types.FieldDeathSaves:
		if p, ok := v.(*types.DeathSaveState); v == nil || (ok && p == nil) {
			return func(c *types.Character) { c.DeathSaves = nil }, nil
		}
		var ds types.DeathSaveState
		if err := convert(v, &ds); err != nil {
			return nil, err
		}
		return func(c *types.Character) { d := ds; c.DeathSaves = &d }, nil
	case types.FieldInventory:
		var items []types.Item
		if err := convert(v, &items); err != nil {
			return nil, err
		}
		return func(c *types.Character) { c.Inventory = slices.Clone(items) }, nil
	case types.FieldReputationScores:
		var scores map[string]int
		if err := convert(v, &scores); err != nil {
			return nil, err
		}
		return func(c *types.Character) { c.ReputationScores = cloneMap(scores) }, nil
	case types.FieldActiveThreats:
		var threats map[string]types.Threat
		if err := convert(v, &threats); err != nil {
			return nil, err
		}
		return func(c *types.Character) { c.ActiveThreats = cloneMap(threats) }, nil
	}
	return nil, ErrUnknownField
}

// toInt accepts native ints and the float64 that JSON decoding produces.
func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%w: %v is not an integer", ErrBadValue, n)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrBadValue, err)
		}
		return int(i), nil
	}
	return 0, fmt.Errorf("%w: want number, got %T", ErrBadValue, v)
}

func toString(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case nil:
		return "", nil
	}
	return "", fmt.Errorf("%w: want string, got %T", ErrBadValue, v)
}

func toStrings(v any) ([]string, error) {
	switch s := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return s, nil
	case types.Conditions:
		return []string(s), nil
	}
	var out []string
	if err := convert(v, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// convert copies a decoded JSON value (or a native one) into out.
func convert(v any, out any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadValue, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrBadValue, err)
	}
	return nil
}

func cloneMap[V any](m map[string]V) map[string]V {
	if m == nil {
		return nil
	}
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
