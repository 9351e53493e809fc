// Package resolve maps names typed by the player to entity and item IDs.
package resolve

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nathoo/rulecore/engine/death"
	"github.com/nathoo/rulecore/types"
)

// AmbiguityError indicates multiple entities matched a name.
type AmbiguityError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguityError) Error() string {
	names := strings.Join(e.Candidates, ", ")
	return fmt.Sprintf("which %s? (%s)", e.Name, names)
}

// NotFoundError indicates no entity matched a name.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("you don't see %q here", e.Name)
}

// Entity resolves a name to the ID of an entity on the table other than
// the actor. The actor never resolves, not even by its own ID. Dead
// entities only match by exact ID.
func Entity(t *types.Table, actorID, name string) (string, error) {
	// 1. Exact entity ID match.
	if _, ok := t.Entities[name]; ok && name != actorID {
		return name, nil
	}

	// 2. Search by name among the living.
	nameLower := strings.ToLower(strings.TrimSpace(name))
	var matches []string
	for id, c := range t.Entities {
		if id == actorID || death.IsDead(c.Combatant) {
			continue
		}
		if matchesName(id, c.Name, nameLower) {
			matches = append(matches, id)
		}
	}
	return pick(name, matches)
}

// Item resolves a name to the ID of an item stack in c's inventory.
func Item(c types.Character, name string) (string, error) {
	nameLower := strings.ToLower(strings.TrimSpace(name))
	var matches []string
	for _, it := range c.Inventory {
		if matchesName(it.ID, it.Name, nameLower) {
			matches = append(matches, it.ID)
		}
	}
	return pick(name, matches)
}

// ItemAnywhere resolves an item name across every entity's inventory except
// the actor's, returning the item and source entity IDs.
func ItemAnywhere(t *types.Table, actorID, name string) (itemID, sourceID string, err error) {
	nameLower := strings.ToLower(strings.TrimSpace(name))
	type hit struct{ item, source string }
	var hits []hit
	for id, c := range t.Entities {
		if id == actorID {
			continue
		}
		for _, it := range c.Inventory {
			if it.Quantity > 0 && matchesName(it.ID, it.Name, nameLower) {
				hits = append(hits, hit{it.ID, id})
			}
		}
	}
	switch len(hits) {
	case 0:
		return "", "", &NotFoundError{Name: name}
	case 1:
		return hits[0].item, hits[0].source, nil
	}
	names := make([]string, len(hits))
	for i, h := range hits {
		names[i] = h.source + ":" + h.item
	}
	sort.Strings(names)
	return "", "", &AmbiguityError{Name: name, Candidates: names}
}

func pick(name string, matches []string) (string, error) {
	switch len(matches) {
	case 0:
		return "", &NotFoundError{Name: name}
	case 1:
		return matches[0], nil
	default:
		sort.Strings(matches)
		return "", &AmbiguityError{Name: name, Candidates: matches}
	}
}

// matchesName checks a display name and ID against a lowercased query.
// Supports exact match, word-based partial match, and entity ID match.
func matchesName(id, display, nameLower string) bool {
	if nameLower == "" {
		return false
	}
	displayLower := strings.ToLower(display)
	if displayLower == nameLower {
		return true
	}
	// "goblin" matches "goblin archer", "potion" matches "potion of healing".
	for _, word := range strings.Fields(displayLower) {
		if word == nameLower {
			return true
		}
	}
	idLower := strings.ToLower(id)
	if idLower == nameLower {
		return true
	}
	// "healing potion" matches ID "healing_potion".
	return strings.ReplaceAll(nameLower, " ", "_") == idLower
}
