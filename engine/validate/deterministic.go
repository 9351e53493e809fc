package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/nathoo/rulecore/engine/resolve"
	"github.com/nathoo/rulecore/engine/state"
	"github.com/nathoo/rulecore/types"
)

var (
	questionRe   = regexp.MustCompile(`^(?:what|where|which|who|how|why|when|can i|could i|should i|is there|are there)\b|\?$`)
	perceptionRe = regexp.MustCompile(`\b(?:look|examine|inspect|observe|check|see|notice|hear|smell|listen)\b`)
	socialRe     = regexp.MustCompile(`\b(?:ask|tell|say|says|talk|speak|greet|introduce|thank|nod|smile|wave)\b`)
	spellRe      = regexp.MustCompile(`\bcast(?:s|ing)?\s+(.+?)(?:\s+(?:at|on|to|against|toward|towards|upon|into)\b.*)?$`)
	itemRe       = regexp.MustCompile(`\b(?:use|wield|equip|drink|consume|swing|throw|brandish)\s+(?:my\s+|the\s+|a\s+|an\s+)?(.+?)(?:\s+(?:on|at|to|against|with|and|into)\b.*)?$`)
)

var impossible = []struct {
	re         *regexp.Regexp
	suggestion string
}{
	{regexp.MustCompile(`\bplay\b.*\bsword\b.*\b(?:flute|instrument|music)\b`), "You can't play a sword as a musical instrument. Did you mean to attack with it?"},
	{regexp.MustCompile(`\bfly\b.*\b(?:without|no)\b.*\bwings\b|\bflap my arms\b`), "Without wings or magic, you cannot fly. Do you have a spell or item that grants flight?"},
	{regexp.MustCompile(`\bbreathe\b.*\bunderwater\b`), "You cannot breathe underwater without magical assistance. Do you have a spell or item for this?"},
	{regexp.MustCompile(`\b(?:teleport|teleports|blink)\b`), "You don't have teleportation abilities. Consider traveling normally or finding a teleportation circle."},
}

var godMode = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:i am|i'm)\s+(?:a\s+)?(?:god|deity|divine|immortal|invincible)\b`),
	regexp.MustCompile(`\bbecome\s+(?:a\s+)?god\b`),
	regexp.MustCompile(`\binstantly\s+(?:kill|destroy|win|slay)\b`),
	regexp.MustCompile(`\bi win\b`),
	regexp.MustCompile(`\b(?:infinite|unlimited)\s+(?:power|gold|mana|health|hp|wishes|spell slots)\b`),
	regexp.MustCompile(`\b(?:give me|grant me)\b.*\b(?:legendary|artifact|divine|ultimate)\b`),
	regexp.MustCompile(`\b(?:give me|grant me|i gain|i get)\s+\d+\s*(?:xp|experience|gold|levels?)\b`),
}

// Deterministic runs the stage-one checks against normalized text. decided
// is false when the text needs the external check.
func Deterministic(text string, actor types.Character) (r Result, decided bool) {
	text = strings.ToLower(strings.TrimSpace(text))

	// 1. Questions are always fine.
	if questionRe.MatchString(text) {
		return Result{IsValid: true, Reason: "Valid question"}, true
	}

	// 2. God mode.
	for _, re := range godMode {
		if re.MatchString(text) {
			return Result{
				IsValid:    false,
				Reason:     "You cannot claim divine powers or omnipotence.",
				Suggestion: "Describe what your character attempts to do within their abilities.",
			}, true
		}
	}

	// 3. Physical impossibilities.
	for _, p := range impossible {
		if p.re.MatchString(text) {
			return Result{IsValid: false, Reason: "This action is physically impossible.", Suggestion: p.suggestion}, true
		}
	}

	// 4. Spells the actor does not know.
	if sm := spellRe.FindStringSubmatch(text); sm != nil {
		spell := strings.TrimSpace(sm[1])
		if !state.KnowsSpell(actor, spell) {
			return Result{
				IsValid:    false,
				Reason:     fmt.Sprintf("You don't know the %s spell.", spell),
				Suggestion: knownSpells(actor),
			}, true
		}
		return Result{IsValid: true, Reason: "Known spell"}, true
	}

	// 5. Items the actor does not carry.
	if sm := itemRe.FindStringSubmatch(text); sm != nil {
		item := strings.TrimSpace(sm[1])
		_, err := resolve.Item(actor, item)
		var nf *resolve.NotFoundError
		if errors.As(err, &nf) || (err == nil && !carries(actor, item)) {
			return Result{
				IsValid:    false,
				Reason:     fmt.Sprintf("You don't have %s.", article(item)),
				Suggestion: carried(actor),
			}, true
		}
	}

	// 6. Looking around and talking.
	if perceptionRe.MatchString(text) || socialRe.MatchString(text) {
		return Result{IsValid: true, Reason: "Valid roleplay action"}, true
	}
	return Result{}, false
}

// carries reports whether a stack resolved by name still has quantity.
func carries(actor types.Character, name string) bool {
	id, err := resolve.Item(actor, name)
	if err != nil {
		return false
	}
	it, _, ok := state.FindItem(actor, id)
	return ok && it.Quantity > 0
}

func knownSpells(actor types.Character) string {
	if len(actor.Spells) == 0 {
		return "You don't know any spells. Try a skill or an attack instead."
	}
	return "You currently know: " + strings.Join(actor.Spells, ", ") + "."
}

func carried(actor types.Character) string {
	var names []string
	for _, it := range actor.Inventory {
		if it.Quantity > 0 {
			names = append(names, it.Name)
		}
	}
	if len(names) == 0 {
		return "Your pack is empty."
	}
	return "You are carrying: " + strings.Join(names, ", ") + "."
}

func article(noun string) string {
	if noun == "" {
		return "that"
	}
	switch noun[0] {
	case 'a', 'e', 'i', 'o', 'u':
		return "an " + noun
	}
	return "a " + noun
}
