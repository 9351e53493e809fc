// Package dice implements dice notation, d20 rolls with advantage and
// disadvantage, and critical damage. Every roll draws from an injected
// Source so results are reproducible under a seeded or queued source.
package dice

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/nathoo/rulecore/types"
)

const (
	// MaxCount is the largest number of dice accepted in one notation.
	MaxCount = 100
	// MaxSides is the largest die accepted in one notation.
	MaxSides = 1000
)

// ErrInvalidNotation is wrapped by every notation parse failure.
var ErrInvalidNotation = errors.New("invalid dice notation")

// ParseError names the notation that failed to parse.
type ParseError struct {
	Notation string
	Reason   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid dice notation %q: %s", e.Notation, e.Reason)
}

func (e *ParseError) Unwrap() error { return ErrInvalidNotation }

// Mode selects how many d20s are rolled and which one is kept.
type Mode string

const (
	Normal       Mode = "normal"
	Advantage    Mode = "advantage"
	Disadvantage Mode = "disadvantage"
)

// ModeFor combines advantage and disadvantage sources. Having both cancels
// out to a normal roll.
func ModeFor(advantage, disadvantage bool) Mode {
	switch {
	case advantage && !disadvantage:
		return Advantage
	case disadvantage && !advantage:
		return Disadvantage
	default:
		return Normal
	}
}

// Notation is a parsed <count>d<sides>[+|-<modifier>] expression.
type Notation struct {
	Count    int
	Sides    int
	Modifier int
}

func (n Notation) String() string {
	switch {
	case n.Modifier > 0:
		return fmt.Sprintf("%dd%d+%d", n.Count, n.Sides, n.Modifier)
	case n.Modifier < 0:
		return fmt.Sprintf("%dd%d%d", n.Count, n.Sides, n.Modifier)
	default:
		return fmt.Sprintf("%dd%d", n.Count, n.Sides)
	}
}

var (
	notationRe = regexp.MustCompile(`^\s*(\d*)[dD](\d*)(.*?)\s*$`)
	modifierRe = regexp.MustCompile(`^\s*([+-])\s*(\d+)$`)
)

// Parse parses dice notation. A missing or malformed count or side count
// is an error; a missing or unparseable modifier is read as zero.
func Parse(notation string) (Notation, error) {
	m := notationRe.FindStringSubmatch(notation)
	if m == nil {
		return Notation{}, &ParseError{Notation: notation, Reason: "expected <count>d<sides>"}
	}
	count, err := strconv.Atoi(m[1])
	if err != nil || count < 1 {
		return Notation{}, &ParseError{Notation: notation, Reason: "dice count must be a positive integer"}
	}
	sides, err := strconv.Atoi(m[2])
	if err != nil || sides < 1 {
		return Notation{}, &ParseError{Notation: notation, Reason: "sides must be a positive integer"}
	}
	if count > MaxCount {
		return Notation{}, &ParseError{Notation: notation, Reason: fmt.Sprintf("at most %d dice", MaxCount)}
	}
	if sides > MaxSides {
		return Notation{}, &ParseError{Notation: notation, Reason: fmt.Sprintf("at most %d sides", MaxSides)}
	}

	n := Notation{Count: count, Sides: sides}
	if mm := modifierRe.FindStringSubmatch(m[3]); mm != nil {
		k, err := strconv.Atoi(mm[2])
		if err == nil {
			if mm[1] == "-" {
				k = -k
			}
			n.Modifier = k
		}
	}
	return n, nil
}

// Result is the outcome of rolling a notation.
type Result struct {
	Notation string
	Rolls    []int
	Modifier int
	Total    int
}

// Record converts r to its audit form.
func (r Result) Record() types.DiceRoll {
	return types.DiceRoll{
		Notation: r.Notation,
		Rolls:    r.Rolls,
		Modifier: r.Modifier,
		Total:    r.Total,
	}
}

// Die rolls a single die with the given number of sides.
func Die(sides int, src Source) int {
	v := int(src.Float64()*float64(sides)) + 1
	if v > sides {
		v = sides
	}
	return v
}

// Roll parses notation and rolls it.
func Roll(notation string, src Source) (Result, error) {
	n, err := Parse(notation)
	if err != nil {
		return Result{}, err
	}
	return RollNotation(n, src), nil
}

// RollNotation rolls an already parsed notation.
func RollNotation(n Notation, src Source) Result {
	rolls := make([]int, n.Count)
	sum := 0
	for i := range rolls {
		rolls[i] = Die(n.Sides, src)
		sum += rolls[i]
	}
	return Result{
		Notation: n.String(),
		Rolls:    rolls,
		Modifier: n.Modifier,
		Total:    sum + n.Modifier,
	}
}

// RollDamage rolls damage dice. On a critical hit the dice count is doubled
// while the flat modifier is still added once.
func RollDamage(notation string, critical bool, src Source) (Result, error) {
	n, err := Parse(notation)
	if err != nil {
		return Result{}, err
	}
	if critical {
		n.Count *= 2
	}
	return RollNotation(n, src), nil
}

// D20Options configures a d20 roll.
type D20Options struct {
	Mode             Mode
	AbilityModifier  int
	ProficiencyBonus int
}

// D20Result is the outcome of a d20 roll. Critical and Fumble depend only on
// the kept die, never on the modifiers.
type D20Result struct {
	Rolls            []int
	Kept             int
	Mode             Mode
	AbilityModifier  int
	ProficiencyBonus int
	Total            int
	Critical         bool
	Fumble           bool
}

// Modifier returns the flat bonus added to the kept die.
func (r D20Result) Modifier() int {
	return r.AbilityModifier + r.ProficiencyBonus
}

// Record converts r to its audit form.
func (r D20Result) Record() types.DiceRoll {
	return types.DiceRoll{
		Notation: "1d20",
		Rolls:    r.Rolls,
		Modifier: r.Modifier(),
		Total:    r.Total,
		Mode:     string(r.Mode),
		Kept:     r.Kept,
		Critical: r.Critical,
		Fumble:   r.Fumble,
	}
}

// RollD20 rolls one d20, or two under advantage or disadvantage, in draw
// order first die then second die.
func RollD20(opts D20Options, src Source) D20Result {
	mode := opts.Mode
	if mode == "" {
		mode = Normal
	}

	first := Die(20, src)
	rolls := []int{first}
	kept := first
	if mode != Normal {
		second := Die(20, src)
		rolls = append(rolls, second)
		if (mode == Advantage && second > first) || (mode == Disadvantage && second < first) {
			kept = second
		}
	}

	return D20Result{
		Rolls:            rolls,
		Kept:             kept,
		Mode:             mode,
		AbilityModifier:  opts.AbilityModifier,
		ProficiencyBonus: opts.ProficiencyBonus,
		Total:            kept + opts.AbilityModifier + opts.ProficiencyBonus,
		Critical:         kept == 20,
		Fumble:           kept == 1,
	}
}
