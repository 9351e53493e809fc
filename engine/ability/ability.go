// Package ability implements ability-score arithmetic: modifiers,
// proficiency by level, and the skill table.
package ability

import (
	"strings"

	"github.com/nathoo/rulecore/types"
)

// Ability names a score.
type Ability string

const (
	STR Ability = "STR"
	DEX Ability = "DEX"
	CON Ability = "CON"
	INT Ability = "INT"
	WIS Ability = "WIS"
	CHA Ability = "CHA"
)

const (
	MinScore = 1
	MaxScore = 30
)

// Modifier returns floor((score-10)/2).
func Modifier(score int) int {
	d := score - 10
	if d < 0 {
		return (d - 1) / 2
	}
	return d / 2
}

// ValidScore reports whether score is within [MinScore, MaxScore].
func ValidScore(score int) bool {
	return score >= MinScore && score <= MaxScore
}

// ProficiencyBonus returns the proficiency bonus for a character level.
// Levels below 1 get the level 1 bonus.
func ProficiencyBonus(level int) int {
	if level < 1 {
		level = 1
	}
	return (level-1)/4 + 2
}

// Parse maps a case-insensitive ability name or abbreviation to an Ability.
func Parse(s string) (Ability, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "str", "strength":
		return STR, true
	case "dex", "dexterity":
		return DEX, true
	case "con", "constitution":
		return CON, true
	case "int", "intelligence":
		return INT, true
	case "wis", "wisdom":
		return WIS, true
	case "cha", "charisma":
		return CHA, true
	}
	return "", false
}

// Score returns the score for a from the sheet.
func Score(s types.Abilities, a Ability) int {
	switch a {
	case STR:
		return s.STR
	case DEX:
		return s.DEX
	case CON:
		return s.CON
	case INT:
		return s.INT
	case WIS:
		return s.WIS
	case CHA:
		return s.CHA
	}
	return 10
}

// ModifierOf returns the modifier for a from the sheet.
func ModifierOf(s types.Abilities, a Ability) int {
	return Modifier(Score(s, a))
}

var skills = map[string]Ability{
	"athletics":       STR,
	"acrobatics":      DEX,
	"sleight_of_hand": DEX,
	"stealth":         DEX,
	"arcana":          INT,
	"history":         INT,
	"investigation":   INT,
	"nature":          INT,
	"religion":        INT,
	"animal_handling": WIS,
	"insight":         WIS,
	"medicine":        WIS,
	"perception":      WIS,
	"survival":        WIS,
	"deception":       CHA,
	"intimidation":    CHA,
	"performance":     CHA,
	"persuasion":      CHA,
}

// SkillAbility returns the ability a skill is rolled with. Skill names are
// matched case-insensitively with spaces treated as underscores.
func SkillAbility(skill string) (Ability, bool) {
	a, ok := skills[NormalizeSkill(skill)]
	return a, ok
}

// NormalizeSkill lowercases a skill name and joins words with underscores.
func NormalizeSkill(skill string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.ReplaceAll(skill, "_", " "))), "_")
}

// Skills returns every known skill name.
func Skills() []string {
	out := make([]string, 0, len(skills))
	for s := range skills {
		out = append(out, s)
	}
	return out
}

// CheckBonus is the flat bonus added to a d20 check.
func CheckBonus(mod, proficiency int, proficient bool) int {
	if proficient {
		return mod + proficiency
	}
	return mod
}

// Proficient reports whether skill appears in the proficiency list.
func Proficient(proficiencies []string, skill string) bool {
	want := NormalizeSkill(skill)
	for _, p := range proficiencies {
		if NormalizeSkill(p) == want {
			return true
		}
	}
	return false
}
