package ability

import (
	"math"
	"testing"

	"github.com/nathoo/rulecore/types"
)

func TestModifier_FullDomain(t *testing.T) {
	for score := MinScore; score <= MaxScore; score++ {
		want := int(math.Floor(float64(score-10) / 2))
		if got := Modifier(score); got != want {
			t.Errorf("Modifier(%d) = %d, want %d", score, got, want)
		}
	}
}

func TestModifier_Anchors(t *testing.T) {
	tests := map[int]int{1: -5, 8: -1, 9: -1, 10: 0, 11: 0, 15: 2, 20: 5, 30: 10}
	for score, want := range tests {
		if got := Modifier(score); got != want {
			t.Errorf("Modifier(%d) = %d, want %d", score, got, want)
		}
	}
}

func TestProficiencyBonus(t *testing.T) {
	tests := []struct{ level, want int }{
		{0, 2}, {1, 2}, {4, 2}, {5, 3}, {8, 3}, {9, 4}, {13, 5}, {17, 6}, {20, 6},
	}
	for _, tt := range tests {
		if got := ProficiencyBonus(tt.level); got != tt.want {
			t.Errorf("ProficiencyBonus(%d) = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestSkillAbility(t *testing.T) {
	tests := []struct {
		skill string
		want  Ability
	}{
		{"Stealth", DEX},
		{"sleight of hand", DEX},
		{"animal_handling", WIS},
		{"ATHLETICS", STR},
		{"persuasion", CHA},
	}
	for _, tt := range tests {
		got, ok := SkillAbility(tt.skill)
		if !ok || got != tt.want {
			t.Errorf("SkillAbility(%q) = %q, %v; want %q", tt.skill, got, ok, tt.want)
		}
	}
	if _, ok := SkillAbility("juggling"); ok {
		t.Error("unknown skill should not resolve")
	}
	if len(Skills()) != 18 {
		t.Errorf("expected 18 skills, got %d", len(Skills()))
	}
}

func TestParse(t *testing.T) {
	for in, want := range map[string]Ability{"str": STR, "Dexterity": DEX, " wis ": WIS, "CHA": CHA} {
		got, ok := Parse(in)
		if !ok || got != want {
			t.Errorf("Parse(%q) = %q, %v", in, got, ok)
		}
	}
	if _, ok := Parse("luck"); ok {
		t.Error("luck is not an ability")
	}
}

func TestModifierOf(t *testing.T) {
	s := types.Abilities{STR: 16, DEX: 8, CON: 12, INT: 10, WIS: 13, CHA: 20}
	if got := ModifierOf(s, STR); got != 3 {
		t.Errorf("STR mod = %d, want 3", got)
	}
	if got := ModifierOf(s, DEX); got != -1 {
		t.Errorf("DEX mod = %d, want -1", got)
	}
	if got := ModifierOf(s, CHA); got != 5 {
		t.Errorf("CHA mod = %d, want 5", got)
	}
}

func TestProficient(t *testing.T) {
	profs := []string{"Sleight of Hand", "perception"}
	if !Proficient(profs, "sleight_of_hand") {
		t.Error("should be proficient in sleight of hand")
	}
	if Proficient(profs, "stealth") {
		t.Error("should not be proficient in stealth")
	}
	if got := CheckBonus(2, 3, true); got != 5 {
		t.Errorf("CheckBonus proficient = %d, want 5", got)
	}
	if got := CheckBonus(2, 3, false); got != 2 {
		t.Errorf("CheckBonus = %d, want 2", got)
	}
}
