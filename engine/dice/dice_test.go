package dice

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Notation
	}{
		{"1d20", Notation{Count: 1, Sides: 20}},
		{"2d6+3", Notation{Count: 2, Sides: 6, Modifier: 3}},
		{"1d6-1", Notation{Count: 1, Sides: 6, Modifier: -1}},
		{"3D8 + 2", Notation{Count: 3, Sides: 8, Modifier: 2}},
		{"1d8+", Notation{Count: 1, Sides: 8}},
		{"1d8+x", Notation{Count: 1, Sides: 8}},
		{"1d4*2", Notation{Count: 1, Sides: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{"", "d20", "xd6", "1d", "0d6", "1d0", "fireball", "101d6", "1d1001"} {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			if err == nil {
				t.Fatalf("Parse(%q) should fail", in)
			}
			if !errors.Is(err, ErrInvalidNotation) {
				t.Errorf("error %v should wrap ErrInvalidNotation", err)
			}
			var pe *ParseError
			if !errors.As(err, &pe) || pe.Notation != in {
				t.Errorf("error %v should name notation %q", err, in)
			}
		})
	}
}

func TestNotationString(t *testing.T) {
	for _, s := range []string{"1d20", "2d6+3", "1d6-1"} {
		n, err := Parse(s)
		if err != nil {
			t.Fatal(err)
		}
		if n.String() != s {
			t.Errorf("String() = %q, want %q", n.String(), s)
		}
	}
}

func TestDieBounds(t *testing.T) {
	for _, f := range []float64{0, 0.25, 0.5, 0.999999} {
		v := Die(6, SourceFunc(func() float64 { return f }))
		if v < 1 || v > 6 {
			t.Errorf("Die(6) with draw %v = %d, out of range", f, v)
		}
	}
}

func TestFaceForcesValue(t *testing.T) {
	for _, sides := range []int{4, 6, 8, 20, 100} {
		for face := 1; face <= sides; face++ {
			if got := Die(sides, Queue(Face(face, sides))); got != face {
				t.Fatalf("d%d forced to %d rolled %d", sides, face, got)
			}
		}
	}
}

func TestRoll(t *testing.T) {
	src := Queue(Face(4, 6), Face(5, 6))
	r, err := Roll("2d6+3", src)
	if err != nil {
		t.Fatal(err)
	}
	if r.Total != 12 {
		t.Errorf("total = %d, want 12", r.Total)
	}
	if len(r.Rolls) != 2 || r.Rolls[0] != 4 || r.Rolls[1] != 5 {
		t.Errorf("rolls = %v, want [4 5]", r.Rolls)
	}
	if r.Modifier != 3 {
		t.Errorf("modifier = %d, want 3", r.Modifier)
	}
}

func TestRollNegativeModifier(t *testing.T) {
	r, err := Roll("1d6-1", Queue(Face(3, 6)))
	if err != nil {
		t.Fatal(err)
	}
	if r.Total != 2 {
		t.Errorf("total = %d, want 2", r.Total)
	}
}

func TestRollDamageCritical(t *testing.T) {
	src := Queue(Face(8, 8), Face(8, 8))
	r, err := RollDamage("1d8+2", true, src)
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Rolls) != 2 {
		t.Fatalf("critical should roll 2 dice, rolled %d", len(r.Rolls))
	}
	if r.Total != 18 {
		t.Errorf("max critical 1d8+2 = %d, want 18", r.Total)
	}
	if src.Remaining() != 0 {
		t.Errorf("unused draws: %d", src.Remaining())
	}
}

func TestRollDamageCriticalRange(t *testing.T) {
	rng := NewSeeded(7)
	for i := 0; i < 2000; i++ {
		r, err := RollDamage("1d8+2", true, rng)
		if err != nil {
			t.Fatal(err)
		}
		if r.Total < 4 || r.Total > 18 {
			t.Fatalf("critical 1d8+2 total %d outside 4..18", r.Total)
		}
	}
}

func TestRollD20Advantage(t *testing.T) {
	r := RollD20(D20Options{Mode: Advantage}, Queue(Face(2, 20), Face(16, 20)))
	if r.Kept != 16 {
		t.Errorf("kept = %d, want 16", r.Kept)
	}
	if r.Mode != Advantage {
		t.Errorf("mode = %q, want advantage", r.Mode)
	}
	if r.Critical {
		t.Error("should not be critical")
	}
}

func TestRollD20Disadvantage(t *testing.T) {
	r := RollD20(D20Options{Mode: Disadvantage, AbilityModifier: 3, ProficiencyBonus: 2},
		Queue(Face(20, 20), Face(1, 20)))
	if r.Kept != 1 || !r.Fumble || r.Critical {
		t.Errorf("got kept=%d fumble=%v critical=%v, want 1/true/false", r.Kept, r.Fumble, r.Critical)
	}
	if r.Total != 6 {
		t.Errorf("total = %d, want 6", r.Total)
	}
}

func TestRollD20CriticalIgnoresModifiers(t *testing.T) {
	r := RollD20(D20Options{AbilityModifier: -5}, Queue(Face(20, 20)))
	if !r.Critical {
		t.Error("natural 20 should be critical")
	}
	if r.Total != 15 {
		t.Errorf("total = %d, want 15", r.Total)
	}
	if len(r.Rolls) != 1 || r.Mode != Normal {
		t.Errorf("normal roll: rolls=%v mode=%q", r.Rolls, r.Mode)
	}
}

func TestModeFor(t *testing.T) {
	tests := []struct {
		adv, dis bool
		want     Mode
	}{
		{false, false, Normal},
		{true, false, Advantage},
		{false, true, Disadvantage},
		{true, true, Normal},
	}
	for _, tt := range tests {
		if got := ModeFor(tt.adv, tt.dis); got != tt.want {
			t.Errorf("ModeFor(%v, %v) = %q, want %q", tt.adv, tt.dis, got, tt.want)
		}
	}
}

func TestQueueExhaustedPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on exhausted queue")
		}
	}()
	Queue().Float64()
}
