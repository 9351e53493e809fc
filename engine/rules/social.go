package rules

import (
	"fmt"
	"maps"
	"slices"

	"github.com/nathoo/rulecore/engine/ability"
	"github.com/nathoo/rulecore/engine/action"
	"github.com/nathoo/rulecore/engine/dice"
	"github.com/nathoo/rulecore/engine/effects"
	"github.com/nathoo/rulecore/types"
)

const (
	// ReputationSwing is gained for a believed claim and lost for a lie.
	ReputationSwing = 20
	// RestThreatBonus is added to threat chances while resting.
	RestThreatBonus = 10
)

type threatDef struct {
	types.Threat
	Variants []string
}

var threats = map[string]threatDef{
	"royal_target": {
		Threat:   types.Threat{Chance: 25, Severity: "high"},
		Variants: []string{"kidnapping", "assassination", "blackmail", "messenger", "rival_claimant"},
	},
	"celebrity_target": {
		Threat:   types.Threat{Chance: 15, Severity: "medium"},
		Variants: []string{"stalker", "challenger", "imposter", "fan_mob", "paparazzi"},
	},
	"dragon_enemy": {
		Threat:   types.Threat{Chance: 10, Severity: "very_high"},
		Variants: []string{"dragon_cultist", "dragon_spawn", "vengeance_curse", "dragon_summons"},
	},
	"supernatural_attention": {
		Threat:   types.Threat{Chance: 20, Severity: "low"},
		Variants: []string{"curse_manifestation", "exorcist_encounter", "spirit_visitation", "clerical_intervention"},
	},
	"challenger_attention": {
		Threat:   types.Threat{Chance: 12, Severity: "medium"},
		Variants: []string{"duel_challenge", "strength_contest", "jealous_rival", "impossible_task"},
	},
}

// claimThreats maps a believed claim to the threat it attracts.
var claimThreats = map[string]string{
	"royal_heritage":      "royal_target",
	"fame":                "celebrity_target",
	"powerful_connection": "dragon_enemy",
	"supernatural":        "supernatural_attention",
	"physical_prowess":    "challenger_attention",
	"expertise":           "challenger_attention",
}

// ThreatFor returns the threat a believed claim of the given type attracts.
func ThreatFor(claimType string) (string, types.Threat, bool) {
	name, ok := claimThreats[claimType]
	if !ok {
		return "", types.Threat{}, false
	}
	return name, threats[name].Threat, true
}

// threatHit is a triggered threat.
type threatHit struct {
	Name     string
	Severity string
	Variant  string
}

// rollThreats rolls 1d100 against each of c's active threats in name order,
// stopping at the first that triggers, then rolls its variant. Each d100 is
// recorded in rolls.
func (r *resolver) rollThreats(c types.Character, bonus int, rolls map[string]types.DiceRoll) (threatHit, bool) {
	for _, name := range slices.Sorted(maps.Keys(c.ActiveThreats)) {
		th := c.ActiveThreats[name]
		chance := min(100, max(0, th.Chance+bonus))
		roll := dice.RollNotation(dice.Notation{Count: 1, Sides: 100}, r.src)
		rolls["threat_"+name] = roll.Record()
		if roll.Total > chance {
			continue
		}
		hit := threatHit{Name: name, Severity: th.Severity, Variant: "ambush"}
		if vs := threats[name].Variants; len(vs) > 0 {
			hit.Variant = vs[dice.Die(len(vs), r.src)-1]
		}
		return hit, true
	}
	return threatHit{}, false
}

// npcInsightScore is the WIS score of the listener judging a claim.
func npcInsightScore(dc int) int {
	return min(18, 10+dc/3)
}

// SocialClaim pits the actor's d20 + CHA against an insight roll of
// d20 + WIS modifier from a score scaled by the claim's DC. A believed
// claim activates its threat and raises reputation; a caught lie lowers
// it. Draws: player d20, then listener d20.
func (r *resolver) SocialClaim(a action.SocialClaim) (action.Resolution, error) {
	actor, err := r.entity(a.ActorID)
	if err != nil {
		return action.Resolution{}, err
	}
	listener := "The listener"
	if a.NPCID != "" {
		npc, err := r.entity(a.NPCID)
		if err != nil {
			return action.Resolution{}, err
		}
		listener = npc.Name
	}
	if why := incapacitated(actor); why != "" {
		return fail("%s", why), nil
	}

	player := dice.RollD20(dice.D20Options{AbilityModifier: ability.ModifierOf(actor.Abilities, ability.CHA)}, r.src)
	insight := dice.RollD20(dice.D20Options{AbilityModifier: ability.Modifier(npcInsightScore(a.DC))}, r.src)
	believed := player.Total >= insight.Total

	after := actor
	after.ReputationScores = maps.Clone(actor.ReputationScores)
	if after.ReputationScores == nil {
		after.ReputationScores = map[string]int{}
	}

	var summary string
	if believed {
		tag := "accepted_" + a.ClaimType
		if !slices.Contains(after.ReputationTags, tag) {
			after.ReputationTags = append(slices.Clone(actor.ReputationTags), tag)
		}
		faction := "general"
		if a.ClaimType == "royal_heritage" {
			faction = "nobles"
		}
		after.ReputationScores[faction] += ReputationSwing
		summary = fmt.Sprintf("%s believes the claim! But beware, this comes with consequences...", listener)
		if name, th, ok := ThreatFor(a.ClaimType); ok {
			after.ActiveThreats = maps.Clone(actor.ActiveThreats)
			if after.ActiveThreats == nil {
				after.ActiveThreats = map[string]types.Threat{}
			}
			after.ActiveThreats[name] = th
			summary += fmt.Sprintf(" Threat activated: %s (%d%% chance of encounters).", name, th.Chance)
		}
	} else {
		tag := "caught_lying_" + a.ClaimType
		if !slices.Contains(after.ReputationTags, tag) {
			after.ReputationTags = append(slices.Clone(actor.ReputationTags), tag)
		}
		after.ReputationScores["general"] -= ReputationSwing
		summary = fmt.Sprintf("%s sees through the lie! Your reputation suffers.", listener)
	}

	out := action.Resolution{
		Success: believed,
		Outcome: action.OutcomeFailure,
		Rolls: map[string]types.DiceRoll{
			"persuasion": player.Record(),
			"insight":    insight.Record(),
		},
		Changes:   effects.Diff(actor, after),
		Narrative: action.Narrative{Summary: summary, Mood: action.MoodDefeat},
	}
	if believed {
		out.Outcome = action.OutcomeSuccess
		out.Narrative.Mood = action.MoodTriumph
	}
	return out, nil
}
