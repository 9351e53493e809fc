package intent

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nathoo/rulecore/engine/ability"
	"github.com/nathoo/rulecore/engine/action"
	"github.com/nathoo/rulecore/engine/death"
	"github.com/nathoo/rulecore/engine/resolve"
	"github.com/nathoo/rulecore/engine/rules"
	"github.com/nathoo/rulecore/engine/state"
	"github.com/nathoo/rulecore/types"
)

const (
	maxConversation = 2000
	maxFeedback     = 500
	defaultFeedback = "The last narration did not match what happened."
)

// detection is one clause mapped to an action, or to the question that
// must be answered before it can be.
type detection struct {
	act     action.Action
	clarify string
	kind    action.Kind
}

// match holds what the detectors need for one message.
type match struct {
	p     *Parser
	t     *types.Table
	actor types.Character
}

func (m *match) base() action.Base {
	return action.Base{ID: m.p.NewID(), ActorID: m.actor.ID, Timestamp: m.p.Now()}
}

func found(a action.Action) (detection, bool) {
	return detection{act: a, kind: a.Kind()}, true
}

func ask(kind action.Kind, msg string) (detection, bool) {
	return detection{clarify: msg, kind: kind}, true
}

// detect runs the detectors in priority order and returns the first hit.
func (m *match) detect(clause string) (detection, bool) {
	detectors := []func(string) (detection, bool){
		m.interview,
		m.claim,
		m.dying,
		m.combat,
		m.initiative,
		m.turn,
		m.travel,
		m.rest,
		m.inventory,
		m.search,
		m.checks,
	}
	for _, d := range detectors {
		if hit, ok := d(clause); ok {
			return hit, true
		}
	}
	return detection{}, false
}

// Phrase handling.

var prepositions = map[string]bool{
	"on": true, "at": true, "to": true, "with": true, "in": true,
	"from": true, "about": true, "using": true, "for": true,
	"into": true, "behind": true, "against": true,
}

var articles = map[string]bool{
	"the": true, "a": true, "an": true, "some": true,
	"my": true, "his": true, "her": true, "their": true, "its": true, "your": true,
}

var filler = map[string]bool{
	"down": true, "over": true, "prone": true, "back": true, "away": true,
}

// phrase splits the words after a verb into an object and the target named
// after the first preposition: "the goblin with my sword" gives "goblin" and
// "sword".
func phrase(rest string) (object, target string) {
	var words []string
	for _, w := range strings.Fields(rest) {
		w = strings.Trim(w, ".,;:!?\"'")
		w = strings.TrimSuffix(w, "'s")
		if w == "" || articles[w] {
			continue
		}
		words = append(words, w)
	}
	for len(words) > 0 && (prepositions[words[0]] || filler[words[0]]) {
		words = words[1:]
	}
	obj := words
	var tgt []string
	for i, w := range words {
		if prepositions[w] {
			obj, tgt = words[:i], words[i+1:]
			break
		}
	}
	for len(obj) > 0 && filler[obj[len(obj)-1]] {
		obj = obj[:len(obj)-1]
	}
	return strings.Join(obj, " "), strings.Join(tgt, " ")
}

// sentence capitalizes the first letter of a resolver error for display.
func sentence(err error) string {
	s := err.Error()
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[n:]
}

// notFound reports whether err means the name matched nothing.
func notFound(err error) bool {
	var nf *resolve.NotFoundError
	return errors.As(err, &nf)
}

// living returns the sorted IDs of entities of typ still on their feet.
func (m *match) living(typ types.EntityType) []string {
	var out []string
	for _, id := range state.IDsByType(m.t, typ) {
		c := m.t.Entities[id]
		if id != m.actor.ID && c.Stats.HP > 0 && !death.IsDead(c.Combatant) {
			out = append(out, id)
		}
	}
	return out
}

// target resolves a named creature. An empty name falls back to the only
// living enemy.
func (m *match) target(verb, name string) (string, string) {
	if name == "" {
		enemies := m.living(types.EntityEnemy)
		switch len(enemies) {
		case 0:
			return "", "There is no one here to fight."
		case 1:
			return enemies[0], ""
		}
		return "", fmt.Sprintf("%s whom? (%s)", verb, strings.Join(enemies, ", "))
	}
	id, err := resolve.Entity(m.t, m.actor.ID, name)
	if err != nil {
		return "", sentence(err)
	}
	return id, ""
}

// Meta.

var reviewRe = regexp.MustCompile(`^@review\b\s*(.*)$`)

func (m *match) review(text string) (action.Action, bool) {
	sm := reviewRe.FindStringSubmatch(text)
	if sm == nil {
		return nil, false
	}
	feedback := strings.TrimSpace(sm[1])
	if feedback == "" {
		feedback = defaultFeedback
	}
	return action.ReviewNarration{Base: m.base(), Feedback: truncate(feedback, maxFeedback)}, true
}

// Conversation.

var (
	talkRe    = regexp.MustCompile(`\b(?:talk|speak|chat)\s+(?:to|with)\s+(.+)$`)
	addressRe = regexp.MustCompile(`^(?:ask|tell|greet|hail)\s+(.+)$`)
)

// addressee returns the entity a clause speaks to, if it names one.
func (m *match) addressee(text string) string {
	sm := talkRe.FindStringSubmatch(text)
	if sm == nil {
		sm = addressRe.FindStringSubmatch(text)
	}
	if sm == nil {
		return ""
	}
	words := strings.Fields(sm[1])
	name, _ := phrase(sm[1])
	if id, err := resolve.Entity(m.t, m.actor.ID, name); err == nil {
		return id
	}
	// "tell the guard i am famous": try the first noun alone.
	for _, w := range words {
		if articles[w] {
			continue
		}
		if id, err := resolve.Entity(m.t, m.actor.ID, w); err == nil {
			return id
		}
		break
	}
	return ""
}

func (m *match) conversation(text string) action.Action {
	return action.Conversation{
		Base:  m.base(),
		Text:  truncate(text, maxConversation),
		NPCID: m.addressee(text),
	}
}

// Interview.

var (
	skipInterviewRe = regexp.MustCompile(`\bskip\b.*\b(?:interview|tutorial|intro|introduction)\b`)
	enterWorldRe    = regexp.MustCompile(`\b(?:enter (?:the )?world|(?:begin|start) (?:my |the )?adventure|let's go)\b`)
	continueRe      = regexp.MustCompile(`\b(?:ready|continue|yes|proceed|next|ok|okay)$`)
)

func (m *match) interview(text string) (detection, bool) {
	if m.actor.TutorialState == "" {
		return detection{}, false
	}
	switch {
	case skipInterviewRe.MatchString(text):
		return found(action.SkipInterview{Base: m.base()})
	case enterWorldRe.MatchString(text):
		if m.actor.TutorialState == rules.InterviewComplete {
			return found(action.EnterWorld{Base: m.base()})
		}
		return found(action.ContinueInterview{Base: m.base()})
	case continueRe.MatchString(text):
		return found(action.ContinueInterview{Base: m.base()})
	}
	return detection{}, false
}

// Social.

func (m *match) claim(text string) (detection, bool) {
	claimType, dc, ok := DetectClaim(text)
	if !ok {
		return detection{}, false
	}
	return found(action.SocialClaim{
		Base:      m.base(),
		ClaimType: claimType,
		ClaimText: truncate(text, maxFeedback),
		DC:        dc,
		NPCID:     m.addressee(text),
	})
}

// Death and dying.

var (
	deathSaveRe = regexp.MustCompile(`\bdeath sav(?:e|es|ing throw)\b`)
	stabilizeRe = regexp.MustCompile(`\bstabili[sz]e\b\s*(.*)$`)
)

func (m *match) dying(text string) (detection, bool) {
	if deathSaveRe.MatchString(text) {
		return found(action.DeathSave{Base: m.base()})
	}
	sm := stabilizeRe.FindStringSubmatch(text)
	if sm == nil {
		return detection{}, false
	}
	name, _ := phrase(sm[1])
	if name == "" {
		var down []string
		for id, c := range m.t.Entities {
			if id != m.actor.ID && death.IsDying(c.Combatant) {
				down = append(down, id)
			}
		}
		slices.Sort(down)
		switch len(down) {
		case 0:
			return ask(action.KindStabilize, "No one here is dying.")
		case 1:
			return found(action.Stabilize{Base: m.base(), TargetID: down[0]})
		}
		return ask(action.KindStabilize, fmt.Sprintf("Stabilize whom? (%s)", strings.Join(down, ", ")))
	}
	// Entity skips the dead but not the dying.
	id, err := resolve.Entity(m.t, m.actor.ID, name)
	if err != nil {
		return ask(action.KindStabilize, sentence(err))
	}
	return found(action.Stabilize{Base: m.base(), TargetID: id})
}

// Combat.

var (
	castRe        = regexp.MustCompile(`\bcast(?:s|ing)?\b`)
	opportunityRe = regexp.MustCompile(`\bopportunity attack\b\s*(.*)$`)
	grappleRe     = regexp.MustCompile(`\b(?:grapple|wrestle|grab hold of|pin)\b\s*(.*)$`)
	shoveRe       = regexp.MustCompile(`\b(shove|push|knock)\b\s*(.*)$`)
	knockDownRe   = regexp.MustCompile(`\b(?:down|over|prone)\b`)
	proneRe       = regexp.MustCompile(`\b(?:prone|down|over|trip)\b`)
	attackRe      = regexp.MustCompile(`\b(attack|hit|strike|stab|slash|shoot|fire at|swing at|punch|kick|smash)\b\s*(.*)$`)
	rangedRe      = regexp.MustCompile(`\b(?:shoot|fire at|bow|arrow|arrows|crossbow|sling)\b`)
	coverRe       = regexp.MustCompile(`\b(half|three-quarters|three quarters|full) cover\b`)
	offHandRe     = regexp.MustCompile(`\boff-?hand\b`)
)

var finesseWeapons = []string{"dagger", "rapier", "shortsword", "scimitar", "whip"}

func (m *match) combat(text string) (detection, bool) {
	if castRe.MatchString(text) {
		return detection{}, false
	}

	if sm := opportunityRe.FindStringSubmatch(text); sm != nil {
		name, _ := phrase(sm[1])
		id, q := m.target("Attack", name)
		if q != "" {
			return ask(action.KindOpportunityAttack, q)
		}
		return found(action.OpportunityAttack{Base: m.base(), TargetID: id})
	}

	if sm := grappleRe.FindStringSubmatch(text); sm != nil {
		name, _ := phrase(sm[1])
		id, q := m.target("Grapple", name)
		if q != "" {
			return ask(action.KindGrapple, q)
		}
		return found(action.Grapple{Base: m.base(), TargetID: id})
	}

	if sm := shoveRe.FindStringSubmatch(text); sm != nil {
		verb := sm[1]
		if verb != "knock" || knockDownRe.MatchString(sm[2]) {
			name, _ := phrase(sm[2])
			if name != "" || verb == "shove" {
				id, err := m.shoveTarget(name)
				switch {
				case err == nil:
					mode := "push"
					if proneRe.MatchString(text) {
						mode = "prone"
					}
					return found(action.Shove{Base: m.base(), TargetID: id, Mode: mode})
				case verb == "shove" || !notFound(err):
					return ask(action.KindShove, sentence(err))
				}
				// "push the boulder" is a feat of strength, not a shove.
			}
		}
	}

	sm := attackRe.FindStringSubmatch(text)
	if sm == nil {
		return detection{}, false
	}
	name, _ := phrase(sm[2])
	ranged := rangedRe.MatchString(text)
	kind := action.KindMeleeAttack
	if ranged {
		kind = action.KindRangedAttack
	}
	id, q := m.target("Attack", name)
	if q != "" {
		return ask(kind, q)
	}
	var cover string
	if c := coverRe.FindStringSubmatch(text); c != nil {
		cover = strings.ReplaceAll(c[1], " ", "-")
	}
	if ranged {
		return found(action.RangedAttack{Base: m.base(), TargetID: id, Range: m.rangeTo(id), Cover: cover})
	}
	return found(action.MeleeAttack{
		Base:     m.base(),
		TargetID: id,
		Cover:    cover,
		OffHand:  offHandRe.MatchString(text),
		Finesse:  m.finesse(),
	})
}

func (m *match) shoveTarget(name string) (string, error) {
	if name == "" {
		id, q := m.target("Shove", "")
		if q != "" {
			return "", errors.New(q)
		}
		return id, nil
	}
	return resolve.Entity(m.t, m.actor.ID, name)
}

// rangeTo is the grid distance to id in feet, five feet per square.
func (m *match) rangeTo(id string) int {
	from, to := m.actor.Position, m.t.Entities[id].Position
	squares := max(abs(from.X-to.X), abs(from.Y-to.Y))
	return min(max(squares*5, 5), 600)
}

func (m *match) finesse() bool {
	w, ok := state.EquippedWeapon(m.actor)
	if !ok {
		return false
	}
	name := strings.ToLower(w.ID + " " + w.Name)
	for _, f := range finesseWeapons {
		if strings.Contains(name, f) {
			return true
		}
	}
	return false
}

// Turn structure.

var (
	initiativeRe = regexp.MustCompile(`\b(?:roll (?:for )?initiative|start (?:the )?(?:combat|fight)|draw steel)\b`)
	turnRe       = regexp.MustCompile(`\b(?:(?:start|begin) (?:my |the |a )?(?:next )?turn|new turn|my turn)\b`)
)

// initiative enrolls the actor first, then every other creature still
// standing. Bystander NPCs are left out.
func (m *match) initiative(text string) (detection, bool) {
	if !initiativeRe.MatchString(text) {
		return detection{}, false
	}
	ids := []string{m.actor.ID}
	ids = append(ids, m.living(types.EntityCharacter)...)
	ids = append(ids, m.living(types.EntityEnemy)...)
	return found(action.RollInitiative{Base: m.base(), ParticipantIDs: ids})
}

func (m *match) turn(text string) (detection, bool) {
	if !turnRe.MatchString(text) {
		return detection{}, false
	}
	return found(action.StartTurn{Base: m.base()})
}

// Travel.

var directionExpansions = map[string]string{
	"n":  "north",
	"s":  "south",
	"e":  "east",
	"w":  "west",
	"ne": "northeast",
	"nw": "northwest",
	"se": "southeast",
	"sw": "southwest",
}

var directionNames = map[string]bool{
	"north": true, "south": true, "east": true, "west": true,
	"northeast": true, "northwest": true, "southeast": true, "southwest": true,
}

var (
	travelRe   = regexp.MustCompile(`\b(?:travel|walk|go|move|head|run|ride|journey|march)\b(?:\s+\d+\s+\w+)?\s+(?:to the\s+|towards? the\s+)?(northeast|northwest|southeast|southwest|north|south|east|west|ne|nw|se|sw|n|s|e|w)\b`)
	distanceRe = regexp.MustCompile(`\b(\d+)\s*(?:tiles?|miles?|squares?|leagues?|steps?)\b`)
)

func (m *match) travel(text string) (detection, bool) {
	var dir string
	if sm := travelRe.FindStringSubmatch(text); sm != nil {
		dir = sm[1]
	} else if !strings.Contains(text, " ") {
		dir = text
	}
	if full, ok := directionExpansions[dir]; ok {
		dir = full
	}
	if !directionNames[dir] {
		return detection{}, false
	}
	dist := 1
	if sm := distanceRe.FindStringSubmatch(text); sm != nil {
		n, _ := strconv.Atoi(sm[1])
		dist = min(max(n, 1), 100)
	}
	return found(action.Travel{Base: m.base(), Direction: dir, Distance: dist})
}

// Rest.

var (
	longRestRe  = regexp.MustCompile(`\b(?:long rest|sleep|camp|rest for the night)\b`)
	shortRestRe = regexp.MustCompile(`\b(?:short rest|take a break|rest briefly|catch my breath)\b`)
	restRe      = regexp.MustCompile(`\brest\b`)
)

func (m *match) rest(text string) (detection, bool) {
	switch {
	case longRestRe.MatchString(text):
		return found(action.Rest{Base: m.base(), RestType: "long"})
	case shortRestRe.MatchString(text), restRe.MatchString(text):
		return found(action.Rest{Base: m.base(), RestType: "short"})
	}
	return detection{}, false
}

// Items. A name that matches nothing is not an item action at all; the
// clause falls through so the validator can judge it.

var (
	dropRe  = regexp.MustCompile(`\b(?:drop|discard|put down)\b\s*(.*)$`)
	equipRe = regexp.MustCompile(`\b(?:equip|wield|wear|don|draw|put on)\b\s*(.*)$`)
	useRe   = regexp.MustCompile(`\b(?:use|drink|quaff|consume|apply)\b\s*(.*)$`)
	takeRe  = regexp.MustCompile(`\b(?:take|grab|pick up|loot|buy|purchase|get)\b\s*(.*)$`)
)

func (m *match) inventory(text string) (detection, bool) {
	if sm := dropRe.FindStringSubmatch(text); sm != nil {
		if d, ok := m.own(action.KindDropItem, sm[1], func(id string) action.Action {
			return action.DropItem{Base: m.base(), ItemID: id}
		}); ok {
			return d, true
		}
	}
	if sm := equipRe.FindStringSubmatch(text); sm != nil {
		if d, ok := m.own(action.KindEquipItem, sm[1], func(id string) action.Action {
			return action.EquipItem{Base: m.base(), ItemID: id}
		}); ok {
			return d, true
		}
	}
	if sm := useRe.FindStringSubmatch(text); sm != nil {
		if d, ok := m.use(sm[1]); ok {
			return d, true
		}
	}
	if sm := takeRe.FindStringSubmatch(text); sm != nil {
		return m.take(sm[1])
	}
	return detection{}, false
}

// own resolves an item in the actor's inventory.
func (m *match) own(kind action.Kind, rest string, build func(string) action.Action) (detection, bool) {
	name, _ := phrase(rest)
	if name == "" {
		return detection{}, false
	}
	id, err := resolve.Item(m.actor, name)
	switch {
	case err == nil:
		return found(build(id))
	case notFound(err):
		return detection{}, false
	}
	return ask(kind, sentence(err))
}

func (m *match) use(rest string) (detection, bool) {
	name, on := phrase(rest)
	if name == "" {
		return detection{}, false
	}
	id, err := resolve.Item(m.actor, name)
	if err != nil {
		if notFound(err) {
			return detection{}, false
		}
		return ask(action.KindUseItem, sentence(err))
	}
	target := m.actor.ID
	if on != "" && on != "me" && on != "myself" && on != "self" &&
		on != strings.ToLower(m.actor.ID) && on != strings.ToLower(m.actor.Name) {
		target, err = resolve.Entity(m.t, m.actor.ID, on)
		if err != nil {
			return ask(action.KindUseItem, sentence(err))
		}
	}
	return found(action.UseItem{Base: m.base(), ItemID: id, TargetID: target})
}

func (m *match) take(rest string) (detection, bool) {
	name, from := phrase(rest)
	if name == "" {
		return detection{}, false
	}
	if from == "" {
		item, source, err := resolve.ItemAnywhere(m.t, m.actor.ID, name)
		switch {
		case err == nil:
			return found(action.TakeItem{Base: m.base(), ItemID: item, SourceID: source})
		case notFound(err):
			return detection{}, false
		}
		return ask(action.KindTakeItem, sentence(err))
	}
	source, err := resolve.Entity(m.t, m.actor.ID, from)
	if err != nil {
		return ask(action.KindTakeItem, sentence(err))
	}
	item, err := resolve.Item(m.t.Entities[source], name)
	if err != nil {
		if notFound(err) {
			return ask(action.KindTakeItem, fmt.Sprintf("%s has no %s.", m.t.Entities[source].Name, name))
		}
		return ask(action.KindTakeItem, sentence(err))
	}
	return found(action.TakeItem{Base: m.base(), ItemID: item, SourceID: source})
}

// Search.

var searchRe = regexp.MustCompile(`\bsearch\b\s*(.*)$`)

func (m *match) search(text string) (detection, bool) {
	sm := searchRe.FindStringSubmatch(text)
	if sm == nil {
		return detection{}, false
	}
	return found(action.Search{Base: m.base(), Area: strings.TrimSpace(sm[1])})
}

// Checks.

const abilityNames = `str|dex|con|int|wis|cha|strength|dexterity|constitution|intelligence|wisdom|charisma`

var (
	saveRe         = regexp.MustCompile(`\b(` + abilityNames + `) sav(?:e|ing throw)\b`)
	abilityCheckRe = regexp.MustCompile(`\b(` + abilityNames + `) check\b`)
	skillCheckRe   = skillCheckPattern()
	dcRe           = regexp.MustCompile(`\bdc\s*(\d+)\b`)
	advantageRe    = regexp.MustCompile(`\bwith advantage\b`)
	disadvantageRe = regexp.MustCompile(`\bwith disadvantage\b`)
)

// skillCheckPattern matches "<skill> check" for every skill, longest names
// first so "sleight of hand" wins over any shorter prefix.
func skillCheckPattern() *regexp.Regexp {
	names := ability.Skills()
	for i, s := range names {
		names[i] = strings.ReplaceAll(s, "_", " ")
	}
	slices.SortFunc(names, func(a, b string) int {
		if len(a) != len(b) {
			return len(b) - len(a)
		}
		return strings.Compare(a, b)
	})
	return regexp.MustCompile(`\b(` + strings.Join(names, "|") + `) (?:check|roll)\b`)
}

// skillCues map everyday phrasing to the skill it calls for, first match
// wins.
var skillCues = []struct {
	skill string
	re    *regexp.Regexp
}{
	{"stealth", regexp.MustCompile(`\b(?:sneak|hide|stealth|quietly|silently)\b`)},
	{"perception", regexp.MustCompile(`\b(?:look|spot|notice|perceive|scan|listen)\b`)},
	{"investigation", regexp.MustCompile(`\b(?:investigate|examine|inspect|study)\b`)},
	{"persuasion", regexp.MustCompile(`\b(?:persuade|convince|charm)\b`)},
	{"deception", regexp.MustCompile(`\b(?:lie|deceive|bluff|trick)\b`)},
	{"intimidation", regexp.MustCompile(`\b(?:intimidate|threaten|scare)\b`)},
	{"athletics", regexp.MustCompile(`\b(?:climb|jump|swim|push|pull|lift)\b`)},
	{"acrobatics", regexp.MustCompile(`\b(?:balance|tumble|flip|dodge)\b`)},
	{"arcana", regexp.MustCompile(`\b(?:arcana|magic|spell|enchant)\b`)},
	{"nature", regexp.MustCompile(`\b(?:nature|plant|weather)\b`)},
	{"religion", regexp.MustCompile(`\b(?:religion|deity|prayer|holy)\b`)},
	{"history", regexp.MustCompile(`\b(?:history|lore|legend|ancient)\b`)},
	{"medicine", regexp.MustCompile(`\b(?:heal|medicine|treat|diagnose)\b`)},
	{"animal_handling", regexp.MustCompile(`\b(?:tame|calm|ride|animal)\b`)},
	{"insight", regexp.MustCompile(`\b(?:sense motive|insight|judge)\b`)},
	{"performance", regexp.MustCompile(`\b(?:perform|sing|dance|play)\b`)},
	{"sleight_of_hand", regexp.MustCompile(`\b(?:pickpocket|palm|steal|sleight)\b`)},
	{"survival", regexp.MustCompile(`\b(?:track|forage|survive|wilderness)\b`)},
}

func (m *match) checks(text string) (detection, bool) {
	dc := 0
	if sm := dcRe.FindStringSubmatch(text); sm != nil {
		n, _ := strconv.Atoi(sm[1])
		dc = min(max(n, 0), 40)
	}

	if sm := saveRe.FindStringSubmatch(text); sm != nil {
		ab, _ := ability.Parse(sm[1])
		return found(action.SavingThrow{
			Base:       m.base(),
			Ability:    string(ab),
			DC:         dc,
			Proficient: ability.Proficient(m.actor.Proficiencies, string(ab)+" save"),
		})
	}
	if sm := abilityCheckRe.FindStringSubmatch(text); sm != nil {
		ab, _ := ability.Parse(sm[1])
		return found(action.AbilityCheck{Base: m.base(), Ability: string(ab), DC: dc})
	}

	skill := ""
	if sm := skillCheckRe.FindStringSubmatch(text); sm != nil {
		skill = ability.NormalizeSkill(sm[1])
	} else if !talkRe.MatchString(text) && !addressRe.MatchString(text) {
		// Speech addressed to someone is conversation, whatever it mentions.
		for _, c := range skillCues {
			if c.re.MatchString(text) {
				skill = c.skill
				break
			}
		}
	}
	if skill == "" {
		return detection{}, false
	}
	return found(action.SkillCheck{
		Base:         m.base(),
		Skill:        skill,
		DC:           dc,
		Advantage:    advantageRe.MatchString(text),
		Disadvantage: disadvantageRe.MatchString(text),
		Context:      truncate(text, maxFeedback),
	})
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
