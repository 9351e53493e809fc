// Package intent turns free player text into at most one structured action.
//
// Intentionally dumb: no NLP, just pattern matching over normalized text.
// Messages that look like spoofing or prompt injection are refused before
// any detector runs. A message may carry only one mechanical action; when
// several clauses each map to one, the message is sent back for
// clarification rather than resolved piecemeal.
package intent

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/nathoo/rulecore/engine/action"
	"github.com/nathoo/rulecore/engine/state"
	"github.com/nathoo/rulecore/types"
)

// Clarification prompts for refused messages.
const (
	PromptEmpty      = "What do you want to do?"
	PromptSuspicious = "Your message contains suspicious patterns. Please rephrase using simple, direct language."
	PromptSpoofed    = "Your message mixes lookalike characters from different alphabets. Please rephrase using plain text."
)

// Context is what the parser may consult about the table.
type Context struct {
	ActorID string
	Table   *types.Table
}

// Result is the outcome of parsing one message. Action is nil exactly when
// Clarification is set.
type Result struct {
	Action        action.Action
	Clarification string
	// Flavor holds the clauses that did not map to the selected action.
	Flavor      []string
	Suspicious  bool
	MultiIntent bool
	Normalized  string
}

// Parser turns text into actions. The zero value is not usable; call New.
type Parser struct {
	NewID func() string
	Now   func() time.Time
}

// New returns a parser stamping actions with random UUIDs and the wall
// clock.
func New() *Parser {
	return &Parser{NewID: uuid.NewString, Now: time.Now}
}

var defaultParser = New()

// Parse parses text with the default parser.
func Parse(text string, ctx Context) Result {
	return defaultParser.Parse(text, ctx)
}

// Parse converts text into a Result. Unrecognized text becomes a
// Conversation action.
func (p *Parser) Parse(text string, ctx Context) Result {
	// 1. Normalize.
	normalized := Normalize(text)
	res := Result{Normalized: normalized}
	if normalized == "" {
		res.Clarification = PromptEmpty
		return res
	}

	// 2. Refuse spoofing and injection outright.
	if Spoofed(normalized) {
		res.Suspicious = true
		res.Clarification = PromptSpoofed
		return res
	}
	if Injection(normalized) {
		res.Suspicious = true
		res.Clarification = PromptSuspicious
		return res
	}

	actor, ok := state.Get(ctx.Table, ctx.ActorID)
	if !ok {
		res.Clarification = fmt.Sprintf("There is no one called %q at the table.", ctx.ActorID)
		return res
	}
	actor.ID = ctx.ActorID
	m := &match{p: p, t: ctx.Table, actor: actor}

	// 3. Meta commands take the whole message.
	if a, ok := m.review(normalized); ok {
		res.Action = a
		return res
	}

	// 4. Detect each clause.
	clauses := Split(normalized)
	res.MultiIntent = len(clauses) > 1
	var hits []detection
	var hitAt []int
	for i, c := range clauses {
		if d, ok := m.detect(c); ok {
			hits = append(hits, d)
			hitAt = append(hitAt, i)
		}
	}

	// 5. Apply the one-mechanical-action policy.
	switch len(hits) {
	case 0:
		res.Action = m.conversation(normalized)
		return res
	case 1:
		for i, c := range clauses {
			if i != hitAt[0] {
				res.Flavor = append(res.Flavor, c)
			}
		}
		if hits[0].clarify != "" {
			res.Clarification = hits[0].clarify
			return res
		}
		res.Action = hits[0].act
		return res
	}

	parts := make([]string, len(hits))
	for i, d := range hits {
		parts[i] = fmt.Sprintf("%d) %s", i+1, strings.ReplaceAll(string(d.kind), "_", " "))
	}
	res.Clarification = fmt.Sprintf("I detected %d different actions: %s. Please do one thing at a time.", len(hits), strings.Join(parts, ", "))
	return res
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
