package action

import (
	"encoding/json"
	"fmt"
	"time"
)

var decoders = map[Kind]func([]byte) (Action, error){
	KindMeleeAttack:       decodeAs[MeleeAttack],
	KindRangedAttack:      decodeAs[RangedAttack],
	KindGrapple:           decodeAs[Grapple],
	KindShove:             decodeAs[Shove],
	KindOpportunityAttack: decodeAs[OpportunityAttack],
	KindStartTurn:         decodeAs[StartTurn],
	KindRollInitiative:    decodeAs[RollInitiative],
	KindDeathSave:         decodeAs[DeathSave],
	KindStabilize:         decodeAs[Stabilize],
	KindSkillCheck:        decodeAs[SkillCheck],
	KindAbilityCheck:      decodeAs[AbilityCheck],
	KindSavingThrow:       decodeAs[SavingThrow],
	KindTravel:            decodeAs[Travel],
	KindSearch:            decodeAs[Search],
	KindTakeItem:          decodeAs[TakeItem],
	KindDropItem:          decodeAs[DropItem],
	KindEquipItem:         decodeAs[EquipItem],
	KindUseItem:           decodeAs[UseItem],
	KindRest:              decodeAs[Rest],
	KindSocialClaim:       decodeAs[SocialClaim],
	KindConversation:      decodeAs[Conversation],
	KindContinueInterview: decodeAs[ContinueInterview],
	KindSkipInterview:     decodeAs[SkipInterview],
	KindEnterWorld:        decodeAs[EnterWorld],
	KindReviewNarration:   decodeAs[ReviewNarration],
}

func decodeAs[T Action](data []byte) (Action, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Kinds returns every known wire tag.
func Kinds() []Kind {
	out := make([]Kind, 0, len(decoders))
	for k := range decoders {
		out = append(out, k)
	}
	return out
}

// Encode marshals a as a tagged object: its fields plus "type".
func Encode(a Action) ([]byte, error) {
	if a == nil {
		return nil, ErrUnsupportedAction
	}
	body, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	tag, err := json.Marshal(a.Kind())
	if err != nil {
		return nil, err
	}
	fields["type"] = tag
	return json.Marshal(fields)
}

// Decode unmarshals a tagged object. An unknown or missing tag yields
// ErrUnsupportedAction.
func Decode(data []byte) (Action, error) {
	var head struct {
		Type Kind `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decoding action: %w", err)
	}
	dec, ok := decoders[head.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAction, head.Type)
	}
	a, err := dec(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", head.Type, err)
	}
	return a, nil
}

type provenanceJSON struct {
	Action        json.RawMessage `json:"action"`
	EngineVersion string          `json:"ruleEngineVersion"`
	Timestamp     time.Time       `json:"timestamp"`
	SessionID     string          `json:"sessionId,omitempty"`
}

// MarshalJSON writes the source action in its tagged wire form.
func (p Provenance) MarshalJSON() ([]byte, error) {
	out := provenanceJSON{EngineVersion: p.EngineVersion, Timestamp: p.Timestamp, SessionID: p.SessionID}
	if p.Action != nil {
		raw, err := Encode(p.Action)
		if err != nil {
			return nil, err
		}
		out.Action = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the tagged source action back.
func (p *Provenance) UnmarshalJSON(data []byte) error {
	var in provenanceJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	p.EngineVersion = in.EngineVersion
	p.Timestamp = in.Timestamp
	p.SessionID = in.SessionID
	p.Action = nil
	if len(in.Action) > 0 && string(in.Action) != "null" {
		a, err := Decode(in.Action)
		if err != nil {
			return err
		}
		p.Action = a
	}
	return nil
}
