package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/nathoo/rulecore/types"
)

// DefaultModel is used when HTTPChecker.Model is empty.
const DefaultModel = "gpt-4o-mini"

const systemPrompt = `You are the Chronicler, the dungeon master of a D&D 5e game. Decide whether the player's described action is possible given:
1. The laws of physics (a sword cannot be played as a flute).
2. The character's abilities, inventory, and spells.
3. The D&D 5e rules.

You are the DM. Speak directly to the player and never refer to "the DM" as someone else.

Respond only with JSON: {"isValid": true|false, "reason": "brief explanation", "suggestion": "what they can do instead"}.

Reject physical impossibilities, missing abilities or items, rule violations, and attempts to gain XP or gold without play. Allow creative roleplay such as examining surroundings, talking to NPCs, and other reasonable actions.`

// HTTPChecker asks an OpenAI-compatible chat completions endpoint whether an
// action is plausible.
type HTTPChecker struct {
	BaseURL string
	Model   string
	APIKey  string
	Client  *http.Client
}

// NewHTTPChecker returns a checker for baseURL. A nil client uses
// http.DefaultClient.
func NewHTTPChecker(baseURL, model, apiKey string, client *http.Client) *HTTPChecker {
	if client == nil {
		client = http.DefaultClient
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	return &HTTPChecker{
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		Model:   model,
		APIKey:  strings.TrimSpace(apiKey),
		Client:  client,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	MaxTokens      int            `json:"max_tokens"`
	ResponseFormat map[string]any `json:"response_format"`
}

var responseFormat = map[string]any{
	"type": "json_schema",
	"json_schema": map[string]any{
		"name":   "action_validation",
		"strict": true,
		"schema": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"isValid":    map[string]any{"type": "boolean"},
				"reason":     map[string]any{"type": "string"},
				"suggestion": map[string]any{"type": []string{"string", "null"}},
			},
			// Strict mode needs every property listed; suggestion may be null.
			"required":             []string{"isValid", "reason", "suggestion"},
			"additionalProperties": false,
		},
	},
}

// Check implements Checker.
func (c *HTTPChecker) Check(ctx context.Context, req Request) (Result, error) {
	if c.BaseURL == "" {
		return Result{}, fmt.Errorf("%w: base url is required", ErrCheckerUnavailable)
	}
	body, err := json.Marshal(chatRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: Prompt(req)},
		},
		Temperature:    0.3,
		MaxTokens:      200,
		ResponseFormat: responseFormat,
	})
	if err != nil {
		return Result{}, fmt.Errorf("marshal check request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("build check request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	res, err := c.Client.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrCheckerUnavailable, err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return Result{}, fmt.Errorf("%w: status %d: %s", ErrCheckerUnavailable, res.StatusCode, strings.TrimSpace(string(msg)))
	}

	var payload struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return Result{}, fmt.Errorf("%w: decode response: %v", ErrCheckerUnavailable, err)
	}
	if len(payload.Choices) == 0 || strings.TrimSpace(payload.Choices[0].Message.Content) == "" {
		return Result{}, fmt.Errorf("%w: empty response", ErrCheckerUnavailable)
	}
	var verdict Result
	if err := json.Unmarshal([]byte(payload.Choices[0].Message.Content), &verdict); err != nil {
		return Result{}, fmt.Errorf("%w: decode verdict: %v", ErrCheckerUnavailable, err)
	}
	return verdict, nil
}

// Prompt renders the character sheet and the action for the checker.
func Prompt(req Request) string {
	c := req.Character
	var b strings.Builder
	b.WriteString("Character sheet:\n")
	fmt.Fprintf(&b, "- Name: %s\n", c.Name)
	if c.Class != "" {
		fmt.Fprintf(&b, "- Class: %s\n", c.Class)
	}
	fmt.Fprintf(&b, "- Level: %d\n", c.Level)
	fmt.Fprintf(&b, "- HP: %d/%d\n", c.Stats.HP, c.Stats.MaxHP)
	a := c.Abilities
	fmt.Fprintf(&b, "- Ability scores: STR %d, DEX %d, CON %d, INT %d, WIS %d, CHA %d\n", a.STR, a.DEX, a.CON, a.INT, a.WIS, a.CHA)
	fmt.Fprintf(&b, "- Inventory: %s\n", listOrNone(itemNames(c.Inventory)))
	fmt.Fprintf(&b, "- Known spells: %s\n", listOrNone(c.Spells))
	if req.InCombat {
		b.WriteString("- In combat: yes\n")
	}
	fmt.Fprintf(&b, "\nPlayer's action:\n%q\n", req.Text)
	return b.String()
}

func itemNames(items []types.Item) []string {
	var out []string
	for _, it := range items {
		if it.Quantity > 0 {
			out = append(out, it.Name)
		}
	}
	return out
}

func listOrNone(xs []string) string {
	if len(xs) == 0 {
		return "none"
	}
	return strings.Join(xs, ", ")
}
