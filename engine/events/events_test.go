package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/rulecore/engine/action"
	"github.com/nathoo/rulecore/types"
)

func testResult(id string) action.Result {
	a := action.Search{Base: action.Base{ID: id, ActorID: "aria", Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}, Area: "crypt"}
	return action.Result{
		ActionID: id,
		Success:  true,
		Outcome:  action.OutcomeSuccess,
		Rolls:    map[string]types.DiceRoll{"check": {Notation: "1d20", Rolls: []int{14}, Total: 14}},
		StateChanges: []types.StateChange{
			{EntityID: "goblin", EntityType: types.EntityEnemy, Field: types.FieldConditions, OldValue: []string{"hidden"}, NewValue: []string{}},
		},
		Source:    action.Provenance{Action: a, EngineVersion: action.EngineVersion, Timestamp: a.Timestamp},
		Narrative: action.Narrative{Summary: "Aria finds the goblin.", Mood: action.MoodTriumph},
	}
}

func receive(t *testing.T, ch <-chan action.Result) action.Result {
	t.Helper()
	select {
	case res := <-ch:
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for result")
		return action.Result{}
	}
}

func TestBus_Delivers(t *testing.T) {
	bus := NewBus(nil)
	defer bus.Close()

	got := make(chan action.Result, 1)
	require.NoError(t, bus.Subscribe(context.Background(), func(_ context.Context, res action.Result) error {
		got <- res
		return nil
	}))

	require.NoError(t, bus.Publish(testResult("act-1")))
	res := receive(t, got)
	assert.Equal(t, "act-1", res.ActionID)
	assert.Equal(t, action.OutcomeSuccess, res.Outcome)
	assert.Equal(t, "Aria finds the goblin.", res.Narrative.Summary)
	require.Len(t, res.StateChanges, 1)
	assert.Equal(t, "goblin", res.StateChanges[0].EntityID)

	src, ok := res.Source.Action.(action.Search)
	require.True(t, ok, "source action %T", res.Source.Action)
	assert.Equal(t, "crypt", src.Area)
}

func TestBus_FansOut(t *testing.T) {
	bus := NewBus(nil)
	defer bus.Close()

	a, b := make(chan action.Result, 1), make(chan action.Result, 1)
	for _, ch := range []chan action.Result{a, b} {
		ch := ch
		require.NoError(t, bus.Subscribe(context.Background(), func(_ context.Context, res action.Result) error {
			ch <- res
			return nil
		}))
	}

	require.NoError(t, bus.Publish(testResult("act-2")))
	assert.Equal(t, "act-2", receive(t, a).ActionID)
	assert.Equal(t, "act-2", receive(t, b).ActionID)
}

func TestBus_HandlerErrorDoesNotRedeliver(t *testing.T) {
	bus := NewBus(nil)
	defer bus.Close()

	got := make(chan action.Result, 4)
	require.NoError(t, bus.Subscribe(context.Background(), func(_ context.Context, res action.Result) error {
		got <- res
		return errors.New("narrator offline")
	}))

	require.NoError(t, bus.Publish(testResult("act-3")))
	require.NoError(t, bus.Publish(testResult("act-4")))
	assert.Equal(t, "act-3", receive(t, got).ActionID)
	assert.Equal(t, "act-4", receive(t, got).ActionID)
}

func TestBus_PublishAfterClose(t *testing.T) {
	bus := NewBus(nil)
	require.NoError(t, bus.Close())
	assert.Error(t, bus.Publish(testResult("act-5")))
}
