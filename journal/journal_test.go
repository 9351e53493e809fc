package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/rulecore/engine/action"
	"github.com/nathoo/rulecore/types"
)

func openTemp(t *testing.T) (*Journal, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j, path
}

func result(id string) action.Result {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a := action.MeleeAttack{Base: action.Base{ID: id, ActorID: "aria", Timestamp: ts}, TargetID: "goblin"}
	return action.Result{
		ActionID: id,
		Success:  true,
		Outcome:  action.OutcomeSuccess,
		Rolls:    map[string]types.DiceRoll{"attack": {Notation: "1d20+5", Rolls: []int{15}, Modifier: 5, Total: 20}},
		StateChanges: []types.StateChange{
			{EntityID: "goblin", EntityType: types.EntityEnemy, Field: types.FieldHP, OldValue: 7, NewValue: 1},
		},
		Source:    action.Provenance{Action: a, EngineVersion: action.EngineVersion, Timestamp: ts},
		Narrative: action.Narrative{Summary: "Aria hits the goblin.", Mood: action.MoodNeutral},
	}
}

func resultIn(session, id string) action.Result {
	r := result(id)
	r.Source.SessionID = session
	return r
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ")
	require.Error(t, err)
}

func TestRecordAndGet(t *testing.T) {
	j, _ := openTemp(t)
	ctx := context.Background()

	require.NoError(t, j.Record(ctx, result("act-1")))

	e, err := j.Get(ctx, "act-1")
	require.NoError(t, err)
	assert.Equal(t, "act-1", e.ActionID)
	assert.Equal(t, action.KindMeleeAttack, e.Kind)
	assert.Equal(t, "aria", e.ActorID)
	assert.Equal(t, action.OutcomeSuccess, e.Outcome)
	assert.Equal(t, "Aria hits the goblin.", e.Result.Narrative.Summary)
	require.Len(t, e.Result.StateChanges, 1)
	assert.Equal(t, types.FieldHP, e.Result.StateChanges[0].Field)

	src, ok := e.Result.Source.Action.(action.MeleeAttack)
	require.True(t, ok, "source action %T", e.Result.Source.Action)
	assert.Equal(t, "goblin", src.TargetID)
}

func TestRecordDuplicate(t *testing.T) {
	j, _ := openTemp(t)
	ctx := context.Background()

	require.NoError(t, j.Record(ctx, result("act-1")))
	err := j.Record(ctx, result("act-1"))
	require.ErrorIs(t, err, ErrDuplicateAction)

	entries, err := j.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRecordRequiresID(t *testing.T) {
	j, _ := openTemp(t)
	require.Error(t, j.Record(context.Background(), action.Result{}))
}

func TestGetNotFound(t *testing.T) {
	j, _ := openTemp(t)
	_, err := j.Get(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListOrderAndLimit(t *testing.T) {
	j, _ := openTemp(t)
	ctx := context.Background()
	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, j.Record(ctx, result(id)))
	}

	all, err := j.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{all[0].ActionID, all[1].ActionID, all[2].ActionID})
	assert.Less(t, all[0].Seq, all[1].Seq)

	first, err := j.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "a", first[1].ActionID)
}

func TestListSession(t *testing.T) {
	j, _ := openTemp(t)
	ctx := context.Background()
	require.NoError(t, j.Record(ctx, resultIn("s1", "a")))
	require.NoError(t, j.Record(ctx, resultIn("s2", "b")))
	require.NoError(t, j.Record(ctx, resultIn("s1", "c")))

	s1, err := j.ListSession(ctx, "s1", 0)
	require.NoError(t, err)
	require.Len(t, s1, 2)
	assert.Equal(t, []string{"a", "c"}, []string{s1[0].ActionID, s1[1].ActionID})
	assert.Equal(t, "s1", s1[1].SessionID)
	assert.Equal(t, "s1", s1[1].Result.Source.SessionID)

	all, err := j.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := j.ListSession(ctx, "", 0)
	require.NoError(t, err)
	assert.Empty(t, none)

	sessions, err := j.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "s1", sessions[0].ID)
	assert.Equal(t, 2, sessions[0].Entries)
	assert.Equal(t, "s2", sessions[1].ID)
	assert.Equal(t, 1, sessions[1].Entries)
}

func TestReopenKeepsEntries(t *testing.T) {
	j, path := openTemp(t)
	ctx := context.Background()
	require.NoError(t, j.Record(ctx, result("act-1")))
	require.NoError(t, j.Close())

	again, err := Open(path)
	require.NoError(t, err)
	defer again.Close()

	_, err = again.Get(ctx, "act-1")
	require.NoError(t, err)
	require.ErrorIs(t, again.Record(ctx, result("act-1")), ErrDuplicateAction)
}

func TestCanceledContext(t *testing.T) {
	j, _ := openTemp(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, j.Record(ctx, result("act-1")), context.Canceled)
}

func TestUpSection(t *testing.T) {
	got := upSection("-- +migrate Up\nCREATE TABLE x (id INT);\n-- +migrate Down\nDROP TABLE x;\n")
	assert.Equal(t, "\nCREATE TABLE x (id INT);\n", got)
	assert.Equal(t, "SELECT 1;", upSection("SELECT 1;"))
}
