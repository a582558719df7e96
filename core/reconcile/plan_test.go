package reconcile

import (
	"testing"
	"time"

	"integrity-service/core/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanChecksumVotes(t *testing.T) {
	f := newFixture(t, Options{})
	for _, p := range []string{"p1", "p2", "p3"} {
		f.list(t, p, "majority", "tie", "mixed")
	}
	f.sum(t, "p1", "majority", "aa")
	f.sum(t, "p2", "majority", "aa")
	f.sum(t, "p3", "majority", "bb")
	f.sum(t, "p1", "tie", "aa")
	f.sum(t, "p2", "tie", "bb")
	f.sum(t, "p1", "mixed", "aa")
	require.NoError(t, f.store.UpdateChecksumData(f.ctx, "c", "p2", []model.ChecksumDataItem{
		{FileID: "mixed", Checksum: "ffff", Spec: model.ChecksumSpec{Algorithm: "SHA256"}},
	}))

	plan, err := f.engine.PlanChecksumVotes(f.ctx, "c", time.Time{})
	require.NoError(t, err)

	assert.Equal(t, VoteSummary{Files: 3, Majorities: 1, Ties: 1, SpecMismatches: 1, ErrorActions: 1}, plan.Summary)
	require.Len(t, plan.Votes, 3)
	assert.Equal(t, "majority", plan.Votes[0].FileID)
	assert.Equal(t, OutcomeMajority, plan.Votes[0].Outcome)
	assert.Equal(t, "aa", plan.Votes[0].Chosen)
	assert.Equal(t, map[string]int{"aa": 2, "bb": 1}, plan.Votes[0].Counts)
	assert.Equal(t, OutcomeSpecMismatch, plan.Votes[1].Outcome)
	assert.Equal(t, OutcomeTie, plan.Votes[2].Outcome)

	require.Len(t, plan.Actions, 2)
	assert.Equal(t, Action{
		Type: ActionSetChecksumValid, FileID: "majority", Pillars: []string{"p1", "p2"},
		Reason: "checksum aa reported by 2 of 3 pillars",
	}, plan.Actions[0])
	assert.Equal(t, ActionSetChecksumError, plan.Actions[1].Type)
	assert.Equal(t, []string{"p3"}, plan.Actions[1].Pillars)
}

func TestPlanChecksumVotes_Truncates(t *testing.T) {
	f := newFixture(t, Options{MaxVoteFiles: 1})
	for _, id := range []string{"x", "y"} {
		f.list(t, "p1", id)
		f.list(t, "p2", id)
		f.sum(t, "p1", id, "aa")
		f.sum(t, "p2", id, "bb")
	}

	plan, err := f.engine.PlanChecksumVotes(f.ctx, "c", time.Time{})
	require.NoError(t, err)
	assert.True(t, plan.Summary.Truncated)
	assert.Equal(t, 1, plan.Summary.Files)
}

func TestApplyPlan(t *testing.T) {
	f := newFixture(t, Options{})
	for _, p := range []string{"p1", "p2", "p3"} {
		f.list(t, p, "f")
	}
	f.sum(t, "p1", "f", "aa")
	f.sum(t, "p2", "f", "aa")
	f.sum(t, "p3", "f", "bb")

	plan, err := f.engine.PlanChecksumVotes(f.ctx, "c", time.Time{})
	require.NoError(t, err)

	t.Run("Unconfirmed", func(t *testing.T) {
		n, err := f.engine.ApplyPlan(f.ctx, plan, ApplyOptions{})
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Equal(t, model.ChecksumStateUnknown, f.state(t, "f", "p3").ChecksumState)
	})

	t.Run("DryRun", func(t *testing.T) {
		n, err := f.engine.ApplyPlan(f.ctx, plan, ApplyOptions{Confirmed: true, DryRun: true})
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("Confirmed", func(t *testing.T) {
		n, err := f.engine.ApplyPlan(f.ctx, plan, ApplyOptions{Confirmed: true})
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, model.ChecksumStateValid, f.state(t, "f", "p1").ChecksumState)
		assert.Equal(t, model.ChecksumStateError, f.state(t, "f", "p3").ChecksumState)
	})

	t.Run("UnknownAction", func(t *testing.T) {
		bad := &VotePlan{CollectionID: "c", Actions: []Action{{Type: "purge", FileID: "f"}}}
		_, err := f.engine.ApplyPlan(f.ctx, bad, ApplyOptions{Confirmed: true})
		assert.ErrorContains(t, err, "unknown action type")
	})
}
