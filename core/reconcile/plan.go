package reconcile

import (
	"context"
	"fmt"
	"sort"
	"time"

	"integrity-service/core/model"
	"integrity-service/core/store"

	"go.uber.org/zap"
)

const defaultMaxVoteFiles = 10000

// PlanChecksumVotes votes on every inconsistent file of the collection. The checksum
// reported by the most pillars wins; a tie or a mix of checksum specs decides nothing.
// The plan is not executed; use ApplyPlan for that.
func (e *Engine) PlanChecksumVotes(ctx context.Context, collectionID string, cutoff time.Time) (*VotePlan, error) {
	if cutoff.IsZero() {
		cutoff = e.ChecksumCutoff()
	}
	limit := e.opts.MaxVoteFiles
	if limit <= 0 {
		limit = defaultMaxVoteFiles
	}

	it, err := e.store.FindFilesWithInconsistentChecksums(ctx, collectionID, cutoff)
	if err != nil {
		return nil, err
	}
	// One extra id tells whether the plan is truncated.
	ids, err := store.Drain(it, limit+1)
	if err != nil {
		return nil, err
	}
	plan := &VotePlan{CollectionID: collectionID, Cutoff: cutoff}
	if len(ids) > limit {
		ids = ids[:limit]
		plan.Summary.Truncated = true
	}

	for _, fileID := range ids {
		infos, err := e.store.GetFileInfosForFile(ctx, collectionID, fileID)
		if err != nil {
			return nil, err
		}
		vote, actions := voteOn(fileID, infos, cutoff)
		plan.Votes = append(plan.Votes, vote)
		plan.Actions = append(plan.Actions, actions...)
		plan.Summary.Files++
		switch vote.Outcome {
		case OutcomeMajority:
			plan.Summary.Majorities++
		case OutcomeTie:
			plan.Summary.Ties++
		case OutcomeSpecMismatch:
			plan.Summary.SpecMismatches++
		}
	}
	for _, a := range plan.Actions {
		if a.Type == ActionSetChecksumError {
			plan.Summary.ErrorActions++
		}
	}
	return plan, nil
}

// voteOn decides one file from its records. Only records that take part in checksum
// comparison vote.
func voteOn(fileID string, infos []model.FileInfo, cutoff time.Time) (Vote, []Action) {
	vote := Vote{FileID: fileID, Counts: map[string]int{}}
	byChecksum := map[string][]string{}
	var spec *model.ChecksumSpec
	mixedSpecs := false

	for _, fi := range infos {
		if fi.FileState == model.FileStateMissing || fi.Checksum == nil {
			continue
		}
		if !cutoff.IsZero() && fi.LastChecksumCheck.Before(cutoff) {
			continue
		}
		if spec == nil {
			s := fi.ChecksumSpec
			spec = &s
		} else if *spec != fi.ChecksumSpec {
			mixedSpecs = true
		}
		vote.Counts[*fi.Checksum]++
		byChecksum[*fi.Checksum] = append(byChecksum[*fi.Checksum], fi.PillarID)
	}

	switch {
	case mixedSpecs:
		vote.Outcome = OutcomeSpecMismatch
		return vote, nil
	case len(vote.Counts) <= 1:
		vote.Outcome = OutcomeResolved
		return vote, nil
	}

	chosen, largest, tie, voters := "", 0, false, 0
	for sum, n := range vote.Counts {
		voters += n
		switch {
		case n > largest:
			chosen, largest, tie = sum, n, false
		case n == largest:
			tie = true
		}
	}
	if tie {
		vote.Outcome = OutcomeTie
		return vote, nil
	}

	vote.Outcome = OutcomeMajority
	vote.Chosen = chosen
	agree := byChecksum[chosen]
	sort.Strings(agree)
	var outvoted []string
	for sum, pillars := range byChecksum {
		if sum != chosen {
			outvoted = append(outvoted, pillars...)
		}
	}
	sort.Strings(outvoted)

	actions := []Action{{
		Type:    ActionSetChecksumValid,
		FileID:  fileID,
		Pillars: agree,
		Reason:  fmt.Sprintf("checksum %s reported by %d of %d pillars", chosen, largest, voters),
	}}
	if len(outvoted) > 0 {
		actions = append(actions, Action{
			Type:    ActionSetChecksumError,
			FileID:  fileID,
			Pillars: outvoted,
			Reason:  fmt.Sprintf("checksum differs from majority checksum %s", chosen),
		})
	}
	return vote, actions
}

// ApplyPlan executes the actions in a vote plan.
// Returns the number of actions executed and any error encountered.
// Requires opts.Confirmed=true and opts.DryRun=false to actually execute.
func (e *Engine) ApplyPlan(ctx context.Context, plan *VotePlan, opts ApplyOptions) (executed int, err error) {
	if !opts.Confirmed || opts.DryRun {
		return 0, nil
	}
	for _, a := range plan.Actions {
		switch a.Type {
		case ActionSetChecksumValid:
			err = e.store.SetChecksumValid(ctx, plan.CollectionID, a.FileID, a.Pillars)
		case ActionSetChecksumError:
			err = e.store.SetChecksumError(ctx, plan.CollectionID, a.FileID, a.Pillars)
		default:
			err = fmt.Errorf("unknown action type %q", a.Type)
		}
		if err != nil {
			return executed, fmt.Errorf("failed to apply %s on %s: %w", a.Type, a.FileID, err)
		}
		executed++
	}
	e.log.Info("Vote plan applied", zap.String("collection", plan.CollectionID), zap.Int("actions", executed))
	return executed, nil
}
