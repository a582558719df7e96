package reconcile

import (
	"math"
	"time"

	"integrity-service/core/model"
)

// Options controls reporting limits of the engine.
type Options struct {
	// MaxListedIssues caps how many file ids a result lists per issue kind.
	// Counts are always exact. Zero or less means unlimited.
	MaxListedIssues int

	// ChecksumMaxAge is the default staleness window for checksum comparison.
	// Checksums computed longer ago than this do not take part. Zero disables it.
	ChecksumMaxAge time.Duration

	// MaxVoteFiles caps how many inconsistent files a single vote plan examines.
	MaxVoteFiles int
}

// listLimit is MaxListedIssues with the unlimited case made explicit.
func (o Options) listLimit() int {
	if o.MaxListedIssues <= 0 {
		return math.MaxInt
	}
	return o.MaxListedIssues
}

// PillarSweep is the outcome of a sweep for one pillar.
type PillarSweep struct {
	// PillarID identifies the pillar.
	PillarID string `json:"pillar_id"`

	// Missing is the number of files MISSING at the pillar after the sweep.
	Missing int64 `json:"missing"`
}

// SweepResult is returned when a full listing sweep is concluded.
type SweepResult struct {
	// CollectionID identifies the collection.
	CollectionID string `json:"collection_id"`

	// Cutoff is the sweep boundary: UNKNOWN records checked before it became MISSING.
	Cutoff time.Time `json:"cutoff"`

	// Pillars holds the per-pillar missing counts, ordered by pillar id.
	Pillars []PillarSweep `json:"pillars"`
}

// ChecksumResult is returned by a checksum reconciliation.
type ChecksumResult struct {
	// CollectionID identifies the collection.
	CollectionID string `json:"collection_id"`

	// Cutoff is the staleness boundary used; zero means every checksum took part.
	Cutoff time.Time `json:"cutoff"`

	// InconsistentCount is the exact number of files whose pillars disagree.
	InconsistentCount int64 `json:"inconsistent_count"`

	// Inconsistent lists the first inconsistent file ids in ascending order.
	Inconsistent []string `json:"inconsistent"`
}

// IssueList is a capped listing of the files with one kind of issue.
type IssueList struct {
	// Count is the exact number of affected files.
	Count int64 `json:"count"`

	// FileIDs lists the first affected files in ascending order.
	FileIDs []string `json:"file_ids"`

	// Truncated is set when FileIDs holds fewer ids than Count.
	Truncated bool `json:"truncated"`
}

// Report is the integrity report of one collection.
type Report struct {
	// CollectionID identifies the collection.
	CollectionID string `json:"collection_id"`

	// GeneratedAt is when the report was produced.
	GeneratedAt time.Time `json:"generated_at"`

	// FileCount is the number of distinct files known in the collection.
	FileCount int64 `json:"file_count"`

	// MissingFiles are files not EXISTING at every pillar.
	MissingFiles IssueList `json:"missing_files"`

	// MissingChecksums are files EXISTING somewhere without a checksum there.
	MissingChecksums IssueList `json:"missing_checksums"`

	// InconsistentChecksums are files whose pillars report different checksums.
	InconsistentChecksums IssueList `json:"inconsistent_checksums"`

	// Pillars holds the aggregate counters of each pillar.
	Pillars []model.PillarCollectionMetrics `json:"pillars"`
}

// Healthy reports whether the report found no issue at all.
func (r *Report) Healthy() bool {
	return r.MissingFiles.Count == 0 && r.MissingChecksums.Count == 0 && r.InconsistentChecksums.Count == 0
}

// Statistics converts the report into the snapshot that is persisted.
func (r *Report) Statistics() model.CollectionStatistics {
	return model.CollectionStatistics{
		CollectionID:          r.CollectionID,
		RecordedAt:            r.GeneratedAt,
		FileCount:             r.FileCount,
		MissingFiles:          r.MissingFiles.Count,
		MissingChecksums:      r.MissingChecksums.Count,
		InconsistentChecksums: r.InconsistentChecksums.Count,
		Pillars:               r.Pillars,
	}
}

// ActionType represents the type of state change a vote plan proposes.
type ActionType string

const (
	// ActionSetChecksumValid confirms the checksum of the pillars agreeing with the vote.
	ActionSetChecksumValid ActionType = "set_checksum_valid"
	// ActionSetChecksumError flags the checksum of the pillars outvoted by the others.
	ActionSetChecksumError ActionType = "set_checksum_error"
)

// Action represents a planned state change for one file.
type Action struct {
	// Type specifies the change to apply.
	Type ActionType `json:"type"`

	// FileID is the affected file.
	FileID string `json:"file_id"`

	// Pillars are the pillars the change applies to.
	Pillars []string `json:"pillars"`

	// Reason explains why this action is needed.
	Reason string `json:"reason"`
}

// VoteOutcome is the decision reached for one inconsistent file.
type VoteOutcome string

const (
	// OutcomeMajority means one checksum was reported by more pillars than any other.
	OutcomeMajority VoteOutcome = "majority"
	// OutcomeTie means several checksums share the highest count; nothing is changed.
	OutcomeTie VoteOutcome = "tie"
	// OutcomeSpecMismatch means the pillars used different checksum specs; nothing is changed.
	OutcomeSpecMismatch VoteOutcome = "spec_mismatch"
	// OutcomeResolved means the file was consistent again when examined.
	OutcomeResolved VoteOutcome = "resolved"
)

// Vote documents the vote on one file.
type Vote struct {
	// FileID is the file voted on.
	FileID string `json:"file_id"`

	// Outcome is the decision reached.
	Outcome VoteOutcome `json:"outcome"`

	// Chosen is the winning checksum for OutcomeMajority.
	Chosen string `json:"chosen,omitempty"`

	// Counts maps each reported checksum to the number of pillars reporting it.
	Counts map[string]int `json:"counts"`
}

// VotePlan contains the votes on inconsistent files and the resulting actions.
type VotePlan struct {
	// CollectionID identifies the collection.
	CollectionID string `json:"collection_id"`

	// Cutoff is the staleness boundary used when the votes were taken.
	Cutoff time.Time `json:"cutoff"`

	// Votes contains one entry per examined file.
	Votes []Vote `json:"votes"`

	// Actions contains the planned state changes.
	Actions []Action `json:"actions"`

	// Summary provides aggregate counts.
	Summary VoteSummary `json:"summary"`
}

// VoteSummary provides aggregate statistics for a vote plan.
type VoteSummary struct {
	// Files is the number of files examined.
	Files int `json:"files"`

	// Majorities counts files with a winning checksum.
	Majorities int `json:"majorities"`

	// Ties counts files where no checksum won.
	Ties int `json:"ties"`

	// SpecMismatches counts files whose pillars used different checksum specs.
	SpecMismatches int `json:"spec_mismatches"`

	// ErrorActions counts planned ActionSetChecksumError actions.
	ErrorActions int `json:"error_actions"`

	// Truncated is set when more inconsistent files exist than were examined.
	Truncated bool `json:"truncated"`
}

// ApplyOptions controls execution of a vote plan.
type ApplyOptions struct {
	// DryRun prevents execution of any state change if true.
	DryRun bool

	// Confirmed indicates the operator has confirmed flagging checksums as ERROR.
	// If false, nothing is executed regardless of DryRun.
	Confirmed bool
}
