package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"integrity-service/core/reconcile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the reconcile command
	voteChecksums bool
	dryRunVote    bool
	yesConfirm    bool
	maxAgeHours   int
)

// reconcileCmd compares the checksums of a collection and optionally votes on disagreements.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile <collection>",
	Short: "Reconcile the checksums reported by the pillars",
	Long: `Marks agreeing checksums VALID and reports files whose pillars disagree.

With --vote, each inconsistent file is put to a vote: the checksum reported by
most pillars wins and the outvoted pillars are flagged as checksum errors.

Examples:
  # Report only
  reconcile archive

  # Plan a vote without changing anything
  reconcile archive --vote --dry-run

  # Vote and flag the outvoted checksums with auto-confirm
  reconcile archive --vote --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().BoolVar(&voteChecksums, "vote", false, "Vote on inconsistent checksums")
	reconcileCmd.Flags().BoolVar(&dryRunVote, "dry-run", false, "Force dry-run (no mutations even with --yes)")
	reconcileCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")
	reconcileCmd.Flags().IntVar(&maxAgeHours, "max-age", 0, "Ignore checksums older than this many hours (0: configured default)")
	RootCmd.AddCommand(reconcileCmd)
}

// cutoffFromFlag converts --max-age into a checksum cutoff.
func cutoffFromFlag() time.Time {
	if maxAgeHours <= 0 {
		return time.Time{}
	}
	return time.Now().UTC().Add(-time.Duration(maxAgeHours) * time.Hour)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := bootstrap(nil)
	if err != nil {
		return err
	}
	defer rt.Close()
	l := rt.log
	collectionID := args[0]

	res, err := rt.service.ReconcileChecksums(ctx, collectionID, cutoffFromFlag())
	if err != nil {
		return fmt.Errorf("failed to reconcile checksums: %w", err)
	}
	l.Info("Checksum reconciliation",
		zap.String("collection", collectionID),
		zap.Int64("inconsistent", res.InconsistentCount),
		zap.Strings("sample", res.Inconsistent))

	if !voteChecksums {
		if res.InconsistentCount > 0 {
			l.Info("Use --vote to resolve inconsistent checksums by majority.")
		}
		return nil
	}

	// Plan first; apply only after confirmation
	plan, _, err := rt.service.Vote(ctx, collectionID, cutoffFromFlag(), reconcile.ApplyOptions{DryRun: true})
	if err != nil {
		return fmt.Errorf("failed to plan vote: %w", err)
	}
	printVotePlan(l, plan)

	if dryRunVote {
		l.Info("Dry-run mode: No changes were made.")
		return nil
	}
	if len(plan.Actions) == 0 {
		l.Info("No actions required.")
		return nil
	}
	if !confirmDestructiveAction() {
		l.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	l.Info("Applying actions...")
	_, executed, err := rt.service.Vote(ctx, collectionID, cutoffFromFlag(), reconcile.ApplyOptions{Confirmed: true})
	if err != nil {
		return fmt.Errorf("failed to apply vote: %w", err)
	}
	l.Info("Successfully executed actions", zap.Int("count", executed))
	return nil
}

// printVotePlan prints a vote plan using logger.
func printVotePlan(l *zap.Logger, plan *reconcile.VotePlan) {
	s := plan.Summary
	l.Info("Vote plan",
		zap.Int("files", s.Files),
		zap.Int("majorities", s.Majorities),
		zap.Int("ties", s.Ties),
		zap.Int("spec_mismatches", s.SpecMismatches),
		zap.Int("error_actions", s.ErrorActions),
		zap.Bool("truncated", s.Truncated),
	)

	maxShow := min(5, len(plan.Actions))
	for _, action := range plan.Actions[:maxShow] {
		l.Info("Sample action",
			zap.String("type", string(action.Type)),
			zap.String("file", action.FileID),
			zap.Strings("pillars", action.Pillars),
			zap.String("reason", action.Reason),
		)
	}
	if len(plan.Actions) > maxShow {
		l.Info("Additional actions not shown", zap.Int("count", len(plan.Actions)-maxShow))
	}
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction() bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\n⚠️  Type 'yes' to confirm destructive actions: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(response) == "yes"
}
