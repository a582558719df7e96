package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// sweepCmd is the parent command of the two halves of a full listing sweep, for
// pillars whose listings are delivered by an external process.
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run a full listing sweep in two steps",
	Long: `A sweep marks every record UNKNOWN, waits for every pillar to list its files
again and then marks what was not listed MISSING.

Examples:
  # Mark phase, prints the cutoff
  sweep begin archive

  # Once every pillar has listed
  sweep conclude archive --cutoff 2026-01-02T03:04:05Z`,
}

var sweepBeginCmd = &cobra.Command{
	Use:   "begin <collection>",
	Short: "Mark every record of the collection UNKNOWN",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap(nil)
		if err != nil {
			return err
		}
		defer rt.Close()
		cutoff, err := rt.service.BeginFullListingSweep(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(cutoff.Format(time.RFC3339Nano))
		return nil
	},
}

var sweepCutoff string

var sweepConcludeCmd = &cobra.Command{
	Use:   "conclude <collection>",
	Short: "Mark the records not listed since the sweep began MISSING",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cutoff, err := time.Parse(time.RFC3339Nano, sweepCutoff)
		if err != nil {
			return fmt.Errorf("invalid --cutoff: %w", err)
		}
		rt, err := bootstrap(nil)
		if err != nil {
			return err
		}
		defer rt.Close()
		res, err := rt.service.ConcludeSweep(cmd.Context(), args[0], cutoff)
		if err != nil {
			return err
		}
		for _, p := range res.Pillars {
			rt.log.Info("Pillar swept", zap.String("pillar", p.PillarID), zap.Int64("missing", p.Missing))
		}
		return nil
	},
}

func init() {
	sweepConcludeCmd.Flags().StringVar(&sweepCutoff, "cutoff", "", "Cutoff printed by sweep begin (RFC 3339)")
	_ = sweepConcludeCmd.MarkFlagRequired("cutoff")
	sweepCmd.AddCommand(sweepBeginCmd, sweepConcludeCmd)
	RootCmd.AddCommand(sweepCmd)
}
