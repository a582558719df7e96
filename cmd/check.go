package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fixFlag bool

// checkCmd verifies the infrastructure the integrity model relies on.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the store schema and the pillar storage",
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Check that the store tables exist with their columns",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap(nil)
		if err != nil {
			return err
		}
		defer rt.Close()
		l := rt.log

		report, err := rt.service.CheckSchema()
		if err != nil {
			return err
		}
		if report.Matched {
			l.Info("Store schema matches expected definition.", zap.String("driver", report.Driver))
			return nil
		}
		for table, t := range report.Tables {
			if t.Status != "ok" {
				l.Warn("Table mismatch",
					zap.String("table", table),
					zap.String("status", t.Status),
					zap.Strings("missing_columns", t.MissingColumns))
			}
		}
		for _, e := range report.Errors {
			l.Error("Inspection Error", zap.String("error", e))
		}
		return nil
	},
}

var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Check and fix the bucket and pillar locations",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap(nil)
		if err != nil {
			return err
		}
		defer rt.Close()
		l := rt.log

		l.Info("Checking pillar storage...")
		report, unfixed, err := rt.service.CheckStorage(cmd.Context(), fixFlag)
		if err != nil {
			return err
		}
		switch {
		case report.Matched:
			l.Info("Storage is intact.", zap.String("bucket", report.Bucket))
		case fixFlag:
			l.Info("Storage fixed.", zap.Strings("unfixed", unfixed))
		default:
			l.Warn("Missing pillar locations", zap.Bool("bucket_exists", report.BucketExists), zap.Strings("missing", report.Missing))
			l.Info("Run with --fix to create missing locations.")
		}
		return nil
	},
}

func init() {
	storageCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create the bucket and empty pillar prefixes")
	checkCmd.AddCommand(schemaCmd, storageCmd)
	RootCmd.AddCommand(checkCmd)
}
