package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"integrity-service/core/reconcile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	uploadReport bool
	reportFile   string
)

// reportCmd audits a collection and records a statistics snapshot.
var reportCmd = &cobra.Command{
	Use:   "report <collection>",
	Short: "Audit a collection and print its integrity report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := bootstrap(nil)
		if err != nil {
			return err
		}
		defer rt.Close()
		l := rt.log

		l.Info("Auditing collection (this might take a while)...", zap.String("collection", args[0]))
		report, err := rt.service.Audit(ctx, args[0], cutoffFromFlag())
		if err != nil {
			return fmt.Errorf("audit failed: %w", err)
		}
		printReport(l, report)

		if reportFile != "" {
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			if err := os.WriteFile(reportFile, data, 0o644); err != nil {
				return fmt.Errorf("failed to save report: %w", err)
			}
			l.Info("Detailed JSON report saved", zap.String("file", reportFile))
		}
		if uploadReport {
			name, err := rt.service.ExportReport(ctx, report)
			if err != nil {
				return err
			}
			l.Info("Report uploaded", zap.String("object", name))
		}
		return nil
	},
}

func printReport(l *zap.Logger, r *reconcile.Report) {
	l.Info("Integrity report",
		zap.String("collection", r.CollectionID),
		zap.String("generated_at", r.GeneratedAt.Format(time.RFC3339)),
		zap.Int64("files", r.FileCount),
		zap.Int64("missing_files", r.MissingFiles.Count),
		zap.Int64("missing_checksums", r.MissingChecksums.Count),
		zap.Int64("inconsistent_checksums", r.InconsistentChecksums.Count),
		zap.Bool("healthy", r.Healthy()),
	)
	for _, p := range r.Pillars {
		l.Info("Pillar",
			zap.String("pillar", p.PillarID),
			zap.Int64("files", p.Files),
			zap.Int64("missing_files", p.MissingFiles),
			zap.Int64("checksum_errors", p.ChecksumErrors))
	}
}

func init() {
	reportCmd.Flags().BoolVar(&uploadReport, "upload", false, "Upload the report to the storage bucket")
	reportCmd.Flags().StringVar(&reportFile, "output", "", "Write the report as JSON to this file")
	reportCmd.Flags().IntVar(&maxAgeHours, "max-age", 0, "Ignore checksums older than this many hours (0: configured default)")
	RootCmd.AddCommand(reportCmd)
}
