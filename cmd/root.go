package cmd

import (
	"fmt"
	"os"

	"integrity-service/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "integrity-service",
	Short: "Integrity Tracking Service",
	Long: `Integrity Service tracks the files of replicated collections across their pillars.
It ingests file listings and checksums, detects missing files, missing copies and
inconsistent checksums, and reports on the integrity of each collection.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console format and debug level give readable ISO8601 timestamps on the CLI
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
