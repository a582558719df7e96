package cmd

import (
	"strings"

	"integrity-service/core/model"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// collectionCmd is the parent command for collection administration.
var collectionCmd = &cobra.Command{
	Use:   "collection",
	Short: "Manage the tracked collections",
}

var collectionAddCmd = &cobra.Command{
	Use:   "add <collection> <pillar>[,<pillar>...]",
	Short: "Register a collection with its pillars",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap(nil)
		if err != nil {
			return err
		}
		defer rt.Close()
		cfg := model.CollectionConfig{ID: args[0], PillarIDs: strings.Split(args[1], ",")}
		return rt.service.AddCollection(cmd.Context(), cfg)
	},
}

var collectionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the collections and their pillars",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap(nil)
		if err != nil {
			return err
		}
		defer rt.Close()
		cols, err := rt.service.Collections(cmd.Context())
		if err != nil {
			return err
		}
		for _, c := range cols {
			n, err := rt.service.CountFiles(cmd.Context(), c.ID)
			if err != nil {
				return err
			}
			rt.log.Info("Collection", zap.String("id", c.ID), zap.Strings("pillars", c.PillarIDs), zap.Int64("files", n))
		}
		if len(cols) == 0 {
			rt.log.Info("No collections registered.")
		}
		return nil
	},
}

var collectionRemoveCmd = &cobra.Command{
	Use:   "remove <collection>",
	Short: "Remove a collection and everything recorded for it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap(nil)
		if err != nil {
			return err
		}
		defer rt.Close()
		if !confirmDestructiveAction() {
			rt.log.Warn("Operation cancelled by user. No changes were made.")
			return nil
		}
		return rt.service.RemoveCollection(cmd.Context(), args[0])
	},
}

func init() {
	collectionRemoveCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm the removal (non-interactive)")
	collectionCmd.AddCommand(collectionAddCmd, collectionListCmd, collectionRemoveCmd)
	RootCmd.AddCommand(collectionCmd)
}
