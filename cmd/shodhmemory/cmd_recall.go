package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/shodhmemory/engine/internal/engine"
	"github.com/shodhmemory/engine/internal/retrieval"
)

var (
	recallMode  string
	recallLimit int
)

var recallCmd = &cobra.Command{
	Use:   "recall <user_id> <query>",
	Short: "Semantic/hybrid search over a user's memories",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		eng, err := openEngine(cfg)
		if err != nil {
			return err
		}
		defer eng.Close()

		results, err := eng.Recall(context.Background(), engine.RecallOptions{
			UserID: args[0],
			Query:  args[1],
			Mode:   retrieval.Mode(recallMode),
			Limit:  recallLimit,
		})
		if err != nil {
			return err
		}
		return printJSON(results)
	},
}

func init() {
	recallCmd.Flags().StringVar(&recallMode, "mode", "", "ranking mode: semantic, hybrid, or associative")
	recallCmd.Flags().IntVar(&recallLimit, "limit", 10, "maximum results")
	rootCmd.AddCommand(recallCmd)
}
