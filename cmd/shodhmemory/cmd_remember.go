package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shodhmemory/engine/internal/engine"
	"github.com/shodhmemory/engine/internal/model"
)

var (
	rememberType string
	rememberTags []string
)

var rememberCmd = &cobra.Command{
	Use:   "remember <user_id> <content>",
	Short: "Store a new memory",
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

		rec, err := eng.Remember(context.Background(), engine.RememberOptions{
			UserID:     args[0],
			Content:    args[1],
			MemoryType: model.MemoryType(rememberType),
			Tags:       rememberTags,
		})
		if err != nil {
			return err
		}
		return printJSON(rec)
	},
}

func init() {
	rememberCmd.Flags().StringVar(&rememberType, "type", "", "memory type (decision, learning, error, discovery, pattern, task, context, conversation, observation)")
	rememberCmd.Flags().StringSliceVar(&rememberTags, "tags", nil, "comma-separated tags")
	rootCmd.AddCommand(rememberCmd)
}

func printJSON(v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
