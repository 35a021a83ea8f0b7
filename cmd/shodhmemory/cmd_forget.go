package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var forgetAll bool

var forgetCmd = &cobra.Command{
	Use:   "forget <user_id> [id]",
	Short: "Delete one memory, or every memory for a user with --all",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !forgetAll && len(args) < 2 {
			return fmt.Errorf("id is required unless --all is set")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		eng, err := openEngine(cfg)
		if err != nil {
			return err
		}
		defer eng.Close()

		ctx := context.Background()
		if forgetAll {
			if err := eng.ForgetAll(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("all memories for %s deleted\n", args[0])
			return nil
		}

		if err := eng.Forget(ctx, args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("%s deleted\n", args[1])
		return nil
	},
}

func init() {
	forgetCmd.Flags().BoolVar(&forgetAll, "all", false, "delete every memory for the user (GDPR-style wipe)")
	rootCmd.AddCommand(forgetCmd)
}
