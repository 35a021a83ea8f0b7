package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shodhmemory/engine/internal/doctor"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check storage and collaborator readiness",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		report := doctor.Run(*cfg)
		fmt.Println("shodhmemory doctor")
		fmt.Println("==================")
		for _, c := range report.Checks {
			fmt.Printf("%-14s %-9s %s\n", c.Name, c.Status, c.Message)
		}
		fmt.Println()
		if report.Healthy {
			fmt.Println("healthy")
		} else {
			fmt.Println("unhealthy: see checks above")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
