package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shodhmemory/engine/internal/daemon"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether the background daemon is running",
	RunE: func(cmd *cobra.Command, args []string) error {
		d := daemon.New(os.TempDir(), Version)
		status := d.Status()
		if !status.Running {
			fmt.Println("not running")
			return nil
		}
		fmt.Printf("running (pid %d, uptime %s, rest %s:%d)\n", status.PID, status.Uptime, status.RESTHost, status.RESTPort)
		return nil
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the background daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		d := daemon.New(os.TempDir(), Version)
		return d.Stop()
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(stopCmd)
}
