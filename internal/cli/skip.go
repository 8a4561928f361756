package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var skipCmd = &cobra.Command{
	Use:   "skip <task-id>",
	Short: "Skip a pending task without logging care",
	RunE:  runSkip,
	Args:  cobra.ExactArgs(1),
}

func init() {
	rootCmd.AddCommand(skipCmd)
}

func runSkip(cmd *cobra.Command, args []string) error {
	svc, _, err := openService()
	if err != nil {
		return err
	}
	task, _, err := svc.SkipTask(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Printf("skipped %s (%s, was due %s)\n", task.ID, task.Name, task.DueAt.Format("2006-01-02"))
	return nil
}
