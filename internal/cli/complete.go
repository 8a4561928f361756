package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"plantcore/internal/core"
)

var completeCmd = &cobra.Command{
	Use:   "complete <group-id>",
	Short: "Complete a grouped task for every member plant",
	Long:  `Complete fans one activity out to every plant in the group, one independent record per plant sharing a batch ID. A member that fails is reported and skipped; the rest of the batch proceeds.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runComplete,
}

func init() {
	addActivityFlags(completeCmd)
	rootCmd.AddCommand(completeCmd)
}

func runComplete(cmd *cobra.Command, args []string) error {
	svc, _, err := openService()
	if err != nil {
		return err
	}
	category, details, err := activityDetails()
	if err != nil {
		return err
	}
	template := core.ActivityTemplate{Category: category, Details: details}
	if logFlags.when != "" {
		at, err := parseDate(logFlags.when)
		if err != nil {
			return err
		}
		template.PerformedAt = at
	}
	if logFlags.note != "" {
		note := logFlags.note
		template.Note = &note
	}
	result, err := svc.CompleteBulk(cmd.Context(), core.BulkCompletionRequest{
		GroupID:  args[0],
		Template: template,
	})
	if err != nil {
		return err
	}
	fmt.Printf("batch %s: %d completed, %d failed\n", result.BatchID, result.Succeeded, result.Failed)
	for _, id := range result.FailedIDs {
		fmt.Printf("  failed: %s\n", id)
	}
	return nil
}
