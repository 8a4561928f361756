package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"plantcore/pkg/domain"
)

var confirmFlags struct {
	at string
}

var confirmStageCmd = &cobra.Command{
	Use:   "confirm-stage <plant-id> <stage>",
	Short: "Record an observed growth stage for a plant",
	Long:  `Confirm-stage overrides the timeline-derived stage with an observation, supersedes the plant's pending tasks, and regenerates the schedule from the confirmed stage.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runConfirmStage,
}

func init() {
	confirmStageCmd.Flags().StringVar(&confirmFlags.at, "at", "", "observation date (default now)")
	rootCmd.AddCommand(confirmStageCmd)
}

func runConfirmStage(cmd *cobra.Command, args []string) error {
	svc, _, err := openService()
	if err != nil {
		return err
	}
	var at time.Time
	if confirmFlags.at != "" {
		if at, err = parseDate(confirmFlags.at); err != nil {
			return err
		}
	}
	plant, _, err := svc.ConfirmStage(cmd.Context(), args[0], domain.StageName(args[1]), at)
	if err != nil {
		return err
	}
	fmt.Printf("plant %s confirmed at stage %s\n", plant.ID, *plant.ConfirmedStage)
	return nil
}
