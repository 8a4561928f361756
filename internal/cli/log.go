package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"plantcore/pkg/domain"
)

var logFlags struct {
	category string
	when     string
	note     string

	volumeML int
	method   string

	product    string
	npk        string
	dilutionML int
	appMethod  string

	focus    string
	findings string
}

var logCmd = &cobra.Command{
	Use:   "log <plant-id>",
	Short: "Log a care activity for one plant",
	Long:  `Log records an immutable care activity. A matching pending task, if any, is marked completed and the scheduled-versus-actual variance recorded.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runLog,
}

func init() {
	addActivityFlags(logCmd)
	rootCmd.AddCommand(logCmd)
}

// addActivityFlags registers the shared activity flag set used by log and
// complete.
func addActivityFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&logFlags.category, "category", "", "watering|feeding|inspection (required)")
	cmd.Flags().StringVar(&logFlags.when, "at", "", "when the care happened (default now)")
	cmd.Flags().StringVar(&logFlags.note, "note", "", "free-form note")
	cmd.Flags().IntVar(&logFlags.volumeML, "volume", 0, "watering volume in ml")
	cmd.Flags().StringVar(&logFlags.method, "method", "", "watering method")
	cmd.Flags().StringVar(&logFlags.product, "product", "", "feeding product name")
	cmd.Flags().StringVar(&logFlags.npk, "npk", "", "feeding NPK ratio")
	cmd.Flags().IntVar(&logFlags.dilutionML, "dilution", 0, "feeding dilution in ml")
	cmd.Flags().StringVar(&logFlags.appMethod, "application", "", "feeding application method")
	cmd.Flags().StringVar(&logFlags.focus, "focus", "", "inspection focus")
	cmd.Flags().StringVar(&logFlags.findings, "findings", "", "inspection findings")
	_ = cmd.MarkFlagRequired("category")
}

// activityDetails builds the typed detail payload for the flagged category.
func activityDetails() (domain.CareCategory, domain.CareDetails, error) {
	switch domain.CareCategory(logFlags.category) {
	case domain.CareWatering:
		return domain.CareWatering, domain.WateringDetails{VolumeML: logFlags.volumeML, Method: logFlags.method}, nil
	case domain.CareFeeding:
		return domain.CareFeeding, domain.FeedingDetails{
			Product:           logFlags.product,
			NPK:               logFlags.npk,
			DilutionML:        logFlags.dilutionML,
			ApplicationMethod: logFlags.appMethod,
		}, nil
	case domain.CareInspection:
		return domain.CareInspection, domain.InspectionDetails{Focus: logFlags.focus, Notes: logFlags.findings}, nil
	default:
		return "", nil, fmt.Errorf("unknown category %q", logFlags.category)
	}
}

func runLog(cmd *cobra.Command, args []string) error {
	svc, _, err := openService()
	if err != nil {
		return err
	}
	category, details, err := activityDetails()
	if err != nil {
		return err
	}
	activity := domain.CareActivity{
		PlantID:  args[0],
		Category: category,
		Details:  details,
	}
	if logFlags.when != "" {
		at, err := parseDate(logFlags.when)
		if err != nil {
			return err
		}
		activity.PerformedAt = at
	}
	if logFlags.note != "" {
		note := logFlags.note
		activity.Note = &note
	}
	created, _, err := svc.LogActivity(cmd.Context(), activity)
	if err != nil {
		return err
	}
	fmt.Printf("logged %s %s for plant %s\n", created.Category, created.ID, created.PlantID)
	return nil
}
