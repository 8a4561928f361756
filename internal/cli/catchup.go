package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var catchupFlags struct {
	lookback int
}

var catchupCmd = &cobra.Command{
	Use:   "catchup [plant-id]",
	Short: "List overdue tasks not covered by any logged activity",
	RunE:  runCatchup,
}

func init() {
	catchupCmd.Flags().IntVar(&catchupFlags.lookback, "lookback", 0, "days to look back (default from config)")
	rootCmd.AddCommand(catchupCmd)
}

func runCatchup(cmd *cobra.Command, args []string) error {
	svc, _, err := openService()
	if err != nil {
		return err
	}
	plantID := ""
	if len(args) > 0 {
		plantID = args[0]
	}
	missed, err := svc.MissedOpportunities(cmd.Context(), plantID, catchupFlags.lookback)
	if err != nil {
		return err
	}
	if len(missed) == 0 {
		fmt.Println("Nothing to catch up on.")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DUE\tTASK\tCATEGORY\tSTAGE\tPLANT\tTASK-ID")
	for _, m := range missed {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			m.DueAt.Format("2006-01-02"), m.Name, m.Category, m.Stage, m.PlantID, m.TaskID)
	}
	return w.Flush()
}
