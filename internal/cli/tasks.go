package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var tasksFlags struct {
	horizon int
}

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Show the prioritized upcoming task list",
	Long:  `Tasks shows grouped upcoming care tasks ordered by urgency. Equivalent tasks for interchangeable plants collapse into one line with a member count.`,
	RunE:  runTasks,
}

func init() {
	tasksCmd.Flags().IntVar(&tasksFlags.horizon, "horizon", 0, "days to look ahead (default from config)")
	rootCmd.AddCommand(tasksCmd)
}

func runTasks(cmd *cobra.Command, args []string) error {
	svc, _, err := openService()
	if err != nil {
		return err
	}
	groups, err := svc.UpcomingTasks(cmd.Context(), tasksFlags.horizon)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		fmt.Println("No upcoming tasks.")
		return nil
	}
	now := time.Now().UTC()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DUE\tTASK\tCATEGORY\tSTAGE\tVARIETY\tPLANTS\tGROUP")
	for _, g := range groups {
		due := g.DueAt.Format("2006-01-02")
		if g.DueAt.Before(now) {
			due += " (overdue)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			due, g.Name, g.Category, g.Stage, g.VarietyName, g.PlantCount, g.GroupID)
	}
	return w.Flush()
}
