package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var varietiesCmd = &cobra.Command{
	Use:   "varieties",
	Short: "List known varieties and their stage timelines",
	RunE:  runVarieties,
}

func init() {
	rootCmd.AddCommand(varietiesCmd)
}

func runVarieties(cmd *cobra.Command, args []string) error {
	_, varieties, err := openService()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tTIMELINE")
	for _, v := range varieties.List() {
		timeline := ""
		for i, phase := range v.Timeline {
			if i > 0 {
				timeline += " > "
			}
			timeline += fmt.Sprintf("%s(%dd)", phase.Name, phase.DurationDays)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", v.ID, v.Name, v.Category, timeline)
	}
	return w.Flush()
}
