// Package cli implements the plantcore command line interface.
package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"plantcore/internal/catalog"
	"plantcore/internal/core"
)

var rootCmd = &cobra.Command{
	Use:     "plantcore",
	Short:   "Plant care scheduling engine",
	Long:    `Plantcore turns per-variety care protocols into concrete dated tasks, groups equivalent tasks for bulk completion, and learns due-date adjustments from completion history.`,
	Version: "0.1.0",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// openService builds the default service: built-in variety catalog, rules
// engine, and the storage backend selected by the environment.
func openService() (*core.Service, *catalog.Catalog, error) {
	varieties := catalog.BuiltinSeed()
	engine := core.NewDefaultRulesEngine(varieties)
	store, err := core.OpenPersistentStore(engine)
	if err != nil {
		return nil, nil, fmt.Errorf("open storage: %w", err)
	}
	return core.NewService(store, varieties), varieties, nil
}

// parseDate accepts YYYY-MM-DD or RFC3339.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD or RFC3339)", s)
	}
	return t.UTC(), nil
}
