package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"plantcore/internal/adapters/reports"
	"plantcore/internal/infra/blob"
)

var exportFlags struct {
	formats []string
	plantID string
	timeout time.Duration
}

var exportCmd = &cobra.Command{
	Use:   "export <care_history|schedule|catch_up>",
	Short: "Export a report to blob storage",
	Long:  `Export renders a report in the requested formats and stores the artifacts in the configured blob backend (PLANTCORE_BLOB_DRIVER).`,
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringSliceVar(&exportFlags.formats, "format", nil, "output formats: csv,json (default both)")
	exportCmd.Flags().StringVar(&exportFlags.plantID, "plant", "", "restrict to one plant")
	exportCmd.Flags().DurationVar(&exportFlags.timeout, "timeout", 30*time.Second, "how long to wait for the export")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	svc, _, err := openService()
	if err != nil {
		return err
	}
	blobs, err := blob.Open(cmd.Context())
	if err != nil {
		return fmt.Errorf("open blob storage: %w", err)
	}
	worker := reports.NewWorker(svc, blobs, reports.NewJSONAuditLogger(cmd.ErrOrStderr()))
	worker.Start()
	defer func() { _ = worker.Stop(cmd.Context()) }()

	formats := make([]reports.Format, 0, len(exportFlags.formats))
	for _, f := range exportFlags.formats {
		formats = append(formats, reports.Format(strings.ToLower(strings.TrimSpace(f))))
	}
	record, err := worker.Enqueue(cmd.Context(), reports.ExportInput{
		Kind:    reports.Kind(args[0]),
		PlantID: exportFlags.plantID,
		Formats: formats,
	})
	if err != nil {
		return err
	}

	deadline := time.Now().Add(exportFlags.timeout)
	for {
		current, ok := worker.Get(record.ID)
		if !ok {
			return fmt.Errorf("export %s disappeared", record.ID)
		}
		switch current.Status {
		case reports.ExportStatusSucceeded:
			for _, artifact := range current.Artifacts {
				fmt.Printf("%s\t%d bytes\t%s\n", artifact.Key, artifact.SizeBytes, artifact.URL)
			}
			return nil
		case reports.ExportStatusFailed:
			return fmt.Errorf("export failed: %s", current.Error)
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("export %s still %s after %s", record.ID, current.Status, exportFlags.timeout)
		}
		time.Sleep(50 * time.Millisecond)
	}
}
