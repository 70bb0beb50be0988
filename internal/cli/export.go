package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/raphaelgruber/docpipe/internal/db"
	"github.com/spf13/cobra"
)

var exportStatus string

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export document records as JSON",
	Long: `Export all document records as a JSON array, in the order they were
recorded. Use "-" to write to stdout.

Examples:
  docpipe export documents.json
  docpipe export - --status Completed`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportStatus, "status", "s", "all", "filter by status: all, Completed, Failed")
}

func runExport(cmd *cobra.Command, args []string) error {
	docs, err := store.List(cmd.Context(), db.ListOptions{Status: db.ParseStatusFilter(exportStatus)})
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}

	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode documents: %w", err)
	}
	data = append(data, '\n')

	if args[0] == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(args[0], data, 0644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Printf("Exported %d documents to %s\n", len(docs), args[0])
	return nil
}
