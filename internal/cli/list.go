package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/raphaelgruber/docpipe/internal/db"
	"github.com/spf13/cobra"
)

var (
	listStatus string
	listSortBy string
	listOrder  string
	listJSON   bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List processed documents",
	Long: `List processed documents with optional filtering and sorting.

Sort fields: name, pages, processing_time. Any other value keeps the order
in which documents were recorded. Orders other than asc sort descending.

Examples:
  docpipe list
  docpipe list --status Failed
  docpipe list --sort-by pages --order asc
  docpipe list --json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVarP(&listStatus, "status", "s", "all", "filter by status: all, Completed, Failed")
	listCmd.Flags().StringVar(&listSortBy, "sort-by", "", "sort field: name (document_name), pages (num_pages), processing_time")
	listCmd.Flags().StringVar(&listOrder, "order", "desc", "sort order: asc or desc")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print JSON")
}

func runList(cmd *cobra.Command, args []string) error {
	docs, err := store.List(cmd.Context(), db.ListOptions{
		Status:    db.ParseStatusFilter(listStatus),
		SortBy:    db.ParseSortField(listSortBy),
		SortOrder: db.ParseSortOrder(listOrder),
	})
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}

	if listJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(docs)
	}

	if len(docs) == 0 {
		fmt.Println("No documents found.")
		return nil
	}

	fmt.Printf("Documents (%d):\n\n", len(docs))
	for _, d := range docs {
		fmt.Printf("- %s [%s] %d pages, %.2fs  (%s)\n", d.DocumentName, d.Status, d.NumPages, d.ProcessingTime, d.ID)
		if verbose {
			if d.Summary != "" {
				fmt.Printf("  %s\n", truncate(d.Summary, 160))
			}
			if len(d.Keywords) > 0 {
				fmt.Printf("  Keywords: %v\n", d.Keywords)
			}
		}
	}
	return nil
}

// truncate shortens s to at most n runes, adding an ellipsis when cut.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
