package cli

import (
	"fmt"

	"github.com/raphaelgruber/docpipe/internal/db"
	"github.com/spf13/cobra"
)

var (
	updateSummary  string
	updateKeywords []string
)

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Replace the summary or keywords of a document",
	Long: `Replace the summary and/or keywords of a stored document. Fields not
given keep their current value. The status is not recomputed.

Examples:
  docpipe update 65f1c0ffee --summary "Quarterly figures for Q3."
  docpipe update 65f1c0ffee --keywords revenue,forecast,q3`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().StringVar(&updateSummary, "summary", "", "new summary")
	updateCmd.Flags().StringSliceVar(&updateKeywords, "keywords", nil, "new keywords (comma separated)")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	id := args[0]
	ctx := cmd.Context()

	summaryChanged := cmd.Flags().Changed("summary")
	keywordsChanged := cmd.Flags().Changed("keywords")
	if !summaryChanged && !keywordsChanged {
		return fmt.Errorf("nothing to update: pass --summary and/or --keywords")
	}

	doc, err := store.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}
	if doc == nil {
		return fmt.Errorf("%w: %s", db.ErrNotFound, id)
	}

	summary, keywords := doc.Summary, doc.Keywords
	if summaryChanged {
		summary = updateSummary
	}
	if keywordsChanged {
		keywords = updateKeywords
	}

	if err := store.Update(ctx, id, summary, keywords); err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	fmt.Printf("Updated %s (%s)\n", doc.DocumentName, id)
	return nil
}
