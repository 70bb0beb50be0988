package cli

import (
	"fmt"
	"strings"

	"github.com/raphaelgruber/docpipe/internal/db"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one document record",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	doc, err := store.GetByID(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}
	if doc == nil {
		return fmt.Errorf("%w: %s", db.ErrNotFound, args[0])
	}

	fmt.Printf("ID:              %s\n", doc.ID)
	fmt.Printf("Document:        %s\n", doc.DocumentName)
	fmt.Printf("Path:            %s\n", doc.Path)
	fmt.Printf("Size:            %d bytes\n", doc.SizeBytes)
	fmt.Printf("Pages:           %d\n", doc.NumPages)
	fmt.Printf("Status:          %s\n", doc.Status)
	fmt.Printf("Processing time: %.3fs\n", doc.ProcessingTime)
	fmt.Printf("Created:         %s\n", doc.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	if len(doc.Keywords) > 0 {
		fmt.Printf("Keywords:        %s\n", strings.Join(doc.Keywords, ", "))
	}
	if doc.Summary != "" {
		fmt.Printf("\n%s\n", doc.Summary)
	}
	return nil
}
