package service

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/raphaelgruber/docpipe/internal/parser"
	"golang.org/x/sync/errgroup"
)

// estimateConcurrency bounds concurrent page estimation.
const estimateConcurrency = 8

// Submission is a file ready for the pool.
type Submission struct {
	Path          string
	DeclaredPages int
}

// CollectFiles expands paths into supported document files. Directories are
// scanned for PDF, DOCX and TXT files, descending only when recursive is set.
// Files named explicitly are kept whatever their extension, so unsupported
// input still produces a Failed record.
func CollectFiles(paths []string, recursive bool) ([]string, error) {
	var files []string
	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", root, err)
		}
		if !info.IsDir() {
			files = append(files, root)
			continue
		}

		walkFn := func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if !recursive && path != root {
					return filepath.SkipDir
				}
				return nil
			}
			if err := parser.Supported(path); err != nil {
				slog.Debug("skipping file", "file", path, "error", err)
				return nil
			}
			files = append(files, path)
			return nil
		}
		if err := filepath.WalkDir(root, walkFn); err != nil {
			return nil, fmt.Errorf("scan directory: %w", err)
		}
	}
	return files, nil
}

// EstimatePages computes declared page counts for files concurrently,
// preserving input order.
func EstimatePages(ctx context.Context, files []string) ([]Submission, error) {
	subs := make([]Submission, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(estimateConcurrency)
	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			subs[i] = Submission{Path: f, DeclaredPages: parser.EstimatePages(f)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("estimate pages: %w", err)
	}
	return subs, nil
}
