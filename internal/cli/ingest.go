package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/raphaelgruber/docpipe/internal/analysis"
	"github.com/raphaelgruber/docpipe/internal/metrics"
	"github.com/raphaelgruber/docpipe/internal/service"
	"github.com/spf13/cobra"
)

var (
	ingestRecursive  bool
	ingestNoProgress bool
	ingestWorkers    int
	ingestAdmission  string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <path>...",
	Short: "Process documents and store their metadata",
	Long: `Process PDF, DOCX and TXT files. Directories are scanned for supported
files; files named explicitly are always submitted.

Each document gets one record. Documents whose name is already recorded are
skipped.

Examples:
  docpipe ingest report.pdf notes.txt
  docpipe ingest ./uploads
  docpipe ingest ./archive -r --workers 8
  docpipe ingest ./inbox --admission reject --no-progress`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestRecursive, "recursive", "r", false, "scan directories recursively")
	ingestCmd.Flags().BoolVar(&ingestNoProgress, "no-progress", false, "log progress instead of showing a progress bar")
	ingestCmd.Flags().IntVarP(&ingestWorkers, "workers", "w", 0, "number of workers (default from config)")
	ingestCmd.Flags().StringVar(&ingestAdmission, "admission", "", "full queue policy: block or reject (default from config)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	files, err := service.CollectFiles(args, ingestRecursive)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("No supported files found.")
		return nil
	}

	subs, err := service.EstimatePages(ctx, files)
	if err != nil {
		return err
	}

	summarizer, err := analysis.NewSummarizer()
	if err != nil {
		return err
	}
	collector := metrics.NewCollector()
	processor := service.NewProcessor(store, summarizer, collector, logger)

	poolCfg := service.PoolConfig{
		Workers:   cfg.Workers,
		QueueSize: cfg.QueueSize,
		Admission: cfg.Admission,
	}
	if ingestWorkers > 0 {
		poolCfg.Workers = ingestWorkers
	}
	if ingestAdmission != "" {
		poolCfg.Admission = ingestAdmission
	}

	pool := service.NewPool(processor, poolCfg, logger)
	pool.Start(ctx)

	// Submission stops on interrupt; queued jobs still finish.
	submitCtx, cancelSubmit := context.WithCancel(ctx)
	defer cancelSubmit()

	var rejected int
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer pool.Close()
		rejected = submitAll(submitCtx, pool, subs)
	}()

	if ingestNoProgress {
		<-done
	} else {
		interrupted, err := RunPoolProgress(pool, len(subs), done)
		if interrupted {
			cancelSubmit()
			fmt.Println("Interrupted, waiting for queued jobs to finish...")
		}
		<-done
		if err != nil {
			return err
		}
	}

	printIngestSummary(pool.Stats(), rejected, collector.Snapshot())
	return nil
}

// submitAll submits subs in order until ctx is cancelled or the pool stops
// accepting jobs. It returns how many were turned away by a full queue.
func submitAll(ctx context.Context, pool *service.Pool, subs []service.Submission) int {
	rejected := 0
	for i, s := range subs {
		if err := ctx.Err(); err != nil {
			logger.Warn("stopped submitting jobs", "error", err, "remaining", len(subs)-i)
			return rejected
		}
		_, err := pool.Submit(ctx, s.Path, s.DeclaredPages)
		if errors.Is(err, service.ErrQueueFull) {
			rejected++
			continue
		}
		if err != nil {
			logger.Warn("stopped submitting jobs", "error", err)
			return rejected
		}
	}
	return rejected
}

func printIngestSummary(s service.Stats, rejected int, snap metrics.Snapshot) {
	fmt.Printf("\nDocuments: %d submitted, %d completed, %d failed, %d skipped, %d dropped",
		s.Submitted, s.Completed, s.Failed, s.Skipped, s.Dropped)
	if rejected > 0 {
		fmt.Printf(", %d rejected (queue full)", rejected)
	}
	fmt.Println()

	if len(snap.Operations) == 0 {
		return
	}
	fmt.Println("\nStage timings:")
	ops := make([]string, 0, len(snap.Operations))
	for _, op := range metrics.Operations {
		if _, ok := snap.Operations[op]; ok {
			ops = append(ops, op)
		}
	}
	for _, op := range ops {
		o := snap.Operations[op]
		fmt.Printf("  %-10s n=%-5d avg=%.1fms min=%dms max=%dms errors=%d\n",
			op, o.Count, o.AvgTimeMs, o.MinTimeMs, o.MaxTimeMs, o.Errors)
	}
}
