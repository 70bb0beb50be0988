// Package service runs documents through the extraction and analysis pipeline.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/raphaelgruber/docpipe/internal/analysis"
	"github.com/raphaelgruber/docpipe/internal/db"
	"github.com/raphaelgruber/docpipe/internal/metrics"
	"github.com/raphaelgruber/docpipe/internal/models"
	"github.com/raphaelgruber/docpipe/internal/parser"
)

// ErrFileSystem indicates the job's file could not be inspected. No record
// is written for such jobs.
var ErrFileSystem = errors.New("file system error")

// State is a step of the per-job state machine.
type State string

const (
	StateStarted           State = "started"
	StateExtracted         State = "extracted"
	StateClassified        State = "classified"
	StateSummarized        State = "summarized"
	StateKeywordsExtracted State = "keywords_extracted"
	StatePersisted         State = "persisted"
	StateDropped           State = "dropped"
)

// Outcome describes how a job ended.
type Outcome struct {
	JobID  string
	State  State
	Record *models.DocumentMetadata // Nil when the job was dropped
	// Skipped is set when a record with the same document name already
	// existed; Record is then the record that was not written.
	Skipped bool
	// Err holds the first stage error, if any. It is informational: stage
	// errors are folded into the record's status.
	Err error
}

// Processor runs a single job from extraction to persistence.
type Processor struct {
	store      db.Store
	summarizer *analysis.Summarizer
	metrics    *metrics.Collector
	logger     *slog.Logger
}

// NewProcessor creates a processor writing to store.
func NewProcessor(store db.Store, summarizer *analysis.Summarizer, collector *metrics.Collector, logger *slog.Logger) *Processor {
	if collector == nil {
		collector = metrics.NewCollector()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		store:      store,
		summarizer: summarizer,
		metrics:    collector,
		logger:     logger,
	}
}

// Metrics returns the collector timing this processor's stages.
func (p *Processor) Metrics() *metrics.Collector {
	return p.metrics
}

// Process runs job through the pipeline and writes exactly one record,
// unless the file cannot be inspected. It never panics and never returns
// stage errors to the caller.
func (p *Processor) Process(ctx context.Context, job *models.Job) (out Outcome) {
	start := time.Now()
	log := p.logger.With("job_id", job.ID, "file", job.Path)
	out = Outcome{JobID: job.ID, State: StateStarted}
	persisted := false

	defer func() {
		p.metrics.RecordTiming(metrics.OpJob, time.Since(start), out.Err)
	}()
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		err := fmt.Errorf("panic in state %s: %v", out.State, r)
		log.Error("job panicked", "state", out.State, "error", err)
		if persisted {
			out.Err = err
			return
		}
		out = p.failFromFileSystem(ctx, log, job, start, err)
	}()

	log.Debug("job started", "declared_pages", job.DeclaredPages)

	info, err := os.Stat(job.Path)
	if err != nil {
		return p.drop(log, job, err)
	}

	meta := baseRecord(job, info.Size())

	var content *parser.Content
	extractErr := p.metrics.Time(metrics.OpExtract, func() error {
		var err error
		content, err = parser.Extract(ctx, job.Path)
		return err
	})
	switch {
	case extractErr != nil:
		log.Warn("text extraction failed", "error", extractErr)
		out.Err = extractErr
	case content.Format == parser.FormatUnknown:
		log.Warn("unsupported file format", "error", parser.ErrUnsupportedFormat)
	}
	out.State = StateExtracted

	if content == nil || content.Text == "" {
		log.Info("no text extracted, recording failure", "state", out.State)
		persisted = true
		return p.persist(ctx, log, meta, start, out)
	}
	meta.NumPages = content.Units

	category := analysis.Classify(content.Units)
	out.State = StateClassified
	log.Debug("classified", "category", category, "units", content.Units)

	var summary string
	sumErr := p.metrics.Time(metrics.OpSummarize, func() error {
		var err error
		summary, err = p.summarizer.Summarize(content.Text, content.Units)
		return err
	})
	if sumErr != nil {
		log.Warn("summarization failed", "error", sumErr)
		if out.Err == nil {
			out.Err = sumErr
		}
	}
	out.State = StateSummarized

	var keywords []string
	_ = p.metrics.Time(metrics.OpRank, func() error {
		terms, err := analysis.Rank(content.Text)
		for _, t := range terms {
			keywords = append(keywords, t.Term)
		}
		return err
	})
	out.State = StateKeywordsExtracted
	log.Debug("keywords extracted", "count", len(keywords))

	meta.Summary = summary
	meta.Keywords = keywords
	if summary != "" && len(keywords) > 0 {
		meta.Status = models.StatusCompleted
	}

	persisted = true
	return p.persist(ctx, log, meta, start, out)
}

func baseRecord(job *models.Job, size int64) *models.DocumentMetadata {
	return &models.DocumentMetadata{
		DocumentName: models.DocumentName(job.Path),
		Path:         models.NormalizePath(job.Path),
		SizeBytes:    size,
		NumPages:     job.DeclaredPages,
		Status:       models.StatusFailed,
	}
}

// persist writes meta once and finalises the outcome.
func (p *Processor) persist(ctx context.Context, log *slog.Logger, meta *models.DocumentMetadata, start time.Time, out Outcome) Outcome {
	meta.ProcessingTime = time.Since(start).Seconds()
	out.Record = meta

	err := p.metrics.Time(metrics.OpPersist, func() error {
		_, err := p.store.Insert(ctx, meta)
		return err
	})
	switch {
	case errors.Is(err, db.ErrDuplicateDocument):
		log.Info("document already recorded, skipping", "document", meta.DocumentName)
		out.Skipped = true
		out.State = StatePersisted
	case err != nil:
		log.Error("failed to persist record", "error", err)
		out.Err = err
	default:
		out.State = StatePersisted
		log.Info("job persisted",
			"id", meta.ID,
			"status", meta.Status,
			"pages", meta.NumPages,
			"processing_time", meta.ProcessingTime,
		)
	}
	return out
}

func (p *Processor) drop(log *slog.Logger, job *models.Job, err error) Outcome {
	err = fmt.Errorf("%w: %w", ErrFileSystem, err)
	log.Error("cannot inspect file, dropping job", "error", err)
	return Outcome{JobID: job.ID, State: StateDropped, Err: err}
}

// failFromFileSystem records a Failed document built only from what the file
// system reports, after an unexpected error inside the pipeline.
func (p *Processor) failFromFileSystem(ctx context.Context, log *slog.Logger, job *models.Job, start time.Time, cause error) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("failure record could not be written", "error", r)
			out = Outcome{JobID: job.ID, State: StateDropped, Err: cause}
		}
	}()

	info, err := os.Stat(job.Path)
	if err != nil {
		return p.drop(log, job, err)
	}
	out = p.persist(ctx, log, baseRecord(job, info.Size()), start, Outcome{JobID: job.ID, State: StateExtracted})
	if out.Err == nil {
		out.Err = cause
	}
	return out
}
