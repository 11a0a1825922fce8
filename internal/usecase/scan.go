package usecase

import (
	"context"

	"github.com/Laisky/zap"
	"golang.org/x/sync/errgroup"

	"github.com/docman-dev/docman/internal/database"
	"github.com/docman-dev/docman/internal/extract"
	"github.com/docman-dev/docman/internal/filesystem"
	"github.com/docman-dev/docman/internal/repository"
	"github.com/docman-dev/docman/internal/services"
)

// ScanResultKind classifies what a scan did with one file.
type ScanResultKind string

const (
	ScanNewDocument      ScanResultKind = "NEW_DOCUMENT"
	ScanContentUpdated   ScanResultKind = "CONTENT_UPDATED"
	ScanDuplicate        ScanResultKind = "DUPLICATE_DOCUMENT"
	ScanReusedCopy       ScanResultKind = "REUSED_COPY"
	ScanExtractionFailed ScanResultKind = "EXTRACTION_FAILED"
	ScanHashFailed       ScanResultKind = "HASH_FAILED"
)

// Failed reports whether the file could not be tracked.
func (k ScanResultKind) Failed() bool {
	return k == ScanExtractionFailed || k == ScanHashFailed
}

// ScanFileResult is the outcome for one discovered file.
type ScanFileResult struct {
	Path string
	Kind ScanResultKind
	Err  error
}

// ScanReport summarises one scan run.
type ScanReport struct {
	RunID      string
	Files      []ScanFileResult
	Orphans    []database.CopyRecord
	New        int
	Duplicates int
	Updated    int
	Unchanged  int
	Failed     int
}

func (r *ScanReport) tally() {
	for _, f := range r.Files {
		switch f.Kind {
		case ScanNewDocument:
			r.New++
		case ScanDuplicate:
			r.Duplicates++
		case ScanContentUpdated:
			r.Updated++
		case ScanReusedCopy:
			r.Unchanged++
		case ScanExtractionFailed, ScanHashFailed:
			r.Failed++
		}
	}
}

// Scanner tracks the documents found on disk.
type Scanner struct {
	copies    *services.CopyService
	copyRepo  *database.CopyRepository
	extractor extract.Extractor
	opts      options
}

// NewScanner creates a Scanner that reads file content with extractor.
func NewScanner(dbCtx *database.Context, extractor extract.Extractor, opts ...Option) *Scanner {
	return &Scanner{
		copies:    services.NewCopyService(dbCtx),
		copyRepo:  database.NewCopyRepository(dbCtx),
		extractor: extractor,
		opts:      buildOptions("scanner", opts),
	}
}

type scanJob struct {
	index int
	rel   string
	fp    filesystem.Fingerprint
}

// Scan discovers the files of target and records their documents and
// copies. Files whose size and mtime match the stored copy are not
// extracted again unless rescan is set. A file that cannot be read is
// counted as failed; storage errors abort the run.
func (s *Scanner) Scan(ctx context.Context, target Target, rescan bool) (ScanReport, error) {
	report := ScanReport{RunID: newRunID()}
	logger := s.opts.logger.With(zap.String("run_id", report.RunID))

	orphans, err := cleanupOrphans(ctx, s.copies, target.Root)
	if err != nil {
		return report, err
	}
	report.Orphans = orphans
	for _, c := range orphans {
		logger.Info("removed missing copy", zap.String("path", c.FilePath), zap.Int64("copy_id", c.ID))
	}

	files, err := repository.Discover(target.Root, target.Start, target.Recursive)
	if err != nil {
		return report, err
	}
	existing, err := s.copyRepo.ListByRepository(ctx, target.Root)
	if err != nil {
		return report, err
	}
	byPath := make(map[string]database.CopyRecord, len(existing))
	for _, c := range existing {
		byPath[c.FilePath] = c
	}

	now := s.opts.now()
	report.Files = make([]ScanFileResult, len(files))
	var jobs []scanJob
	for i, rel := range files {
		res := &report.Files[i]
		res.Path = rel

		fp, err := filesystem.Stat(filesystem.FromRelative(target.Root, rel))
		if err != nil {
			res.Kind, res.Err = ScanHashFailed, err
			logger.Warn("stat file", zap.String("path", rel), zap.Error(err))
			continue
		}
		if c, ok := byPath[rel]; ok && !rescan && !services.NeedsRehashing(c, fp.Size, fp.MTime) {
			if err := s.copies.TouchSeen(ctx, c.ID, now); err != nil {
				return report, err
			}
			res.Kind = ScanReusedCopy
			continue
		}
		jobs = append(jobs, scanJob{index: i, rel: rel, fp: fp})
	}

	contents := make([]string, len(jobs))
	errs := make([]error, len(jobs))
	var g errgroup.Group
	g.SetLimit(s.opts.workers)
	for i, job := range jobs {
		g.Go(func() error {
			contents[i], errs[i] = s.extractor.Extract(ctx, filesystem.FromRelative(target.Root, job.rel))
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return report, err
	}

	for i, job := range jobs {
		res := &report.Files[job.index]
		if errs[i] != nil {
			res.Kind, res.Err = ScanExtractionFailed, errs[i]
			logger.Warn("extract file", zap.String("path", job.rel), zap.Error(errs[i]))
			continue
		}

		tracked, err := s.copies.Track(ctx, services.TrackInput{
			RepositoryPath: target.Root,
			FilePath:       job.rel,
			Content:        contents[i],
			Size:           job.fp.Size,
			MTime:          job.fp.MTime,
			SeenAt:         now,
		})
		if err != nil {
			return report, err
		}
		res.Kind = classifyTrack(tracked)
		logger.Debug("tracked file", zap.String("path", job.rel), zap.String("kind", string(res.Kind)))
	}

	report.tally()
	return report, nil
}

func classifyTrack(r services.TrackResult) ScanResultKind {
	switch {
	case r.CopyCreated && r.DocumentCreated:
		return ScanNewDocument
	case r.CopyCreated:
		return ScanDuplicate
	case r.ContentChanged():
		return ScanContentUpdated
	default:
		return ScanReusedCopy
	}
}
