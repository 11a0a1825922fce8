package usecase

import (
	"context"

	"github.com/Laisky/errors/v2"

	"github.com/docman-dev/docman/internal/analyzer"
	"github.com/docman-dev/docman/internal/database"
	"github.com/docman-dev/docman/internal/docman"
)

// StatusReport describes the state of a target. Documents counts every
// stored document, across repositories.
type StatusReport struct {
	Copies     map[docman.OrganizationStatus]int
	Operations map[docman.OperationStatus]int
	Documents  int64
	Pending    PendingReport
	Duplicates []analyzer.DuplicateGroup
	Savings    int
}

// Status reports copy counts, pending operations and duplicates.
type Status struct {
	reviewer *Reviewer
	deduper  *Deduper
	copyRepo *database.CopyRepository
	docRepo  *database.DocumentRepository
	opRepo   *database.OperationRepository
}

// NewStatus creates a Status use case.
func NewStatus(dbCtx *database.Context, opts ...Option) *Status {
	return &Status{
		reviewer: NewReviewer(dbCtx, opts...),
		deduper:  NewDeduper(dbCtx, opts...),
		copyRepo: database.NewCopyRepository(dbCtx),
		docRepo:  database.NewDocumentRepository(dbCtx),
		opRepo:   database.NewOperationRepository(dbCtx),
	}
}

// Report builds the status of target.
func (s *Status) Report(ctx context.Context, target Target) (StatusReport, error) {
	report := StatusReport{
		Copies:     make(map[docman.OrganizationStatus]int, len(docman.OrganizationStatuses)),
		Operations: make(map[docman.OperationStatus]int, len(docman.OperationStatuses)),
	}

	if err := s.countCopies(ctx, target, report.Copies); err != nil {
		return report, err
	}

	opCounts, err := s.opRepo.CountByStatus(ctx, target.Root)
	if err != nil {
		return report, errors.Wrap(err, "count operations")
	}
	for _, row := range opCounts {
		status, err := docman.ParseOperationStatus(row.Status)
		if err != nil {
			return report, err
		}
		report.Operations[status] = int(row.Count)
	}

	if report.Documents, err = s.docRepo.Count(ctx); err != nil {
		return report, errors.Wrap(err, "count documents")
	}

	if report.Pending, err = s.reviewer.Pending(ctx, target); err != nil {
		return report, err
	}
	if report.Duplicates, err = s.deduper.Groups(ctx, target); err != nil {
		return report, err
	}
	report.Savings = analyzer.EstimateSavings(report.Duplicates)
	return report, nil
}

func (s *Status) countCopies(ctx context.Context, target Target, counts map[docman.OrganizationStatus]int) error {
	if target.Whole() {
		rows, err := s.copyRepo.CountByStatus(ctx, target.Root)
		if err != nil {
			return errors.Wrap(err, "count copies")
		}
		for _, row := range rows {
			status, err := docman.ParseOrganizationStatus(row.Status)
			if err != nil {
				return err
			}
			counts[status] = int(row.Count)
		}
		return nil
	}

	all, err := s.copyRepo.ListByRepository(ctx, target.Root)
	if err != nil {
		return errors.Wrap(err, "list copies")
	}
	for _, c := range target.filterCopies(all) {
		counts[c.Status]++
	}
	return nil
}
