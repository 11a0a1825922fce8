package usecase

import (
	"context"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"golang.org/x/sync/errgroup"

	"github.com/docman-dev/docman/internal/analyzer"
	"github.com/docman-dev/docman/internal/database"
	"github.com/docman-dev/docman/internal/docman"
	"github.com/docman-dev/docman/internal/filesystem"
	"github.com/docman-dev/docman/internal/llm"
	"github.com/docman-dev/docman/internal/prompt"
	"github.com/docman-dev/docman/internal/repoconfig"
	"github.com/docman-dev/docman/internal/repository"
	"github.com/docman-dev/docman/internal/services"
)

// ErrNoSuggester is returned by Plan when no suggester is configured.
var ErrNoSuggester = errors.New("no suggestion model configured")

var errNoContent = errors.New("document has no stored content")

// PlanResultKind classifies what a plan did with one copy.
type PlanResultKind string

const (
	// PlanCreated means a suggestion was recorded for a copy without one.
	PlanCreated PlanResultKind = "created"
	// PlanUpdated means an outdated suggestion was replaced.
	PlanUpdated PlanResultKind = "updated"
	// PlanReused means the pending suggestion is still valid.
	PlanReused PlanResultKind = "reused"
	// PlanSkipped means no suggestion could be obtained.
	PlanSkipped PlanResultKind = "skipped"
	// PlanExcluded means the copy is organized or ignored.
	PlanExcluded PlanResultKind = "excluded"
)

// PlanFileResult is the outcome for one copy.
type PlanFileResult struct {
	Path       string
	CopyID     int64
	Kind       PlanResultKind
	Suggestion *docman.Suggestion
	// Reason names what invalidated the previous suggestion.
	Reason      string
	StatusReset bool
	// Warning is set when the suggestion does not follow the folder definitions.
	Warning string
	Err     error
}

// PlanReport summarises one plan run.
type PlanReport struct {
	RunID      string
	PromptHash string
	Model      string
	Files      []PlanFileResult
	Created    int
	Updated    int
	Reused     int
	Skipped    int
	Excluded   int
	Duplicates []analyzer.DuplicateGroup
	// Savings is the number of suggestion calls deduplicating would avoid.
	Savings int
}

func (r *PlanReport) tally() {
	for _, f := range r.Files {
		switch f.Kind {
		case PlanCreated:
			r.Created++
		case PlanUpdated:
			r.Updated++
		case PlanReused:
			r.Reused++
		case PlanSkipped:
			r.Skipped++
		case PlanExcluded:
			r.Excluded++
		}
	}
}

// PromptContext holds everything that is the same for every copy of one
// repository during a plan run.
type PromptContext struct {
	System             string
	Instructions       string
	DirectoryStructure string
	Examples           []prompt.Example
	Model              string
	Hash               string

	config *repoconfig.Config
}

// UserPrompt renders the prompt for one file.
func (pc PromptContext) UserPrompt(filePath, content string) string {
	return prompt.User(prompt.Input{
		FilePath:                 filePath,
		Content:                  content,
		DirectoryStructure:       pc.DirectoryStructure,
		OrganizationInstructions: pc.Instructions,
		Examples:                 pc.Examples,
	})
}

// Planner requests and stores organization suggestions.
type Planner struct {
	ops       *services.OperationService
	copies    *services.CopyService
	copyRepo  *database.CopyRepository
	docRepo   *database.DocumentRepository
	opRepo    *database.OperationRepository
	suggester llm.Suggester
	opts      options
}

// NewPlanner creates a Planner. suggester may be nil for callers that only
// render prompts.
func NewPlanner(dbCtx *database.Context, suggester llm.Suggester, opts ...Option) *Planner {
	return &Planner{
		ops:       services.NewOperationService(dbCtx),
		copies:    services.NewCopyService(dbCtx),
		copyRepo:  database.NewCopyRepository(dbCtx),
		docRepo:   database.NewDocumentRepository(dbCtx),
		opRepo:    database.NewOperationRepository(dbCtx),
		suggester: suggester,
		opts:      buildOptions("planner", opts),
	}
}

func (p *Planner) model() string {
	if p.suggester != nil {
		return p.suggester.Model()
	}
	return p.opts.model
}

// PromptContext loads the repository settings and computes the prompt hash.
func (p *Planner) PromptContext(ctx context.Context, root string) (PromptContext, error) {
	cfg, err := p.opts.loadConfig(root)
	if err != nil {
		return PromptContext{}, err
	}
	structure, err := repository.DirectoryStructure(root)
	if err != nil {
		return PromptContext{}, err
	}

	model := p.model()
	system := prompt.System()
	pc := PromptContext{
		System:             system,
		Instructions:       cfg.OrganizationInstructions(),
		DirectoryStructure: structure,
		Model:              model,
		Hash:               prompt.Hash(system, cfg.Instructions, model, cfg.Serialize()),
		config:             cfg,
	}

	accepted, err := p.opRepo.ListAccepted(ctx, root, pc.Hash, prompt.MaxExamples)
	if err != nil {
		return PromptContext{}, errors.Wrap(err, "list accepted operations")
	}
	for _, op := range accepted {
		pc.Examples = append(pc.Examples, prompt.Example{OriginalPath: op.OriginalFilePath, Suggestion: op.Suggestion})
	}
	return pc, nil
}

// PromptPreview is the rendered prompt for one file.
type PromptPreview struct {
	System string
	User   string
	Hash   string
	Model  string
}

// Preview renders the prompts that Plan would send for a file with content.
func (p *Planner) Preview(ctx context.Context, root, filePath, content string) (PromptPreview, error) {
	pc, err := p.PromptContext(ctx, root)
	if err != nil {
		return PromptPreview{}, err
	}
	return PromptPreview{
		System: pc.System,
		User:   pc.UserPrompt(filePath, content),
		Hash:   pc.Hash,
		Model:  pc.Model,
	}, nil
}

// StoredContent returns the content recorded for the file at rel when the
// file is tracked and unchanged since its last scan.
func (p *Planner) StoredContent(ctx context.Context, root, rel string) (string, bool, error) {
	c, err := p.copyRepo.FindByLocation(ctx, root, rel)
	if err != nil {
		return "", false, errors.Wrapf(err, "find copy at %s", rel)
	}
	if c == nil {
		return "", false, nil
	}

	fp, err := filesystem.Stat(filesystem.FromRelative(root, rel))
	if err != nil {
		return "", false, err
	}
	if services.NeedsRehashing(*c, fp.Size, fp.MTime) {
		return "", false, nil
	}

	doc, err := p.docRepo.FindByID(ctx, c.DocumentID)
	if err != nil {
		return "", false, errors.Wrapf(err, "find document of %s", rel)
	}
	if doc == nil || doc.Content == nil {
		return "", false, nil
	}
	return *doc.Content, true, nil
}

type planJob struct {
	index   int
	copy    database.CopyRecord
	content string
	fp      docman.Fingerprint
	stale   bool
}

// Plan makes sure every copy of target has a pending suggestion that
// matches the current content, prompt and model. Organized and ignored
// copies are excluded unless reprocess is set. A failed suggestion counts
// as skipped and writes nothing; storage errors abort the run.
func (p *Planner) Plan(ctx context.Context, target Target, reprocess bool) (PlanReport, error) {
	report := PlanReport{RunID: newRunID()}
	if p.suggester == nil {
		return report, ErrNoSuggester
	}
	logger := p.opts.logger.With(zap.String("run_id", report.RunID))

	orphans, err := cleanupOrphans(ctx, p.copies, target.Root)
	if err != nil {
		return report, err
	}
	for _, c := range orphans {
		logger.Info("removed missing copy", zap.String("path", c.FilePath), zap.Int64("copy_id", c.ID))
	}

	pc, err := p.PromptContext(ctx, target.Root)
	if err != nil {
		return report, err
	}
	report.PromptHash, report.Model = pc.Hash, pc.Model

	all, err := p.copyRepo.ListByRepository(ctx, target.Root)
	if err != nil {
		return report, errors.Wrap(err, "list copies")
	}
	copies := target.filterCopies(all)

	report.Files = make([]PlanFileResult, len(copies))
	var jobs []planJob
	for i, c := range copies {
		res := &report.Files[i]
		res.Path, res.CopyID = c.FilePath, c.ID

		doc, err := p.docRepo.FindByID(ctx, c.DocumentID)
		if err != nil {
			return report, errors.Wrapf(err, "find document of %s", c.FilePath)
		}
		if doc == nil {
			return report, errors.Wrapf(database.ErrNotFound, "document %d of %s", c.DocumentID, c.FilePath)
		}

		fp := docman.Fingerprint{ContentHash: doc.ContentHash, PromptHash: pc.Hash, ModelName: pc.Model}
		out, err := p.ops.Ensure(ctx, c.ID, fp, reprocess)
		if err != nil {
			return report, err
		}
		res.StatusReset = out.StatusReset
		res.Reason = out.Reason

		switch out.Result {
		case docman.EnsureSkipped:
			res.Kind = PlanExcluded
		case docman.EnsureFresh:
			res.Kind = PlanReused
			res.Suggestion = &out.Pending.Suggestion
		case docman.EnsureStale, docman.EnsureMissing:
			if doc.Content == nil || *doc.Content == "" {
				res.Kind, res.Err = PlanSkipped, errNoContent
				logger.Warn("skip copy", zap.String("path", c.FilePath), zap.Error(errNoContent))
				continue
			}
			jobs = append(jobs, planJob{
				index:   i,
				copy:    c,
				content: *doc.Content,
				fp:      fp,
				stale:   out.Result == docman.EnsureStale,
			})
		}
	}

	suggestions := make([]docman.Suggestion, len(jobs))
	errs := make([]error, len(jobs))
	var g errgroup.Group
	g.SetLimit(p.opts.llmConcurrency)
	for i, job := range jobs {
		g.Go(func() error {
			suggestions[i], errs[i] = p.suggester.Suggest(ctx, llm.Request{
				System: pc.System,
				User:   pc.UserPrompt(job.copy.FilePath, job.content),
			})
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
			res.Kind, res.Err = PlanSkipped, errs[i]
			logger.Warn("suggest", zap.String("path", job.copy.FilePath), zap.Error(errs[i]))
			continue
		}

		if _, err := p.ops.Record(ctx, job.copy.ID, suggestions[i], job.fp); err != nil {
			if errors.Is(err, services.ErrCopyNotFound) {
				res.Kind, res.Err = PlanSkipped, err
				logger.Warn("copy vanished before recording", zap.String("path", job.copy.FilePath))
				continue
			}
			return report, err
		}

		suggestion := suggestions[i]
		res.Suggestion = &suggestion
		res.Kind = PlanCreated
		if job.stale {
			res.Kind = PlanUpdated
		}
		if ok, warning := pc.config.CheckAlignment(suggestion.DirectoryPath); !ok {
			res.Warning = warning
		}
		logger.Debug("recorded suggestion",
			zap.String("path", job.copy.FilePath),
			zap.String("target", suggestion.TargetPath()))
	}

	report.Duplicates = analyzer.FindDuplicateGroups(copies)
	report.Savings = analyzer.EstimateSavings(report.Duplicates)
	report.tally()
	return report, nil
}
