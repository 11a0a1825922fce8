package usecase

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/Laisky/errors/v2"
	"github.com/stretchr/testify/require"

	"github.com/docman-dev/docman/internal/contenthash"
	"github.com/docman-dev/docman/internal/database"
	"github.com/docman-dev/docman/internal/docman"
	"github.com/docman-dev/docman/internal/filesystem"
	"github.com/docman-dev/docman/internal/llm"
	"github.com/docman-dev/docman/internal/repository"
)

type fakeExtractor struct {
	fail map[string]bool
}

func (f fakeExtractor) Extract(_ context.Context, path string) (string, error) {
	if f.fail[filepath.Base(path)] {
		return "", errors.New("corrupt file")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

type fakeSuggester struct {
	mu          sync.Mutex
	calls       int
	suggestions map[string]docman.Suggestion
}

func newFakeSuggester(suggestions map[string]docman.Suggestion) *fakeSuggester {
	return &fakeSuggester{suggestions: suggestions}
}

func (f *fakeSuggester) Model() string { return "fake-model" }

func (f *fakeSuggester) Suggest(_ context.Context, req llm.Request) (docman.Suggestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	path := pathFromPrompt(req.User)
	s, ok := f.suggestions[path]
	if !ok {
		return docman.Suggestion{}, errors.Errorf("model unavailable for %s", path)
	}
	return s, nil
}

func (f *fakeSuggester) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func pathFromPrompt(user string) string {
	for _, line := range strings.Split(user, "\n") {
		if rest, ok := strings.CutPrefix(line, "Path: "); ok {
			return rest
		}
	}
	return ""
}

type fixture struct {
	root  string
	dbCtx *database.Context
}

func setupFixture(t *testing.T) fixture {
	t.Helper()
	root := t.TempDir()
	_, err := repository.Init(root)
	require.NoError(t, err)

	dbCtx, err := database.CreateDatabase(filepath.Join(t.TempDir(), "docman.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, database.CloseDatabase(dbCtx))
	})
	return fixture{root: root, dbCtx: dbCtx}
}

func (f fixture) write(t *testing.T, rel, content string) {
	t.Helper()
	path := filepath.Join(f.root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func (f fixture) scan(t *testing.T, extractor fakeExtractor) ScanReport {
	t.Helper()
	report, err := NewScanner(f.dbCtx, extractor).Scan(context.Background(), WholeRepository(f.root), false)
	require.NoError(t, err)
	return report
}

func (f fixture) plan(t *testing.T, suggester llm.Suggester, reprocess bool) PlanReport {
	t.Helper()
	report, err := NewPlanner(f.dbCtx, suggester).Plan(context.Background(), WholeRepository(f.root), reprocess)
	require.NoError(t, err)
	return report
}

func (f fixture) copyAt(t *testing.T, rel string) *database.CopyRecord {
	t.Helper()
	c, err := database.NewCopyRepository(f.dbCtx).FindByLocation(context.Background(), f.root, rel)
	require.NoError(t, err)
	return c
}

func (f fixture) pending(t *testing.T) []database.PendingOperation {
	t.Helper()
	ops, err := database.NewOperationRepository(f.dbCtx).ListPendingByRepository(context.Background(), f.root)
	require.NoError(t, err)
	return ops
}

var invoiceSuggestion = docman.Suggestion{
	DirectoryPath: "finance/invoices/2024",
	Filename:      "acme-invoice.pdf",
	Reason:        "Invoice dated 2024",
}

const invoiceTarget = "finance/invoices/2024/acme-invoice.pdf"

func TestLifecycleScenario(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	f.write(t, "a.pdf", "Invoice 2024")

	// scan creates one document and one unorganized copy
	scan := f.scan(t, fakeExtractor{})
	require.Equal(t, 1, scan.New)
	require.Equal(t, ScanNewDocument, scan.Files[0].Kind)

	c := f.copyAt(t, "a.pdf")
	require.NotNil(t, c)
	require.Equal(t, docman.StatusUnorganized, c.Status)
	doc, err := database.NewDocumentRepository(f.dbCtx).FindByID(ctx, c.DocumentID)
	require.NoError(t, err)
	require.Equal(t, contenthash.Compute("Invoice 2024"), doc.ContentHash)

	// plan records one pending operation with the current fingerprints
	suggester := newFakeSuggester(map[string]docman.Suggestion{
		"a.pdf":       invoiceSuggestion,
		invoiceTarget: invoiceSuggestion,
	})
	plan := f.plan(t, suggester, false)
	require.Equal(t, 1, plan.Created)
	require.Equal(t, 1, suggester.Calls())

	pending := f.pending(t)
	require.Len(t, pending, 1)
	op := pending[0].Operation
	require.Equal(t, plan.PromptHash, op.Fingerprint.PromptHash)
	require.Equal(t, doc.ContentHash, op.Fingerprint.ContentHash)
	require.Equal(t, "fake-model", op.Fingerprint.ModelName)

	// apply moves the file and organizes the copy
	results, err := NewReviewer(f.dbCtx).ApplyAll(ctx, WholeRepository(f.root), ApplyOptions{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, OutcomeApplied, results[0].Outcome)
	require.Equal(t, invoiceTarget, results[0].Target)

	moved, err := database.NewCopyRepository(f.dbCtx).FindByID(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, invoiceTarget, moved.FilePath)
	require.Equal(t, docman.StatusOrganized, moved.Status)
	require.NotNil(t, moved.AcceptedOperationID)
	require.Equal(t, op.ID, *moved.AcceptedOperationID)
	require.FileExists(t, filepath.Join(f.root, "finance", "invoices", "2024", "acme-invoice.pdf"))
	require.NoFileExists(t, filepath.Join(f.root, "a.pdf"))

	accepted, err := database.NewOperationRepository(f.dbCtx).FindByID(ctx, op.ID)
	require.NoError(t, err)
	require.Equal(t, docman.OperationAccepted, accepted.Status)

	// organized copies are excluded without reprocess
	plan = f.plan(t, suggester, false)
	require.Equal(t, 1, plan.Excluded)
	require.Zero(t, plan.Skipped)
	require.Equal(t, 1, suggester.Calls())

	// changed instructions invalidate the accepted suggestion on reprocess
	require.NoError(t, os.WriteFile(repository.InstructionsPath(f.root), []byte("Group invoices by year."), 0o600))
	plan = f.plan(t, suggester, true)
	require.Equal(t, 1, plan.Updated)
	require.True(t, plan.Files[0].StatusReset)
	require.Equal(t, "prompt changed", plan.Files[0].Reason)
	require.Equal(t, 2, suggester.Calls())

	c = f.copyAt(t, invoiceTarget)
	require.Equal(t, docman.StatusUnorganized, c.Status)
	pending = f.pending(t)
	require.Len(t, pending, 1)
	require.Equal(t, plan.PromptHash, pending[0].Operation.Fingerprint.PromptHash)
	require.NotEqual(t, op.Fingerprint.PromptHash, plan.PromptHash)
}

func TestScanKeepsCopiesOutsideDiscovery(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	f.write(t, "a.pdf", "Spec draft")
	f.write(t, "b.pdf", "Acme invoice")
	f.write(t, "gone.pdf", "Old notes")
	f.scan(t, fakeExtractor{})

	suggester := newFakeSuggester(map[string]docman.Suggestion{
		"a.pdf":    {DirectoryPath: "projects/build", Filename: "spec.pdf"},
		"b.pdf":    {DirectoryPath: "finance", Filename: "acme-invoice"},
		"gone.pdf": {DirectoryPath: "notes", Filename: "old.pdf"},
	})
	f.plan(t, suggester, false)
	require.NoError(t, os.Remove(filepath.Join(f.root, "gone.pdf")))

	results, err := NewReviewer(f.dbCtx).ApplyAll(ctx, WholeRepository(f.root), ApplyOptions{})
	require.NoError(t, err)
	applied := 0
	for _, res := range results {
		if res.Outcome == OutcomeApplied {
			applied++
		}
	}
	require.Equal(t, 2, applied)
	require.FileExists(t, filepath.Join(f.root, "projects", "build", "spec.pdf"))
	require.FileExists(t, filepath.Join(f.root, "finance", "acme-invoice"))

	// discovery skips build/ and extensionless names, but both files are on disk
	scan := f.scan(t, fakeExtractor{})
	require.Len(t, scan.Orphans, 1)
	require.Equal(t, "gone.pdf", scan.Orphans[0].FilePath)

	for _, rel := range []string{"projects/build/spec.pdf", "finance/acme-invoice"} {
		c := f.copyAt(t, rel)
		require.NotNil(t, c, rel)
		require.Equal(t, docman.StatusOrganized, c.Status)
		require.NotNil(t, c.AcceptedOperationID)
	}
}

func TestDuplicateContentScenario(t *testing.T) {
	f := setupFixture(t)
	f.write(t, "b.pdf", "Same text")
	f.write(t, "c.pdf", "Same text")

	scan := f.scan(t, fakeExtractor{})
	require.Equal(t, 1, scan.New)
	require.Equal(t, 1, scan.Duplicates)
	require.Equal(t, ScanDuplicate, scan.Files[1].Kind)

	count, err := database.NewDocumentRepository(f.dbCtx).Count(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	plan := f.plan(t, newFakeSuggester(nil), false)
	require.Len(t, plan.Duplicates, 1)
	require.Len(t, plan.Duplicates[0].Copies, 2)
	require.Equal(t, 1, plan.Savings)
}

func TestScanIsIdempotent(t *testing.T) {
	f := setupFixture(t)
	f.write(t, "notes/a.txt", "alpha")
	f.write(t, "notes/b.txt", "beta")

	first := f.scan(t, fakeExtractor{})
	require.Equal(t, 2, first.New)

	second := f.scan(t, fakeExtractor{})
	require.Zero(t, second.New)
	require.Equal(t, 2, second.Unchanged)

	copies, err := database.NewCopyRepository(f.dbCtx).ListByRepository(context.Background(), f.root)
	require.NoError(t, err)
	require.Len(t, copies, 2)
}

func TestScanDetectsContentChange(t *testing.T) {
	f := setupFixture(t)
	f.write(t, "a.txt", "first version")
	f.scan(t, fakeExtractor{})

	f.write(t, "a.txt", "second, longer version")
	report := f.scan(t, fakeExtractor{})
	require.Equal(t, 1, report.Updated)
	require.Equal(t, ScanContentUpdated, report.Files[0].Kind)
}

func TestExtractionAndSuggestionFailuresAreCountedApart(t *testing.T) {
	f := setupFixture(t)
	f.write(t, "broken.pdf", "unreadable")
	f.write(t, "good.txt", "readable")
	f.write(t, "other.txt", "also readable")

	scan := f.scan(t, fakeExtractor{fail: map[string]bool{"broken.pdf": true}})
	require.Equal(t, 1, scan.Failed)
	require.Equal(t, 2, scan.New)
	require.Equal(t, ScanExtractionFailed, scan.Files[0].Kind)

	suggester := newFakeSuggester(map[string]docman.Suggestion{
		"good.txt": {DirectoryPath: "notes", Filename: "good.txt"},
	})
	plan := f.plan(t, suggester, false)
	require.Equal(t, 1, plan.Created)
	require.Equal(t, 1, plan.Skipped)
	require.Len(t, f.pending(t), 1)
}

func TestPlanTwiceMakesNoNewCalls(t *testing.T) {
	f := setupFixture(t)
	f.write(t, "a.txt", "alpha")
	f.scan(t, fakeExtractor{})

	suggester := newFakeSuggester(map[string]docman.Suggestion{
		"a.txt": {DirectoryPath: "letters", Filename: "a.txt"},
	})
	f.plan(t, suggester, false)
	second := f.plan(t, suggester, false)
	require.Equal(t, 1, second.Reused)
	require.Equal(t, 1, suggester.Calls())
}

func TestScanRemovesMissingFiles(t *testing.T) {
	f := setupFixture(t)
	f.write(t, "a.txt", "alpha")
	f.write(t, "b.txt", "beta")
	f.scan(t, fakeExtractor{})
	f.plan(t, newFakeSuggester(map[string]docman.Suggestion{
		"a.txt": {DirectoryPath: "x", Filename: "a.txt"},
	}), false)
	require.Len(t, f.pending(t), 1)

	require.NoError(t, os.Remove(filepath.Join(f.root, "a.txt")))
	report := f.scan(t, fakeExtractor{})
	require.Len(t, report.Orphans, 1)
	require.Equal(t, "a.txt", report.Orphans[0].FilePath)
	require.Nil(t, f.copyAt(t, "a.txt"))
	require.Empty(t, f.pending(t))
}

func TestApplyAllRejectsInvalidTargetsAndReportsConflicts(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	f.write(t, "x.txt", "x content")
	f.write(t, "y.txt", "y content")
	f.write(t, "z.txt", "z content")
	f.scan(t, fakeExtractor{})
	f.plan(t, newFakeSuggester(map[string]docman.Suggestion{
		"x.txt": {DirectoryPath: "docs", Filename: "same.txt"},
		"y.txt": {DirectoryPath: "docs", Filename: "same.txt"},
		"z.txt": {DirectoryPath: "../outside", Filename: "z.txt"},
	}), false)

	reviewer := NewReviewer(f.dbCtx)
	pending, err := reviewer.Pending(ctx, WholeRepository(f.root))
	require.NoError(t, err)
	require.Len(t, pending.Conflicts, 1)
	require.True(t, pending.Items[0].Conflict)
	require.True(t, pending.Items[1].Conflict)
	require.False(t, pending.Items[2].Conflict)

	results, err := reviewer.ApplyAll(ctx, WholeRepository(f.root), ApplyOptions{})
	require.NoError(t, err)
	require.Len(t, results, 3)
	require.Equal(t, OutcomeApplied, results[0].Outcome)
	require.Equal(t, OutcomeConflict, results[1].Outcome)
	require.Equal(t, OutcomeInvalid, results[2].Outcome)
	require.True(t, results[2].Rejected)

	left := f.pending(t)
	require.Len(t, left, 1)
	require.Equal(t, "y.txt", left[0].FilePath)
	require.FileExists(t, filepath.Join(f.root, "y.txt"))
}

func TestApplyAllRenamePolicy(t *testing.T) {
	f := setupFixture(t)
	f.write(t, "x.txt", "x content")
	f.write(t, "y.txt", "y content")
	f.scan(t, fakeExtractor{})
	f.plan(t, newFakeSuggester(map[string]docman.Suggestion{
		"x.txt": {DirectoryPath: "docs", Filename: "same.txt"},
		"y.txt": {DirectoryPath: "docs", Filename: "same.txt"},
	}), false)

	results, err := NewReviewer(f.dbCtx).ApplyAll(context.Background(), WholeRepository(f.root), ApplyOptions{Policy: filesystem.Rename})
	require.NoError(t, err)
	require.Equal(t, "docs/same.txt", results[0].Target)
	require.Equal(t, "docs/same_1.txt", results[1].Target)
	require.NotNil(t, f.copyAt(t, "docs/same_1.txt"))
}

func TestApplyDryRunChangesNothing(t *testing.T) {
	f := setupFixture(t)
	f.write(t, "a.txt", "alpha")
	f.scan(t, fakeExtractor{})
	f.plan(t, newFakeSuggester(map[string]docman.Suggestion{
		"a.txt": {DirectoryPath: "letters", Filename: "a.txt"},
	}), false)

	results, err := NewReviewer(f.dbCtx).ApplyAll(context.Background(), WholeRepository(f.root), ApplyOptions{DryRun: true})
	require.NoError(t, err)
	require.Equal(t, OutcomePlanned, results[0].Outcome)
	require.FileExists(t, filepath.Join(f.root, "a.txt"))
	require.Len(t, f.pending(t), 1)
}

func TestAcceptInPlaceStillOrganizes(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	f.write(t, "letters/a.txt", "alpha")
	f.scan(t, fakeExtractor{})
	f.plan(t, newFakeSuggester(map[string]docman.Suggestion{
		"letters/a.txt": {DirectoryPath: "letters", Filename: "a.txt"},
	}), false)

	op := f.pending(t)[0].Operation
	res, err := NewReviewer(f.dbCtx).Accept(ctx, f.root, op.ID, ApplyOptions{})
	require.NoError(t, err)
	require.Equal(t, OutcomeInPlace, res.Outcome)
	require.Equal(t, docman.StatusOrganized, f.copyAt(t, "letters/a.txt").Status)

	res, err = NewReviewer(f.dbCtx).Accept(ctx, f.root, 9999, ApplyOptions{})
	require.NoError(t, err)
	require.Equal(t, OutcomeMissing, res.Outcome)
}

func TestRejectKeepsStatus(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	f.write(t, "a.txt", "alpha")
	f.scan(t, fakeExtractor{})
	suggester := newFakeSuggester(map[string]docman.Suggestion{
		"a.txt": {DirectoryPath: "letters", Filename: "a.txt"},
	})
	f.plan(t, suggester, false)

	rejected, err := NewReviewer(f.dbCtx).RejectAll(ctx, WholeRepository(f.root), false)
	require.NoError(t, err)
	require.Len(t, rejected, 1)
	require.Empty(t, f.pending(t))
	require.Equal(t, docman.StatusUnorganized, f.copyAt(t, "a.txt").Status)

	plan := f.plan(t, suggester, false)
	require.Equal(t, 1, plan.Created)
}

func TestIgnoreThenReprocessWithChangedContent(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	f.write(t, "a.txt", "alpha")
	f.scan(t, fakeExtractor{})
	suggester := newFakeSuggester(map[string]docman.Suggestion{
		"a.txt": {DirectoryPath: "letters", Filename: "a.txt"},
	})
	f.plan(t, suggester, false)

	target, err := NewTarget(f.root, filepath.Join(f.root, "a.txt"), false)
	require.NoError(t, err)
	ignored, err := NewMarker(f.dbCtx).Ignore(ctx, target)
	require.NoError(t, err)
	require.Len(t, ignored, 1)
	require.Empty(t, f.pending(t))

	f.write(t, "a.txt", "alpha, revised and longer")
	f.scan(t, fakeExtractor{})
	plan := f.plan(t, suggester, true)
	require.True(t, plan.Files[0].StatusReset)
	require.Equal(t, docman.StatusUnorganized, f.copyAt(t, "a.txt").Status)
	require.Len(t, f.pending(t), 1)
}

func TestUnmarkOnlyTouchesExcludedCopies(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	f.write(t, "a.txt", "alpha")
	f.write(t, "b.txt", "beta")
	f.scan(t, fakeExtractor{})

	marker := NewMarker(f.dbCtx)
	target, err := NewTarget(f.root, filepath.Join(f.root, "a.txt"), false)
	require.NoError(t, err)
	_, err = marker.Ignore(ctx, target)
	require.NoError(t, err)

	unmarked, err := marker.Unmark(ctx, WholeRepository(f.root))
	require.NoError(t, err)
	require.Len(t, unmarked, 1)
	require.Equal(t, "a.txt", unmarked[0].FilePath)
	require.Equal(t, docman.StatusUnorganized, f.copyAt(t, "a.txt").Status)
}

func TestDedupeKeepsOldestCopy(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	f.write(t, "b.txt", "same")
	f.write(t, "c.txt", "same")
	f.write(t, "d.txt", "unique")
	f.scan(t, fakeExtractor{})

	deduper := NewDeduper(f.dbCtx)
	preview, err := deduper.Dedupe(ctx, WholeRepository(f.root), DedupeOptions{DryRun: true})
	require.NoError(t, err)
	require.Len(t, preview, 1)
	require.Len(t, preview[0].Deleted, 1)
	require.FileExists(t, filepath.Join(f.root, "c.txt"))

	results, err := deduper.Dedupe(ctx, WholeRepository(f.root), DedupeOptions{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, preview[0].Deleted[0].ID, results[0].Deleted[0].ID)
	require.Equal(t, "c.txt", results[0].Deleted[0].FilePath)
	require.NoFileExists(t, filepath.Join(f.root, "c.txt"))
	require.Nil(t, f.copyAt(t, "c.txt"))
	require.NotNil(t, f.copyAt(t, "b.txt"))

	groups, err := deduper.Groups(ctx, WholeRepository(f.root))
	require.NoError(t, err)
	require.Empty(t, groups)
}

func TestStatusReport(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	f.write(t, "a.txt", "alpha")
	f.write(t, "sub/b.txt", "alpha")
	f.scan(t, fakeExtractor{})
	f.plan(t, newFakeSuggester(map[string]docman.Suggestion{
		"a.txt": {DirectoryPath: "letters", Filename: "a.txt"},
	}), false)

	report, err := NewStatus(f.dbCtx).Report(ctx, WholeRepository(f.root))
	require.NoError(t, err)
	require.Equal(t, 2, report.Copies[docman.StatusUnorganized])
	require.Equal(t, 1, report.Operations[docman.OperationPending])
	require.EqualValues(t, 1, report.Documents)
	require.Len(t, report.Pending.Items, 1)
	require.Len(t, report.Duplicates, 1)
	require.Equal(t, 1, report.Savings)

	sub, err := NewTarget(f.root, filepath.Join(f.root, "sub"), true)
	require.NoError(t, err)
	report, err = NewStatus(f.dbCtx).Report(ctx, sub)
	require.NoError(t, err)
	require.Equal(t, 1, report.Copies[docman.StatusUnorganized])
	require.Empty(t, report.Pending.Items)
	require.Empty(t, report.Duplicates)
}

func TestPreviewRendersPrompt(t *testing.T) {
	f := setupFixture(t)
	f.write(t, "finance/keep.txt", "x")

	preview, err := NewPlanner(f.dbCtx, nil, WithModelName("preview-model")).
		Preview(context.Background(), f.root, "inbox/a.pdf", "Invoice 2024")
	require.NoError(t, err)
	require.Equal(t, "preview-model", preview.Model)
	require.Contains(t, preview.User, "Path: inbox/a.pdf")
	require.Contains(t, preview.User, "- /finance")
	require.Len(t, preview.Hash, 64)

	_, err = NewPlanner(f.dbCtx, nil).Plan(context.Background(), WholeRepository(f.root), false)
	require.ErrorIs(t, err, ErrNoSuggester)
}

func TestStoredContentFollowsTheFile(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	planner := NewPlanner(f.dbCtx, nil)

	f.write(t, "a.txt", "first")
	content, ok, err := planner.StoredContent(ctx, f.root, "a.txt")
	require.NoError(t, err)
	require.False(t, ok)
	require.Empty(t, content)

	f.scan(t, fakeExtractor{})
	content, ok, err = planner.StoredContent(ctx, f.root, "a.txt")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "first", content)

	f.write(t, "a.txt", "second version")
	_, ok, err = planner.StoredContent(ctx, f.root, "a.txt")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestTargetContains(t *testing.T) {
	root := t.TempDir()
	cases := []struct {
		start     string
		recursive bool
		path      string
		want      bool
	}{
		{"", true, "a/b/c.txt", true},
		{"", false, "c.txt", true},
		{"", false, "a/c.txt", false},
		{"a", true, "a/b/c.txt", true},
		{"a", false, "a/c.txt", true},
		{"a", false, "a/b/c.txt", false},
		{"a", true, "ab/c.txt", false},
		{"a/c.txt", false, "a/c.txt", true},
	}
	for _, tc := range cases {
		start := root
		if tc.start != "" {
			start = filepath.Join(root, filepath.FromSlash(tc.start))
		}
		target, err := NewTarget(root, start, tc.recursive)
		require.NoError(t, err)
		require.Equal(t, tc.want, target.Contains(tc.path), "start=%q recursive=%v path=%q", tc.start, tc.recursive, tc.path)
	}
}
