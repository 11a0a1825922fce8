package database

import (
	"context"
	"testing"

	"github.com/docman-dev/docman/internal/docman"
)

func TestDocumentRepositoryLookups(t *testing.T) {
	ctx := context.Background()
	dbCtx := setupTestDB(t)
	repo := NewDocumentRepository(dbCtx)

	id := insertDocument(t, dbCtx.DB, "hash-a")

	byHash, err := repo.FindByContentHash(ctx, "hash-a")
	if err != nil {
		t.Fatalf("FindByContentHash returned error: %v", err)
	}
	if byHash == nil || byHash.ID != id {
		t.Fatalf("expected document %d, got %#v", id, byHash)
	}
	if byHash.Content == nil || *byHash.Content != "content hash-a" {
		t.Fatalf("unexpected content: %#v", byHash.Content)
	}

	missing, err := repo.FindByContentHash(ctx, "nope")
	if err != nil {
		t.Fatalf("FindByContentHash missing returned error: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown hash, got %#v", missing)
	}

	count, err := repo.Count(ctx)
	if err != nil || count != 1 {
		t.Fatalf("expected 1 document, got %d (err=%v)", count, err)
	}
}

func TestCopyRepositoryListsInPathOrder(t *testing.T) {
	ctx := context.Background()
	dbCtx := setupTestDB(t)
	repo := NewCopyRepository(dbCtx)

	docID := insertDocument(t, dbCtx.DB, "hash-a")
	insertCopy(t, dbCtx.DB, docID, "/repo", "z.pdf")
	insertCopy(t, dbCtx.DB, docID, "/repo", "a.pdf")
	insertCopy(t, dbCtx.DB, docID, "/other", "m.pdf")

	copies, err := repo.ListByRepository(ctx, "/repo")
	if err != nil {
		t.Fatalf("ListByRepository returned error: %v", err)
	}
	if len(copies) != 2 || copies[0].FilePath != "a.pdf" || copies[1].FilePath != "z.pdf" {
		t.Fatalf("unexpected copies: %#v", copies)
	}
	if copies[0].Status != docman.StatusUnorganized {
		t.Fatalf("expected default status unorganized, got %q", copies[0].Status)
	}
	if copies[0].StoredSize != 10 || copies[0].StoredMTime != 100 {
		t.Fatalf("unexpected fingerprint: size=%d mtime=%d", copies[0].StoredSize, copies[0].StoredMTime)
	}

	byDoc, err := repo.ListByDocument(ctx, docID)
	if err != nil || len(byDoc) != 3 {
		t.Fatalf("expected 3 copies for document, got %d (err=%v)", len(byDoc), err)
	}

	loc, err := repo.FindByLocation(ctx, "/other", "m.pdf")
	if err != nil || loc == nil {
		t.Fatalf("FindByLocation failed: %v", err)
	}

	counts, err := repo.CountByStatus(ctx, "/repo")
	if err != nil {
		t.Fatalf("CountByStatus returned error: %v", err)
	}
	if len(counts) != 1 || counts[0].Status != "unorganized" || counts[0].Count != 2 {
		t.Fatalf("unexpected counts: %#v", counts)
	}
}

func TestOperationRepositoryPendingAndExamples(t *testing.T) {
	ctx := context.Background()
	dbCtx := setupTestDB(t)
	repo := NewOperationRepository(dbCtx)

	docID := insertDocument(t, dbCtx.DB, "hash-a")
	copyA := insertCopy(t, dbCtx.DB, docID, "/repo", "b.pdf")
	copyB := insertCopy(t, dbCtx.DB, docID, "/repo", "a.pdf")

	pendingID := insertOperation(t, dbCtx.DB, copyA, "pending")
	insertOperation(t, dbCtx.DB, copyB, "pending")
	acceptedID := insertOperation(t, dbCtx.DB, copyA, "accepted")

	pending, err := repo.ListPendingByRepository(ctx, "/repo")
	if err != nil {
		t.Fatalf("ListPendingByRepository returned error: %v", err)
	}
	if len(pending) != 2 || pending[0].FilePath != "a.pdf" || pending[1].Operation.ID != pendingID {
		t.Fatalf("unexpected pending list: %#v", pending)
	}

	byCopy, err := repo.FindPendingByCopy(ctx, copyA)
	if err != nil || byCopy == nil || byCopy.ID != pendingID {
		t.Fatalf("FindPendingByCopy returned %#v (err=%v)", byCopy, err)
	}
	if byCopy.Fingerprint.PromptHash != "prompt" || byCopy.Fingerprint.ModelName != "model" {
		t.Fatalf("unexpected fingerprint: %#v", byCopy.Fingerprint)
	}

	examples, err := repo.ListAccepted(ctx, "/repo", "other-prompt", 3)
	if err != nil {
		t.Fatalf("ListAccepted returned error: %v", err)
	}
	if len(examples) != 1 || examples[0].ID != acceptedID {
		t.Fatalf("expected fallback to recent accepted operation, got %#v", examples)
	}

	counts, err := repo.CountByStatus(ctx, "/repo")
	if err != nil {
		t.Fatalf("CountByStatus returned error: %v", err)
	}
	got := map[string]int64{}
	for _, c := range counts {
		got[c.Status] = c.Count
	}
	if got["pending"] != 2 || got["accepted"] != 1 {
		t.Fatalf("unexpected operation counts: %#v", got)
	}
}

func TestRepositoriesRequireContext(t *testing.T) {
	ctx := context.Background()

	if _, err := NewDocumentRepository(nil).FindByID(ctx, 1); err == nil {
		t.Fatalf("expected error for missing context")
	}
	if _, err := NewCopyRepository(nil).ListByRepository(ctx, "/repo"); err == nil {
		t.Fatalf("expected error for missing context")
	}
	if _, err := NewOperationRepository(nil).FindByID(ctx, 1); err == nil {
		t.Fatalf("expected error for missing context")
	}
}
