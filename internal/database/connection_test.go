package database

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/docman-dev/docman/internal/config"
)

const currentVersion = 1

func setupTestDB(t *testing.T) *Context {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("DOCMAN_DIR", tmp)

	ctx, err := CreateDatabase("")
	if err != nil {
		t.Fatalf("CreateDatabase returned error: %v", err)
	}

	t.Cleanup(func() {
		if err := CloseDatabase(ctx); err != nil {
			t.Fatalf("CloseDatabase error: %v", err)
		}
	})

	return ctx
}

func TestDatabaseCreationAndMigration(t *testing.T) {
	ctx := setupTestDB(t)

	dbPath := filepath.Join(config.GetDocmanDir(), "docman.db")
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("expected database file to exist at %s: %v", dbPath, err)
	}

	var (
		version int
		dirty   bool
	)
	if err := ctx.DB.QueryRow("SELECT version, dirty FROM schema_migrations").Scan(&version, &dirty); err != nil {
		t.Fatalf("failed to read schema_migrations: %v", err)
	}
	if version != currentVersion || dirty {
		t.Fatalf("expected clean version %d, got %d (dirty=%v)", currentVersion, version, dirty)
	}

	tables := []string{"documents", "document_copies", "operations"}
	for _, table := range tables {
		if !tableExists(t, ctx.DB, table) {
			t.Fatalf("expected table %s to exist", table)
		}
	}

	indexes := []string{
		"uq_operations_pending_copy",
		"idx_operations_status",
		"idx_operations_status_prompt_hash",
		"idx_document_copies_organization_status",
	}
	for _, index := range indexes {
		if !indexExists(t, ctx.DB, index) {
			t.Fatalf("expected index %s to exist", index)
		}
	}
}

func TestReopenDatabaseIsIdempotent(t *testing.T) {
	ctx := setupTestDB(t)
	insertDocument(t, ctx.DB, "hash-a")

	again, err := CreateDatabase("")
	if err != nil {
		t.Fatalf("second CreateDatabase returned error: %v", err)
	}
	defer func() {
		_ = CloseDatabase(again)
	}()

	assertCount(t, again.DB, "documents", 1)
}

func TestContentHashIsUnique(t *testing.T) {
	ctx := setupTestDB(t)
	insertDocument(t, ctx.DB, "hash-a")

	if _, err := ctx.DB.Exec(`INSERT INTO documents(content_hash) VALUES(?)`, "hash-a"); err == nil {
		t.Fatalf("expected duplicate content_hash insert to fail")
	}
}

func TestCopyLocationIsUnique(t *testing.T) {
	ctx := setupTestDB(t)
	docID := insertDocument(t, ctx.DB, "hash-a")
	insertCopy(t, ctx.DB, docID, "/repo", "a.pdf")

	if _, err := ctx.DB.Exec(`INSERT INTO document_copies(document_id, repository_path, file_path) VALUES(?, ?, ?)`, docID, "/repo", "a.pdf"); err == nil {
		t.Fatalf("expected duplicate (repository_path, file_path) insert to fail")
	}

	insertCopy(t, ctx.DB, docID, "/other", "a.pdf")
	assertCount(t, ctx.DB, "document_copies", 2)
}

func TestOnePendingOperationPerCopy(t *testing.T) {
	ctx := setupTestDB(t)
	docID := insertDocument(t, ctx.DB, "hash-a")
	copyID := insertCopy(t, ctx.DB, docID, "/repo", "a.pdf")

	insertOperation(t, ctx.DB, copyID, "accepted")
	insertOperation(t, ctx.DB, copyID, "rejected")
	insertOperation(t, ctx.DB, copyID, "pending")

	if _, err := ctx.DB.Exec(`INSERT INTO operations(document_copy_id, status, suggested_directory_path, suggested_filename, prompt_hash) VALUES(?, 'pending', 'x', 'y.pdf', 'p')`, copyID); err == nil {
		t.Fatalf("expected second pending operation to violate the partial unique index")
	}

	assertCount(t, ctx.DB, "operations", 3)
}

func TestCopyDeleteRequiresDetachedOperations(t *testing.T) {
	ctx := setupTestDB(t)
	docID := insertDocument(t, ctx.DB, "hash-a")
	copyID := insertCopy(t, ctx.DB, docID, "/repo", "a.pdf")
	insertOperation(t, ctx.DB, copyID, "accepted")

	if _, err := ctx.DB.Exec(`DELETE FROM document_copies WHERE id = ?`, copyID); err == nil {
		t.Fatalf("expected foreign key to block deleting a referenced copy")
	}
}

func TestClearDatabaseRemovesAllRows(t *testing.T) {
	ctx := setupTestDB(t)

	docID := insertDocument(t, ctx.DB, "hash-a")
	copyID := insertCopy(t, ctx.DB, docID, "/repo", "a.pdf")
	opID := insertOperation(t, ctx.DB, copyID, "accepted")
	if _, err := ctx.DB.Exec(`UPDATE document_copies SET accepted_operation_id = ? WHERE id = ?`, opID, copyID); err != nil {
		t.Fatalf("set accepted_operation_id failed: %v", err)
	}

	assertCount(t, ctx.DB, "documents", 1)
	assertCount(t, ctx.DB, "document_copies", 1)
	assertCount(t, ctx.DB, "operations", 1)

	if err := ClearDatabase(ctx); err != nil {
		t.Fatalf("ClearDatabase returned error: %v", err)
	}

	assertCount(t, ctx.DB, "documents", 0)
	assertCount(t, ctx.DB, "document_copies", 0)
	assertCount(t, ctx.DB, "operations", 0)
}

func tableExists(t *testing.T, db *sql.DB, table string) bool {
	t.Helper()
	return schemaObjectExists(t, db, "table", table)
}

func indexExists(t *testing.T, db *sql.DB, index string) bool {
	t.Helper()
	return schemaObjectExists(t, db, "index", index)
}

func schemaObjectExists(t *testing.T, db *sql.DB, kind, name string) bool {
	t.Helper()
	var found string
	err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type=? AND name=?`, kind, name).Scan(&found)
	if err == sql.ErrNoRows {
		return false
	}
	if err != nil {
		t.Fatalf("sqlite_master query failed for %s %s: %v", kind, name, err)
	}
	return true
}

func insertDocument(t *testing.T, db *sql.DB, contentHash string) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO documents(content_hash, content) VALUES(?, ?)`, contentHash, "content "+contentHash)
	if err != nil {
		t.Fatalf("insertDocument failed: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("insertDocument LastInsertId failed: %v", err)
	}
	return id
}

func insertCopy(t *testing.T, db *sql.DB, documentID int64, repositoryPath, filePath string) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO document_copies(document_id, repository_path, file_path, stored_size, stored_mtime) VALUES(?, ?, ?, 10, 100)`, documentID, repositoryPath, filePath)
	if err != nil {
		t.Fatalf("insertCopy failed: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("insertCopy LastInsertId failed: %v", err)
	}
	return id
}

func insertOperation(t *testing.T, db *sql.DB, copyID int64, status string) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO operations(document_copy_id, status, suggested_directory_path, suggested_filename, reason, prompt_hash, document_content_hash, model_name, original_repository_path, original_file_path)
		VALUES(?, ?, 'finance', 'invoice.pdf', 'reason', 'prompt', 'content', 'model', '/repo', 'a.pdf')`, copyID, status)
	if err != nil {
		t.Fatalf("insertOperation failed: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("insertOperation LastInsertId failed: %v", err)
	}
	return id
}

func assertCount(t *testing.T, db *sql.DB, table string, expected int) {
	t.Helper()
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
		t.Fatalf("count query failed for %s: %v", table, err)
	}
	if count != expected {
		t.Fatalf("expected %s to have %d rows, got %d", table, expected, count)
	}
}
