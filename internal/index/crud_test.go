package index_test

import (
	"path/filepath"
	"testing"

	"mdref/internal/index"
)

func openTestDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	return db
}

func closeTestDB(t *testing.T, db *index.DB) {
	t.Helper()
	if err := db.Close(); err != nil {
		t.Errorf("failed to close test database: %v", err)
	}
}

func sampleDefinitions() []index.Definition {
	return []index.Definition{
		{Label: "API", NormalizedLabel: "api", Target: "https://api.example.com", Line: 4},
		{Label: "guide", NormalizedLabel: "guide", Target: "/docs/guide.md", Line: 5},
	}
}

func TestUpdateDocumentInsertsDefinitions(t *testing.T) {
	db := openTestDB(t)
	defer closeTestDB(t, db)

	uri := "file:///ws/readme.md"
	checksum := index.Checksum([]byte("content"))
	if err := db.UpdateDocument(uri, checksum, sampleDefinitions()); err != nil {
		t.Fatalf("UpdateDocument failed: %v", err)
	}

	doc, err := db.GetDocument(uri)
	if err != nil {
		t.Fatalf("GetDocument failed: %v", err)
	}
	if doc.URI != uri {
		t.Errorf("expected uri %s, got %s", uri, doc.URI)
	}

	defs, err := db.Definitions(uri)
	if err != nil {
		t.Fatalf("Definitions failed: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(defs))
	}
	if defs[0].Label != "API" || defs[0].Line != 4 {
		t.Errorf("unexpected first definition: %+v", defs[0])
	}
}

func TestUpdateDocumentReplacesDefinitions(t *testing.T) {
	db := openTestDB(t)
	defer closeTestDB(t, db)

	uri := "file:///ws/readme.md"
	if err := db.UpdateDocument(uri, index.Checksum([]byte("v1")), sampleDefinitions()); err != nil {
		t.Fatalf("UpdateDocument failed: %v", err)
	}

	replacement := []index.Definition{
		{Label: "only", NormalizedLabel: "only", Target: "/only.md", Line: 0},
	}
	if err := db.UpdateDocument(uri, index.Checksum([]byte("v2")), replacement); err != nil {
		t.Fatalf("UpdateDocument failed: %v", err)
	}

	defs, err := db.Definitions(uri)
	if err != nil {
		t.Fatalf("Definitions failed: %v", err)
	}
	if len(defs) != 1 || defs[0].Label != "only" {
		t.Errorf("expected the replacement definition only, got %+v", defs)
	}
}

func TestUpdateDocumentUnchangedChecksum(t *testing.T) {
	db := openTestDB(t)
	defer closeTestDB(t, db)

	uri := "file:///ws/readme.md"
	checksum := index.Checksum([]byte("same"))
	if err := db.UpdateDocument(uri, checksum, sampleDefinitions()); err != nil {
		t.Fatalf("UpdateDocument failed: %v", err)
	}

	// Same checksum: the stale definition list must be kept as is.
	if err := db.UpdateDocument(uri, checksum, nil); err != nil {
		t.Fatalf("UpdateDocument failed: %v", err)
	}
	defs, err := db.Definitions(uri)
	if err != nil {
		t.Fatalf("Definitions failed: %v", err)
	}
	if len(defs) != 2 {
		t.Errorf("expected the unchanged document to keep its definitions, got %d", len(defs))
	}
}

func TestDocumentsDefiningLabel(t *testing.T) {
	db := openTestDB(t)
	defer closeTestDB(t, db)

	if err := db.UpdateDocument("file:///ws/a.md", index.Checksum([]byte("a")), sampleDefinitions()); err != nil {
		t.Fatalf("UpdateDocument failed: %v", err)
	}
	other := []index.Definition{
		{Label: "api", NormalizedLabel: "api", Target: "https://api.example.com", Line: 0},
	}
	if err := db.UpdateDocument("file:///ws/b.md", index.Checksum([]byte("b")), other); err != nil {
		t.Fatalf("UpdateDocument failed: %v", err)
	}

	uris, err := db.DocumentsDefiningLabel("api")
	if err != nil {
		t.Fatalf("DocumentsDefiningLabel failed: %v", err)
	}
	if len(uris) != 2 {
		t.Fatalf("expected 2 documents defining api, got %d", len(uris))
	}
	if uris[0] != "file:///ws/a.md" || uris[1] != "file:///ws/b.md" {
		t.Errorf("unexpected uris: %v", uris)
	}
}

func TestDeleteDocument(t *testing.T) {
	db := openTestDB(t)
	defer closeTestDB(t, db)

	uri := "file:///ws/readme.md"
	if err := db.UpdateDocument(uri, index.Checksum([]byte("x")), sampleDefinitions()); err != nil {
		t.Fatalf("UpdateDocument failed: %v", err)
	}

	if err := db.DeleteDocument(uri); err != nil {
		t.Fatalf("DeleteDocument failed: %v", err)
	}
	if _, err := db.GetDocument(uri); err != index.ErrDocumentNotFound {
		t.Errorf("expected ErrDocumentNotFound, got %v", err)
	}
	defs, err := db.Definitions(uri)
	if err != nil {
		t.Fatalf("Definitions failed: %v", err)
	}
	if len(defs) != 0 {
		t.Errorf("expected no definitions after delete, got %d", len(defs))
	}
}
