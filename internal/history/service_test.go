package history

import (
	"strings"
	"testing"
)

func TestSnapshotLifecycle(t *testing.T) {
	svc := New(t.TempDir())

	if err := svc.Snapshot([]byte(`{"projects":{}}`), "autor1", "create project Roman1"); err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if err := svc.Snapshot([]byte(`{"projects":{"Roman1":{}}}`), "autor1", "add entity"); err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	revisions, err := svc.Revisions(10)
	if err != nil {
		t.Fatalf("Revisions() error = %v", err)
	}
	if len(revisions) != 2 {
		t.Fatalf("expected 2 revisions, got %d", len(revisions))
	}
	// Newest first.
	if !strings.Contains(revisions[0].Message, "add entity") {
		t.Errorf("unexpected newest revision: %+v", revisions[0])
	}
	if revisions[0].Author != "autor1" {
		t.Errorf("expected author autor1, got %q", revisions[0].Author)
	}
	if revisions[0].Hash == "" || len(revisions[0].Hash) != 7 {
		t.Errorf("expected abbreviated hash, got %q", revisions[0].Hash)
	}

	content, err := svc.Content(revisions[1].Hash)
	if err != nil {
		t.Fatalf("Content() error = %v", err)
	}
	if string(content) != `{"projects":{}}` {
		t.Errorf("unexpected snapshot content: %s", content)
	}
}

func TestSnapshotUnchangedDocumentIsNoop(t *testing.T) {
	svc := New(t.TempDir())

	data := []byte(`{"projects":{}}`)
	if err := svc.Snapshot(data, "autor1", "first"); err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if err := svc.Snapshot(data, "autor1", "second"); err != nil {
		t.Fatalf("Snapshot() of unchanged data error = %v", err)
	}

	revisions, err := svc.Revisions(0)
	if err != nil {
		t.Fatalf("Revisions() error = %v", err)
	}
	if len(revisions) != 1 {
		t.Errorf("expected 1 revision for unchanged document, got %d", len(revisions))
	}
}

func TestRevisionsOnEmptyRepo(t *testing.T) {
	svc := New(t.TempDir())

	revisions, err := svc.Revisions(10)
	if err != nil {
		t.Fatalf("Revisions() error = %v", err)
	}
	if len(revisions) != 0 {
		t.Errorf("expected no revisions, got %d", len(revisions))
	}
}

func TestRevisionsLimit(t *testing.T) {
	svc := New(t.TempDir())

	for _, step := range []string{"a", "b", "c"} {
		if err := svc.Snapshot([]byte(step), "autor2", "step "+step); err != nil {
			t.Fatalf("Snapshot() error = %v", err)
		}
	}

	revisions, err := svc.Revisions(2)
	if err != nil {
		t.Fatalf("Revisions() error = %v", err)
	}
	if len(revisions) != 2 {
		t.Errorf("expected 2 revisions under limit, got %d", len(revisions))
	}
}
