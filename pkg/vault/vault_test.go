package vault

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func writeDoc(t *testing.T, root, rel, text string) {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(text), 0644); err != nil {
		t.Fatal(err)
	}
}

func newTestFS(t *testing.T) (*FS, string) {
	t.Helper()
	root := t.TempDir()
	store, err := NewFS(root)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return store, root
}

func TestNewFSRejectsMissingRoot(t *testing.T) {
	if _, err := NewFS(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestListDocuments(t *testing.T) {
	store, root := newTestFS(t)
	writeDoc(t, root, "inbox.md", "- [ ] one")
	writeDoc(t, root, "projects/alpha.md", "- [ ] two")
	writeDoc(t, root, "notes.txt", "not a document")

	docs, err := store.ListDocuments(context.Background())
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("docs = %d, want 2 (txt excluded)", len(docs))
	}
	if docs[0].Path != "inbox.md" || docs[0].Name != "inbox" {
		t.Errorf("docs[0] = %+v", docs[0])
	}
	if docs[1].Path != "projects/alpha.md" || docs[1].Name != "alpha" {
		t.Errorf("docs[1] = %+v", docs[1])
	}
}

func TestGetDocument(t *testing.T) {
	store, root := newTestFS(t)
	writeDoc(t, root, "inbox.md", "hello")

	ctx := context.Background()
	doc, ok, err := store.GetDocument(ctx, "inbox.md")
	if err != nil || !ok {
		t.Fatalf("GetDocument = ok=%v err=%v", ok, err)
	}
	if doc.Name != "inbox" {
		t.Errorf("name = %q, want inbox", doc.Name)
	}

	if _, ok, err := store.GetDocument(ctx, "missing.md"); err != nil || ok {
		t.Errorf("missing document: ok=%v err=%v, want ok=false no error", ok, err)
	}
}

func TestRewriteDocument(t *testing.T) {
	store, root := newTestFS(t)
	writeDoc(t, root, "inbox.md", "- [ ] task")

	ctx := context.Background()
	changed, err := store.RewriteDocument(ctx, "inbox.md", func(text string) (string, error) {
		return strings.Replace(text, "[ ]", "[x]", 1), nil
	})
	if err != nil {
		t.Fatalf("RewriteDocument: %v", err)
	}
	if !changed {
		t.Error("changed = false, want true")
	}

	text, err := store.ReadDocument(ctx, "inbox.md")
	if err != nil {
		t.Fatalf("ReadDocument: %v", err)
	}
	if text != "- [x] task" {
		t.Errorf("text = %q", text)
	}
}

func TestRewriteDocumentNoChange(t *testing.T) {
	store, root := newTestFS(t)
	writeDoc(t, root, "inbox.md", "- [ ] task")

	changed, err := store.RewriteDocument(context.Background(), "inbox.md", func(text string) (string, error) {
		return text, nil
	})
	if err != nil {
		t.Fatalf("RewriteDocument: %v", err)
	}
	if changed {
		t.Error("changed = true for identity rewrite, want false")
	}
}

func TestRewriteDocumentMissing(t *testing.T) {
	store, _ := newTestFS(t)
	_, err := store.RewriteDocument(context.Background(), "missing.md", func(text string) (string, error) {
		return text, nil
	})
	if err == nil {
		t.Error("expected error for missing document")
	}
}

func TestRewriteDocumentSerialized(t *testing.T) {
	store, root := newTestFS(t)
	writeDoc(t, root, "inbox.md", "")

	// Concurrent appenders must not lose each other's lines.
	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.RewriteDocument(context.Background(), "inbox.md", func(text string) (string, error) {
				return text + "x", nil
			})
		}()
	}
	wg.Wait()

	text, err := store.ReadDocument(context.Background(), "inbox.md")
	if err != nil {
		t.Fatalf("ReadDocument: %v", err)
	}
	if len(text) != writers {
		t.Errorf("appended %d bytes, want %d", len(text), writers)
	}
}

func TestCrossReference(t *testing.T) {
	store, root := newTestFS(t)
	writeDoc(t, root, "projects/Launch Plan.md", "body")

	ctx := context.Background()
	doc, ok, err := store.CrossReference(ctx, "launch plan")
	if err != nil || !ok {
		t.Fatalf("CrossReference = ok=%v err=%v", ok, err)
	}
	if doc.Path != "projects/Launch Plan.md" {
		t.Errorf("path = %q", doc.Path)
	}

	if _, ok, _ := store.CrossReference(ctx, "Unknown"); ok {
		t.Error("resolved a nonexistent title")
	}
}

func TestResolverAdapter(t *testing.T) {
	store, root := newTestFS(t)
	writeDoc(t, root, "Ship.md", "body")

	resolve := Resolver(context.Background(), store)
	path, ok := resolve("Ship")
	if !ok || path != "Ship.md" {
		t.Errorf("resolve = %q, %v", path, ok)
	}
	if _, ok := resolve("Ghost"); ok {
		t.Error("resolved a nonexistent title")
	}
}

func TestParseFrontmatter(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		wantOK bool
	}{
		{
			name:   "status block",
			text:   "---\nstatus: done\npriority: high\nstarred: true\ntags:\n  - work\n---\nbody",
			wantOK: true,
		},
		{
			name:   "no frontmatter",
			text:   "just a document",
			wantOK: false,
		},
		{
			name:   "unterminated block",
			text:   "---\nstatus: done\nbody without closing fence",
			wantOK: false,
		},
		{
			name:   "frontmatter without status",
			text:   "---\ntitle: plain note\n---\nbody",
			wantOK: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs, ok, err := ParseFrontmatter(tt.text)
			if err != nil {
				t.Fatalf("ParseFrontmatter: %v", err)
			}
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if attrs.Status != "done" || attrs.Priority != "high" || !attrs.Starred {
				t.Errorf("attrs = %+v", attrs)
			}
			if len(attrs.Tags) != 1 || attrs.Tags[0] != "work" {
				t.Errorf("tags = %v", attrs.Tags)
			}
		})
	}
}

func TestAttributesBlockedBy(t *testing.T) {
	store, root := newTestFS(t)
	writeDoc(t, root, "plan.md", "---\nstatus: in_progress\nblockedBy:\n  - uid: \"[[Research]]\"\n    relation: FINISHTOSTART\n---\nbody")

	attrs, ok, err := store.Attributes(context.Background(), "plan.md")
	if err != nil || !ok {
		t.Fatalf("Attributes = ok=%v err=%v", ok, err)
	}
	if len(attrs.Blocked) != 1 {
		t.Fatalf("blocked = %+v, want 1 entry", attrs.Blocked)
	}
	if got := attrs.Blocked[0].CrossReference(); got != "Research" {
		t.Errorf("cross reference = %q, want Research", got)
	}
}
