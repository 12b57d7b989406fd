package vault

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/taskweave/taskweave/pkg/errors"
	"github.com/taskweave/taskweave/pkg/task"
)

// FS is a filesystem-backed store rooted at one directory. Every markdown
// file under the root is a document; paths are always vault-relative with
// forward slashes.
type FS struct {
	root string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewFS creates a store over root, which must be an existing directory.
func NewFS(root string) (*FS, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "vault root %s", root)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrCodeInvalidPath, "vault root %s is not a directory", root)
	}
	return &FS{root: root, locks: make(map[string]*sync.Mutex)}, nil
}

// Root returns the vault root directory.
func (v *FS) Root() string { return v.root }

// ReadDocument returns the full text of the document at path.
func (v *FS) ReadDocument(ctx context.Context, path string) (string, error) {
	abs, err := v.abs(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(abs)
	if os.IsNotExist(err) {
		return "", errors.New(errors.ErrCodeDocumentNotFound, "document %s not found", path)
	}
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "read %s", path)
	}
	return string(data), nil
}

// GetDocument returns a handle for path, or ok=false when no such document
// exists.
func (v *FS) GetDocument(ctx context.Context, path string) (Document, bool, error) {
	abs, err := v.abs(path)
	if err != nil {
		return Document{}, false, err
	}
	info, err := os.Stat(abs)
	if os.IsNotExist(err) {
		return Document{}, false, nil
	}
	if err != nil {
		return Document{}, false, errors.Wrap(errors.ErrCodeInternal, err, "stat %s", path)
	}
	if info.IsDir() {
		return Document{}, false, nil
	}
	return Document{Path: path, Name: docName(path)}, true, nil
}

// RewriteDocument applies fn to the document's full text and writes the
// result back atomically. Rewrites of the same path are serialized; the
// read, transform and write happen under one per-path lock so interleaved
// mutations cannot lose updates.
//
// The returned changed flag is false when fn left the text identical, which
// is the no-op signal optimistic callers revert on.
func (v *FS) RewriteDocument(ctx context.Context, path string, fn RewriteFunc) (bool, error) {
	abs, err := v.abs(path)
	if err != nil {
		return false, err
	}

	lock := v.pathLock(path)
	lock.Lock()
	defer lock.Unlock()

	data, err := os.ReadFile(abs)
	if os.IsNotExist(err) {
		return false, errors.New(errors.ErrCodeDocumentNotFound, "document %s not found", path)
	}
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeInternal, err, "read %s", path)
	}

	text := string(data)
	next, err := fn(text)
	if err != nil {
		return false, err
	}
	if next == text {
		return false, nil
	}

	tmp := abs + ".tmp"
	if err := os.WriteFile(tmp, []byte(next), 0644); err != nil {
		return false, errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	if err := os.Rename(tmp, abs); err != nil {
		_ = os.Remove(tmp)
		return false, errors.Wrap(errors.ErrCodeInternal, err, "replace %s", path)
	}
	return true, nil
}

// ListDocuments walks the vault and returns a handle for every markdown
// document, in lexical path order.
func (v *FS) ListDocuments(ctx context.Context) ([]Document, error) {
	var docs []Document
	err := filepath.WalkDir(v.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(p), ".md") {
			return nil
		}
		rel, err := filepath.Rel(v.root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		docs = append(docs, Document{Path: rel, Name: docName(rel)})
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list vault %s", v.root)
	}
	return docs, nil
}

// Attributes reads and decodes the document's frontmatter block. See
// ParseFrontmatter for when ok is false.
func (v *FS) Attributes(ctx context.Context, path string) (task.Attributes, bool, error) {
	text, err := v.ReadDocument(ctx, path)
	if err != nil {
		return task.Attributes{}, false, err
	}
	return ParseFrontmatter(text)
}

// CrossReference resolves a wiki-link name to a document handle. Names
// match document titles case-insensitively; with several candidates the
// first in lexical path order wins.
func (v *FS) CrossReference(ctx context.Context, name string) (Document, bool, error) {
	docs, err := v.ListDocuments(ctx)
	if err != nil {
		return Document{}, false, err
	}
	for _, doc := range docs {
		if strings.EqualFold(doc.Name, name) {
			return doc, true, nil
		}
	}
	return Document{}, false, nil
}

// pathLock returns the mutex serializing rewrites of one path, creating it
// on first use.
func (v *FS) pathLock(path string) *sync.Mutex {
	v.mu.Lock()
	defer v.mu.Unlock()
	lock, ok := v.locks[path]
	if !ok {
		lock = &sync.Mutex{}
		v.locks[path] = lock
	}
	return lock
}

// abs validates a vault-relative path and joins it onto the root.
func (v *FS) abs(path string) (string, error) {
	if err := errors.ValidateDocumentPath(path); err != nil {
		return "", err
	}
	return filepath.Join(v.root, filepath.FromSlash(path)), nil
}

// docName derives the document title from its path.
func docName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Ensure FS implements Store.
var _ Store = (*FS)(nil)
