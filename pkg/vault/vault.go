// Package vault is the document store boundary. Documents are plain text
// files addressed by vault-relative paths; the engine never touches the
// filesystem directly, it goes through a [Store].
//
// Rewrites are full-content read-modify-write, serialized per document
// path. Two concurrent rewrites of the same document would otherwise race
// and lose one of the updates.
package vault

import (
	"context"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/taskweave/taskweave/pkg/errors"
	"github.com/taskweave/taskweave/pkg/task"
)

// Document is a handle to one document in the store.
type Document struct {
	// Path is the vault-relative path, forward slashes.
	Path string `json:"path"`
	// Name is the document title, the base name without extension.
	Name string `json:"name"`
}

// RewriteFunc transforms a document's full text. Returning the input
// unchanged is allowed and means the rewrite was a no-op.
type RewriteFunc func(text string) (string, error)

// Store is the document store collaborator.
//
// RewriteDocument applies fn under a per-path lock and reports whether the
// text actually changed; callers doing optimistic updates revert when it
// did not.
type Store interface {
	ReadDocument(ctx context.Context, path string) (string, error)
	GetDocument(ctx context.Context, path string) (Document, bool, error)
	RewriteDocument(ctx context.Context, path string, fn RewriteFunc) (changed bool, err error)
	ListDocuments(ctx context.Context) ([]Document, error)
	Attributes(ctx context.Context, path string) (task.Attributes, bool, error)
	CrossReference(ctx context.Context, name string) (Document, bool, error)
}

// Resolver adapts a Store into the cross-reference resolver the note
// parser expects.
func Resolver(ctx context.Context, store Store) task.Resolver {
	return func(name string) (string, bool) {
		doc, ok, err := store.CrossReference(ctx, name)
		if err != nil || !ok {
			return "", false
		}
		return doc.Path, true
	}
}

// ParseFrontmatter extracts and decodes a document's leading attribute
// block. It reports ok=false when the block is absent, unterminated, or
// carries no status key; a document without a status is not a note task,
// whatever else its frontmatter holds.
func ParseFrontmatter(text string) (task.Attributes, bool, error) {
	block, ok := frontmatterBlock(text)
	if !ok {
		return task.Attributes{}, false, nil
	}

	var raw map[string]any
	if err := yaml.Unmarshal([]byte(block), &raw); err != nil {
		return task.Attributes{}, false, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode frontmatter")
	}
	if _, hasStatus := raw["status"]; !hasStatus {
		return task.Attributes{}, false, nil
	}

	var attrs task.Attributes
	if err := yaml.Unmarshal([]byte(block), &attrs); err != nil {
		return task.Attributes{}, false, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode frontmatter")
	}
	return attrs, true, nil
}

// frontmatterBlock returns the text between the opening "---" line and the
// next "---" line. Both delimiters must be present.
func frontmatterBlock(text string) (string, bool) {
	lines := strings.Split(text, "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], " \t") != "---" {
		return "", false
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], " \t") == "---" {
			return strings.Join(lines[1:i], "\n"), true
		}
	}
	return "", false
}
