// Package document performs targeted, idempotent rewrites of document text.
//
// Given a document's full text and an operation aimed at one task, [Apply]
// produces the new full text. Edits are scoped to the minimal region: one
// checklist line for inline tasks, the frontmatter attribute block for note
// tasks. Unrelated content is never touched.
//
// Apply never fails. When the target line or attribute block cannot be
// located, or the operation is already reflected in the text, the input is
// returned unchanged. Callers detect "nothing happened" by comparing input
// and output; a silent no-op is the designed behavior for missing and
// malformed targets, because a failed rewrite must never corrupt or lose
// document content.
package document

import (
	"regexp"
	"slices"
	"strings"

	"github.com/taskweave/taskweave/pkg/errors"
	"github.com/taskweave/taskweave/pkg/marker"
	"github.com/taskweave/taskweave/pkg/task"
)

// OpKind names a document mutation.
type OpKind string

// The supported mutations.
const (
	OpSetStatus        OpKind = "set_status"
	OpAddTag           OpKind = "add_tag"
	OpRemoveTag        OpKind = "remove_tag"
	OpAddStar          OpKind = "add_star"
	OpRemoveStar       OpKind = "remove_star"
	OpAddDependency    OpKind = "add_dependency"
	OpRemoveDependency OpKind = "remove_dependency"
	OpSetID            OpKind = "set_id"
)

// Operation describes one mutation aimed at one task.
//
// Target carries the task whose source region is rewritten; its stored Text
// and identifiers drive line location for inline tasks. The remaining fields
// are read per Kind: Status for OpSetStatus, Tag for the tag operations,
// DependencyID (inline) or DependencyRef/DependencyPath (note) for the
// dependency operations, ID for OpSetID.
type Operation struct {
	Kind   OpKind
	Target task.Task

	Status task.Status
	Tag    string
	ID     string

	// DependencyID is the short identifier written into inline dependency
	// markers. Dialect is the write policy for a first marker; existing
	// markers keep their own dialect (see marker.Add).
	DependencyID string
	Dialect      marker.Dialect

	// DependencyRef is the "[[Title]]" reference written into a note's
	// blockedBy list. DependencyPath is the resolved path of that
	// reference, matched on removal via Resolve.
	DependencyRef  string
	DependencyPath string
	Resolve        task.Resolver
}

// Apply rewrites text according to op and returns the new text.
// It never fails; unlocatable targets yield the input unchanged.
func Apply(text string, op Operation) string {
	if op.Target.Kind == task.KindNote {
		return applyNote(text, op)
	}
	return applyInline(text, op)
}

// =============================================================================
// Inline tasks: single-line edits
// =============================================================================

// checklistStatusRe captures the checklist prefix around the status code.
var checklistStatusRe = regexp.MustCompile(`^(\s*[-*+]\s+\[)(.)(\])`)

var spaceRunRe = regexp.MustCompile(`[ \t]{2,}`)

func applyInline(text string, op Operation) string {
	lines := strings.Split(text, "\n")
	idx := locateLine(lines, op.Target)
	if idx < 0 {
		return text
	}
	lines[idx] = mutateLine(lines[idx], op)
	return strings.Join(lines, "\n")
}

// locateLine finds the target task's line. Strategies, in order:
//
//  1. exact match of the embedded identifier marker (🆔 id)
//  2. exact match of the structured identifier field ([[id:: id]])
//  3. substring match of the task's stored text
//  4. normalized-text comparison with all markers stripped from both sides
//
// The stored line number disambiguates when several lines match; absent
// that, the first positional match wins. Returns -1 when no strategy hits.
func locateLine(lines []string, t task.Task) int {
	if id := shortID(t); id != "" {
		emoji := marker.GlyphID + " " + id
		for i, l := range lines {
			if strings.Contains(l, emoji) {
				return i
			}
		}
		field := "[[id:: " + id + "]]"
		for i, l := range lines {
			if strings.Contains(l, field) {
				return i
			}
		}
	}

	if needle := strings.TrimSpace(t.Text); needle != "" {
		var candidates []int
		for i, l := range lines {
			if strings.Contains(l, needle) {
				candidates = append(candidates, i)
			}
		}
		if len(candidates) == 1 {
			return candidates[0]
		}
		if len(candidates) > 1 {
			for _, i := range candidates {
				if i+1 == t.Line {
					return i
				}
			}
			// Ambiguity is accepted, not reported: first match wins.
			return candidates[0]
		}
	}

	if norm := normalize(t.Text); norm != "" {
		for i, l := range lines {
			if task.IsChecklistLine(l) && normalize(l) == norm {
				return i
			}
		}
	}

	return -1
}

// shortID returns the task's six-character identifier when it has one,
// either embedded in its stored text or carried as its ID.
func shortID(t task.Task) string {
	if id := marker.OwnID(t.Text); id != "" {
		return id
	}
	if errors.ValidateShortID(t.ID) == nil {
		return t.ID
	}
	return ""
}

// normalize strips the checklist prefix and every marker from a line, so
// two renderings of the same task compare equal.
func normalize(line string) string {
	return marker.Strip(task.Body(line))
}

func mutateLine(line string, op Operation) string {
	switch op.Kind {
	case OpSetStatus:
		return checklistStatusRe.ReplaceAllString(line, "${1}"+string(op.Status.Code())+"${3}")

	case OpAddTag:
		if slices.Contains(marker.Tags(line), op.Tag) {
			return line
		}
		return tidy(strings.TrimRight(line, " \t") + " #" + op.Tag)

	case OpRemoveTag:
		re := regexp.MustCompile(`(^|[ \t])#` + regexp.QuoteMeta(op.Tag) + `([ \t]|$)`)
		return tidy(re.ReplaceAllString(line, "$1$2"))

	case OpAddStar:
		if marker.Starred(line) {
			return line
		}
		return tidy(strings.TrimRight(line, " \t") + " " + marker.GlyphStar)

	case OpRemoveStar:
		return tidy(strings.ReplaceAll(line, marker.GlyphStar, ""))

	case OpAddDependency:
		return marker.Add(line, op.DependencyID, op.Dialect)

	case OpRemoveDependency:
		return marker.Remove(line, op.DependencyID)

	case OpSetID:
		return marker.SetOwnID(line, op.ID, op.Dialect)
	}
	return line
}

// tidy collapses interior space runs and trims trailing whitespace while
// keeping the leading indentation intact.
func tidy(line string) string {
	trimmed := strings.TrimLeft(line, " \t")
	indent := line[:len(line)-len(trimmed)]
	collapsed := spaceRunRe.ReplaceAllString(trimmed, " ")
	return indent + strings.TrimRight(collapsed, " \t")
}
