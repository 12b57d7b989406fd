// Package task defines the canonical task record and the parsers that build
// it from the two textual task shapes: inline checklist lines and
// frontmatter-described note documents.
//
// A parsed [Task] is the single in-memory model every other component works
// against; the original encoding is only consulted again when a mutation has
// to be written back to the source document.
package task

import (
	"fmt"
	"regexp"

	"github.com/taskweave/taskweave/pkg/marker"
)

// Status is the lifecycle state of a task.
type Status string

// The four task statuses.
const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusCanceled   Status = "canceled"
)

// statusCodes maps the single-character checklist codes to statuses.
var statusCodes = map[byte]Status{
	' ': StatusTodo,
	'/': StatusInProgress,
	'-': StatusCanceled,
	'x': StatusDone,
	'X': StatusDone,
}

// StatusFromCode maps a checklist status character to a Status.
// Unknown characters report false.
func StatusFromCode(c byte) (Status, bool) {
	s, ok := statusCodes[c]
	return s, ok
}

// Code returns the canonical checklist character for the status.
func (s Status) Code() byte {
	switch s {
	case StatusInProgress:
		return '/'
	case StatusCanceled:
		return '-'
	case StatusDone:
		return 'x'
	default:
		return ' '
	}
}

// StatusFromName maps a frontmatter status value to a Status.
// Unknown names report false.
func StatusFromName(name string) (Status, bool) {
	switch Status(name) {
	case StatusTodo, StatusInProgress, StatusDone, StatusCanceled:
		return Status(name), true
	}
	return "", false
}

// Kind selects which document shape a task lives in and therefore which
// mutation rules apply to it.
type Kind string

// Task kinds.
const (
	KindInline Kind = "inline" // one checklist line inside a document
	KindNote   Kind = "note"   // a whole document described by frontmatter
)

// Task is the canonical in-memory task record.
//
// ID is stable across rescans: for inline tasks it is the embedded short
// identifier when one exists, otherwise the positional fallback
// "path:line"; for note tasks it is the document path itself.
type Task struct {
	ID            string   `json:"id" bson:"id"`
	Kind          Kind     `json:"type" bson:"type"`
	Summary       string   `json:"summary" bson:"summary"`
	Text          string   `json:"text" bson:"text"`
	Tags          []string `json:"tags,omitempty" bson:"tags,omitempty"`
	Status        Status   `json:"status" bson:"status"`
	Priority      string   `json:"priority,omitempty" bson:"priority,omitempty"`
	Link          string   `json:"link" bson:"link"`
	IncomingLinks []string `json:"incomingLinks,omitempty" bson:"incomingLinks,omitempty"`
	Starred       bool     `json:"starred,omitempty" bson:"starred,omitempty"`
	Line          int      `json:"line,omitempty" bson:"line,omitempty"`
}

// checklistRe matches a checklist task line: indentation, a list bullet, the
// bracketed status character, and the body.
var checklistRe = regexp.MustCompile(`^(\s*)[-*+]\s+\[(.)\]\s?(.*)$`)

// IsChecklistLine reports whether line is a checklist task line.
func IsChecklistLine(line string) bool {
	return checklistRe.MatchString(line)
}

// Body returns the content of a checklist line after the status marker.
// Non-checklist lines pass through unchanged.
func Body(line string) string {
	if m := checklistRe.FindStringSubmatch(line); m != nil {
		return m[3]
	}
	return line
}

// IsEmpty reports whether the task carries no content of its own: after
// stripping every known marker (identity, star, priority, tags, dependency
// markers, links) from its text, nothing but whitespace remains. Empty tasks
// are structural noise (template placeholders and the like) and are filtered
// out of scan results.
func (t Task) IsEmpty() bool {
	text := t.Text
	if m := checklistRe.FindStringSubmatch(text); m != nil {
		text = m[3]
	}
	return marker.Strip(text) == ""
}

// FallbackID builds the positional identifier used when an inline task
// declares no embedded short id.
func FallbackID(path string, line int) string {
	return fmt.Sprintf("%s:%d", path, line)
}
