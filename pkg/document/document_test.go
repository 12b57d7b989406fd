package document

import (
	"strings"
	"testing"

	"github.com/taskweave/taskweave/pkg/marker"
	"github.com/taskweave/taskweave/pkg/task"
)

func inlineTarget(t *testing.T, line string) task.Task {
	t.Helper()
	tk, ok := task.ParseInline(line, "doc.md", 1)
	if !ok {
		t.Fatalf("not a task line: %q", line)
	}
	return tk
}

func TestApplySetStatusInline(t *testing.T) {
	doc := "# Plan\n- [ ] ship it 🆔 abc123\ndone\n"
	target := inlineTarget(t, "- [ ] ship it 🆔 abc123")

	got := Apply(doc, Operation{Kind: OpSetStatus, Target: target, Status: task.StatusDone})
	want := "# Plan\n- [x] ship it 🆔 abc123\ndone\n"
	if got != want {
		t.Errorf("Apply = %q, want %q", got, want)
	}
}

func TestStatusRoundTrip(t *testing.T) {
	line := "- [ ] cycle me 🆔 abc123"
	target := inlineTarget(t, line)

	for _, s := range []task.Status{task.StatusTodo, task.StatusInProgress, task.StatusDone, task.StatusCanceled} {
		mutated := Apply(line, Operation{Kind: OpSetStatus, Target: target, Status: s})
		parsed, ok := task.ParseInline(mutated, "doc.md", 1)
		if !ok {
			t.Fatalf("mutated line no longer parses: %q", mutated)
		}
		if parsed.Status != s {
			t.Errorf("parse(mutate(setStatus(%v))).Status = %v", s, parsed.Status)
		}
	}
}

func TestAddTagIdempotent(t *testing.T) {
	doc := "- [ ] ship it 🆔 abc123"
	target := inlineTarget(t, doc)
	op := Operation{Kind: OpAddTag, Target: target, Tag: "urgent"}

	once := Apply(doc, op)
	if want := "- [ ] ship it 🆔 abc123 #urgent"; once != want {
		t.Errorf("first add = %q, want %q", once, want)
	}
	twice := Apply(once, op)
	if twice != once {
		t.Errorf("second add changed text: %q vs %q", twice, once)
	}
}

func TestRemoveTag(t *testing.T) {
	doc := "- [ ] ship it #urgent #infra 🆔 abc123"
	target := inlineTarget(t, doc)

	got := Apply(doc, Operation{Kind: OpRemoveTag, Target: target, Tag: "urgent"})
	if want := "- [ ] ship it #infra 🆔 abc123"; got != want {
		t.Errorf("Apply = %q, want %q", got, want)
	}

	// Removing an absent tag is a no-op.
	again := Apply(got, Operation{Kind: OpRemoveTag, Target: inlineTarget(t, got), Tag: "urgent"})
	if again != got {
		t.Errorf("no-op remove changed text: %q", again)
	}
}

func TestStarAddRemoveIdempotent(t *testing.T) {
	doc := "- [ ] ship it 🆔 abc123"
	target := inlineTarget(t, doc)

	starred := Apply(doc, Operation{Kind: OpAddStar, Target: target})
	if want := "- [ ] ship it 🆔 abc123 ⭐"; starred != want {
		t.Errorf("add star = %q, want %q", starred, want)
	}
	if again := Apply(starred, Operation{Kind: OpAddStar, Target: inlineTarget(t, starred)}); again != starred {
		t.Errorf("second star changed text: %q", again)
	}

	unstarred := Apply(starred, Operation{Kind: OpRemoveStar, Target: inlineTarget(t, starred)})
	if unstarred != doc {
		t.Errorf("remove star = %q, want %q", unstarred, doc)
	}
}

func TestAddDependencyIdempotent(t *testing.T) {
	doc := "- [ ] blocked work 🆔 abc123"
	target := inlineTarget(t, doc)
	op := Operation{Kind: OpAddDependency, Target: target, DependencyID: "def456", Dialect: marker.DialectCSV}

	once := Apply(doc, op)
	if want := "- [ ] blocked work 🆔 abc123 ⛔ def456"; once != want {
		t.Errorf("add dep = %q, want %q", once, want)
	}
	twice := Apply(once, Operation{Kind: OpAddDependency, Target: inlineTarget(t, once), DependencyID: "def456", Dialect: marker.DialectCSV})
	if twice != once {
		t.Errorf("second add changed text: %q", twice)
	}
}

func TestSetID(t *testing.T) {
	doc := "- [ ] needs identity"
	target := inlineTarget(t, doc)

	got := Apply(doc, Operation{Kind: OpSetID, Target: target, ID: "qqq111"})
	if want := "- [ ] needs identity 🆔 qqq111"; got != want {
		t.Errorf("set id = %q, want %q", got, want)
	}
}

func TestApplyMissingTargetIsNoop(t *testing.T) {
	doc := "# Nothing here\nprose only\n"
	target := task.Task{Kind: task.KindInline, ID: "zzz999", Text: "- [ ] vanished 🆔 zzz999"}

	got := Apply(doc, Operation{Kind: OpSetStatus, Target: target, Status: task.StatusDone})
	if got != doc {
		t.Errorf("missing target mutated text: %q", got)
	}
}

func TestLocateByIdentifierBeatsText(t *testing.T) {
	// Same text on two lines; the id marker picks the right one.
	doc := "- [ ] duplicate\n- [ ] duplicate 🆔 abc123\n"
	target := task.Task{Kind: task.KindInline, ID: "abc123", Text: "- [ ] duplicate 🆔 abc123"}

	got := Apply(doc, Operation{Kind: OpSetStatus, Target: target, Status: task.StatusDone})
	want := "- [ ] duplicate\n- [x] duplicate 🆔 abc123\n"
	if got != want {
		t.Errorf("Apply = %q, want %q", got, want)
	}
}

func TestLocateAmbiguousFirstMatchWins(t *testing.T) {
	doc := "- [ ] same text\n- [ ] same text\n"
	target := task.Task{Kind: task.KindInline, ID: "doc.md:9", Text: "- [ ] same text"}

	got := Apply(doc, Operation{Kind: OpSetStatus, Target: target, Status: task.StatusDone})
	want := "- [x] same text\n- [ ] same text\n"
	if got != want {
		t.Errorf("ambiguous match should take first line: %q", got)
	}
}

func TestLocateByLineNumberDisambiguation(t *testing.T) {
	doc := "- [ ] same text\n- [ ] same text\n"
	target := task.Task{Kind: task.KindInline, ID: "doc.md:2", Text: "- [ ] same text", Line: 2}

	got := Apply(doc, Operation{Kind: OpSetStatus, Target: target, Status: task.StatusDone})
	want := "- [ ] same text\n- [x] same text\n"
	if got != want {
		t.Errorf("line number should disambiguate: %q", got)
	}
}

func TestLocateByNormalizedText(t *testing.T) {
	// Stored text has a star the document line has since lost; normalized
	// comparison still finds it.
	doc := "- [ ] drifted task #extra\n"
	target := task.Task{Kind: task.KindInline, ID: "doc.md:1", Text: "- [ ] drifted task ⭐ #extra"}

	got := Apply(doc, Operation{Kind: OpSetStatus, Target: target, Status: task.StatusInProgress})
	want := "- [/] drifted task #extra\n"
	if got != want {
		t.Errorf("normalized match failed: %q", got)
	}
}

// =============================================================================
// Frontmatter
// =============================================================================

const noteDoc = `---
status: todo
priority: high
tags:
  - project
---

# Engine
body text
`

func noteTarget() task.Task {
	return task.Task{ID: "engine.md", Kind: task.KindNote, Text: "Engine", Link: "engine.md"}
}

func TestNoteSetStatus(t *testing.T) {
	got := Apply(noteDoc, Operation{Kind: OpSetStatus, Target: noteTarget(), Status: task.StatusDone})
	if !strings.Contains(got, "status: done") {
		t.Errorf("status not updated:\n%s", got)
	}
	if strings.Contains(got, "status: todo") {
		t.Errorf("old status left behind:\n%s", got)
	}
	if !strings.Contains(got, "body text") {
		t.Errorf("body disturbed:\n%s", got)
	}
}

func TestNoteAddTag(t *testing.T) {
	got := Apply(noteDoc, Operation{Kind: OpAddTag, Target: noteTarget(), Tag: "backend"})
	if !strings.Contains(got, "  - project\n  - backend") {
		t.Errorf("tag not appended to list:\n%s", got)
	}

	// Duplicate add is a no-op.
	again := Apply(got, Operation{Kind: OpAddTag, Target: noteTarget(), Tag: "backend"})
	if again != got {
		t.Errorf("duplicate tag add changed text")
	}
}

func TestNoteAddTagCreatesField(t *testing.T) {
	doc := "---\nstatus: todo\n---\n"
	got := Apply(doc, Operation{Kind: OpAddTag, Target: noteTarget(), Tag: "fresh"})
	if !strings.Contains(got, "tags:\n  - fresh") {
		t.Errorf("tags field not created:\n%s", got)
	}
}

func TestNoteRemoveTag(t *testing.T) {
	got := Apply(noteDoc, Operation{Kind: OpRemoveTag, Target: noteTarget(), Tag: "project"})
	if strings.Contains(got, "- project") {
		t.Errorf("tag not removed:\n%s", got)
	}

	// Removing a non-existent tag leaves the block untouched.
	same := Apply(noteDoc, Operation{Kind: OpRemoveTag, Target: noteTarget(), Tag: "ghost"})
	if same != noteDoc {
		t.Errorf("no-op remove changed text")
	}
}

func TestNoteStarCreatedAfterPriority(t *testing.T) {
	got := Apply(noteDoc, Operation{Kind: OpAddStar, Target: noteTarget()})
	if !strings.Contains(got, "priority: high\nstarred: true") {
		t.Errorf("starred not created after priority:\n%s", got)
	}

	cleared := Apply(got, Operation{Kind: OpRemoveStar, Target: noteTarget()})
	if !strings.Contains(cleared, "starred: false") {
		t.Errorf("starred not cleared:\n%s", cleared)
	}
}

func TestNoteStarCreatedAtBlockEndWithoutPriority(t *testing.T) {
	doc := "---\nstatus: todo\n---\n"
	got := Apply(doc, Operation{Kind: OpAddStar, Target: noteTarget()})
	if !strings.Contains(got, "status: todo\nstarred: true\n---") {
		t.Errorf("starred not created at block end:\n%s", got)
	}
}

func TestNoteAddDependency(t *testing.T) {
	got := Apply(noteDoc, Operation{
		Kind:          OpAddDependency,
		Target:        noteTarget(),
		DependencyRef: "[[Design Doc]]",
	})
	if !strings.Contains(got, "blockedBy:\n  - uid: \"[[Design Doc]]\"\n    relation: FINISHTOSTART") {
		t.Errorf("blockedBy entry not written:\n%s", got)
	}

	// Same reference again is a no-op.
	again := Apply(got, Operation{Kind: OpAddDependency, Target: noteTarget(), DependencyRef: "[[Design Doc]]"})
	if again != got {
		t.Errorf("duplicate dependency add changed text")
	}
}

func TestNoteRemoveDependency(t *testing.T) {
	doc := "---\nstatus: todo\nblockedBy:\n  - uid: \"[[Design Doc]]\"\n    relation: FINISHTOSTART\n  - uid: \"[[Other]]\"\n    relation: FINISHTOSTART\n---\n"
	resolve := func(name string) (string, bool) {
		if name == "Design Doc" {
			return "docs/design.md", true
		}
		return "", false
	}

	got := Apply(doc, Operation{
		Kind:           OpRemoveDependency,
		Target:         noteTarget(),
		DependencyPath: "docs/design.md",
		Resolve:        resolve,
	})
	if strings.Contains(got, "Design Doc") {
		t.Errorf("entry not removed:\n%s", got)
	}
	if !strings.Contains(got, "[[Other]]") {
		t.Errorf("unrelated entry removed:\n%s", got)
	}
	if strings.Count(got, "relation:") != 1 {
		t.Errorf("relation line of removed entry left behind:\n%s", got)
	}
}

func TestNoteMalformedBlockIsNoop(t *testing.T) {
	for _, doc := range []string{
		"no frontmatter at all\n",
		"---\nstatus: todo\nnever terminated\n",
	} {
		got := Apply(doc, Operation{Kind: OpSetStatus, Target: noteTarget(), Status: task.StatusDone})
		if got != doc {
			t.Errorf("malformed block mutated: %q", got)
		}
	}
}
