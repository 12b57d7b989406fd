package task

import (
	"reflect"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/taskweave/taskweave/pkg/marker"
)

func TestParseInlineStatus(t *testing.T) {
	tests := []struct {
		line string
		want Status
	}{
		{"- [ ] open task", StatusTodo},
		{"- [/] running task", StatusInProgress},
		{"- [-] dropped task", StatusCanceled},
		{"- [x] finished task", StatusDone},
		{"- [X] finished task", StatusDone},
		{"- [?] unknown code", StatusTodo},
	}

	for _, tt := range tests {
		got, ok := ParseInline(tt.line, "doc.md", 1)
		if !ok {
			t.Fatalf("ParseInline(%q) not recognized", tt.line)
		}
		if got.Status != tt.want {
			t.Errorf("ParseInline(%q).Status = %v, want %v", tt.line, got.Status, tt.want)
		}
	}
}

func TestParseInlineRejectsNonTasks(t *testing.T) {
	for _, line := range []string{
		"plain prose line",
		"- bullet without checkbox",
		"# heading",
		"",
	} {
		if _, ok := ParseInline(line, "doc.md", 1); ok {
			t.Errorf("ParseInline(%q) = ok, want rejection", line)
		}
	}
}

func TestParseInlineMarkers(t *testing.T) {
	line := "- [ ] ship release ⏫ ⭐ #release #infra 🆔 abc123 ⛔ def456"
	got, ok := ParseInline(line, "plan.md", 7)
	if !ok {
		t.Fatal("line not recognized")
	}

	if got.ID != "abc123" {
		t.Errorf("ID = %q, want abc123", got.ID)
	}
	if got.Kind != KindInline {
		t.Errorf("Kind = %v, want inline", got.Kind)
	}
	if got.Priority != marker.GlyphHigh {
		t.Errorf("Priority = %q, want high glyph", got.Priority)
	}
	if !got.Starred {
		t.Error("Starred = false, want true")
	}
	if want := []string{"release", "infra"}; !reflect.DeepEqual(got.Tags, want) {
		t.Errorf("Tags = %v, want %v", got.Tags, want)
	}
	if want := []string{"def456"}; !reflect.DeepEqual(got.IncomingLinks, want) {
		t.Errorf("IncomingLinks = %v, want %v", got.IncomingLinks, want)
	}
	if got.Summary != "ship release" {
		t.Errorf("Summary = %q, want %q", got.Summary, "ship release")
	}
	if got.Link != "plan.md" || got.Line != 7 {
		t.Errorf("Link/Line = %q/%d, want plan.md/7", got.Link, got.Line)
	}
	if got.Text != line {
		t.Errorf("Text should keep the raw line, got %q", got.Text)
	}
}

func TestParseInlineMarkerOrderInsensitive(t *testing.T) {
	a, _ := ParseInline("- [ ] fix bug ⭐ ⏫ 🆔 abc123 #core", "a.md", 1)
	b, _ := ParseInline("- [ ] fix bug 🆔 abc123 #core ⏫ ⭐", "a.md", 1)

	if a.ID != b.ID || a.Priority != b.Priority || a.Starred != b.Starred {
		t.Errorf("marker extraction is order-sensitive: %+v vs %+v", a, b)
	}
	if !reflect.DeepEqual(a.Tags, b.Tags) {
		t.Errorf("tags differ by order: %v vs %v", a.Tags, b.Tags)
	}
}

func TestParseInlineFallbackID(t *testing.T) {
	got, _ := ParseInline("- [ ] no id here", "notes/today.md", 12)
	if got.ID != "notes/today.md:12" {
		t.Errorf("ID = %q, want positional fallback", got.ID)
	}
}

func TestParseInlineDataviewID(t *testing.T) {
	got, _ := ParseInline("- [ ] structured [[id:: xyz789]]", "a.md", 1)
	if got.ID != "xyz789" {
		t.Errorf("ID = %q, want xyz789", got.ID)
	}
}

func TestParseDocument(t *testing.T) {
	text := "# Plan\n\n- [ ] first 🆔 aaa111\nprose\n- [x] second ⛔ aaa111\n"
	tasks := ParseDocument("plan.md", text)

	if len(tasks) != 2 {
		t.Fatalf("ParseDocument found %d tasks, want 2", len(tasks))
	}
	if tasks[0].ID != "aaa111" || tasks[0].Line != 3 {
		t.Errorf("first task = %q line %d, want aaa111 line 3", tasks[0].ID, tasks[0].Line)
	}
	if tasks[1].Status != StatusDone || tasks[1].Line != 5 {
		t.Errorf("second task = %v line %d, want done line 5", tasks[1].Status, tasks[1].Line)
	}
	if want := []string{"aaa111"}; !reflect.DeepEqual(tasks[1].IncomingLinks, want) {
		t.Errorf("second task deps = %v, want %v", tasks[1].IncomingLinks, want)
	}
}

func TestParseNote(t *testing.T) {
	attrs := Attributes{
		Status:   "in_progress",
		Priority: "high",
		Starred:  true,
		Tags:     []string{"project"},
		Blocked: []BlockedRef{
			{UID: "[[Design Doc]]", Relation: RelationFinishToStart},
			{UID: "[[Missing]]"},
		},
	}
	resolve := func(name string) (string, bool) {
		if name == "Design Doc" {
			return "docs/design.md", true
		}
		return "", false
	}

	got := ParseNote("projects/engine.md", "Engine", attrs, resolve)

	if got.ID != "projects/engine.md" {
		t.Errorf("ID = %q, want the document path", got.ID)
	}
	if got.Kind != KindNote {
		t.Errorf("Kind = %v, want note", got.Kind)
	}
	if got.Status != StatusInProgress {
		t.Errorf("Status = %v, want in_progress", got.Status)
	}
	if got.Priority != marker.GlyphHigh {
		t.Errorf("Priority = %q, want high glyph", got.Priority)
	}
	if !got.Starred {
		t.Error("Starred = false, want true")
	}
	if want := []string{"docs/design.md"}; !reflect.DeepEqual(got.IncomingLinks, want) {
		t.Errorf("IncomingLinks = %v, want resolved path only", got.IncomingLinks)
	}
}

func TestParseNotePriorityMapping(t *testing.T) {
	for _, p := range []string{"normal", "low", "none", ""} {
		got := ParseNote("n.md", "N", Attributes{Priority: p}, nil)
		if got.Priority != "" {
			t.Errorf("priority %q mapped to %q, want empty", p, got.Priority)
		}
	}
	got := ParseNote("n.md", "N", Attributes{Priority: "high"}, nil)
	if got.Priority != marker.GlyphHigh {
		t.Errorf("priority high mapped to %q, want glyph", got.Priority)
	}
}

func TestBlockedRefYAMLForms(t *testing.T) {
	src := "blockedBy:\n  - \"[[Plain Ref]]\"\n  - uid: \"[[Pair Ref]]\"\n    relation: FINISHTOSTART\n"

	var attrs Attributes
	if err := yaml.Unmarshal([]byte(src), &attrs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(attrs.Blocked) != 2 {
		t.Fatalf("decoded %d refs, want 2", len(attrs.Blocked))
	}
	if attrs.Blocked[0].CrossReference() != "Plain Ref" {
		t.Errorf("scalar form ref = %q", attrs.Blocked[0].CrossReference())
	}
	if attrs.Blocked[0].Relation != RelationFinishToStart {
		t.Errorf("scalar form relation = %q, want default", attrs.Blocked[0].Relation)
	}
	if attrs.Blocked[1].CrossReference() != "Pair Ref" {
		t.Errorf("pair form ref = %q", attrs.Blocked[1].CrossReference())
	}
}

func TestCrossReferenceAlias(t *testing.T) {
	r := BlockedRef{UID: "[[Real Name|shown text]]"}
	if got := r.CrossReference(); got != "Real Name" {
		t.Errorf("CrossReference = %q, want %q", got, "Real Name")
	}
}

func TestIsEmpty(t *testing.T) {
	tests := []struct {
		name string
		line string
		want bool
	}{
		{"plain content", "- [ ] write docs", false},
		{"markers only", "- [ ] ⭐ ⏫ 🆔 abc123 #tag", true},
		{"dependency only", "- [ ] ⛔ abc123", true},
		{"blank body", "- [ ] ", true},
		{"content with markers", "- [ ] real work ⭐", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tk, ok := ParseInline(tt.line, "a.md", 1)
			if !ok {
				t.Fatalf("line not recognized: %q", tt.line)
			}
			if got := tk.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}

	note := ParseNote("n.md", "", Attributes{}, nil)
	if !note.IsEmpty() {
		t.Error("note with empty title should be empty")
	}
}

func TestStatusRoundTrip(t *testing.T) {
	for _, s := range []Status{StatusTodo, StatusInProgress, StatusDone, StatusCanceled} {
		got, ok := StatusFromCode(s.Code())
		if !ok || got != s {
			t.Errorf("StatusFromCode(%q.Code()) = %v/%v", s, got, ok)
		}
	}
}
