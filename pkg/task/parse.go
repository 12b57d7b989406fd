package task

import (
	"strings"

	"github.com/taskweave/taskweave/pkg/marker"
)

// ParseInline parses one checklist line into a Task. The boolean result is
// false when the line is not a checklist task line at all.
//
// Status comes from the bracketed character; priority, star, identity, tags
// and dependency markers are extracted by scanning the body, so markers can
// appear in any order and coexist on one line.
func ParseInline(line, path string, lineNo int) (Task, bool) {
	m := checklistRe.FindStringSubmatch(line)
	if m == nil {
		return Task{}, false
	}

	status, ok := StatusFromCode(m[2][0])
	if !ok {
		status = StatusTodo
	}
	body := m[3]

	id := marker.OwnID(body)
	if id == "" {
		id = FallbackID(path, lineNo)
	}

	return Task{
		ID:            id,
		Kind:          KindInline,
		Summary:       marker.Strip(body),
		Text:          line,
		Tags:          marker.Tags(body),
		Status:        status,
		Priority:      marker.Priority(body),
		Link:          path,
		IncomingLinks: marker.Decode(body),
		Starred:       marker.Starred(body),
		Line:          lineNo,
	}, true
}

// ParseDocument parses every checklist line in a document's text.
// Line numbers are 1-based, matching editor conventions.
func ParseDocument(path, text string) []Task {
	var tasks []Task
	for i, line := range strings.Split(text, "\n") {
		if t, ok := ParseInline(line, path, i+1); ok {
			tasks = append(tasks, t)
		}
	}
	return tasks
}

// Resolver maps a cross-reference name (the inside of a [[wiki link]]) to a
// document path. The boolean result is false for unresolvable names.
type Resolver func(name string) (string, bool)

// Attributes is the structured frontmatter block describing a note task.
type Attributes struct {
	Status   string       `yaml:"status"`
	Priority string       `yaml:"priority,omitempty"`
	Starred  bool         `yaml:"starred,omitempty"`
	Tags     []string     `yaml:"tags,omitempty"`
	Blocked  []BlockedRef `yaml:"blockedBy,omitempty"`
}

// RelationFinishToStart is the only dependency relation the engine emits:
// the referenced task must finish before this one starts.
const RelationFinishToStart = "FINISHTOSTART"

// BlockedRef is one entry of a note's blockedBy list. Entries are written
// either as a bare "[[Title]]" reference or as a {uid, relation} pair; both
// decode into this struct.
type BlockedRef struct {
	UID      string `yaml:"uid"`
	Relation string `yaml:"relation,omitempty"`
}

// UnmarshalYAML accepts both the scalar and the mapping form.
func (r *BlockedRef) UnmarshalYAML(unmarshal func(any) error) error {
	var scalar string
	if err := unmarshal(&scalar); err == nil {
		r.UID = scalar
		r.Relation = RelationFinishToStart
		return nil
	}
	type plain BlockedRef
	var p plain
	if err := unmarshal(&p); err != nil {
		return err
	}
	*r = BlockedRef(p)
	if r.Relation == "" {
		r.Relation = RelationFinishToStart
	}
	return nil
}

// CrossReference extracts the referenced name from a "[[Title]]" or
// "[[Title|alias]]" form. Plain strings pass through unchanged.
func (r BlockedRef) CrossReference() string {
	name := strings.TrimSpace(r.UID)
	name = strings.TrimPrefix(name, "[[")
	name = strings.TrimSuffix(name, "]]")
	if i := strings.IndexByte(name, '|'); i >= 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}

// ParseNote builds a Task from a note document's frontmatter attributes.
// The task id is the document path; status, tags, priority and star come
// from the attribute block rather than line text. Priority "high" maps to
// the high-priority glyph, every other value (normal, low, none, absent)
// maps to no priority marker, mirroring the inline marker space.
//
// Dependency references resolve through resolve; entries whose
// cross-reference cannot be resolved are dropped.
func ParseNote(path, title string, attrs Attributes, resolve Resolver) Task {
	status, ok := StatusFromName(attrs.Status)
	if !ok {
		status = StatusTodo
	}

	priority := ""
	if attrs.Priority == "high" {
		priority = marker.GlyphHigh
	}

	var incoming []string
	if resolve != nil {
		for _, ref := range attrs.Blocked {
			if target, ok := resolve(ref.CrossReference()); ok {
				incoming = append(incoming, target)
			}
		}
	}

	return Task{
		ID:            path,
		Kind:          KindNote,
		Summary:       title,
		Text:          title,
		Tags:          attrs.Tags,
		Status:        status,
		Priority:      priority,
		Link:          path,
		IncomingLinks: incoming,
		Starred:       attrs.Starred,
	}
}
