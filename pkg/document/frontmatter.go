package document

import (
	"strings"

	"github.com/taskweave/taskweave/pkg/task"
)

// fieldOrder is the fixed key ordering of the frontmatter attribute block.
// New fields are inserted after the last present field that precedes them
// in this order.
var fieldOrder = []string{"status", "priority", "starred", "tags", "blockedBy"}

// applyNote rewrites a note document's frontmatter attribute block.
// Documents without a complete block (missing or unterminated delimiters)
// are returned unchanged.
func applyNote(text string, op Operation) string {
	lines := strings.Split(text, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return text
	}
	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			end = i
			break
		}
	}
	if end < 0 {
		return text
	}

	block := make([]string, end-1)
	copy(block, lines[1:end])

	block, changed := mutateBlock(block, op)
	if !changed {
		return text
	}

	out := make([]string, 0, len(lines)+2)
	out = append(out, lines[0])
	out = append(out, block...)
	out = append(out, lines[end:]...)
	return strings.Join(out, "\n")
}

func mutateBlock(block []string, op Operation) ([]string, bool) {
	switch op.Kind {
	case OpSetStatus:
		return setScalar(block, "status", string(op.Status))

	case OpAddTag:
		return addListItem(block, "tags", "  - "+op.Tag)

	case OpRemoveTag:
		return removeListItem(block, "tags", op.Tag)

	case OpAddStar:
		return setStarred(block, true)

	case OpRemoveStar:
		return setStarred(block, false)

	case OpAddDependency:
		return addBlockedRef(block, op.DependencyRef)

	case OpRemoveDependency:
		return removeBlockedRef(block, op)
	}
	return block, false
}

// =============================================================================
// Field helpers
// =============================================================================

// findField returns the index of the top-level line declaring key, or -1.
func findField(block []string, key string) int {
	prefix := key + ":"
	for i, l := range block {
		if strings.HasPrefix(l, prefix) {
			return i
		}
	}
	return -1
}

// fieldEnd returns the exclusive end of the field starting at idx: the next
// top-level line. List items and nested mappings are indented continuation
// lines and belong to the field.
func fieldEnd(block []string, idx int) int {
	i := idx + 1
	for i < len(block) {
		l := block[i]
		if strings.TrimSpace(l) != "" && !strings.HasPrefix(l, " ") && !strings.HasPrefix(l, "\t") {
			return i
		}
		i++
	}
	return i
}

// insertIndex returns where a new key belongs under the fixed field order:
// directly after the last present field that precedes it.
func insertIndex(block []string, key string) int {
	at := 0
	for _, k := range fieldOrder {
		if k == key {
			break
		}
		if idx := findField(block, k); idx >= 0 {
			at = fieldEnd(block, idx)
		}
	}
	return at
}

func insertLines(block []string, at int, lines ...string) []string {
	out := make([]string, 0, len(block)+len(lines))
	out = append(out, block[:at]...)
	out = append(out, lines...)
	out = append(out, block[at:]...)
	return out
}

// setScalar sets key to value, creating the field at its ordered position
// when absent. Reports whether the block changed.
func setScalar(block []string, key, value string) ([]string, bool) {
	line := key + ": " + value
	if idx := findField(block, key); idx >= 0 {
		if block[idx] == line {
			return block, false
		}
		block[idx] = line
		return block, true
	}
	return insertLines(block, insertIndex(block, key), line), true
}

// setStarred sets the starred boolean. A missing field is created after the
// priority field when present, otherwise at the end of the block.
func setStarred(block []string, starred bool) ([]string, bool) {
	value := "false"
	if starred {
		value = "true"
	}
	line := "starred: " + value

	if idx := findField(block, "starred"); idx >= 0 {
		if block[idx] == line {
			return block, false
		}
		block[idx] = line
		return block, true
	}

	at := len(block)
	if idx := findField(block, "priority"); idx >= 0 {
		at = fieldEnd(block, idx)
	}
	return insertLines(block, at, line), true
}

// listItems returns the indices of the list item lines of the field at idx.
func listItems(block []string, idx int) []int {
	var items []int
	for i := idx + 1; i < fieldEnd(block, idx); i++ {
		if strings.HasPrefix(strings.TrimLeft(block[i], " \t"), "- ") {
			items = append(items, i)
		}
	}
	return items
}

// itemValue extracts the scalar value of a two-space-indented list item.
func itemValue(line string) string {
	v := strings.TrimSpace(line)
	v = strings.TrimPrefix(v, "- ")
	return strings.Trim(strings.TrimSpace(v), `"`)
}

// addListItem appends item under key, creating the field when absent.
// Adding a value that is already listed is a no-op.
func addListItem(block []string, key, item string) ([]string, bool) {
	value := itemValue(item)
	idx := findField(block, key)
	if idx < 0 {
		return insertLines(block, insertIndex(block, key), key+":", item), true
	}
	items := listItems(block, idx)
	for _, i := range items {
		if itemValue(block[i]) == value {
			return block, false
		}
	}
	return insertLines(block, fieldEnd(block, idx), item), true
}

// removeListItem removes the item holding value from key's list.
// A missing field or value is a no-op; the field itself is left in place.
func removeListItem(block []string, key, value string) ([]string, bool) {
	idx := findField(block, key)
	if idx < 0 {
		return block, false
	}
	for _, i := range listItems(block, idx) {
		if itemValue(block[i]) == value {
			return append(block[:i], block[i+1:]...), true
		}
	}
	return block, false
}

// =============================================================================
// blockedBy: dependency references
// =============================================================================

// refName extracts the cross-reference name from a "[[Title]]" form.
func refName(ref string) string {
	return task.BlockedRef{UID: ref}.CrossReference()
}

// itemUID extracts the uid of a blockedBy list item, which is either a bare
// scalar entry or the "- uid:" head of a {uid, relation} pair.
func itemUID(line string) string {
	v := strings.TrimSpace(line)
	v = strings.TrimPrefix(v, "- ")
	v = strings.TrimPrefix(v, "uid:")
	return strings.Trim(strings.TrimSpace(v), `"`)
}

// addBlockedRef appends a {uid, relation} entry for ref under blockedBy,
// creating the field when absent. An entry referencing the same document is
// a no-op.
func addBlockedRef(block []string, ref string) ([]string, bool) {
	entry := []string{
		`  - uid: "` + ref + `"`,
		"    relation: " + task.RelationFinishToStart,
	}

	idx := findField(block, "blockedBy")
	if idx < 0 {
		lines := append([]string{"blockedBy:"}, entry...)
		return insertLines(block, insertIndex(block, "blockedBy"), lines...), true
	}
	for _, i := range listItems(block, idx) {
		if refName(itemUID(block[i])) == refName(ref) {
			return block, false
		}
	}
	return insertLines(block, fieldEnd(block, idx), entry...), true
}

// removeBlockedRef removes the blockedBy entry whose reference resolves to
// the operation's dependency path. Entries that cannot be resolved are
// matched by reference name instead. Missing field or entry is a no-op.
func removeBlockedRef(block []string, op Operation) ([]string, bool) {
	idx := findField(block, "blockedBy")
	if idx < 0 {
		return block, false
	}

	matches := func(uid string) bool {
		name := refName(uid)
		if op.Resolve != nil && op.DependencyPath != "" {
			if path, ok := op.Resolve(name); ok {
				return path == op.DependencyPath
			}
		}
		return op.DependencyRef != "" && name == refName(op.DependencyRef)
	}

	items := listItems(block, idx)
	end := fieldEnd(block, idx)
	for n, i := range items {
		if !matches(itemUID(block[i])) {
			continue
		}
		// Remove the item line plus its continuation lines (relation).
		next := end
		if n+1 < len(items) {
			next = items[n+1]
		}
		return append(block[:i], block[next:]...), true
	}
	return block, false
}
