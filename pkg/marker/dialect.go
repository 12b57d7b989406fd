package marker

import (
	"slices"
	"strings"
)

// Detect sniffs which dependency dialect a line uses. Dialects are tried in
// a fixed priority order: dataview, then csv, then individual. A line with
// no dependency marker at all reports DialectNone.
func Detect(line string) Dialect {
	if dvDependsRe.MatchString(line) {
		return DialectDataview
	}
	matches := blockedRe.FindAllStringSubmatch(line, -1)
	if len(matches) == 0 {
		return DialectNone
	}
	for _, m := range matches {
		if strings.Contains(m[1], ",") {
			return DialectCSV
		}
	}
	return DialectIndividual
}

// Decode extracts the dependency identifiers from a line, in order of
// appearance. The dataview field wins when present; otherwise every ⛔
// payload contributes its ids. Returns nil when no dependency marker exists.
func Decode(line string) []string {
	if m := dvDependsRe.FindStringSubmatch(line); m != nil {
		return splitIDs(m[1])
	}
	var ids []string
	for _, m := range blockedRe.FindAllStringSubmatch(line, -1) {
		ids = append(ids, splitIDs(m[1])...)
	}
	return ids
}

// Encode renders a dependency marker for ids in the given dialect.
// DialectNone and DialectIndividual both produce individual markers.
func Encode(ids []string, d Dialect) string {
	if len(ids) == 0 {
		return ""
	}
	switch d {
	case DialectDataview:
		return "[[dependsOn:: " + strings.Join(ids, ", ") + "]]"
	case DialectCSV:
		return GlyphBlocked + " " + strings.Join(ids, ",")
	default:
		parts := make([]string, len(ids))
		for i, id := range ids {
			parts[i] = GlyphBlocked + " " + id
		}
		return strings.Join(parts, " ")
	}
}

// Add rewrites line so its dependency set includes id, following policy.
//
// Markers already present in another dialect are updated in place, never
// duplicated: an existing dataview field absorbs the new id regardless of
// policy, an existing csv list grows by one entry, and existing individual
// markers either gain a sibling (individual policy) or are converted into a
// single csv marker carrying every id (csv policy). With no marker present
// the policy dialect decides the form of the first marker written.
//
// Adding an id that is already present is a no-op.
func Add(line, id string, policy Dialect) string {
	existing := Decode(line)
	if slices.Contains(existing, id) {
		return line
	}

	ids := append(slices.Clone(existing), id)

	switch Detect(line) {
	case DialectDataview:
		return dvDependsRe.ReplaceAllString(line, Encode(ids, DialectDataview))

	case DialectCSV:
		return replaceBlockedMarkers(line, Encode(ids, DialectCSV))

	case DialectIndividual:
		if policy == DialectCSV {
			// Convert every individual marker into one csv marker.
			return replaceBlockedMarkers(line, Encode(ids, DialectCSV))
		}
		return tidyLine(line + " " + Encode([]string{id}, DialectIndividual))

	default:
		if policy == DialectNone {
			policy = DialectIndividual
		}
		return tidyLine(strings.TrimRight(line, " \t") + " " + Encode([]string{id}, policy))
	}
}

// Remove rewrites line so its dependency set no longer includes id.
// The marker shrinks in place; a marker whose last id is removed disappears
// entirely. Removing an id that is not present is a no-op.
func Remove(line, id string) string {
	existing := Decode(line)
	if !slices.Contains(existing, id) {
		return line
	}

	kept := make([]string, 0, len(existing)-1)
	for _, e := range existing {
		if e != id {
			kept = append(kept, e)
		}
	}

	switch Detect(line) {
	case DialectDataview:
		if len(kept) == 0 {
			return tidyLine(dvDependsRe.ReplaceAllString(line, ""))
		}
		return dvDependsRe.ReplaceAllString(line, Encode(kept, DialectDataview))

	case DialectCSV:
		if len(kept) == 0 {
			return tidyLine(blockedRe.ReplaceAllString(line, ""))
		}
		return replaceBlockedMarkers(line, Encode(kept, DialectCSV))

	default: // individual
		out := line
		for _, m := range blockedRe.FindAllStringSubmatch(line, -1) {
			if strings.TrimSpace(m[1]) == id {
				out = strings.Replace(out, m[0], "", 1)
				break
			}
		}
		return tidyLine(out)
	}
}

// replaceBlockedMarkers swaps the first ⛔ marker for replacement and drops
// any remaining ones, keeping the marker's position in the line stable.
func replaceBlockedMarkers(line, replacement string) string {
	first := true
	out := blockedRe.ReplaceAllStringFunc(line, func(string) string {
		if first {
			first = false
			return replacement
		}
		return ""
	})
	return tidyLine(out)
}

// splitIDs splits a comma-joined payload into trimmed, non-empty tokens.
func splitIDs(payload string) []string {
	var ids []string
	for _, p := range strings.Split(payload, ",") {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}

// tidyLine collapses interior space runs and trims trailing whitespace while
// preserving the line's leading indentation.
func tidyLine(s string) string {
	trimmed := strings.TrimLeft(s, " \t")
	indent := s[:len(s)-len(trimmed)]
	return indent + strings.TrimRight(spaceRunRe.ReplaceAllString(trimmed, " "), " \t")
}
