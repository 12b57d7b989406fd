// Package marker implements the inline marker grammar shared by task lines.
//
// A marker is a short textual token embedded in a document line that encodes
// one semantic fact about the task on that line. The grammar is:
//
//	priority   ⏫ (high) or 🔽 (low); absence means normal
//	star       ⭐
//	own id     🆔 abc123            or  [[id:: abc123]]
//	dependency ⛔ abc123            (individual, repeatable)
//	           ⛔ abc123,def456     (csv)
//	           [[dependsOn:: abc123, def456]]  (dataview)
//	tag        #token (no embedded whitespace)
//
// Identifiers are six lowercase base36 characters. The three dependency
// encodings are interchangeable dialects; see [Detect], [Decode], and [Add]
// for the dialect resolution rules.
//
// All rewrite helpers in this package are idempotent: applying the same
// addition twice yields the same line as applying it once, and markers are
// never duplicated.
package marker

import (
	"math/big"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Marker glyphs.
const (
	GlyphID      = "🆔"
	GlyphBlocked = "⛔"
	GlyphStar    = "⭐"
	GlyphHigh    = "⏫"
	GlyphLow     = "🔽"
)

// Dialect identifies one of the three dependency marker encodings.
type Dialect string

// Dependency marker dialects. DialectNone means no dependency marker is
// present on a line; it is also the zero value.
const (
	DialectNone       Dialect = ""
	DialectIndividual Dialect = "individual"
	DialectCSV        Dialect = "csv"
	DialectDataview   Dialect = "dataview"
)

// Valid reports whether d names a concrete dialect usable as a write policy.
func (d Dialect) Valid() bool {
	switch d {
	case DialectIndividual, DialectCSV, DialectDataview:
		return true
	}
	return false
}

var (
	// Own-identity markers: 🆔 abc123 or [[id:: abc123]].
	ownIDRe    = regexp.MustCompile(GlyphID + `\s*([a-z0-9]+)`)
	dvOwnIDRe  = regexp.MustCompile(`\[\[id::\s*([a-z0-9]+)\s*\]\]`)
	ownIDAnyRe = regexp.MustCompile(GlyphID + `\s*[a-z0-9]+|\[\[id::\s*[a-z0-9]+\s*\]\]`)

	// Dependency markers: ⛔ payload (one id or a comma list) and the
	// dataview field form.
	blockedRe   = regexp.MustCompile(GlyphBlocked + `\s*([a-z0-9]+(?:\s*,\s*[a-z0-9]+)*)`)
	dvDependsRe = regexp.MustCompile(`\[\[dependsOn::\s*([^\]]*?)\s*\]\]`)

	// Tags: #token with no embedded whitespace.
	tagRe = regexp.MustCompile(`#([^\s#]+)`)

	// Wiki links, stripped for emptiness checks only.
	wikiLinkRe = regexp.MustCompile(`\[\[[^\]]*\]\]`)

	spaceRunRe = regexp.MustCompile(`[ \t]{2,}`)
)

// NewID returns a fresh six-character lowercase base36 identifier.
// Entropy comes from a random UUID so collisions within a vault are
// vanishingly unlikely.
func NewID() string {
	u := uuid.New()
	s := new(big.Int).SetBytes(u[:]).Text(36)
	return s[len(s)-6:]
}

// OwnID extracts the task's own short identifier from a line.
// The emoji form wins over the dataview form when both are present.
// Returns "" when the line declares no identifier.
func OwnID(line string) string {
	if m := ownIDRe.FindStringSubmatch(line); m != nil {
		return m[1]
	}
	if m := dvOwnIDRe.FindStringSubmatch(line); m != nil {
		return m[1]
	}
	return ""
}

// SetOwnID appends an identity marker to a line that has none.
// Lines that already declare an identifier are returned unchanged.
// Under the dataview policy the structured field form is written; every
// other policy writes the emoji form.
func SetOwnID(line, id string, policy Dialect) string {
	if OwnID(line) != "" {
		return line
	}
	m := GlyphID + " " + id
	if policy == DialectDataview {
		m = "[[id:: " + id + "]]"
	}
	return strings.TrimRight(line, " \t") + " " + m
}

// Priority extracts the priority glyph from a line, or "" for normal.
func Priority(line string) string {
	if strings.Contains(line, GlyphHigh) {
		return GlyphHigh
	}
	if strings.Contains(line, GlyphLow) {
		return GlyphLow
	}
	return ""
}

// Starred reports whether the line carries a star marker.
func Starred(line string) bool {
	return strings.Contains(line, GlyphStar)
}

// Tags returns every #tag token on the line in order of appearance.
func Tags(line string) []string {
	var tags []string
	for _, m := range tagRe.FindAllStringSubmatch(line, -1) {
		tags = append(tags, m[1])
	}
	return tags
}

// Strip removes every known marker from a line: identity, star, priority,
// dependency markers in all dialects, tags, and wiki links. What remains is
// the human text of the task; a line that strips to whitespace carries no
// content of its own.
func Strip(line string) string {
	s := dvDependsRe.ReplaceAllString(line, "")
	s = blockedRe.ReplaceAllString(s, "")
	s = ownIDAnyRe.ReplaceAllString(s, "")
	s = wikiLinkRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, GlyphStar, "")
	s = strings.ReplaceAll(s, GlyphHigh, "")
	s = strings.ReplaceAll(s, GlyphLow, "")
	s = tagRe.ReplaceAllString(s, "")
	return CollapseSpaces(s)
}

// CollapseSpaces normalizes runs of spaces and tabs to single spaces and
// trims the result. Used after marker removal so surgical edits leave no
// double gaps behind.
func CollapseSpaces(s string) string {
	return strings.TrimSpace(spaceRunRe.ReplaceAllString(s, " "))
}
