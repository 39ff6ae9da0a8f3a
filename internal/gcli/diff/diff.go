// Package diff implements the unified-diff / git-format-patch parser and
// review-comment localiser described in spec.md §4.8. It is grounded on
// the teacher's internal/diff.Parse (the baseline hunk/line-number walker)
// generalised far beyond a single-file GitHub-position lookup, and on
// original_source/tests/difftests.c, which is the ground truth for the
// patch-series grammar and the comment-localisation semantics that the
// teacher's parser never needed.
package diff

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/herrhotzenplotz/gcli-go/internal/gclierr"
)

// Hunk is one `@@ … @@` region of a Diff (spec.md §3).
type Hunk struct {
	RangeRStart    int
	RangeRLength   int
	RangeAStart    int
	RangeALength   int
	DiffLineOffset int // 1-based position of this hunk's header within the diff body
	ContextInfo    string
	Body           string // verbatim body text, one sigil/brace/comment line per "\n"-terminated line

	lines []string // body split on "\n", sigil prefix retained
}

// Diff is one `diff --git a/<file_a> b/<file_b>` section (spec.md §3).
type Diff struct {
	FileA, FileB   string
	HashA, HashB   string
	FileMode       string
	NewFile        bool
	NewFileMode    string
	DeletedFile    bool
	RFile          string // the "---" side; "/dev/null" for a new file
	AFile          string // the "+++" side
	Hunks          []Hunk
}

var (
	diffGitHeaderRe = regexp.MustCompile(`^diff --git a/(.*) b/(.*)$`)
	indexRe         = regexp.MustCompile(`^index ([0-9a-fA-F]+)\.\.([0-9a-fA-F]+)(?: (\S+))?$`)
	hunkHeaderRe    = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@ ?(.*)$`)
)

// cursor walks a patch buffer line by line, tracking a 1-based line-within-
// current-diff-body position so hunks (and, downstream, comments) can
// record spec.md's diff_line_offset.
type cursor struct {
	lines []string
	pos   int
}

func newCursor(text string) *cursor {
	// Split on "\n"; a trailing empty element from a final newline is kept
	// out since it never carries content.
	lines := strings.Split(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return &cursor{lines: lines}
}

func (c *cursor) eof() bool        { return c.pos >= len(c.lines) }
func (c *cursor) peek() string     { return c.lines[c.pos] }
func (c *cursor) next() string     { l := c.lines[c.pos]; c.pos++; return l }
func (c *cursor) row() int         { return c.pos + 1 }

func isDiffGitLine(l string) bool { return strings.HasPrefix(l, "diff --git ") }
func isFromLine(l string) bool {
	return strings.HasPrefix(l, "From ") && strings.Contains(l, "Mon Sep 17 00:00:00 2001")
}
func isHunkHeader(l string) bool { return strings.HasPrefix(l, "@@") }

// parseDiffAt parses a single `diff --git …` section starting at the
// cursor's current position. It stops before the next diff/patch boundary
// or at EOF.
func parseDiffAt(c *cursor) (Diff, error) {
	if c.eof() || !isDiffGitLine(c.peek()) {
		return Diff{}, gclierr.Parsef("expected 'diff --git' line at row %d", c.row())
	}
	header := c.next()
	m := diffGitHeaderRe.FindStringSubmatch(header)
	if m == nil {
		return Diff{}, gclierr.Parsef("malformed 'diff --git' header: %q", header)
	}
	d := Diff{FileA: m[1], FileB: m[2]}

	for !c.eof() {
		l := c.peek()
		switch {
		case strings.HasPrefix(l, "new file mode "):
			d.NewFile = true
			d.NewFileMode = strings.TrimPrefix(l, "new file mode ")
			c.next()
		case strings.HasPrefix(l, "deleted file mode "):
			d.DeletedFile = true
			c.next()
		case strings.HasPrefix(l, "index "):
			if im := indexRe.FindStringSubmatch(l); im != nil {
				d.HashA, d.HashB = im[1], im[2]
				if im[3] != "" {
					d.FileMode = im[3]
				}
			}
			c.next()
		case strings.HasPrefix(l, "--- "):
			d.RFile = trimGitPrefix(strings.TrimPrefix(l, "--- "))
			c.next()
		case strings.HasPrefix(l, "+++ "):
			d.AFile = trimGitPrefix(strings.TrimPrefix(l, "+++ "))
			c.next()
			goto hunks
		default:
			return Diff{}, gclierr.Parsef("unexpected line in diff header at row %d: %q", c.row(), l)
		}
	}

hunks:
	if !c.eof() && !isHunkHeader(c.peek()) && !isDiffGitLine(c.peek()) {
		return Diff{}, gclierr.Parsef("comment text found before the first hunk header in diff body at row %d: %q", c.row(), c.peek())
	}

	pos := 0
	for !c.eof() && isHunkHeader(c.peek()) {
		h, err := parseHunkAt(c, &pos)
		if err != nil {
			return Diff{}, err
		}
		d.Hunks = append(d.Hunks, h)
	}

	return d, nil
}

// ParseDiff parses exactly one diff section from a standalone buffer (used
// directly by tests and by callers that already isolated one diff).
func ParseDiff(text string) (Diff, error) {
	c := newCursor(text)
	return parseDiffAt(c)
}

func trimGitPrefix(path string) string {
	for _, prefix := range []string{"a/", "b/"} {
		if strings.HasPrefix(path, prefix) {
			return strings.TrimPrefix(path, prefix)
		}
	}
	return path
}

// parseHunkAt parses one hunk and advances *pos, the running count of
// header+body "position" lines within the enclosing diff: pos is
// incremented once for this hunk's own header, then once per sigil/brace
// body line, matching the scheme walkerState.applySigil uses to derive
// comment DiffLineOffset values relative to the same scale.
func parseHunkAt(c *cursor, pos *int) (Hunk, error) {
	header := c.next()
	m := hunkHeaderRe.FindStringSubmatch(header)
	if m == nil {
		return Hunk{}, gclierr.Parsef("malformed hunk header: %q", header)
	}
	*pos++
	h := Hunk{DiffLineOffset: *pos, ContextInfo: m[5]}
	h.RangeRStart, _ = strconv.Atoi(m[1])
	h.RangeRLength = lengthOrDefault(m[2])
	h.RangeAStart, _ = strconv.Atoi(m[3])
	h.RangeALength = lengthOrDefault(m[4])

	var bodyLines []string
	for !c.eof() {
		l := c.peek()
		if isHunkHeader(l) || isDiffGitLine(l) || isFromLine(l) {
			break
		}
		bodyLines = append(bodyLines, c.next())
	}
	h.lines = bodyLines
	if len(bodyLines) > 0 {
		h.Body = strings.Join(bodyLines, "\n") + "\n"
	}
	*pos += countPositionLines(bodyLines)
	return h, nil
}

// countPositionLines counts the body lines that consume a position slot:
// the four diff sigils and the review-comment brace delimiters. Free-text
// comment lines are excluded.
func countPositionLines(lines []string) int {
	n := 0
	for _, l := range lines {
		if isSigilLine(l) || l == braceOpen || l == braceClose {
			n++
		}
	}
	return n
}

func lengthOrDefault(s string) int {
	if s == "" {
		return 1
	}
	n, _ := strconv.Atoi(s)
	return n
}
