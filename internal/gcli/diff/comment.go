package diff

import "strings"

// Anchor pins a review comment to a span of one file's before- or
// after-image, per spec.md §4.8.
type Anchor struct {
	StartRow int
	EndRow   int
	IsInNew  bool
}

// Comment is one review comment localised within a Diff's hunk body.
type Comment struct {
	Path           string
	Before         Anchor
	After          Anchor
	DiffText       string // the verbatim diff line(s) the comment is anchored to
	Body           string
	DiffLineOffset int // 1-based position within the diff body
}

const (
	braceOpen  = "{"
	braceClose = "}"
)

func isSigilLine(l string) bool {
	if l == "" {
		return false
	}
	switch l[0] {
	case ' ', '+', '-', '\\':
		return true
	default:
		return false
	}
}

func stripQuote(l string) string {
	switch {
	case l == ">":
		return ""
	case strings.HasPrefix(l, "> "):
		return l[2:]
	case strings.HasPrefix(l, ">"):
		return l[1:]
	default:
		return l
	}
}

// walkerState tracks the before/after line cursors as a hunk body is
// walked top to bottom, plus the position counter backing DiffLineOffset.
type walkerState struct {
	oldLine  int
	newLine  int
	isInNew  bool
	position int
	lastLine string
}

func (w *walkerState) applySigil(line string) {
	w.position++
	w.lastLine = line
	if line == "" {
		return
	}
	switch line[0] {
	case ' ':
		w.oldLine++
		w.newLine++
		w.isInNew = true
	case '+':
		w.newLine++
		w.isInNew = true
	case '-':
		w.oldLine++
		w.isInNew = false
	case '\\':
		// "\ No newline at end of file" — consumes a position, moves nothing.
	}
}

// comments extracts every review comment anchored within this hunk's body.
// path is the file the surrounding Diff names (the "after" path is used
// for both sides, matching how forges resolve review-comment file paths).
func (h Hunk) comments(path string) []Comment {
	w := &walkerState{oldLine: h.RangeRStart, newLine: h.RangeAStart, isInNew: true, position: h.DiffLineOffset}

	var out []Comment
	i := 0
	for i < len(h.lines) {
		line := h.lines[i]
		if isSigilLine(line) {
			w.applySigil(line)
			i++
			continue
		}
		if line == braceOpen || line == braceClose {
			// Stray brace with no preceding comment block; treat as a
			// position-consuming no-op line.
			w.position++
			i++
			continue
		}

		// Gather the free-text comment block.
		var text []string
		for i < len(h.lines) && !isSigilLine(h.lines[i]) && h.lines[i] != braceOpen && h.lines[i] != braceClose {
			text = append(text, stripQuote(h.lines[i]))
			i++
		}

		c := Comment{
			Path:           path,
			Body:           strings.Join(text, "\n") + "\n",
			DiffLineOffset: w.position,
			Before:         Anchor{StartRow: w.oldLine, EndRow: w.oldLine, IsInNew: w.isInNew},
			After:          Anchor{StartRow: w.newLine, EndRow: w.newLine, IsInNew: w.isInNew},
		}

		if i < len(h.lines) && h.lines[i] == braceOpen {
			w.position++ // "{"
			i++
			diffStart := i
			for i < len(h.lines) && h.lines[i] != braceClose {
				w.applySigil(h.lines[i])
				i++
			}
			c.DiffText = strings.Join(h.lines[diffStart:i], "\n")
			if c.DiffText != "" {
				c.DiffText += "\n"
			}
			if i < len(h.lines) && h.lines[i] == braceClose {
				w.position++ // "}"
				i++
			}
			c.Before.EndRow = w.oldLine
			c.After.EndRow = w.newLine
			c.Before.IsInNew = w.isInNew
			c.After.IsInNew = w.isInNew
		} else if w.lastLine != "" {
			// Single-line anchor: the comment annotates the diff line
			// immediately preceding it.
			c.DiffText = w.lastLine + "\n"
		}

		out = append(out, c)
	}
	return out
}

// Comments returns every review comment anchored anywhere in the Diff,
// using AFile as the path both sides' anchors are reported against (forges
// resolve review comments against the post-image path), or RFile when the
// diff deletes the file.
func (d Diff) Comments() []Comment {
	path := d.AFile
	if d.DeletedFile {
		path = d.RFile
	}
	var out []Comment
	for _, h := range d.Hunks {
		out = append(out, h.comments(path)...)
	}
	return out
}
