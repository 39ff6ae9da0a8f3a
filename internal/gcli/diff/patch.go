package diff

import (
	"strings"

	"github.com/herrhotzenplotz/gcli-go/internal/gclierr"
)

// Patch is one git-format-patch email: an optional "From <hash> Mon Sep 17
// 00:00:00 2001" header, RFC-2822-ish From/Date/Subject lines, a free-form
// body, a diffstat prelude, and one or more diffs (spec.md §4.8).
type Patch struct {
	CommitHash string
	Subject    string
	Body       string
	Metadata   map[string]string // "GCLI: key value" lines found in the prelude
	Diffs      []Diff
}

const fromLineSentinel = "Mon Sep 17 00:00:00 2001"

// ParsePatch parses a single patch buffer, as produced by `git format-patch`
// or gcli's own pr-diff/review-fetch commands.
func ParsePatch(text string) (Patch, error) {
	c := newCursor(text)
	p := Patch{Metadata: map[string]string{}}

	if !c.eof() && strings.HasPrefix(c.peek(), "From ") && strings.Contains(c.peek(), fromLineSentinel) {
		line := c.next()
		fields := strings.Fields(line)
		if len(fields) >= 2 {
			p.CommitHash = fields[1]
		}
	}

	var bodyLines []string
	for !c.eof() {
		l := c.peek()
		if isDiffGitLine(l) {
			break
		}
		if strings.HasPrefix(l, "Subject: ") {
			p.Subject = strings.TrimPrefix(l, "Subject: ")
		} else if strings.HasPrefix(l, "GCLI: ") {
			kv := strings.SplitN(strings.TrimPrefix(l, "GCLI: "), " ", 2)
			if len(kv) == 2 {
				p.Metadata[kv[0]] = kv[1]
			}
		} else if l != "---" {
			bodyLines = append(bodyLines, l)
		}
		c.next()
	}
	p.Body = strings.Join(bodyLines, "\n")

	for !c.eof() && isDiffGitLine(c.peek()) {
		d, err := parseDiffAt(c)
		if err != nil {
			return Patch{}, err
		}
		p.Diffs = append(p.Diffs, d)
	}

	return p, nil
}

// Comments returns every review comment anchored anywhere in the patch.
func (p Patch) Comments() []Comment {
	var out []Comment
	for _, d := range p.Diffs {
		out = append(out, d.Comments()...)
	}
	return out
}

// PatchSeries is an ordered sequence of Patches, as produced when a pull
// request spans more than one commit (spec.md §4.8).
type PatchSeries struct {
	Patches  []Patch
	Metadata map[string]string // "GCLI: key value" lines from the series prelude
}

// ParsePatchSeries splits text on "From <hash> Mon Sep 17 00:00:00 2001"
// boundaries and parses each segment as a Patch. The free text before the
// first boundary is the series prelude; its "GCLI: key value" lines are
// surfaced as Metadata (spec.md §4.8's series-prelude side channel, used by
// the review engine to recover a GitLab submission's base/start/head shas).
func ParsePatchSeries(text string) (PatchSeries, error) {
	lines := strings.Split(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	var boundaries []int
	for i, l := range lines {
		if strings.HasPrefix(l, "From ") && strings.Contains(l, fromLineSentinel) {
			boundaries = append(boundaries, i)
		}
	}
	if len(boundaries) == 0 {
		return PatchSeries{}, gclierr.Parsef("patch series contains no 'From <hash> %s' boundary", fromLineSentinel)
	}

	series := PatchSeries{Metadata: map[string]string{}}
	for _, l := range lines[:boundaries[0]] {
		if strings.HasPrefix(l, "GCLI: ") {
			kv := strings.SplitN(strings.TrimPrefix(l, "GCLI: "), " ", 2)
			if len(kv) == 2 {
				series.Metadata[kv[0]] = kv[1]
			}
		}
	}

	for i, start := range boundaries {
		end := len(lines)
		if i+1 < len(boundaries) {
			end = boundaries[i+1]
		}
		segment := strings.Join(lines[start:end], "\n")
		p, err := ParsePatch(segment)
		if err != nil {
			return PatchSeries{}, err
		}
		series.Patches = append(series.Patches, p)
	}
	return series, nil
}

// Comments returns every review comment anchored anywhere in the series, in
// patch order.
func (s PatchSeries) Comments() []Comment {
	var out []Comment
	for _, p := range s.Patches {
		out = append(out, p.Comments()...)
	}
	return out
}
