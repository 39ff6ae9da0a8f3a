// Package gclidomain carries the strongly typed records spec.md §3 names,
// in the shape the fetch pipeline's parsers populate and the facade
// returns. Grounded on the teacher's internal/domain package for the Go
// idiom of small owned-field value types, generalised from a single
// LLM-review Finding/Review pair to the full multi-forge vocabulary.
package gclidomain

// Quirk is a per-resource-kind bitmask telling the renderer which summary
// fields are meaningful on the active backend (spec.md §4.5). A caller may
// observe a documented-absent field as its zero value; it must not infer
// meaning from that absence.
type Quirk uint32

const (
	QuirkHasMilestone Quirk = 1 << iota
	QuirkHasAssignees
	QuirkHasCoverage
	QuirkHasNodeID
	QuirkHasDraft
	QuirkHasAutomerge
	QuirkHasStartSha
)

// Issue mirrors spec.md §3's Issue record. IsPR lets GitHub's conflation of
// issues and pull requests be filtered out.
type Issue struct {
	Number        uint64
	Title         string
	Body          string
	Author        string
	State         string
	CreatedAt     int64
	ClosedAt      int64 // zero while open; see SPEC_FULL.md §3
	CommentsCount int
	Locked        bool
	URL           string
	Product       string
	Component     string
	Milestone     string
	Labels        []Label
	Assignees     []string
	IsPR          bool
	Quirks        Quirk
}

// PullRequest mirrors spec.md §3's Pull request record.
type PullRequest struct {
	Number        uint64
	NodeID        string
	Title         string
	Body          string
	Author        string
	State         string
	CreatedAt     int64
	HeadLabel     string
	BaseLabel     string
	HeadSha       string
	BaseSha       string
	StartSha      string
	Milestone     string
	Comments      int
	Additions     int
	Deletions     int
	Commits       int
	ChangedFiles  int
	Coverage      float64
	WebURL        string
	Labels        []Label
	Reviewers     []string
	Merged        bool
	Mergeable     bool
	Draft         bool
	Automerge     bool
	CIStatus      string // SPEC_FULL.md §3 supplement: pass/fail/pending
	Quirks        Quirk
}

// Commit is a pull request's commit summary.
type Commit struct {
	ShortSha string
	LongSha  string
	Message  string
	Date     int64
	Author   string
	Email    string
}

// Comment is a review/issue comment.
type Comment struct {
	ID     uint64
	Author string
	Date   int64
	Body   string
}

// CommentSubmission targets either an issue or a pull request.
type CommentSubmission struct {
	Body string
}

// Label mirrors spec.md §3's Label record; Colour is 24-bit RGB.
type Label struct {
	ID          uint64
	Name        string
	Description string
	Colour      uint32
}

// Milestone mirrors spec.md §3's Milestone record.
type Milestone struct {
	ID                uint64
	Title             string
	Description       string
	State             string
	CreatedAt         int64
	UpdatedAt         int64
	DueDate           int64
	Expired           bool
	OpenIssuesCount   int
	ClosedIssuesCount int
	WebURL            string
}

// Fork mirrors spec.md §3's Fork record.
type Fork struct {
	Owner     string
	Repo      string
	URL       string
	CreatedAt int64
}

// Repo mirrors spec.md §3's Repo record.
type Repo struct {
	Owner      string
	Name       string
	Visibility string
	URL        string
	CreatedAt  int64
}

// Pipeline mirrors spec.md §3's Pipeline record (GitLab-only capability).
type Pipeline struct {
	ID        uint64
	Status    string
	Ref       string
	CreatedAt int64
	WebURL    string
}

// Job mirrors spec.md §3's Job record (GitLab-only capability).
type Job struct {
	ID        uint64
	Name      string
	Status    string
	Stage     string
	CreatedAt int64
}

// CheckRun unifies GitHub's checks API and GitLab's pipeline/job API behind
// the single `ci` verb, per SPEC_FULL.md's Open Question decision #3: a
// tagged variant rather than casting pipelines into a generic list.
type CheckRun struct {
	Kind      string // "pipeline" | "job" | "check"
	ID        uint64
	Name      string
	Status    string
	Ref       string
	CreatedAt int64
	WebURL    string
}

// Notification mirrors spec.md §3's Notification record.
type Notification struct {
	ID        uint64
	Unread    bool
	UpdatedAt int64
	Subject   string
	URL       string
}

// SSHKey mirrors spec.md §3's SSH key record, extended with the computed
// fingerprint (SPEC_FULL.md §4.11).
type SSHKey struct {
	ID          uint64
	Title       string
	Key         string
	Fingerprint string
	CreatedAt   int64
}
