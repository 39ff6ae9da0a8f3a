// Package review implements the interactive review session spec.md §4.9
// describes: fetch a pull request's patch into a stable cache file, hand it
// to an external editor for annotation, parse the annotated patch back into
// anchored comments, and submit a backend-specific review. Grounded on
// original_source/src/cmd/pull_reviews.c's do_review_session (the five-step
// algorithm and djb2-based cache file naming) and the teacher's
// internal/adapter/store/sqlite package for the persisted session registry
// (internal/gcli/review/store).
package review

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/herrhotzenplotz/gcli-go/internal/gcli/diff"
	"github.com/herrhotzenplotz/gcli-go/internal/gcli/facade"
	"github.com/herrhotzenplotz/gcli-go/internal/gcli/review/store"
	"github.com/herrhotzenplotz/gcli-go/internal/gclictx"
	"github.com/herrhotzenplotz/gcli-go/internal/gclierr"
	"github.com/herrhotzenplotz/gcli-go/internal/gclipath"
	"github.com/herrhotzenplotz/gcli-go/internal/gcliog"
)

// Outcome is the reviewer's final decision, per pull_reviews.c's
// ask_for_review_state single-character prompt (a/r/c/p).
type Outcome int

const (
	OutcomeAccept Outcome = iota
	OutcomeRequestChanges
	OutcomeComment
	OutcomePostpone
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAccept:
		return "accept"
	case OutcomeRequestChanges:
		return "request-changes"
	case OutcomeComment:
		return "comment"
	case OutcomePostpone:
		return "postpone"
	default:
		return "unknown"
	}
}

// djb2 is Bernstein's hash, used verbatim from pull_reviews.c to compute a
// stable, short cache file name from an owner/repo pair.
func djb2(s string) uint64 {
	var hash uint64 = 5381
	for i := 0; i < len(s); i++ {
		hash = ((hash << 5) + hash) + uint64(s[i])
	}
	return hash
}

// CachePath returns the stable path a review's cached diff lives at:
// make_review_diff_file_name XORs the owner and repo hashes together and
// combines them with the pull id. The backend name is folded into the
// filename too, so github and gitlab reviews of a same-named owner/repo
// never collide in one cache directory (pull_reviews.c only ever ran
// against a single compiled-in backend, so it didn't need this).
func CachePath(cacheDir, backend, owner, repo string, pullID uint64) string {
	hash := djb2(owner) ^ djb2(repo)
	return filepath.Join(cacheDir, fmt.Sprintf("%s_%x_%d.diff", backend, hash, pullID))
}

// defaultCacheDir falls back to pull_reviews.c's get_review_file_cache_dir
// ($HOME/.cache/gcli/reviews) when no cache directory was configured.
func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "gcli", "reviews")
	}
	return filepath.Join(home, ".cache", "gcli", "reviews")
}

// Editor hands a cached diff file to the reviewer's tool of choice and
// blocks until they are done annotating it, mirroring
// gcli_editor_open_file.
type Editor interface {
	EditFile(ctx context.Context, path string) error
}

// CommandEditor shells out to $EDITOR (or a configured override), the way
// pull_reviews.c's gcli_editor_open_file does.
type CommandEditor struct {
	Command string
}

// EditFile runs the editor command against path, inheriting the calling
// process's standard streams so the editor can take over the terminal.
func (e CommandEditor) EditFile(ctx context.Context, path string) error {
	editor := e.Command
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}
	cmd := exec.CommandContext(ctx, editor, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return gclierr.Dataf("review", "editor %q exited with an error: %v", editor, err)
	}
	return nil
}

// Prompter asks the reviewer the two interactive questions a session
// needs: whether to resume or restart an in-progress review, and which
// outcome to submit. StdPrompter implements this over stdin/stdout the way
// pull_reviews.c's sn_yesno and ask_for_review_state do.
type Prompter interface {
	Confirm(question string) (bool, error)
	AskOutcome() (Outcome, error)
}

// StdPrompter reads single-character answers from an input stream,
// defaulting to stdin/stdout.
type StdPrompter struct {
	In  io.Reader
	Out io.Writer
}

func (p StdPrompter) reader() *bufio.Reader {
	in := p.In
	if in == nil {
		in = os.Stdin
	}
	return bufio.NewReader(in)
}

func (p StdPrompter) writer() io.Writer {
	if p.Out == nil {
		return os.Stdout
	}
	return p.Out
}

// Confirm asks a yes/no question, defaulting to "no" on EOF or an
// unrecognised answer, matching sn_yesno's conservative default.
func (p StdPrompter) Confirm(question string) (bool, error) {
	fmt.Fprintf(p.writer(), "%s [y/N] ", question)
	line, err := p.reader().ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

// AskOutcome reads a single a/r/c/p character, matching
// ask_for_review_state's accept/request-changes/comment/postpone choices.
// EOF is reported as an error, the way the original aborts the session.
func (p StdPrompter) AskOutcome() (Outcome, error) {
	fmt.Fprint(p.writer(), "Accept (a), request changes (r), comment only (c) or postpone (p)? ")
	line, err := p.reader().ReadString('\n')
	if err != nil && err != io.EOF {
		return 0, err
	}
	if line == "" && err == io.EOF {
		return 0, gclierr.Usagef("no answer given, aborting review")
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "a":
		return OutcomeAccept, nil
	case "r":
		return OutcomeRequestChanges, nil
	case "c":
		return OutcomeComment, nil
	case "p":
		return OutcomePostpone, nil
	default:
		return 0, gclierr.Usagef("unrecognised answer, expected one of a/r/c/p")
	}
}

// Session is one review-in-progress: a cached diff file, the reviewer's
// editor and prompt, and the facade used to fetch the patch and (for
// GitHub/GitLab) submit the finished review.
type Session struct {
	Facade   *facade.Facade
	Path     gclipath.Path
	CacheDir string
	Editor   Editor
	Prompt   Prompter
	Logger   gcliog.Logger

	// Registry is the optional persisted session list spec.md §4.10's
	// "gcli review list" reads from. A nil Registry disables tracking but
	// never fails a review.
	Registry *store.Store
}

func (s *Session) recordStatus(ctx context.Context, backend string, path gclipath.Path, cachePath, correlationID string, status store.Status, startedAt time.Time) {
	if s.Registry == nil {
		return
	}
	now := time.Now()
	if err := s.Registry.Upsert(ctx, store.Session{
		Backend:       backend,
		Owner:         path.Owner,
		Repo:          path.Repo,
		PullID:        path.ID,
		CachePath:     cachePath,
		Status:        status,
		CorrelationID: correlationID,
		StartedAt:     startedAt,
		UpdatedAt:     now,
	}); err != nil {
		gcliog.LogWarning(s.Logger, "failed to record review session status", map[string]any{"error": err.Error(), "status": string(status)})
	}
}

// normalizeComment NFC-normalises a comment's free text before it is
// submitted upstream, so two visually identical comments typed with
// different combining-character sequences are posted as the same text.
func normalizeComment(s string) string {
	return norm.NFC.String(s)
}

// Result summarises what a Run call decided and, unless postponed,
// submitted.
type Result struct {
	Outcome  Outcome
	Body     string
	Comments []diff.Comment
	CachePath string
}

func (s *Session) cacheDir() string {
	if s.CacheDir != "" {
		return s.CacheDir
	}
	return defaultCacheDir()
}

// Run executes the five-step review session pull_reviews.c's
// do_review_session implements: resolve the cache path, fetch-or-reuse the
// patch, hand it to the editor, parse the annotated patch back into
// comments, ask for an outcome, and (unless postponed) submit it.
func (s *Session) Run(ctx context.Context) (Result, error) {
	path, err := s.Facade.ResolvePath(s.Path)
	if err != nil {
		return Result{}, err
	}
	backend := s.Facade.Ctx.Forge.String()
	cachePath := CachePath(s.cacheDir(), backend, path.Owner, path.Repo, path.ID)
	correlationID := uuid.New().String()

	if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err != nil {
		return Result{}, gclierr.Dataf(backend, "creating review cache directory: %v", err)
	}

	lock := flock.New(cachePath + ".lock")
	if err := lock.Lock(); err != nil {
		return Result{}, gclierr.Dataf(backend, "locking review cache file: %v", err)
	}
	defer lock.Unlock()

	startedAt := time.Now()
	s.recordStatus(ctx, backend, path, cachePath, correlationID, store.StatusInProgress, startedAt)

	if _, err := os.Stat(cachePath); err == nil {
		restart, err := s.Prompt.Confirm("There seems to already be a review in progress. Start over?")
		if err != nil {
			return Result{}, err
		}
		if restart {
			if err := s.fetchPatch(ctx, path, cachePath); err != nil {
				return Result{}, err
			}
		}
	} else if os.IsNotExist(err) {
		if err := s.fetchPatch(ctx, path, cachePath); err != nil {
			return Result{}, err
		}
	} else {
		return Result{}, gclierr.Dataf(backend, "checking review cache file: %v", err)
	}

	gcliog.LogInfo(s.Logger, "opening review diff in editor", map[string]any{"path": cachePath, "correlation_id": correlationID})
	if err := s.Editor.EditFile(ctx, cachePath); err != nil {
		return Result{}, err
	}

	raw, err := os.ReadFile(cachePath)
	if err != nil {
		return Result{}, gclierr.Dataf(backend, "reading annotated review diff: %v", err)
	}
	series, err := diff.ParsePatchSeries(string(raw))
	if err != nil {
		return Result{}, err
	}
	comments := series.Comments()
	for i := range comments {
		comments[i].Body = normalizeComment(comments[i].Body)
	}

	gcliog.LogInfo(s.Logger, "review comments extracted", map[string]any{"count": len(comments), "correlation_id": correlationID})

	outcome, err := s.Prompt.AskOutcome()
	if err != nil {
		return Result{}, err
	}

	result := Result{Outcome: outcome, Comments: comments, CachePath: cachePath}
	if outcome == OutcomePostpone {
		gcliog.LogInfo(s.Logger, "review postponed, cache file left in place", map[string]any{"path": cachePath, "correlation_id": correlationID})
		s.recordStatus(ctx, backend, path, cachePath, correlationID, store.StatusPostponed, startedAt)
		return result, nil
	}

	body := normalizeComment(strings.Join(bodyLines(series), "\n"))
	result.Body = body

	metadata, err := s.resolveMetadata(ctx, path, series.Metadata)
	if err != nil {
		return Result{}, err
	}

	if err := submit(ctx, s.Facade.Ctx, path, outcome, body, comments, metadata); err != nil {
		return Result{}, err
	}
	gcliog.LogInfo(s.Logger, "review submitted", map[string]any{"outcome": outcome.String(), "correlation_id": correlationID})
	s.recordStatus(ctx, backend, path, cachePath, correlationID, store.StatusSubmitted, startedAt)
	return result, nil
}

// bodyLines collects each patch's free-text body in the series into the
// review's overall summary comment, the way a series of format-patch
// emails' commit messages read as one narrative.
func bodyLines(series diff.PatchSeries) []string {
	var out []string
	for _, p := range series.Patches {
		if p.Body != "" {
			out = append(out, p.Body)
		}
	}
	return out
}

// resolveMetadata fills in base_sha/start_sha/head_sha from the pull
// request itself when the series prelude didn't carry them (an editor can
// always be used to strip those lines, and older caches predate their
// introduction), needed by GitLab's discussion position object.
func (s *Session) resolveMetadata(ctx context.Context, path gclipath.Path, metadata map[string]string) (map[string]string, error) {
	if s.Facade.Ctx.Forge != gclictx.ForgeGitLab {
		return metadata, nil
	}
	if metadata["base_sha"] != "" && metadata["start_sha"] != "" && metadata["head_sha"] != "" {
		return metadata, nil
	}
	pr, err := s.Facade.GetPull(ctx, path)
	if err != nil {
		return nil, err
	}
	merged := map[string]string{}
	for k, v := range metadata {
		merged[k] = v
	}
	if merged["base_sha"] == "" {
		merged["base_sha"] = pr.BaseSha
	}
	if merged["start_sha"] == "" {
		merged["start_sha"] = pr.StartSha
	}
	if merged["head_sha"] == "" {
		merged["head_sha"] = pr.HeadSha
	}
	return merged, nil
}

func (s *Session) fetchPatch(ctx context.Context, path gclipath.Path, cachePath string) error {
	patch, err := s.Facade.PullGetPatch(ctx, path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(cachePath, []byte(patch), 0o644); err != nil {
		return gclierr.Dataf(s.Facade.Ctx.Forge.String(), "writing cached review diff: %v", err)
	}
	return nil
}

// submitFunc is the shape both backend submitters implement, so submit can
// dispatch on gctx.Forge without a type switch at every call site.
type submitFunc func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, outcome Outcome, body string, comments []diff.Comment, metadata map[string]string) error

func submit(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, outcome Outcome, body string, comments []diff.Comment, metadata map[string]string) error {
	var fn submitFunc
	switch gctx.Forge {
	case gclictx.ForgeGitHub:
		fn = submitGitHub
	case gclictx.ForgeGitLab:
		fn = submitGitLab
	default:
		return gclierr.Unsupportedf(gctx.Forge.String(), "pull_create_review")
	}
	return fn(ctx, gctx, path, outcome, body, comments, metadata)
}
