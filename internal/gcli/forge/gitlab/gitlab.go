// Package gitlab adapts the GitLab REST API (v4) to the forge.Capability
// table. No GitLab client library appears anywhere in the retrieval pack,
// so this is hand-rolled net/http on top of internal/gcli/fetch, in the
// teacher's own llmhttp style (internal/adapter/llm/http/*), the same shape
// the teacher itself uses where it has no vendor SDK to reach for.
package gitlab

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/herrhotzenplotz/gcli-go/internal/gclictx"
	"github.com/herrhotzenplotz/gcli-go/internal/gclidomain"
	"github.com/herrhotzenplotz/gcli-go/internal/gclierr"
	"github.com/herrhotzenplotz/gcli-go/internal/gclipath"
	"github.com/herrhotzenplotz/gcli-go/internal/gcli/fetch"
	"github.com/herrhotzenplotz/gcli-go/internal/gcli/forge"
)

// apiIssue mirrors the subset of GitLab's issue JSON shape this adapter
// consumes.
type apiIssue struct {
	IID          uint64     `json:"iid"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	State        string     `json:"state"`
	CreatedAt    string     `json:"created_at"`
	ClosedAt     *string    `json:"closed_at"`
	UserNotesCnt int        `json:"user_notes_count"`
	WebURL       string     `json:"web_url"`
	Milestone    *apiMilestone `json:"milestone"`
	Labels       []string   `json:"labels"`
	Assignees    []apiUser  `json:"assignees"`
	Author       apiUser    `json:"author"`
}

type apiUser struct {
	Username string `json:"username"`
}

type apiMilestone struct {
	ID          uint64 `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	State       string `json:"state"`
	WebURL      string `json:"web_url"`
}

type apiMergeRequest struct {
	IID          uint64    `json:"iid"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	State        string    `json:"state"`
	CreatedAt    string    `json:"created_at"`
	SourceBranch string    `json:"source_branch"`
	TargetBranch string    `json:"target_branch"`
	SHA          string    `json:"sha"`
	MergeCommitSHA string  `json:"merge_commit_sha"`
	UserNotesCnt int       `json:"user_notes_count"`
	WebURL       string    `json:"web_url"`
	Labels       []string  `json:"labels"`
	MergeStatus  string    `json:"merge_status"`
	Draft        bool      `json:"draft"`
}

type apiPipeline struct {
	ID        uint64 `json:"id"`
	Status    string `json:"status"`
	Ref       string `json:"ref"`
	CreatedAt string `json:"created_at"`
	WebURL    string `json:"web_url"`
}

type apiJob struct {
	ID        uint64 `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	Stage     string `json:"stage"`
	CreatedAt string `json:"created_at"`
}

type apiComment struct {
	ID     uint64 `json:"id"`
	Body   string `json:"body"`
	Author apiUser `json:"author"`
	CreatedAt string `json:"created_at"`
}

// New builds the GitLab Capability table against baseURL (e.g.
// "https://gitlab.com"), authenticating with a personal/project access
// token via the PRIVATE-TOKEN header.
func New(token, baseURL string) *forge.Capability {
	p := &fetch.Pipeline{
		HTTP:    &http.Client{},
		Backend: "gitlab",
		BaseURL: baseURL,
		AuthHeader: func() fetch.AuthHeader {
			return fetch.AuthHeader{Name: "PRIVATE-TOKEN", Value: token}
		},
		ErrorString: func(statusCode int, body []byte) string {
			var e struct {
				Message interface{} `json:"message"`
			}
			if json.Unmarshal(body, &e) == nil && e.Message != nil {
				return fmt.Sprintf("gitlab API error (HTTP %d): %v", statusCode, e.Message)
			}
			return fmt.Sprintf("gitlab API error (HTTP %d): %s", statusCode, string(body))
		},
	}

	c := &forge.Capability{
		Name:        "gitlab",
		IssueQuirks: gclidomain.QuirkHasMilestone | gclidomain.QuirkHasAssignees,
		PullQuirks:  gclidomain.QuirkHasDraft | gclidomain.QuirkHasAutomerge | gclidomain.QuirkHasStartSha,
	}
	c.GetAuthHeader = func(gctx *gclictx.Context) (string, string) {
		return "PRIVATE-TOKEN", token
	}
	c.APIErrorString = p.ErrorString

	projectPath := func(path gclipath.Path) string {
		return url.PathEscape(path.Owner + "/" + path.Repo)
	}

	c.GetIssue = func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) (gclidomain.Issue, error) {
		body, err := p.FetchOne(ctx, fmt.Sprintf("%s/api/v4/projects/%s/issues/%d", baseURL, projectPath(path), path.ID), "application/json")
		if err != nil {
			return gclidomain.Issue{}, err
		}
		var ai apiIssue
		if err := json.Unmarshal(body, &ai); err != nil {
			return gclidomain.Issue{}, gclierr.Parsef("gitlab: decoding issue: %v", err)
		}
		return toIssue(ai), nil
	}

	c.SearchIssues = func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, opts forge.IssueSearchOptions, max int) ([]gclidomain.Issue, error) {
		q := url.Values{}
		if !opts.All {
			q.Set("state", "opened")
		}
		if opts.Author != "" {
			q.Set("author_username", opts.Author)
		}
		if opts.Label != "" {
			q.Set("labels", opts.Label)
		}
		if opts.Milestone != "" {
			q.Set("milestone", opts.Milestone)
		}
		if opts.SearchTerm != "" {
			q.Set("search", opts.SearchTerm)
		}
		q.Set("per_page", "50")
		startURL := fmt.Sprintf("%s/api/v4/projects/%s/issues?%s", baseURL, projectPath(path), q.Encode())

		issues, err := fetch.FetchList(ctx, p, startURL, fetch.ListOptions[apiIssue]{
			AcceptHeader: "application/json",
			Parse: func(body []byte, out *[]apiIssue) error {
				return json.Unmarshal(body, out)
			},
			Max: max,
		})
		if err != nil {
			return nil, err
		}
		out := make([]gclidomain.Issue, 0, len(issues))
		for _, ai := range issues {
			out = append(out, toIssue(ai))
		}
		return out, nil
	}

	c.IssueClose = func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) error {
		_, err := p.FetchWithMethod(ctx, "PUT",
			fmt.Sprintf("%s/api/v4/projects/%s/issues/%d?state_event=close", baseURL, projectPath(path), path.ID),
			nil, nil, false)
		return err
	}

	c.IssueReopen = func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) error {
		_, err := p.FetchWithMethod(ctx, "PUT",
			fmt.Sprintf("%s/api/v4/projects/%s/issues/%d?state_event=reopen", baseURL, projectPath(path), path.ID),
			nil, nil, false)
		return err
	}

	c.IssueAddLabels = func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, labels []string) error {
		q := url.Values{"add_labels": {joinComma(labels)}}
		_, err := p.FetchWithMethod(ctx, "PUT",
			fmt.Sprintf("%s/api/v4/projects/%s/issues/%d?%s", baseURL, projectPath(path), path.ID, q.Encode()),
			nil, nil, false)
		return err
	}

	c.IssueRemoveLabels = func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, labels []string) error {
		q := url.Values{"remove_labels": {joinComma(labels)}}
		_, err := p.FetchWithMethod(ctx, "PUT",
			fmt.Sprintf("%s/api/v4/projects/%s/issues/%d?%s", baseURL, projectPath(path), path.ID, q.Encode()),
			nil, nil, false)
		return err
	}

	c.GetPull = func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) (gclidomain.PullRequest, error) {
		body, err := p.FetchOne(ctx, fmt.Sprintf("%s/api/v4/projects/%s/merge_requests/%d", baseURL, projectPath(path), path.ID), "application/json")
		if err != nil {
			return gclidomain.PullRequest{}, err
		}
		var mr apiMergeRequest
		if err := json.Unmarshal(body, &mr); err != nil {
			return gclidomain.PullRequest{}, gclierr.Parsef("gitlab: decoding merge request: %v", err)
		}
		return toPullRequest(mr), nil
	}

	c.PullMerge = func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, flags forge.MergeFlags) error {
		q := url.Values{}
		if flags&forge.MergeSquash != 0 {
			q.Set("squash", "true")
		}
		if flags&forge.MergeDeleteHead != 0 {
			q.Set("should_remove_source_branch", "true")
		}
		_, err := p.FetchWithMethod(ctx, "PUT",
			fmt.Sprintf("%s/api/v4/projects/%s/merge_requests/%d/merge?%s", baseURL, projectPath(path), path.ID, q.Encode()),
			nil, nil, false)
		return err
	}

	// EnableAutomerge polls the MR's merge_status until GitLab reports
	// "can_be_merged", capped at 30 attempts with a 1s wait between tries
	// (DESIGN.md Open Question decision #2), then issues the follow-up PUT
	// with no body that actually arms auto-merge.
	c.EnableAutomerge = func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) error {
		const maxAttempts = 30
		const pollInterval = time.Second

		for attempt := 0; attempt < maxAttempts; attempt++ {
			body, err := p.FetchOne(ctx, fmt.Sprintf("%s/api/v4/projects/%s/merge_requests/%d", baseURL, projectPath(path), path.ID), "application/json")
			if err != nil {
				return err
			}
			var mr apiMergeRequest
			if err := json.Unmarshal(body, &mr); err != nil {
				return gclierr.Parsef("gitlab: decoding merge request: %v", err)
			}
			if mr.MergeStatus == "can_be_merged" {
				_, err := p.FetchWithMethod(ctx, "PUT",
					fmt.Sprintf("%s/api/v4/projects/%s/merge_requests/%d/merge?merge_when_pipeline_succeeds=true", baseURL, projectPath(path), path.ID),
					nil, nil, false)
				return err
			}

			select {
			case <-ctx.Done():
				return gclierr.Transportf("gitlab", false, "automerge polling cancelled: %v", ctx.Err())
			case <-time.After(pollInterval):
			}
		}
		return gclierr.Transportf("gitlab", false, "timed out waiting for merge request to become mergeable")
	}

	c.GetPullComments = func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) ([]gclidomain.Comment, error) {
		notes, err := fetch.FetchList(ctx, p,
			fmt.Sprintf("%s/api/v4/projects/%s/merge_requests/%d/notes?per_page=50", baseURL, projectPath(path), path.ID),
			fetch.ListOptions[apiComment]{
				AcceptHeader: "application/json",
				Parse: func(body []byte, out *[]apiComment) error { return json.Unmarshal(body, out) },
			})
		if err != nil {
			return nil, err
		}
		return toComments(notes), nil
	}

	c.PerformSubmitComment = func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, body string) (gclidomain.Comment, error) {
		payload, _ := json.Marshal(map[string]string{"body": body})
		respBody, err := p.FetchWithMethod(ctx, "POST",
			fmt.Sprintf("%s/api/v4/projects/%s/issues/%d/notes", baseURL, projectPath(path), path.ID),
			payload, map[string]string{"Content-Type": "application/json"}, true)
		if err != nil {
			return gclidomain.Comment{}, err
		}
		var note apiComment
		if err := json.Unmarshal(respBody, &note); err != nil {
			return gclidomain.Comment{}, gclierr.Parsef("gitlab: decoding note: %v", err)
		}
		return gclidomain.Comment{ID: note.ID, Author: note.Author.Username, Body: note.Body}, nil
	}

	c.GetPipelines = func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) ([]gclidomain.Pipeline, error) {
		pipes, err := fetch.FetchList(ctx, p,
			fmt.Sprintf("%s/api/v4/projects/%s/pipelines?per_page=50", baseURL, projectPath(path)),
			fetch.ListOptions[apiPipeline]{
				AcceptHeader: "application/json",
				Parse: func(body []byte, out *[]apiPipeline) error { return json.Unmarshal(body, out) },
			})
		if err != nil {
			return nil, err
		}
		out := make([]gclidomain.Pipeline, 0, len(pipes))
		for _, pp := range pipes {
			out = append(out, gclidomain.Pipeline{ID: pp.ID, Status: pp.Status, Ref: pp.Ref, WebURL: pp.WebURL})
		}
		return out, nil
	}

	c.GetPipelineJobs = func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, id uint64) ([]gclidomain.Job, error) {
		jobs, err := fetch.FetchList(ctx, p,
			fmt.Sprintf("%s/api/v4/projects/%s/pipelines/%d/jobs?per_page=50", baseURL, projectPath(path), id),
			fetch.ListOptions[apiJob]{
				AcceptHeader: "application/json",
				Parse: func(body []byte, out *[]apiJob) error { return json.Unmarshal(body, out) },
			})
		if err != nil {
			return nil, err
		}
		out := make([]gclidomain.Job, 0, len(jobs))
		for _, j := range jobs {
			out = append(out, gclidomain.Job{ID: j.ID, Name: j.Name, Status: j.Status, Stage: j.Stage})
		}
		return out, nil
	}

	c.JobRetry = func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, id uint64) error {
		_, err := p.FetchWithMethod(ctx, "POST",
			fmt.Sprintf("%s/api/v4/projects/%s/jobs/%d/retry", baseURL, projectPath(path), id), nil, nil, false)
		return err
	}

	c.JobCancel = func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, id uint64) error {
		_, err := p.FetchWithMethod(ctx, "POST",
			fmt.Sprintf("%s/api/v4/projects/%s/jobs/%d/cancel", baseURL, projectPath(path), id), nil, nil, false)
		return err
	}

	return c
}

func toIssue(ai apiIssue) gclidomain.Issue {
	assignees := make([]string, 0, len(ai.Assignees))
	for _, a := range ai.Assignees {
		assignees = append(assignees, a.Username)
	}
	labels := make([]gclidomain.Label, 0, len(ai.Labels))
	for _, l := range ai.Labels {
		labels = append(labels, gclidomain.Label{Name: l})
	}
	var milestone string
	if ai.Milestone != nil {
		milestone = ai.Milestone.Title
	}
	return gclidomain.Issue{
		Number:        ai.IID,
		Title:         ai.Title,
		Body:          ai.Description,
		Author:        ai.Author.Username,
		State:         ai.State,
		CommentsCount: ai.UserNotesCnt,
		URL:           ai.WebURL,
		Milestone:     milestone,
		Labels:        labels,
		Assignees:     assignees,
	}
}

func toPullRequest(mr apiMergeRequest) gclidomain.PullRequest {
	labels := make([]gclidomain.Label, 0, len(mr.Labels))
	for _, l := range mr.Labels {
		labels = append(labels, gclidomain.Label{Name: l})
	}
	return gclidomain.PullRequest{
		Number:       mr.IID,
		Title:        mr.Title,
		Body:         mr.Description,
		State:        mr.State,
		HeadLabel:    mr.SourceBranch,
		BaseLabel:    mr.TargetBranch,
		HeadSha:      mr.SHA,
		Comments:     mr.UserNotesCnt,
		WebURL:       mr.WebURL,
		Labels:       labels,
		Merged:       mr.State == "merged",
		Mergeable:    mr.MergeStatus == "can_be_merged",
		Draft:        mr.Draft,
	}
}

func toComments(notes []apiComment) []gclidomain.Comment {
	out := make([]gclidomain.Comment, 0, len(notes))
	for _, n := range notes {
		out = append(out, gclidomain.Comment{ID: n.ID, Author: n.Author.Username, Body: n.Body})
	}
	return out
}

func joinComma(items []string) string {
	out := ""
	for i, it := range items {
		if i > 0 {
			out += ","
		}
		out += it
	}
	return out
}
