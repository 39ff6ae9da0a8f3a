// Package github adapts the GitHub REST API to the forge.Capability table
// (spec.md §4.5/§4.6), using google/go-github for request/response shaping
// and internal/gcli/fetch for the retry machinery. Grounded on
// the teacher's internal/adapter/github/client.go (retry RoundTripper idiom,
// error mapping) and error_mapper.go (status-code-to-message translation).
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	gogithub "github.com/google/go-github/v68/github"

	"github.com/herrhotzenplotz/gcli-go/internal/gclictx"
	"github.com/herrhotzenplotz/gcli-go/internal/gclidomain"
	"github.com/herrhotzenplotz/gcli-go/internal/gclierr"
	"github.com/herrhotzenplotz/gcli-go/internal/gclipath"
	"github.com/herrhotzenplotz/gcli-go/internal/gcli/fetch"
	"github.com/herrhotzenplotz/gcli-go/internal/gcli/forge"
)

// retryingTransport wraps the pipeline's retry logic around go-github's own
// HTTP round trips, mirroring the teacher's client.go pattern of retrying
// at the transport layer rather than per top-level call.
type retryingTransport struct {
	base  http.RoundTripper
	retry fetch.RetryConfig
}

func (t *retryingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var resp *http.Response
	err := fetch.RetryWithBackoff(req.Context(), func(ctx context.Context) error {
		r, err := t.base.RoundTrip(req)
		if err != nil {
			return gclierr.NewTransportError("github", 0, err.Error())
		}
		if r.StatusCode >= 500 || r.StatusCode == 429 {
			return gclierr.NewTransportError("github", r.StatusCode, r.Status)
		}
		resp = r
		return nil
	}, t.retry)
	if err != nil && resp == nil {
		return nil, err
	}
	return resp, nil
}

// New builds the GitHub Capability table. token and baseURL come from the
// account the caller selected via gclictx.Context.Account().
func New(token, baseURL string) (*forge.Capability, error) {
	httpClient := &http.Client{
		Transport: &retryingTransport{base: http.DefaultTransport, retry: fetch.DefaultRetryConfig()},
	}
	client := gogithub.NewClient(httpClient).WithAuthToken(token)

	graphQLURL := "https://api.github.com/graphql"
	if baseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return nil, gclierr.Transportf("github", false, "invalid enterprise base URL: %v", err)
		}
		graphQLURL = strings.TrimSuffix(baseURL, "/") + "/api/graphql"
	}

	c := &forge.Capability{
		Name:       "github",
		IssueQuirks: gclidomain.QuirkHasMilestone | gclidomain.QuirkHasAssignees,
		PullQuirks:  gclidomain.QuirkHasCoverage | gclidomain.QuirkHasDraft | gclidomain.QuirkHasAutomerge | gclidomain.QuirkHasNodeID,
	}
	c.GetAuthHeader = func(gctx *gclictx.Context) (string, string) {
		return "Authorization", "Bearer " + token
	}
	c.APIErrorString = func(statusCode int, body []byte) string {
		return fmt.Sprintf("github API error (HTTP %d): %s", statusCode, string(body))
	}

	c.GetIssue = func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) (gclidomain.Issue, error) {
		iss, _, err := client.Issues.Get(ctx, path.Owner, path.Repo, int(path.ID))
		if err != nil {
			return gclidomain.Issue{}, gclierr.Dataf("github", "fetching issue: %v", err)
		}
		return toIssue(iss), nil
	}

	c.IssueClose = func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) error {
		state := "closed"
		_, _, err := client.Issues.Edit(ctx, path.Owner, path.Repo, int(path.ID), &gogithub.IssueRequest{State: &state})
		if err != nil {
			return gclierr.Dataf("github", "closing issue: %v", err)
		}
		return nil
	}

	c.IssueReopen = func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) error {
		state := "open"
		_, _, err := client.Issues.Edit(ctx, path.Owner, path.Repo, int(path.ID), &gogithub.IssueRequest{State: &state})
		if err != nil {
			return gclierr.Dataf("github", "reopening issue: %v", err)
		}
		return nil
	}

	c.IssueAddLabels = func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, labels []string) error {
		_, _, err := client.Issues.AddLabelsToIssue(ctx, path.Owner, path.Repo, int(path.ID), labels)
		if err != nil {
			return gclierr.Dataf("github", "adding labels: %v", err)
		}
		return nil
	}

	c.IssueRemoveLabels = func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, labels []string) error {
		for _, l := range labels {
			if _, err := client.Issues.RemoveLabelForIssue(ctx, path.Owner, path.Repo, int(path.ID), l); err != nil {
				return gclierr.Dataf("github", "removing label %q: %v", l, err)
			}
		}
		return nil
	}

	c.GetIssueComments = func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) ([]gclidomain.Comment, error) {
		comments, _, err := client.Issues.ListComments(ctx, path.Owner, path.Repo, int(path.ID), nil)
		if err != nil {
			return nil, gclierr.Dataf("github", "listing comments: %v", err)
		}
		out := make([]gclidomain.Comment, 0, len(comments))
		for _, c := range comments {
			out = append(out, gclidomain.Comment{
				ID:     uint64(c.GetID()),
				Author: c.GetUser().GetLogin(),
				Date:   c.GetCreatedAt().Unix(),
				Body:   c.GetBody(),
			})
		}
		return out, nil
	}

	c.PerformSubmitComment = func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, body string) (gclidomain.Comment, error) {
		c, _, err := client.Issues.CreateComment(ctx, path.Owner, path.Repo, int(path.ID), &gogithub.IssueComment{Body: &body})
		if err != nil {
			return gclidomain.Comment{}, gclierr.Dataf("github", "submitting comment: %v", err)
		}
		return gclidomain.Comment{ID: uint64(c.GetID()), Author: c.GetUser().GetLogin(), Date: c.GetCreatedAt().Unix(), Body: c.GetBody()}, nil
	}

	c.GetPull = func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) (gclidomain.PullRequest, error) {
		pr, _, err := client.PullRequests.Get(ctx, path.Owner, path.Repo, int(path.ID))
		if err != nil {
			return gclidomain.PullRequest{}, gclierr.Dataf("github", "fetching pull request: %v", err)
		}
		return toPullRequest(pr), nil
	}

	c.GetPullCommits = func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) ([]gclidomain.Commit, error) {
		commits, _, err := client.PullRequests.ListCommits(ctx, path.Owner, path.Repo, int(path.ID), nil)
		if err != nil {
			return nil, gclierr.Dataf("github", "listing commits: %v", err)
		}
		out := make([]gclidomain.Commit, 0, len(commits))
		for _, c := range commits {
			out = append(out, gclidomain.Commit{
				LongSha:  c.GetSHA(),
				ShortSha: shortSha(c.GetSHA()),
				Message:  c.GetCommit().GetMessage(),
				Author:   c.GetCommit().GetAuthor().GetName(),
				Email:    c.GetCommit().GetAuthor().GetEmail(),
				Date:     c.GetCommit().GetAuthor().GetDate().Unix(),
			})
		}
		return out, nil
	}

	c.PullMerge = func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, flags forge.MergeFlags) error {
		opts := &gogithub.PullRequestOptions{}
		if flags&forge.MergeSquash != 0 {
			opts.MergeMethod = "squash"
		}
		result, _, err := client.PullRequests.Merge(ctx, path.Owner, path.Repo, int(path.ID), "", opts)
		if err != nil {
			return gclierr.Dataf("github", "merging pull request: %v", err)
		}
		if !result.GetMerged() {
			return gclierr.Dataf("github", "merge rejected: %s", result.GetMessage())
		}
		if flags&forge.MergeDeleteHead != 0 {
			pr, _, err := client.PullRequests.Get(ctx, path.Owner, path.Repo, int(path.ID))
			if err != nil {
				return gclierr.Dataf("github", "fetching pull request to delete head ref: %v", err)
			}
			ref := fmt.Sprintf("refs/heads/%s", pr.GetHead().GetRef())
			if _, err := client.Git.DeleteRef(ctx, path.Owner, path.Repo, ref); err != nil {
				return gclierr.Dataf("github", "deleting head ref: %v", err)
			}
		}
		return nil
	}

	// EnableAutomerge fetches the PR's opaque node id and issues the
	// enablePullRequestAutoMerge GraphQL mutation, per spec.md §4.6's note
	// that GitHub's automerge step is a GraphQL mutation keyed on node id
	// rather than a REST call.
	c.EnableAutomerge = func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) error {
		pr, _, err := client.PullRequests.Get(ctx, path.Owner, path.Repo, int(path.ID))
		if err != nil {
			return gclierr.Dataf("github", "fetching pull request node id: %v", err)
		}
		mutation := `mutation($id: ID!) { enablePullRequestAutoMerge(input: {pullRequestId: $id}) { clientMutationId } }`
		payload, err := json.Marshal(map[string]any{
			"query":     mutation,
			"variables": map[string]string{"id": pr.GetNodeID()},
		})
		if err != nil {
			return gclierr.Dataf("github", "building automerge mutation: %v", err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, graphQLURL, bytes.NewReader(payload))
		if err != nil {
			return gclierr.Transportf("github", false, "building automerge request: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		resp, err := httpClient.Do(req)
		if err != nil {
			return gclierr.NewTransportError("github", 0, err.Error())
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(resp.Body)
			return gclierr.Dataf("github", "enabling automerge: HTTP %d: %s", resp.StatusCode, string(body))
		}
		return nil
	}

	c.PullCreateReview = func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, approve bool, comments []gclidomain.Comment) error {
		event := "COMMENT"
		if approve {
			event = "APPROVE"
		}
		req := &gogithub.PullRequestReviewRequest{Event: &event}
		_, _, err := client.PullRequests.CreateReview(ctx, path.Owner, path.Repo, int(path.ID), req)
		if err != nil {
			return gclierr.Dataf("github", "creating review: %v", err)
		}
		return nil
	}

	c.GetLabels = func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) ([]gclidomain.Label, error) {
		labels, _, err := client.Issues.ListLabels(ctx, path.Owner, path.Repo, nil)
		if err != nil {
			return nil, gclierr.Dataf("github", "listing labels: %v", err)
		}
		out := make([]gclidomain.Label, 0, len(labels))
		for _, l := range labels {
			out = append(out, gclidomain.Label{ID: uint64(l.GetID()), Name: l.GetName(), Description: l.GetDescription()})
		}
		return out, nil
	}

	c.GetMilestones = func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) ([]gclidomain.Milestone, error) {
		milestones, _, err := client.Issues.ListMilestones(ctx, path.Owner, path.Repo, nil)
		if err != nil {
			return nil, gclierr.Dataf("github", "listing milestones: %v", err)
		}
		out := make([]gclidomain.Milestone, 0, len(milestones))
		for _, m := range milestones {
			out = append(out, gclidomain.Milestone{
				ID:                uint64(m.GetNumber()),
				Title:             m.GetTitle(),
				Description:       m.GetDescription(),
				State:             m.GetState(),
				OpenIssuesCount:   m.GetOpenIssues(),
				ClosedIssuesCount: m.GetClosedIssues(),
				WebURL:            m.GetHTMLURL(),
			})
		}
		return out, nil
	}

	c.GetNotifications = func(ctx context.Context, gctx *gclictx.Context, all bool) ([]gclidomain.Notification, error) {
		notifs, _, err := client.Activity.ListNotifications(ctx, &gogithub.NotificationListOptions{All: all})
		if err != nil {
			return nil, gclierr.Dataf("github", "listing notifications: %v", err)
		}
		out := make([]gclidomain.Notification, 0, len(notifs))
		for _, n := range notifs {
			out = append(out, gclidomain.Notification{
				ID:        parseNotifID(n.GetID()),
				Unread:    n.GetUnread(),
				UpdatedAt: n.GetUpdatedAt().Unix(),
				Subject:   n.GetSubject().GetTitle(),
				URL:       n.GetSubject().GetURL(),
			})
		}
		return out, nil
	}

	return c, nil
}

func toIssue(iss *gogithub.Issue) gclidomain.Issue {
	labels := make([]gclidomain.Label, 0, len(iss.Labels))
	for _, l := range iss.Labels {
		labels = append(labels, gclidomain.Label{ID: uint64(l.GetID()), Name: l.GetName(), Description: l.GetDescription()})
	}
	assignees := make([]string, 0, len(iss.Assignees))
	for _, a := range iss.Assignees {
		assignees = append(assignees, a.GetLogin())
	}
	var closedAt int64
	if iss.ClosedAt != nil {
		closedAt = iss.GetClosedAt().Unix()
	}
	return gclidomain.Issue{
		Number:        uint64(iss.GetNumber()),
		Title:         iss.GetTitle(),
		Body:          iss.GetBody(),
		Author:        iss.GetUser().GetLogin(),
		State:         iss.GetState(),
		CreatedAt:     iss.GetCreatedAt().Unix(),
		ClosedAt:      closedAt,
		CommentsCount: iss.GetComments(),
		Locked:        iss.GetLocked(),
		URL:           iss.GetHTMLURL(),
		Milestone:     iss.GetMilestone().GetTitle(),
		Labels:        labels,
		Assignees:     assignees,
		IsPR:          iss.IsPullRequest(),
	}
}

func toPullRequest(pr *gogithub.PullRequest) gclidomain.PullRequest {
	labels := make([]gclidomain.Label, 0, len(pr.Labels))
	for _, l := range pr.Labels {
		labels = append(labels, gclidomain.Label{ID: uint64(l.GetID()), Name: l.GetName()})
	}
	reviewers := make([]string, 0, len(pr.RequestedReviewers))
	for _, r := range pr.RequestedReviewers {
		reviewers = append(reviewers, r.GetLogin())
	}
	return gclidomain.PullRequest{
		Number:       uint64(pr.GetNumber()),
		NodeID:       pr.GetNodeID(),
		Title:        pr.GetTitle(),
		Body:         pr.GetBody(),
		Author:       pr.GetUser().GetLogin(),
		State:        pr.GetState(),
		CreatedAt:    pr.GetCreatedAt().Unix(),
		HeadLabel:    pr.GetHead().GetLabel(),
		BaseLabel:    pr.GetBase().GetLabel(),
		HeadSha:      pr.GetHead().GetSHA(),
		BaseSha:      pr.GetBase().GetSHA(),
		Milestone:    pr.GetMilestone().GetTitle(),
		Comments:     pr.GetComments(),
		Additions:    pr.GetAdditions(),
		Deletions:    pr.GetDeletions(),
		Commits:      pr.GetCommits(),
		ChangedFiles: pr.GetChangedFiles(),
		WebURL:       pr.GetHTMLURL(),
		Labels:       labels,
		Reviewers:    reviewers,
		Merged:       pr.GetMerged(),
		Mergeable:    pr.GetMergeable(),
		Draft:        pr.GetDraft(),
	}
}

func shortSha(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

func parseNotifID(id string) uint64 {
	var n uint64
	for _, r := range id {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + uint64(r-'0')
	}
	return n
}
