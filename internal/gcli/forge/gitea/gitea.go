// Package gitea adapts the Gitea REST API to the forge.Capability table.
// Like gitlab, no Gitea client library appears anywhere in the retrieval
// pack, so it is hand-rolled net/http on top of internal/gcli/fetch. Gitea's
// label endpoints take numeric IDs rather than names, so this adapter
// resolves label names to IDs before mutating (spec.md §4.6's
// issue_add_labels worked example).
package gitea

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/herrhotzenplotz/gcli-go/internal/gclictx"
	"github.com/herrhotzenplotz/gcli-go/internal/gclidomain"
	"github.com/herrhotzenplotz/gcli-go/internal/gclierr"
	"github.com/herrhotzenplotz/gcli-go/internal/gclipath"
	"github.com/herrhotzenplotz/gcli-go/internal/gcli/fetch"
	"github.com/herrhotzenplotz/gcli-go/internal/gcli/forge"
)

type apiUser struct {
	Login string `json:"login"`
}

type apiLabel struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

type apiMilestone struct {
	ID       uint64 `json:"id"`
	Title    string `json:"title"`
	State    string `json:"state"`
	OpenIssues   int `json:"open_issues"`
	ClosedIssues int `json:"closed_issues"`
}

type apiIssue struct {
	Number    uint64         `json:"number"`
	Title     string         `json:"title"`
	Body      string         `json:"body"`
	State     string         `json:"state"`
	Comments  int            `json:"comments"`
	HTMLURL   string         `json:"html_url"`
	Poster    apiUser        `json:"user"`
	Assignees []apiUser      `json:"assignees"`
	Labels    []apiLabel     `json:"labels"`
	Milestone *apiMilestone  `json:"milestone"`
	PullRequest *struct{}    `json:"pull_request,omitempty"`
}

type apiComment struct {
	ID      uint64  `json:"id"`
	Body    string  `json:"body"`
	Poster  apiUser `json:"user"`
}

// New builds the Gitea Capability table against baseURL, authenticating
// with a personal access token via the Authorization: token header.
func New(token, baseURL string) *forge.Capability {
	p := &fetch.Pipeline{
		HTTP:    &http.Client{},
		Backend: "gitea",
		BaseURL: baseURL,
		AuthHeader: func() fetch.AuthHeader {
			return fetch.AuthHeader{Name: "Authorization", Value: "token " + token}
		},
		ErrorString: func(statusCode int, body []byte) string {
			var e struct {
				Message string `json:"message"`
			}
			if json.Unmarshal(body, &e) == nil && e.Message != "" {
				return fmt.Sprintf("gitea API error (HTTP %d): %s", statusCode, e.Message)
			}
			return fmt.Sprintf("gitea API error (HTTP %d): %s", statusCode, string(body))
		},
	}

	c := &forge.Capability{
		Name:        "gitea",
		IssueQuirks: gclidomain.QuirkHasMilestone | gclidomain.QuirkHasAssignees,
	}
	c.GetAuthHeader = func(gctx *gclictx.Context) (string, string) {
		return "Authorization", "token " + token
	}
	c.APIErrorString = p.ErrorString

	repoBase := func(path gclipath.Path) string {
		return fmt.Sprintf("%s/api/v1/repos/%s/%s", baseURL, url.PathEscape(path.Owner), url.PathEscape(path.Repo))
	}

	c.GetIssue = func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) (gclidomain.Issue, error) {
		body, err := p.FetchOne(ctx, fmt.Sprintf("%s/issues/%d", repoBase(path), path.ID), "application/json")
		if err != nil {
			return gclidomain.Issue{}, err
		}
		var ai apiIssue
		if err := json.Unmarshal(body, &ai); err != nil {
			return gclidomain.Issue{}, gclierr.Parsef("gitea: decoding issue: %v", err)
		}
		return toIssue(ai), nil
	}

	c.SearchIssues = func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, opts forge.IssueSearchOptions, max int) ([]gclidomain.Issue, error) {
		q := url.Values{"type": {"issues"}}
		if !opts.All {
			q.Set("state", "open")
		} else {
			q.Set("state", "all")
		}
		if opts.Label != "" {
			q.Set("labels", opts.Label)
		}
		if opts.SearchTerm != "" {
			q.Set("q", opts.SearchTerm)
		}
		q.Set("limit", "50")
		startURL := fmt.Sprintf("%s/issues?%s", repoBase(path), q.Encode())

		issues, err := fetch.FetchList(ctx, p, startURL, fetch.ListOptions[apiIssue]{
			AcceptHeader: "application/json",
			Parse: func(body []byte, out *[]apiIssue) error {
				return json.Unmarshal(body, out)
			},
			Filter: func(out *[]apiIssue) {
				if opts.Author == "" {
					return
				}
				kept := (*out)[:0]
				for _, ai := range *out {
					if ai.Poster.Login == opts.Author {
						kept = append(kept, ai)
					}
				}
				*out = kept
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
		payload, _ := json.Marshal(map[string]string{"state": "closed"})
		_, err := p.FetchWithMethod(ctx, "PATCH", fmt.Sprintf("%s/issues/%d", repoBase(path), path.ID),
			payload, map[string]string{"Content-Type": "application/json"}, false)
		return err
	}

	c.IssueReopen = func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) error {
		payload, _ := json.Marshal(map[string]string{"state": "open"})
		_, err := p.FetchWithMethod(ctx, "PATCH", fmt.Sprintf("%s/issues/%d", repoBase(path), path.ID),
			payload, map[string]string{"Content-Type": "application/json"}, false)
		return err
	}

	// IssueAddLabels resolves each label name to its numeric ID first, since
	// Gitea's label-mutation endpoint only accepts IDs.
	c.IssueAddLabels = func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, labels []string) error {
		ids, err := resolveLabelIDs(ctx, p, repoBase(path), labels)
		if err != nil {
			return err
		}
		payload, _ := json.Marshal(map[string][]uint64{"labels": ids})
		_, err = p.FetchWithMethod(ctx, "POST", fmt.Sprintf("%s/issues/%d/labels", repoBase(path), path.ID),
			payload, map[string]string{"Content-Type": "application/json"}, false)
		return err
	}

	c.IssueRemoveLabels = func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, labels []string) error {
		ids, err := resolveLabelIDs(ctx, p, repoBase(path), labels)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if _, err := p.FetchWithMethod(ctx, "DELETE", fmt.Sprintf("%s/issues/%d/labels/%d", repoBase(path), path.ID, id),
				nil, nil, false); err != nil {
				return err
			}
		}
		return nil
	}

	c.GetLabels = func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) ([]gclidomain.Label, error) {
		labels, err := fetchLabels(ctx, p, repoBase(path))
		if err != nil {
			return nil, err
		}
		out := make([]gclidomain.Label, 0, len(labels))
		for _, l := range labels {
			out = append(out, gclidomain.Label{ID: l.ID, Name: l.Name, Description: l.Description})
		}
		return out, nil
	}

	c.CreateLabel = func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, label gclidomain.Label) error {
		payload, _ := json.Marshal(map[string]string{"name": label.Name, "description": label.Description,
			"color": fmt.Sprintf("#%06x", label.Colour)})
		_, err := p.FetchWithMethod(ctx, "POST", fmt.Sprintf("%s/labels", repoBase(path)),
			payload, map[string]string{"Content-Type": "application/json"}, false)
		return err
	}

	c.GetMilestones = func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) ([]gclidomain.Milestone, error) {
		milestones, err := fetch.FetchList(ctx, p, fmt.Sprintf("%s/milestones?limit=50", repoBase(path)), fetch.ListOptions[apiMilestone]{
			AcceptHeader: "application/json",
			Parse:        func(body []byte, out *[]apiMilestone) error { return json.Unmarshal(body, out) },
		})
		if err != nil {
			return nil, err
		}
		out := make([]gclidomain.Milestone, 0, len(milestones))
		for _, m := range milestones {
			out = append(out, gclidomain.Milestone{ID: m.ID, Title: m.Title, State: m.State,
				OpenIssuesCount: m.OpenIssues, ClosedIssuesCount: m.ClosedIssues})
		}
		return out, nil
	}

	c.GetIssueComments = func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) ([]gclidomain.Comment, error) {
		comments, err := fetch.FetchList(ctx, p, fmt.Sprintf("%s/issues/%d/comments?limit=50", repoBase(path), path.ID), fetch.ListOptions[apiComment]{
			AcceptHeader: "application/json",
			Parse:        func(body []byte, out *[]apiComment) error { return json.Unmarshal(body, out) },
		})
		if err != nil {
			return nil, err
		}
		out := make([]gclidomain.Comment, 0, len(comments))
		for _, cm := range comments {
			out = append(out, gclidomain.Comment{ID: cm.ID, Author: cm.Poster.Login, Body: cm.Body})
		}
		return out, nil
	}

	c.PerformSubmitComment = func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, body string) (gclidomain.Comment, error) {
		payload, _ := json.Marshal(map[string]string{"body": body})
		respBody, err := p.FetchWithMethod(ctx, "POST", fmt.Sprintf("%s/issues/%d/comments", repoBase(path), path.ID),
			payload, map[string]string{"Content-Type": "application/json"}, true)
		if err != nil {
			return gclidomain.Comment{}, err
		}
		var cm apiComment
		if err := json.Unmarshal(respBody, &cm); err != nil {
			return gclidomain.Comment{}, gclierr.Parsef("gitea: decoding comment: %v", err)
		}
		return gclidomain.Comment{ID: cm.ID, Author: cm.Poster.Login, Body: cm.Body}, nil
	}

	return c
}

func fetchLabels(ctx context.Context, p *fetch.Pipeline, repoBaseURL string) ([]apiLabel, error) {
	return fetch.FetchList(ctx, p, fmt.Sprintf("%s/labels?limit=50", repoBaseURL), fetch.ListOptions[apiLabel]{
		AcceptHeader: "application/json",
		Parse:        func(body []byte, out *[]apiLabel) error { return json.Unmarshal(body, out) },
	})
}

// resolveLabelIDs maps label names to Gitea's numeric label IDs, since
// the add/remove-label endpoints address labels by ID, not name.
func resolveLabelIDs(ctx context.Context, p *fetch.Pipeline, repoBaseURL string, names []string) ([]uint64, error) {
	all, err := fetchLabels(ctx, p, repoBaseURL)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]uint64, len(all))
	for _, l := range all {
		byName[l.Name] = l.ID
	}
	return matchLabelIDs(byName, names)
}

// matchLabelIDs does the pure name-to-ID lookup resolveLabelIDs wraps
// around an HTTP call, split out so the failure path is testable without a
// network round trip.
func matchLabelIDs(byName map[string]uint64, names []string) ([]uint64, error) {
	ids := make([]uint64, 0, len(names))
	for _, n := range names {
		id, ok := byName[n]
		if !ok {
			return nil, gclierr.Dataf("gitea", "no such label %q", n)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func toIssue(ai apiIssue) gclidomain.Issue {
	assignees := make([]string, 0, len(ai.Assignees))
	for _, a := range ai.Assignees {
		assignees = append(assignees, a.Login)
	}
	labels := make([]gclidomain.Label, 0, len(ai.Labels))
	for _, l := range ai.Labels {
		labels = append(labels, gclidomain.Label{ID: l.ID, Name: l.Name, Description: l.Description})
	}
	var milestone string
	if ai.Milestone != nil {
		milestone = ai.Milestone.Title
	}
	return gclidomain.Issue{
		Number:        ai.Number,
		Title:         ai.Title,
		Body:          ai.Body,
		Author:        ai.Poster.Login,
		State:         ai.State,
		CommentsCount: ai.Comments,
		URL:           ai.HTMLURL,
		Milestone:     milestone,
		Labels:        labels,
		Assignees:     assignees,
		IsPR:          ai.PullRequest != nil,
	}
}
