// Package bugzilla adapts a Bugzilla-like XML-RPC/REST tracker to the
// forge.Capability table, narrowed to the issue-only operations spec.md
// §4.2's path reinterpretation allows: Bugzilla has no notion of pulls,
// labels, milestones, forks or pipelines, so every capability outside the
// issue/comment family stays nil on this table and reports "not supported
// by this forge" through Capability.Unsupported. Hand-rolled net/http on
// top of internal/gcli/fetch, as no Bugzilla client exists anywhere in the
// retrieval pack (same rationale as gitlab/gitea).
package bugzilla

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

type apiBug struct {
	ID        uint64 `json:"id"`
	Summary   string `json:"summary"`
	Status    string `json:"status"`
	Creator   string `json:"creator"`
	Product   string `json:"product"`
	Component string `json:"component"`
	CreationTime string `json:"creation_time"`
}

type bugListResponse struct {
	Bugs []apiBug `json:"bugs"`
}

type apiComment struct {
	ID     uint64 `json:"id"`
	Text   string `json:"text"`
	Author string `json:"creator"`
	Time   string `json:"time"`
}

type commentsResponse struct {
	Bugs map[string]struct {
		Comments []apiComment `json:"comments"`
	} `json:"bugs"`
}

// New builds the Bugzilla Capability table against baseURL, authenticating
// via an API key query parameter, per Bugzilla's REST convention (it has no
// bearer-token header scheme).
func New(apiKey, baseURL string) *forge.Capability {
	p := &fetch.Pipeline{
		HTTP:    &http.Client{},
		Backend: "bugzilla",
		BaseURL: baseURL,
		AuthHeader: func() fetch.AuthHeader {
			return fetch.AuthHeader{}
		},
		ErrorString: func(statusCode int, body []byte) string {
			var e struct {
				Message string `json:"message"`
			}
			if json.Unmarshal(body, &e) == nil && e.Message != "" {
				return fmt.Sprintf("bugzilla API error (HTTP %d): %s", statusCode, e.Message)
			}
			return fmt.Sprintf("bugzilla API error (HTTP %d): %s", statusCode, string(body))
		},
	}

	c := &forge.Capability{
		Name: "bugzilla",
	}
	c.GetAuthHeader = func(gctx *gclictx.Context) (string, string) {
		return "", ""
	}
	c.APIErrorString = p.ErrorString

	withKey := func(q url.Values) url.Values {
		if apiKey != "" {
			q.Set("api_key", apiKey)
		}
		return q
	}

	c.GetIssue = func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) (gclidomain.Issue, error) {
		q := withKey(url.Values{})
		body, err := p.FetchOne(ctx, fmt.Sprintf("%s/rest/bug/%d?%s", baseURL, path.ID, q.Encode()), "application/json")
		if err != nil {
			return gclidomain.Issue{}, err
		}
		var resp bugListResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return gclidomain.Issue{}, gclierr.Parsef("bugzilla: decoding bug: %v", err)
		}
		if len(resp.Bugs) == 0 {
			return gclidomain.Issue{}, gclierr.Dataf("bugzilla", "bug %d not found", path.ID)
		}
		return toIssue(resp.Bugs[0]), nil
	}

	c.SearchIssues = func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, opts forge.IssueSearchOptions, max int) ([]gclidomain.Issue, error) {
		q := withKey(url.Values{})
		q.Set("product", path.Product)
		q.Set("component", path.Component)
		if !opts.All {
			q.Set("status", "OPEN")
		}
		if opts.SearchTerm != "" {
			q.Set("summary", opts.SearchTerm)
		}
		if opts.Author != "" {
			q.Set("creator", opts.Author)
		}
		q.Set("limit", "50")

		body, err := p.FetchOne(ctx, fmt.Sprintf("%s/rest/bug?%s", baseURL, q.Encode()), "application/json")
		if err != nil {
			return nil, err
		}
		var resp bugListResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, gclierr.Parsef("bugzilla: decoding bug list: %v", err)
		}
		bugs := resp.Bugs
		if max >= 0 && len(bugs) > max {
			bugs = bugs[:max]
		}
		out := make([]gclidomain.Issue, 0, len(bugs))
		for _, b := range bugs {
			out = append(out, toIssue(b))
		}
		return out, nil
	}

	c.IssueClose = func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) error {
		return setStatus(ctx, p, baseURL, apiKey, path.ID, "RESOLVED")
	}

	c.IssueReopen = func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) error {
		return setStatus(ctx, p, baseURL, apiKey, path.ID, "REOPENED")
	}

	c.GetIssueComments = func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path) ([]gclidomain.Comment, error) {
		q := withKey(url.Values{})
		body, err := p.FetchOne(ctx, fmt.Sprintf("%s/rest/bug/%d/comment?%s", baseURL, path.ID, q.Encode()), "application/json")
		if err != nil {
			return nil, err
		}
		var resp commentsResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, gclierr.Parsef("bugzilla: decoding comments: %v", err)
		}
		entry, ok := resp.Bugs[fmt.Sprintf("%d", path.ID)]
		if !ok {
			return nil, nil
		}
		out := make([]gclidomain.Comment, 0, len(entry.Comments))
		for _, cm := range entry.Comments {
			out = append(out, gclidomain.Comment{ID: cm.ID, Author: cm.Author, Body: cm.Text})
		}
		return out, nil
	}

	c.PerformSubmitComment = func(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, body string) (gclidomain.Comment, error) {
		q := withKey(url.Values{})
		payload, _ := json.Marshal(map[string]string{"comment": body})
		_, err := p.FetchWithMethod(ctx, "POST", fmt.Sprintf("%s/rest/bug/%d/comment?%s", baseURL, path.ID, q.Encode()),
			payload, map[string]string{"Content-Type": "application/json"}, false)
		if err != nil {
			return gclidomain.Comment{}, err
		}
		return gclidomain.Comment{Body: body}, nil
	}

	return c
}

func setStatus(ctx context.Context, p *fetch.Pipeline, baseURL, apiKey string, id uint64, status string) error {
	q := url.Values{}
	if apiKey != "" {
		q.Set("api_key", apiKey)
	}
	payload, _ := json.Marshal(map[string]string{"status": status})
	_, err := p.FetchWithMethod(ctx, "PUT", fmt.Sprintf("%s/rest/bug/%d?%s", baseURL, id, q.Encode()),
		payload, map[string]string{"Content-Type": "application/json"}, false)
	return err
}

func toIssue(b apiBug) gclidomain.Issue {
	return gclidomain.Issue{
		Number:    b.ID,
		Title:     b.Summary,
		Author:    b.Creator,
		State:     b.Status,
		Product:   b.Product,
		Component: b.Component,
	}
}
