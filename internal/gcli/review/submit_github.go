package review

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/herrhotzenplotz/gcli-go/internal/gcli/diff"
	"github.com/herrhotzenplotz/gcli-go/internal/gcli/fetch"
	"github.com/herrhotzenplotz/gcli-go/internal/gcli/jsonbuilder"
	"github.com/herrhotzenplotz/gcli-go/internal/gclictx"
	"github.com/herrhotzenplotz/gcli-go/internal/gclierr"
	"github.com/herrhotzenplotz/gcli-go/internal/gclipath"
)

const defaultGitHubBaseURL = "https://api.github.com"

func githubPipeline(gctx *gclictx.Context) (*fetch.Pipeline, string, error) {
	acct, ok := gctx.Account()
	if !ok {
		return nil, "", gclierr.Dataf("github", "no account configured for this forge")
	}
	baseURL := acct.BaseURL
	if baseURL == "" {
		baseURL = defaultGitHubBaseURL
	}
	return &fetch.Pipeline{
		HTTP:    gctx.Transport,
		Backend: "github",
		BaseURL: baseURL,
		AuthHeader: func() fetch.AuthHeader {
			return fetch.AuthHeader{Name: "Authorization", Value: "Bearer " + acct.Token}
		},
		ErrorString: func(statusCode int, body []byte) string {
			return fmt.Sprintf("github API error (HTTP %d): %s", statusCode, string(body))
		},
	}, baseURL, nil
}

// githubEvent maps an Outcome onto the Pull Request Review API's event
// field (spec.md §4.9/§8 scenario 4).
func githubEvent(outcome Outcome) string {
	switch outcome {
	case OutcomeAccept:
		return "APPROVE"
	case OutcomeRequestChanges:
		return "REQUEST_CHANGES"
	default:
		return "COMMENT"
	}
}

// buildGitHubReviewPayload assembles the /pulls/{number}/reviews request
// body, batching every comment into the request's comments array rather
// than issuing one call per comment the way GitLab's discussion-based API
// requires.
func buildGitHubReviewPayload(outcome Outcome, body string, comments []diff.Comment) (string, error) {
	b := jsonbuilder.New().BeginObject().
		Member("event").String(githubEvent(outcome)).
		Member("body").String(body)

	if len(comments) > 0 {
		b = b.Member("comments").BeginArray()
		for _, c := range comments {
			b = b.BeginObject().
				Member("path").String(c.Path).
				Member("body").String(c.Body)
			if c.Before.StartRow != c.Before.EndRow || c.After.StartRow != c.After.EndRow {
				b = b.Member("start_line").Number(float64(startLine(c))).
					Member("start_side").String(side(c.Before.IsInNew)).
					Member("line").Number(float64(endLine(c))).
					Member("side").String(side(c.After.IsInNew))
			} else {
				b = b.Member("line").Number(float64(endLine(c))).
					Member("side").String(side(c.After.IsInNew))
			}
			b = b.EndObject()
		}
		b = b.EndArray()
	}

	return b.EndObject().ToString()
}

// submitGitHub posts one review to /pulls/{number}/reviews.
func submitGitHub(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, outcome Outcome, body string, comments []diff.Comment, _ map[string]string) error {
	p, baseURL, err := githubPipeline(gctx)
	if err != nil {
		return err
	}
	payload, err := buildGitHubReviewPayload(outcome, body, comments)
	if err != nil {
		return gclierr.Dataf("github", "building review submission: %v", err)
	}

	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/reviews", strings.TrimSuffix(baseURL, "/"), path.Owner, path.Repo, path.ID)
	_, err = p.FetchWithMethod(ctx, http.MethodPost, url, []byte(payload), map[string]string{"Content-Type": "application/json"}, false)
	return err
}

func startLine(c diff.Comment) int {
	if c.After.IsInNew {
		return c.After.StartRow
	}
	return c.Before.StartRow
}

func endLine(c diff.Comment) int {
	if c.After.IsInNew {
		return c.After.EndRow
	}
	return c.Before.EndRow
}

func side(isInNew bool) string {
	if isInNew {
		return "RIGHT"
	}
	return "LEFT"
}
