package review

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/herrhotzenplotz/gcli-go/internal/gcli/diff"
	"github.com/herrhotzenplotz/gcli-go/internal/gcli/fetch"
	"github.com/herrhotzenplotz/gcli-go/internal/gcli/jsonbuilder"
	"github.com/herrhotzenplotz/gcli-go/internal/gclictx"
	"github.com/herrhotzenplotz/gcli-go/internal/gclierr"
	"github.com/herrhotzenplotz/gcli-go/internal/gclipath"
)

const defaultGitLabBaseURL = "https://gitlab.com"

func gitlabPipeline(gctx *gclictx.Context) (*fetch.Pipeline, string, error) {
	acct, ok := gctx.Account()
	if !ok {
		return nil, "", gclierr.Dataf("gitlab", "no account configured for this forge")
	}
	baseURL := acct.BaseURL
	if baseURL == "" {
		baseURL = defaultGitLabBaseURL
	}
	return &fetch.Pipeline{
		HTTP:    gctx.Transport,
		Backend: "gitlab",
		BaseURL: baseURL,
		AuthHeader: func() fetch.AuthHeader {
			return fetch.AuthHeader{Name: "PRIVATE-TOKEN", Value: acct.Token}
		},
		ErrorString: func(statusCode int, body []byte) string {
			return fmt.Sprintf("gitlab API error (HTTP %d): %s", statusCode, string(body))
		},
	}, baseURL, nil
}

func gitlabProjectPath(path gclipath.Path) string {
	return url.PathEscape(path.Owner + "/" + path.Repo)
}

// lineCode is GitLab's "<sha1(filename)>_<old_line>_<new_line>" position
// anchor (spec.md §4.9/§8 scenario 5).
func lineCode(filename string, oldLine, newLine int) string {
	sum := sha1.Sum([]byte(filename))
	return fmt.Sprintf("%s_%d_%d", hex.EncodeToString(sum[:]), oldLine, newLine)
}

// submitGitLab posts one discussion per comment, then a separate
// approve/unapprove call and, if there is a general-body review summary, a
// plain issue-style note — GitLab has no single batched "review" endpoint
// the way GitHub does.
func submitGitLab(ctx context.Context, gctx *gclictx.Context, path gclipath.Path, outcome Outcome, body string, comments []diff.Comment, metadata map[string]string) error {
	p, baseURL, err := gitlabPipeline(gctx)
	if err != nil {
		return err
	}
	projectPath := gitlabProjectPath(path)
	base := strings.TrimSuffix(baseURL, "/")

	for _, c := range comments {
		if err := postGitLabDiscussion(ctx, p, base, projectPath, path.ID, c, metadata); err != nil {
			return err
		}
	}

	switch outcome {
	case OutcomeAccept:
		if _, err := p.FetchWithMethod(ctx, http.MethodPost,
			fmt.Sprintf("%s/api/v4/projects/%s/merge_requests/%d/approve", base, projectPath, path.ID),
			nil, nil, false); err != nil {
			return err
		}
	case OutcomeRequestChanges:
		if _, err := p.FetchWithMethod(ctx, http.MethodPost,
			fmt.Sprintf("%s/api/v4/projects/%s/merge_requests/%d/unapprove", base, projectPath, path.ID),
			nil, nil, false); err != nil {
			return err
		}
	}

	if strings.TrimSpace(body) == "" {
		return nil
	}
	payload, err := jsonbuilder.New().BeginObject().Member("body").String(body).EndObject().ToString()
	if err != nil {
		return gclierr.Dataf("gitlab", "building review summary note: %v", err)
	}
	_, err = p.FetchWithMethod(ctx, http.MethodPost,
		fmt.Sprintf("%s/api/v4/projects/%s/merge_requests/%d/notes", base, projectPath, path.ID),
		[]byte(payload), map[string]string{"Content-Type": "application/json"}, false)
	return err
}

// buildGitLabDiscussionPayload assembles one comment's discussion body,
// including the line_range position object spec.md §4.9/§8 scenario 5
// describes: start/end line_codes of "<sha1(filename)>_<old>_<new>".
func buildGitLabDiscussionPayload(c diff.Comment, metadata map[string]string) (string, error) {
	startCode := lineCode(c.Path, c.Before.StartRow, c.After.StartRow)
	endCode := lineCode(c.Path, c.Before.EndRow, c.After.EndRow)

	return jsonbuilder.New().BeginObject().
		Member("body").String(c.Body).
		Member("position").BeginObject().
		Member("position_type").String("text").
		Member("base_sha").String(metadata["base_sha"]).
		Member("start_sha").String(metadata["start_sha"]).
		Member("head_sha").String(metadata["head_sha"]).
		Member("old_path").String(c.Path).
		Member("new_path").String(c.Path).
		Member("line_range").BeginObject().
		Member("start").BeginObject().
		Member("line_code").String(startCode).
		Member("type").String(lineType(c.Before.IsInNew)).
		EndObject().
		Member("end").BeginObject().
		Member("line_code").String(endCode).
		Member("type").String(lineType(c.After.IsInNew)).
		EndObject().
		EndObject().
		EndObject().
		EndObject().ToString()
}

func postGitLabDiscussion(ctx context.Context, p *fetch.Pipeline, base, projectPath string, pullID uint64, c diff.Comment, metadata map[string]string) error {
	payload, err := buildGitLabDiscussionPayload(c, metadata)
	if err != nil {
		return gclierr.Dataf("gitlab", "building review discussion: %v", err)
	}

	_, err = p.FetchWithMethod(ctx, http.MethodPost,
		fmt.Sprintf("%s/api/v4/projects/%s/merge_requests/%d/discussions", base, projectPath, pullID),
		[]byte(payload), map[string]string{"Content-Type": "application/json"}, false)
	return err
}

func lineType(isInNew bool) string {
	if isInNew {
		return "new"
	}
	return "old"
}
