package fetch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDoer struct {
	responses []*http.Response
	requests  []*http.Request
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	f.requests = append(f.requests, req)
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp, nil
}

func jsonResponse(status int, body string, headers map[string]string) *http.Response {
	h := http.Header{}
	for k, v := range headers {
		h.Set(k, v)
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     h,
	}
}

func newTestPipeline(doer Doer) *Pipeline {
	return &Pipeline{
		HTTP:    doer,
		Backend: "testforge",
		AuthHeader: func() AuthHeader {
			return AuthHeader{Name: "Authorization", Value: "Bearer tok"}
		},
		Retry: RetryConfig{MaxRetries: 2, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond, Multiplier: 2},
	}
}

func TestFetchOneReturnsBody(t *testing.T) {
	doer := &fakeDoer{responses: []*http.Response{jsonResponse(200, `{"ok":true}`, nil)}}
	p := newTestPipeline(doer)

	body, err := p.FetchOne(context.Background(), "https://forge.example/x", "application/json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
	require.Len(t, doer.requests, 1)
	assert.Equal(t, "Bearer tok", doer.requests[0].Header.Get("Authorization"))
}

func TestFetchOneRetriesOnRetryableStatus(t *testing.T) {
	doer := &fakeDoer{responses: []*http.Response{
		jsonResponse(503, `{"message":"unavailable"}`, nil),
		jsonResponse(200, `{"ok":true}`, nil),
	}}
	p := newTestPipeline(doer)
	p.ErrorString = func(status int, body []byte) string {
		var m struct {
			Message string `json:"message"`
		}
		json.Unmarshal(body, &m)
		return m.Message
	}

	body, err := p.FetchOne(context.Background(), "https://forge.example/x", "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
	assert.Len(t, doer.requests, 2)
}

func TestFetchOneFailsOnNonRetryableStatus(t *testing.T) {
	doer := &fakeDoer{responses: []*http.Response{jsonResponse(404, `{"message":"not found"}`, nil)}}
	p := newTestPipeline(doer)
	p.ErrorString = func(status int, body []byte) string {
		var m struct {
			Message string `json:"message"`
		}
		json.Unmarshal(body, &m)
		return m.Message
	}

	_, err := p.FetchOne(context.Background(), "https://forge.example/x", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.Len(t, doer.requests, 1)
}

type page struct {
	Name string `json:"name"`
}

func TestFetchListFollowsLinkHeaderUntilExhausted(t *testing.T) {
	doer := &fakeDoer{responses: []*http.Response{
		jsonResponse(200, `[{"name":"a"},{"name":"b"}]`, map[string]string{
			"Link": `<https://forge.example/repos/o/r/issues?page=2>; rel="next"`,
		}),
		jsonResponse(200, `[{"name":"c"}]`, nil),
	}}
	p := newTestPipeline(doer)
	p.BaseURL = "https://forge.example/repos/o/r"

	list, err := FetchList[page](context.Background(), p, "https://forge.example/repos/o/r/issues", ListOptions[page]{
		Parse: func(body []byte, out *[]page) error {
			var batch []page
			if err := json.Unmarshal(body, &batch); err != nil {
				return err
			}
			*out = append(*out, batch...)
			return nil
		},
		Max: -1,
	})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "c", list[2].Name)
}

func TestFetchListTruncatesAtMax(t *testing.T) {
	doer := &fakeDoer{responses: []*http.Response{
		jsonResponse(200, `[{"name":"a"},{"name":"b"},{"name":"c"}]`, nil),
	}}
	p := newTestPipeline(doer)

	list, err := FetchList[page](context.Background(), p, "https://forge.example/issues", ListOptions[page]{
		Parse: func(body []byte, out *[]page) error {
			var batch []page
			if err := json.Unmarshal(body, &batch); err != nil {
				return err
			}
			*out = append(*out, batch...)
			return nil
		},
		Max: 2,
	})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestFetchListRejectsUntrustedPaginationHost(t *testing.T) {
	doer := &fakeDoer{responses: []*http.Response{
		jsonResponse(200, `[{"name":"a"}]`, map[string]string{
			"Link": `<https://evil.example/steal>; rel="next"`,
		}),
	}}
	p := newTestPipeline(doer)
	p.BaseURL = "https://forge.example/repos/o/r"

	_, err := FetchList[page](context.Background(), p, "https://forge.example/repos/o/r/issues", ListOptions[page]{
		Parse: func(body []byte, out *[]page) error {
			var batch []page
			if err := json.Unmarshal(body, &batch); err != nil {
				return err
			}
			*out = append(*out, batch...)
			return nil
		},
		Max: -1,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "untrusted host")
}

func TestFetchWithMethodIgnoresBodyWhenNotCaptured(t *testing.T) {
	doer := &fakeDoer{responses: []*http.Response{jsonResponse(204, "", nil)}}
	p := newTestPipeline(doer)

	body, err := p.FetchWithMethod(context.Background(), http.MethodDelete, "https://forge.example/x", nil, nil, false)
	require.NoError(t, err)
	assert.Nil(t, body)
}

func TestParseNextLinkExtractsURL(t *testing.T) {
	assert.Equal(t, "https://x/y", parseNextLink(`<https://x/y>; rel="next", <https://x/z>; rel="last"`))
	assert.Equal(t, "", parseNextLink(`<https://x/z>; rel="last"`))
}
