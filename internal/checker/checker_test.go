package checker

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/IliaW/bots-checker/config"
	"github.com/IliaW/bots-checker/internal/agent"
	"github.com/IliaW/bots-checker/internal/model"
	"github.com/IliaW/bots-checker/internal/robots"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<html><head><title>Example Domain</title></head><body>hello</body></html>`

func testRegistry(t *testing.T) *agent.Registry {
	registry, err := agent.FromConfig([]config.CompanyConfig{
		{Company: "OpenAI", Bots: []config.BotConfig{
			{Name: "GPTBot", UserAgent: "Mozilla/5.0 AppleWebKit/537.36 (KHTML, like Gecko; compatible; GPTBot/1.1; +https://openai.com/gptbot)"},
			{Name: "ChatGPT-User", UserAgent: "Mozilla/5.0 AppleWebKit/537.36 (KHTML, like Gecko); compatible; ChatGPT-User/1.0; +https://openai.com/bot"},
		}},
		{Company: "Anthropic", Bots: []config.BotConfig{
			{Name: "ClaudeBot", UserAgent: "Mozilla/5.0 AppleWebKit/537.36 (KHTML, like Gecko; compatible; ClaudeBot/1.0; +claudebot@anthropic.com)"},
			{Name: "SlowBot", UserAgent: "SlowBot/1.0"},
		}},
		{Company: "Common Crawl", Bots: []config.BotConfig{
			{Name: "CCBot", UserAgent: "CCBot/2.0 (https://commoncrawl.org/faq/)"},
		}},
	})
	require.NoError(t, err)
	return registry
}

type site struct {
	robotsStatus int
	robotsTxt    string
	page         string
	pageStatus   func(userAgent string) int
	slowAgent    string
}

func (s site) start(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent := r.Header.Get("User-Agent")
		if r.URL.Path == "/robots.txt" {
			w.WriteHeader(s.robotsStatus)
			_, _ = fmt.Fprint(w, s.robotsTxt)
			return
		}
		if s.slowAgent != "" && strings.Contains(userAgent, s.slowAgent) {
			select {
			case <-r.Context().Done():
				return
			case <-time.After(5 * time.Second):
			}
		}
		status := http.StatusOK
		if s.pageStatus != nil {
			status = s.pageStatus(userAgent)
		}
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(status)
		_, _ = fmt.Fprint(w, s.page)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestChecker(client *http.Client, registry *agent.Registry, workers int) *Checker {
	cfg := &config.CheckerConfig{
		RobotsTimeout: time.Second,
		PageTimeout:   2 * time.Second,
		MaxWorkers:    workers,
		MaxPageSize:   1024 * 1024,
	}
	resolver := robots.NewResolver(client, "bots-checker-test", cfg.RobotsTimeout, nil)
	return NewChecker(cfg, registry, resolver, client, nil)
}

func botNames(results []model.CheckResult) []string {
	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.BotName)
	}
	return names
}

func assertAccessInvariant(t *testing.T, results []model.CheckResult) {
	t.Helper()
	for _, r := range results {
		if r.Access == model.AccessError {
			assert.Nil(t, r.StatusCode, r.BotName)
			assert.Nil(t, r.Title, r.BotName)
			assert.Nil(t, r.LoadTimeSeconds, r.BotName)
			continue
		}
		require.NotNil(t, r.StatusCode, r.BotName)
		expectAllowed := *r.StatusCode == http.StatusOK && r.RobotsTxt == model.RobotsAllowed && !r.NoIndex
		assert.Equal(t, expectAllowed, r.Access == model.AccessAllowed, r.BotName)
		assert.Equal(t, !expectAllowed, r.Access == model.AccessBlocked, r.BotName)
	}
}

func Test_CheckSite_RobotsTxtBlocksOneAgent(t *testing.T) {
	srv := site{
		robotsStatus: http.StatusOK,
		robotsTxt:    "User-agent: GPTBot\nDisallow: /\n\nUser-agent: *\nAllow: /",
		page:         page,
	}.start(t)
	registry := testRegistry(t)

	results, err := newTestChecker(srv.Client(), registry, 4).CheckSite(context.Background(), srv.URL+"/")

	require.NoError(t, err)
	require.Len(t, results, registry.Len())
	assert.Equal(t, []string{"GPTBot", "ChatGPT-User", "ClaudeBot", "SlowBot", "CCBot"}, botNames(results))
	assertAccessInvariant(t, results)

	assert.Equal(t, model.AccessBlocked, results[0].Access)
	assert.Equal(t, model.RobotsBlocked, results[0].RobotsTxt)
	for _, r := range results[1:] {
		assert.Equal(t, model.AccessAllowed, r.Access, r.BotName)
		assert.Equal(t, model.RobotsAllowed, r.RobotsTxt, r.BotName)
		assert.Equal(t, http.StatusOK, *r.StatusCode)
		assert.Equal(t, "Example Domain", *r.Title)
		assert.Equal(t, "No robots meta", r.RobotsMeta)
		assert.GreaterOrEqual(t, *r.LoadTimeSeconds, 0.0)
	}
}

func Test_CheckSite_RobotsTxtNotFound(t *testing.T) {
	srv := site{robotsStatus: http.StatusNotFound, robotsTxt: "Disallow: /", page: page}.start(t)

	results, err := newTestChecker(srv.Client(), testRegistry(t), 2).CheckSite(context.Background(), srv.URL)

	require.NoError(t, err)
	require.Len(t, results, 5)
	for _, r := range results {
		assert.Equal(t, model.RobotsAllowed, r.RobotsTxt, r.BotName)
		assert.Equal(t, model.AccessAllowed, r.Access, r.BotName)
	}
}

func Test_CheckSite_NoIndexBlocksEveryAgent(t *testing.T) {
	srv := site{
		robotsStatus: http.StatusNotFound,
		page:         `<html><head><meta name="robots" content="NOINDEX, nofollow"></head><body></body></html>`,
	}.start(t)

	results, err := newTestChecker(srv.Client(), testRegistry(t), 4).CheckSite(context.Background(), srv.URL)

	require.NoError(t, err)
	assertAccessInvariant(t, results)
	for _, r := range results {
		assert.Equal(t, model.AccessBlocked, r.Access, r.BotName)
		assert.Equal(t, model.RobotsAllowed, r.RobotsTxt, r.BotName)
		assert.True(t, r.NoIndex)
		assert.Equal(t, "NOINDEX, nofollow", r.RobotsMeta)
		assert.Equal(t, "No title", *r.Title)
	}
}

func Test_CheckSite_StatusCodePerAgent(t *testing.T) {
	srv := site{
		robotsStatus: http.StatusNotFound,
		page:         page,
		pageStatus: func(userAgent string) int {
			if strings.Contains(userAgent, "ClaudeBot") {
				return http.StatusForbidden
			}
			return http.StatusOK
		},
	}.start(t)

	results, err := newTestChecker(srv.Client(), testRegistry(t), 4).CheckSite(context.Background(), srv.URL)

	require.NoError(t, err)
	assertAccessInvariant(t, results)
	assert.Equal(t, model.AccessBlocked, results[2].Access)
	assert.Equal(t, http.StatusForbidden, *results[2].StatusCode)
	assert.Equal(t, model.RobotsAllowed, results[2].RobotsTxt)
	assert.Equal(t, model.AccessAllowed, results[1].Access)
}

func Test_CheckSite_TimeoutForOneAgent(t *testing.T) {
	srv := site{
		robotsStatus: http.StatusOK,
		robotsTxt:    "User-agent: CCBot\nDisallow: /",
		page:         page,
		slowAgent:    "SlowBot",
	}.start(t)
	c := newTestChecker(srv.Client(), testRegistry(t), 5)
	c.cfg.PageTimeout = 200 * time.Millisecond

	results, err := c.CheckSite(context.Background(), srv.URL)

	require.NoError(t, err)
	require.Len(t, results, 5)
	assertAccessInvariant(t, results)
	slow := results[3]
	assert.Equal(t, "SlowBot", slow.BotName)
	assert.Equal(t, model.AccessError, slow.Access)
	assert.Equal(t, model.RobotsAllowed, slow.RobotsTxt)
	assert.Contains(t, slow.RobotsMeta, "context deadline exceeded")

	assert.Equal(t, model.AccessAllowed, results[0].Access)
	assert.Equal(t, model.AccessAllowed, results[1].Access)
	assert.Equal(t, model.AccessAllowed, results[2].Access)
	assert.Equal(t, model.AccessBlocked, results[4].Access)
	assert.Equal(t, model.RobotsBlocked, results[4].RobotsTxt)
}

func Test_CheckSite_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	results, err := newTestChecker(http.DefaultClient, testRegistry(t), 4).CheckSite(context.Background(), url)

	require.NoError(t, err)
	require.Len(t, results, 5)
	for _, r := range results {
		assert.Equal(t, model.AccessError, r.Access)
		assert.Equal(t, model.RobotsAllowed, r.RobotsTxt)
		assert.NotEmpty(t, r.RobotsMeta)
		assert.Nil(t, r.StatusCode)
		assert.Nil(t, r.Title)
		assert.Nil(t, r.LoadTimeSeconds)
	}
}

func Test_CheckSite_RobotsVerdictKeptOnTransportError(t *testing.T) {
	policy := robots.NewPolicy([]byte("User-agent: GPTBot\nDisallow: /"))
	client := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return nil, fmt.Errorf("dial tcp: lookup %s: no such host", req.URL.Host)
	})}
	c := NewChecker(&config.CheckerConfig{PageTimeout: time.Second}, testRegistry(t),
		staticResolver{policy: policy}, client, nil)

	results, err := c.CheckSite(context.Background(), "https://example.invalid/")

	require.NoError(t, err)
	assert.Equal(t, model.AccessError, results[0].Access)
	assert.Equal(t, model.RobotsBlocked, results[0].RobotsTxt)
	assert.Contains(t, results[0].RobotsMeta, "no such host")
	assert.Equal(t, model.RobotsAllowed, results[1].RobotsTxt)
}

func Test_CheckSite_PanicIsIsolated(t *testing.T) {
	client := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if strings.Contains(req.UserAgent(), "ClaudeBot") {
			panic("unexpected transport state")
		}
		rec := httptest.NewRecorder()
		rec.WriteString(page)
		return rec.Result(), nil
	})}
	c := NewChecker(&config.CheckerConfig{PageTimeout: time.Second}, testRegistry(t), staticResolver{}, client, nil)

	results, err := c.CheckSite(context.Background(), "https://example.com/")

	require.NoError(t, err)
	require.Len(t, results, 5)
	assert.Equal(t, model.AccessError, results[2].Access)
	assert.Equal(t, "unexpected transport state", results[2].RobotsMeta)
	for _, i := range []int{0, 1, 3, 4} {
		assert.Equal(t, model.AccessAllowed, results[i].Access, results[i].BotName)
	}
}

func Test_CheckSite_SequentialAndConcurrentAgree(t *testing.T) {
	srv := site{
		robotsStatus: http.StatusOK,
		robotsTxt:    "User-agent: ClaudeBot\nDisallow: /\n\nUser-agent: ChatGPT-User\nDisallow: /",
		page:         page,
	}.start(t)
	registry := testRegistry(t)

	sequential, err := newTestChecker(srv.Client(), registry, 1).CheckSite(context.Background(), srv.URL)
	require.NoError(t, err)
	concurrent, err := newTestChecker(srv.Client(), registry, 0).CheckSite(context.Background(), srv.URL)
	require.NoError(t, err)

	require.Len(t, sequential, len(concurrent))
	for i := range sequential {
		assert.Equal(t, sequential[i].BotName, concurrent[i].BotName)
		assert.Equal(t, sequential[i].Access, concurrent[i].Access)
		assert.Equal(t, sequential[i].RobotsTxt, concurrent[i].RobotsTxt)
	}
	assert.Equal(t, model.AccessBlocked, sequential[1].Access)
	assert.Equal(t, model.AccessBlocked, sequential[2].Access)
}

func Test_CheckSite_ResolvesRobotsTxtOnce(t *testing.T) {
	srv := site{robotsStatus: http.StatusNotFound, page: page}.start(t)
	resolver := &countingResolver{}
	c := NewChecker(&config.CheckerConfig{PageTimeout: time.Second, MaxWorkers: 3}, testRegistry(t),
		resolver, srv.Client(), nil)

	_, err := c.CheckSite(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, int32(1), resolver.calls.Load())
}

func Test_CheckSite_InvalidUrl(t *testing.T) {
	for _, url := range []string{"not-a-url", "ftp://x.com", "", "https://"} {
		t.Run(url, func(tt *testing.T) {
			var calls atomic.Int32
			client := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
				calls.Add(1)
				return nil, fmt.Errorf("unexpected request to %s", req.URL)
			})}
			resolver := &countingResolver{}
			c := NewChecker(&config.CheckerConfig{}, testRegistry(tt), resolver, client, nil)

			results, err := c.CheckSite(context.Background(), url)

			assert.ErrorIs(tt, err, ErrInvalidURL)
			assert.Nil(tt, results)
			assert.Zero(tt, calls.Load())
			assert.Zero(tt, resolver.calls.Load())
		})
	}
}

func Test_Verdict(t *testing.T) {
	testSet := []struct {
		statusCode    int
		robotsAllowed bool
		noIndex       bool
		expected      model.Access
	}{
		{statusCode: 200, robotsAllowed: true, noIndex: false, expected: model.AccessAllowed},
		{statusCode: 200, robotsAllowed: false, noIndex: false, expected: model.AccessBlocked},
		{statusCode: 200, robotsAllowed: true, noIndex: true, expected: model.AccessBlocked},
		{statusCode: 201, robotsAllowed: true, noIndex: false, expected: model.AccessBlocked},
		{statusCode: 301, robotsAllowed: true, noIndex: false, expected: model.AccessBlocked},
		{statusCode: 403, robotsAllowed: true, noIndex: false, expected: model.AccessBlocked},
		{statusCode: 500, robotsAllowed: false, noIndex: true, expected: model.AccessBlocked},
	}
	for _, test := range testSet {
		name := fmt.Sprintf("%d/%t/%t", test.statusCode, test.robotsAllowed, test.noIndex)
		t.Run(name, func(tt *testing.T) {
			assert.Equal(tt, test.expected, verdict(test.statusCode, test.robotsAllowed, test.noIndex))
		})
	}
}

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

type staticResolver struct {
	policy *robots.Policy
}

func (r staticResolver) Resolve(context.Context, string) *robots.Policy {
	return r.policy
}

type countingResolver struct {
	calls atomic.Int32
}

func (r *countingResolver) Resolve(context.Context, string) *robots.Policy {
	r.calls.Add(1)
	return nil
}
