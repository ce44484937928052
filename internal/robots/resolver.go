package robots

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/IliaW/bots-checker/util"
)

// robots.txt files larger than this are truncated, as Google does.
const maxRobotsTxtSize = 512 * 1024

type Resolver struct {
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
	onResolve  func(found bool)
}

// NewResolver creates a resolver that fetches robots.txt with the given user agent.
// onResolve is called after every resolution and may be nil.
func NewResolver(httpClient *http.Client, userAgent string, timeout time.Duration,
	onResolve func(found bool)) *Resolver {
	return &Resolver{
		httpClient: httpClient,
		userAgent:  userAgent,
		timeout:    timeout,
		onResolve:  onResolve,
	}
}

// Resolve fetches and parses the robots.txt of the site the url belongs to.
// It returns nil when the file is missing or unreachable.
func (r *Resolver) Resolve(ctx context.Context, url string) *Policy {
	policy, err := r.resolve(ctx, url)
	if err != nil {
		slog.Debug("robots.txt is not available. Allow all.", slog.String("url", url),
			slog.String("err", err.Error()))
	}
	if r.onResolve != nil {
		r.onResolve(policy != nil)
	}

	return policy
}

func (r *Resolver) resolve(ctx context.Context, url string) (*Policy, error) {
	robotsUrl, err := util.GetRobotsTxtUrl(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse url. %w", err)
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsUrl, nil)
	if err != nil {
		return nil, err
	}
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making http get request to %s. %w", robotsUrl, err)
	}
	defer func() {
		err = resp.Body.Close()
		if err != nil {
			slog.Error("error closing response body", slog.String("err", err.Error()))
		}
	}()

	if !isSuccess(resp.StatusCode) {
		return nil, fmt.Errorf("%s responded with status code %d", robotsUrl, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsTxtSize))
	if err != nil {
		return nil, fmt.Errorf("error reading response body. %w", err)
	}
	slog.Debug("robots.txt fetched.", slog.String("url", robotsUrl), slog.Int("size", len(body)))

	policy := NewPolicy(body)
	if err := policy.ParseError(); err != nil {
		slog.Warn("robots.txt has invalid lines. Skipping them.", slog.String("url", robotsUrl),
			slog.String("err", err.Error()))
	}

	return policy, nil
}

func isSuccess(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
