package checker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/IliaW/bots-checker/config"
	"github.com/IliaW/bots-checker/internal/agent"
	"github.com/IliaW/bots-checker/internal/inspector"
	"github.com/IliaW/bots-checker/internal/model"
	"github.com/IliaW/bots-checker/internal/robots"
	"github.com/IliaW/bots-checker/internal/telemetry"
	"github.com/IliaW/bots-checker/util"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var ErrInvalidURL = errors.New("invalid url")

// PolicyResolver resolves the robots.txt policy of a site. A nil policy permits everything.
type PolicyResolver interface {
	Resolve(ctx context.Context, url string) *robots.Policy
}

type Checker struct {
	cfg        *config.CheckerConfig
	registry   *agent.Registry
	resolver   PolicyResolver
	httpClient *http.Client
	metrics    *telemetry.CheckMetrics
}

func NewChecker(cfg *config.CheckerConfig, registry *agent.Registry, resolver PolicyResolver,
	httpClient *http.Client, metrics *telemetry.CheckMetrics) *Checker {
	return &Checker{
		cfg:        cfg,
		registry:   registry,
		resolver:   resolver,
		httpClient: httpClient,
		metrics:    metrics,
	}
}

// CheckSite checks the url against every registered agent. Results follow the
// registry order. Only an invalid url fails the whole check; every other
// failure is reported in the row of the agent it happened to.
func (c *Checker) CheckSite(ctx context.Context, url string) ([]model.CheckResult, error) {
	if _, err := util.ValidateUrl(url); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidURL, err.Error())
	}
	log := slog.With(slog.String("run_id", uuid.New().String()), slog.String("url", url))
	start := time.Now()

	policy := c.resolver.Resolve(ctx, url)
	log.Debug("robots.txt resolved.", slog.Bool("found", policy != nil))

	agents := c.registry.All()
	results := make([]model.CheckResult, len(agents))

	var g errgroup.Group
	g.SetLimit(c.maxWorkers(len(agents)))
	for i, a := range agents {
		g.Go(func() error {
			results[i] = c.checkAgent(ctx, log, url, a, policy)
			c.countResult(results[i].Access)
			return nil
		})
	}
	_ = g.Wait()
	log.Info("site checked.", slog.Int("agents", len(results)),
		slog.Float64("duration_seconds", time.Since(start).Seconds()))

	return results, nil
}

func (c *Checker) checkAgent(ctx context.Context, log *slog.Logger, url string, a model.AgentSpec,
	policy *robots.Policy) (result model.CheckResult) {
	log = log.With(slog.String("bot", a.BotName))
	robotsAllowed := policy == nil || policy.CanFetch(url, a.UserAgent)
	defer func() {
		if r := recover(); r != nil {
			log.Error("agent check panicked.", slog.Any("err", r))
			result = errorResult(a, robotsAllowed, fmt.Sprintf("%v", r))
		}
	}()

	start := time.Now()
	statusCode, body, err := c.fetch(ctx, url, a.UserAgent)
	if err != nil {
		log.Warn("failed to fetch page.", slog.String("err", err.Error()))
		return errorResult(a, robotsAllowed, err.Error())
	}
	loadTime := time.Since(start).Seconds()
	signals := inspector.Inspect(body)

	result = model.CheckResult{
		Company:         a.Company,
		BotName:         a.BotName,
		UserAgent:       a.UserAgent,
		Access:          verdict(statusCode, robotsAllowed, signals.HasNoIndex),
		StatusCode:      &statusCode,
		RobotsMeta:      signals.RobotsMetaRaw,
		RobotsTxt:       model.RobotsVerdictOf(robotsAllowed),
		Title:           &signals.Title,
		LoadTimeSeconds: &loadTime,
		NoIndex:         signals.HasNoIndex,
	}
	log.Debug("agent checked.", slog.String("access", string(result.Access)), slog.Int("status_code", statusCode))

	return result
}

// fetch performs the GET with the agent's user agent. Any error, including a
// failure to read the body, is a transport failure.
func (c *Checker) fetch(ctx context.Context, url, userAgent string) (int, []byte, error) {
	if c.cfg.PageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.PageTimeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("error closing response body", slog.String("err", err.Error()))
		}
	}()

	var reader io.Reader = resp.Body
	if c.cfg.MaxPageSize > 0 {
		reader = io.LimitReader(resp.Body, c.cfg.MaxPageSize)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return 0, nil, err
	}

	return resp.StatusCode, body, nil
}

// verdict allows access only when the page is served with 200, robots.txt
// permits the agent and the page is not marked noindex.
func verdict(statusCode int, robotsAllowed bool, noIndex bool) model.Access {
	if statusCode == http.StatusOK && robotsAllowed && !noIndex {
		return model.AccessAllowed
	}
	return model.AccessBlocked
}

func errorResult(a model.AgentSpec, robotsAllowed bool, message string) model.CheckResult {
	return model.CheckResult{
		Company:    a.Company,
		BotName:    a.BotName,
		UserAgent:  a.UserAgent,
		Access:     model.AccessError,
		RobotsMeta: message,
		RobotsTxt:  model.RobotsVerdictOf(robotsAllowed),
	}
}

func (c *Checker) maxWorkers(agents int) int {
	if c.cfg.MaxWorkers <= 0 || c.cfg.MaxWorkers > agents {
		return max(agents, 1)
	}
	return c.cfg.MaxWorkers
}

func (c *Checker) countResult(access model.Access) {
	if c.metrics != nil && c.metrics.ResultCounter != nil {
		c.metrics.ResultCounter(access)
	}
}
