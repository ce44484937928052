package robots

import (
	"fmt"
	"log/slog"

	"github.com/jimsmart/grobotstxt"
	"github.com/temoto/robotstxt"
)

// Policy is a parsed robots.txt document. It is immutable once built and safe
// for concurrent use. A nil *Policy means no robots.txt could be obtained and
// every agent is permitted.
type Policy struct {
	body     string
	parseErr error
}

// NewPolicy always builds a policy. Invalid lines such as a malformed
// Crawl-delay are skipped by the matcher and reported by ParseError.
func NewPolicy(body []byte) *Policy {
	p := &Policy{body: string(body)}
	if _, err := robotstxt.FromBytes(body); err != nil {
		p.parseErr = fmt.Errorf("robots.txt contains invalid lines. %w", err)
	}

	return p
}

// ParseError returns the lines the strict parser rejected, or nil.
func (p *Policy) ParseError() error {
	if p == nil {
		return nil
	}
	return p.parseErr
}

// CanFetch reports whether userAgent may fetch url. It never fails: a rule set
// that can not be evaluated permits the fetch.
func (p *Policy) CanFetch(url, userAgent string) (allowed bool) {
	if p == nil {
		return true
	}
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("failed to evaluate robots.txt rules. Allow by default.", slog.String("url", url),
				slog.String("user_agent", userAgent), slog.Any("err", r))
			allowed = true
		}
	}()

	return grobotstxt.AgentAllowed(p.body, ProductToken(userAgent), url)
}
