package model

// Access is the combined verdict for one agent.
type Access string

const (
	AccessAllowed Access = "Allowed"
	AccessBlocked Access = "Blocked"
	AccessError   Access = "Error"
)

// RobotsVerdict is the robots.txt permission for one agent.
type RobotsVerdict string

const (
	RobotsAllowed RobotsVerdict = "Allowed"
	RobotsBlocked RobotsVerdict = "Blocked"
)

func RobotsVerdictOf(allowed bool) RobotsVerdict {
	if allowed {
		return RobotsAllowed
	}
	return RobotsBlocked
}

// AgentSpec describes a single AI crawler.
type AgentSpec struct {
	Company   string `json:"company"`
	BotName   string `json:"bot_name"`
	UserAgent string `json:"user_agent"`
}

// PageSignals are extracted from a fetched HTML page.
type PageSignals struct {
	Title         string
	RobotsMetaRaw string
	HasNoIndex    bool
}

// CheckResult godoc
// @Description Accessibility of the site for one AI crawler
// @Type CheckResult
type CheckResult struct {
	Company         string        `json:"company"`
	BotName         string        `json:"bot_name"`
	UserAgent       string        `json:"user_agent"`
	Access          Access        `json:"access"`
	StatusCode      *int          `json:"status_code"`
	RobotsMeta      string        `json:"robots_meta"`
	RobotsTxt       RobotsVerdict `json:"robots_txt"`
	Title           *string       `json:"title"`
	LoadTimeSeconds *float64      `json:"load_time_seconds"`
	NoIndex         bool          `json:"noindex"`
}

// CheckSiteResponse godoc
// @Description Results of checking a site against every registered AI crawler
// @Type CheckSiteResponse
type CheckSiteResponse struct {
	Url     string        `json:"url"`
	Results []CheckResult `json:"results"`
}

// ErrorResponse godoc
// @Description Error message
// @Type ErrorResponse
type ErrorResponse struct {
	Error string `json:"error"`
}
