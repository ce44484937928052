package agent

import (
	"errors"
	"fmt"
	"strings"

	"github.com/IliaW/bots-checker/config"
	"github.com/IliaW/bots-checker/internal/model"
)

// Registry is the ordered catalog of checked crawlers. It is built once and
// never modified, so it can be shared between concurrent checks.
type Registry struct {
	agents []model.AgentSpec
}

// Default is the built-in catalog used when no agents are configured.
func Default() *Registry {
	r, err := FromConfig(defaultCatalog)
	if err != nil {
		panic(err)
	}
	return r
}

// New builds a registry from config, falling back to Default for an empty list.
func New(companies []config.CompanyConfig) (*Registry, error) {
	if len(companies) == 0 {
		return Default(), nil
	}
	return FromConfig(companies)
}

func FromConfig(companies []config.CompanyConfig) (*Registry, error) {
	r := &Registry{}
	seen := make(map[string]bool)
	for _, company := range companies {
		companyName := strings.TrimSpace(company.Company)
		if companyName == "" {
			return nil, errors.New("agent company name is empty")
		}
		if len(company.Bots) == 0 {
			return nil, fmt.Errorf("company '%s' has no bots", companyName)
		}
		for _, bot := range company.Bots {
			botName := strings.TrimSpace(bot.Name)
			userAgent := strings.TrimSpace(bot.UserAgent)
			if botName == "" || userAgent == "" {
				return nil, fmt.Errorf("bot of company '%s' must have a name and a user agent", companyName)
			}
			key := strings.ToLower(companyName + "/" + botName)
			if seen[key] {
				return nil, fmt.Errorf("bot '%s' of company '%s' is registered twice", botName, companyName)
			}
			seen[key] = true
			r.agents = append(r.agents, model.AgentSpec{
				Company:   companyName,
				BotName:   botName,
				UserAgent: userAgent,
			})
		}
	}
	if len(r.agents) == 0 {
		return nil, errors.New("no agents registered")
	}

	return r, nil
}

// All returns a copy of the agents in registration order.
func (r *Registry) All() []model.AgentSpec {
	agents := make([]model.AgentSpec, len(r.agents))
	copy(agents, r.agents)
	return agents
}

func (r *Registry) Len() int {
	return len(r.agents)
}

var defaultCatalog = []config.CompanyConfig{
	{
		Company: "OpenAI",
		Bots: []config.BotConfig{
			{Name: "GPTBot", UserAgent: "Mozilla/5.0 AppleWebKit/537.36 (KHTML, like Gecko; compatible; GPTBot/1.1; +https://openai.com/gptbot)"},
			{Name: "ChatGPT-User", UserAgent: "Mozilla/5.0 AppleWebKit/537.36 (KHTML, like Gecko); compatible; ChatGPT-User/1.0; +https://openai.com/bot"},
			{Name: "OAI-SearchBot", UserAgent: "Mozilla/5.0 AppleWebKit/537.36 (KHTML, like Gecko); compatible; OAI-SearchBot/1.0; +https://openai.com/searchbot"},
		},
	},
	{
		Company: "Anthropic",
		Bots: []config.BotConfig{
			{Name: "ClaudeBot", UserAgent: "Mozilla/5.0 AppleWebKit/537.36 (KHTML, like Gecko; compatible; ClaudeBot/1.0; +claudebot@anthropic.com)"},
			{Name: "Claude-User", UserAgent: "Mozilla/5.0 AppleWebKit/537.36 (KHTML, like Gecko; compatible; Claude-User/1.0; +Claude-User@anthropic.com)"},
		},
	},
	{
		Company: "Google",
		Bots: []config.BotConfig{
			{Name: "Google-Extended", UserAgent: "Mozilla/5.0 (compatible; Google-Extended/1.0)"},
			{Name: "Googlebot", UserAgent: "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"},
		},
	},
	{
		Company: "Perplexity",
		Bots: []config.BotConfig{
			{Name: "PerplexityBot", UserAgent: "Mozilla/5.0 AppleWebKit/537.36 (KHTML, like Gecko; compatible; PerplexityBot/1.0; +https://perplexity.ai/perplexitybot)"},
		},
	},
	{
		Company: "Common Crawl",
		Bots: []config.BotConfig{
			{Name: "CCBot", UserAgent: "CCBot/2.0 (https://commoncrawl.org/faq/)"},
		},
	},
}
