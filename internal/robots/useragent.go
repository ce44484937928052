package robots

import "strings"

// tokens shared by browser-like user agents that never identify a crawler
var browserTokens = map[string]bool{
	"mozilla":     true,
	"applewebkit": true,
	"khtml":       true,
	"like":        true,
	"gecko":       true,
	"compatible":  true,
	"chrome":      true,
	"safari":      true,
	"mobile":      true,
}

// ProductToken reduces a full User-Agent header to the token robots.txt groups
// are written for, e.g. "GPTBot" for
// "Mozilla/5.0 AppleWebKit/537.36 (KHTML, like Gecko; compatible; GPTBot/1.1; +https://openai.com/gptbot)".
// Tokens carrying a version are preferred. The header is returned unchanged if
// nothing usable is found.
func ProductToken(userAgent string) string {
	fields := strings.FieldsFunc(userAgent, func(r rune) bool {
		return r == ' ' || r == ';' || r == '(' || r == ')' || r == ','
	})

	fallback := ""
	for _, field := range fields {
		if strings.HasPrefix(field, "+") || strings.Contains(field, "://") {
			continue
		}
		name, _, versioned := strings.Cut(field, "/")
		token := leadingToken(name)
		if token == "" || token != name || browserTokens[strings.ToLower(token)] {
			continue
		}
		if versioned {
			return token
		}
		if fallback == "" {
			fallback = token
		}
	}
	if fallback != "" {
		return fallback
	}

	return userAgent
}

// leadingToken returns the longest prefix made of the characters allowed in a
// robots.txt user-agent line.
func leadingToken(s string) string {
	for i, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r == '-' || r == '_') {
			return s[:i]
		}
	}
	return s
}
