package util

import (
	"errors"
	"fmt"
	u "net/url"
	"strings"
)

var ErrInvalidUrl = errors.New("invalid url. Url should start with http:// or https:// and contain a hostname")

// ValidateUrl accepts only absolute http(s) urls with a non-empty host.
func ValidateUrl(url string) (*u.URL, error) {
	if strings.TrimSpace(url) == "" {
		return nil, ErrInvalidUrl
	}
	parsedUrl, err := u.Parse(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidUrl, err.Error())
	}
	scheme := strings.ToLower(parsedUrl.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, ErrInvalidUrl
	}
	if parsedUrl.Hostname() == "" {
		return nil, ErrInvalidUrl
	}

	return parsedUrl, nil
}

// GetBaseUrl returns scheme and host of the url. The port, if any, is kept.
func GetBaseUrl(url string) (string, error) {
	parsedUrl, err := u.Parse(url)
	if err != nil {
		return "", err
	}
	if parsedUrl.Scheme == "" || parsedUrl.Hostname() == "" {
		return "", errors.New("invalid url. Url should contain scheme and hostname")
	}

	return parsedUrl.Scheme + "://" + parsedUrl.Host, nil
}

func GetRobotsTxtUrl(url string) (string, error) {
	baseUrl, err := GetBaseUrl(url)
	if err != nil {
		return "", err
	}

	return baseUrl + "/robots.txt", nil
}
