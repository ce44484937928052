package util

import (
	"crypto/tls"
	"net"
	"net/http"

	"github.com/IliaW/bots-checker/config"
)

func NewHttpClient(cfg *config.HttpClientConfig) *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        cfg.MaxIdleConnections,
		MaxIdleConnsPerHost: cfg.MaxIdleConnectionsPerHost,
		MaxConnsPerHost:     cfg.MaxConnectionsPerHost,
		IdleConnTimeout:     cfg.IdleConnectionTimeout,
		TLSHandshakeTimeout: cfg.TlsHandshakeTimeout,
		DialContext: (&net.Dialer{
			Timeout:   cfg.DialTimeout,
			KeepAlive: cfg.DialKeepAlive,
		}).DialContext,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.TlsInsecureSkipVerify,
		},
	}

	return &http.Client{
		Transport: transport,
		Timeout:   cfg.RequestTimeout,
	}
}
