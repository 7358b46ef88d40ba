package utils

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

type HTTPClientConfig struct {
	Timeout       time.Duration
	KATimeout     time.Duration
	ProxyURL      string
	ProxyUsername string
	ProxyPassword string
	UserAgent     string
	Headers       map[string]string
}

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type ClipHTTPClient struct {
	client *http.Client
	config HTTPClientConfig
}

func NewClipHTTPClient(cfg HTTPClientConfig) *ClipHTTPClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.KATimeout == 0 {
		cfg.KATimeout = 60 * time.Second
	}
	headers := make(map[string]string, len(cfg.Headers))
	for k, v := range cfg.Headers {
		headers[k] = v
	}
	cfg.Headers = headers
	transport := &http.Transport{
		IdleConnTimeout:     cfg.KATimeout,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10,
	}
	if cfg.ProxyURL != "" {
		proxyURL, err := url.Parse(cfg.ProxyURL)
		if err == nil {
			if cfg.ProxyUsername != "" {
				if cfg.ProxyPassword != "" {
					proxyURL.User = url.UserPassword(cfg.ProxyUsername, cfg.ProxyPassword)
				} else {
					proxyURL.User = url.User(cfg.ProxyUsername)
				}
			}
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}
	return &ClipHTTPClient{
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		config: cfg,
	}
}

// HasHeader reports whether key is set, ignoring case.
func (c *ClipHTTPClient) HasHeader(key string) bool {
	for k := range c.config.Headers {
		if strings.EqualFold(k, key) {
			return true
		}
	}
	return false
}

func (c *ClipHTTPClient) SetHeader(key, value string) {
	c.config.Headers[key] = value
}

// ProxyString returns the proxy URL with credentials, for handing to subprocesses.
func (c *ClipHTTPClient) ProxyString() string {
	return c.config.ProxyString()
}

func (c *ClipHTTPClient) Do(req *http.Request) (*http.Response, error) {
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	} else {
		req.Header.Set("User-Agent", GetRandomUserAgent())
	}
	for k, v := range c.config.Headers {
		req.Header.Set(k, v)
	}
	return c.client.Do(req)
}

func (cfg HTTPClientConfig) ProxyString() string {
	if cfg.ProxyURL == "" {
		return ""
	}
	proxyURL, err := url.Parse(cfg.ProxyURL)
	if err != nil {
		return cfg.ProxyURL
	}
	if cfg.ProxyUsername != "" {
		if cfg.ProxyPassword != "" {
			proxyURL.User = url.UserPassword(cfg.ProxyUsername, cfg.ProxyPassword)
		} else {
			proxyURL.User = url.User(cfg.ProxyUsername)
		}
	}
	return proxyURL.String()
}

// SplitProxyAuth moves credentials embedded in a proxy URL into the config fields.
func (cfg *HTTPClientConfig) SplitProxyAuth() {
	parsed, err := url.Parse(cfg.ProxyURL)
	if err != nil || parsed.User == nil || cfg.ProxyUsername != "" {
		return
	}
	cfg.ProxyUsername = parsed.User.Username()
	if password, set := parsed.User.Password(); set {
		cfg.ProxyPassword = password
	}
	parsed.User = nil
	cfg.ProxyURL = parsed.String()
}
