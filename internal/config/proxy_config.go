package config

import (
	"strings"
	"time"
)

const apiBaseURLEnvVar = "API_BASE_URL"

type ProxyConfig interface {
	GetAPIBaseURL() string
	GetUpstreamTimeout() time.Duration
}

type Proxy struct{}

var _ ProxyConfig = Proxy{}

// GetAPIBaseURL is empty when no upstream API is configured.
func (Proxy) GetAPIBaseURL() string {
	return strings.TrimSuffix(GetEnv(apiBaseURLEnvVar, ""), "/")
}

func (Proxy) GetUpstreamTimeout() time.Duration {
	return 30 * time.Second
}
