package models

import "encoding/json"

// AgentResponse is the JSON envelope every agent cache endpoint returns.
// The proxy forwards it verbatim: StatusCode and Message are whatever the
// agent reported, not this server's HTTP status. CacheResult is an opaque
// payload the dashboard renders; the proxy never interprets it.
//
// encoding/json matches field names case-insensitively, which covers
// agents that emit PascalCase property names.
type AgentResponse struct {
	ServiceName string            `json:"serviceName"`
	StatusCode  int               `json:"statusCode"`
	Message     string            `json:"message"`
	Parameters  map[string]string `json:"parameters"`
	CacheKeys   []string          `json:"cacheKeys"`
	CacheResult json.RawMessage   `json:"cacheResult"`
}

// PingResult classifies the outcome of an agent health probe.
type PingResult struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message,omitempty"`
}
