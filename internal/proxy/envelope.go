// Package proxy implements the request pipeline shared by the /functions
// endpoints: CORS, preflight, method check, error classification and the JSON envelope.
package proxy

import "encoding/json"

// Envelope is the body of every /functions response.
type Envelope struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message,omitempty"`
	Error     string          `json:"error,omitempty"`
	URL       string          `json:"url,omitempty"`
	Received  json.RawMessage `json:"received,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
}
