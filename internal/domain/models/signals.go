package models

import "time"

// SeriesRequest is the payload consumed from the request topic.
// Note: no transport (json/http) validation here, the worker checks it.
type SeriesRequest struct {
	ID     string    `json:"id"`
	Values []float64 `json:"values"`
	Labels []string  `json:"labels,omitempty"`
	Source string    `json:"source,omitempty"`
}

// SignalEvent is published for every completed analysis.
type SignalEvent struct {
	ID        string    `json:"id"`
	RequestID string    `json:"request_id,omitempty"`
	Source    string    `json:"source"` // "http", "stream", "kafka"
	Signal    Signal    `json:"signal"`
	Points    int       `json:"points"`
	CreatedAt time.Time `json:"created_at"`
}
