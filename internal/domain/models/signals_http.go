package models

// Requests for the signal HTTP endpoints. Defined in domain for reuse by the
// stream handler and the CLI.

type AnalyzeRequest struct {
	Values []float64 `json:"values" validate:"required,min=1,max=100000"`
	Labels []string  `json:"labels" validate:"omitempty,max=100000"`
}

// RenderRequest sizes of zero use the engine canvas.
type RenderRequest struct {
	Values []float64 `json:"values" validate:"required,min=1,max=100000"`
	Labels []string  `json:"labels" validate:"omitempty,max=100000"`
	Width  int       `json:"width" validate:"omitempty,gte=1,lte=400"`
	Height int       `json:"height" validate:"omitempty,gte=1,lte=200"`
}

// StreamPoint is one value pushed by a websocket client.
type StreamPoint struct {
	Value *float64 `json:"value" validate:"required"`
	Label string   `json:"label" validate:"max=64"`
}

// StreamFrame is what the server pushes back to a stream client: either an
// analysis of the current window or an error for the last point.
type StreamFrame struct {
	Signal *Signal `json:"signal,omitempty"`
	Frame  string  `json:"frame,omitempty"`
	Points int     `json:"points"`
	Error  string  `json:"error,omitempty"`
}

// AnalyzeResponse is the JSON body of /api/analyze.
type AnalyzeResponse struct {
	Signal Signal `json:"signal"`
	Cached bool   `json:"cached"`
}
