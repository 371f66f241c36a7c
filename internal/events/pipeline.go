// internal/events/pipeline.go
package events

// Event types for the fetch pipeline.
const (
	EventPipelineStateChanged = "pipeline.state_changed"
)

// PipelineStateChanged is emitted after every pipeline state transition.
// Observers that need the full result set read it from the pipeline.
type PipelineStateChanged struct {
	BaseEvent
	Query      string `json:"query"`
	Phase      string `json:"phase"`
	Generation uint64 `json:"generation"`
	IDs        int    `json:"ids"`
	Resolved   int    `json:"resolved"`
	Loading    bool   `json:"loading"`
	Error      string `json:"error,omitempty"`
}

// NewPipelineStateChanged creates a state change event for query.
func NewPipelineStateChanged(query string) *PipelineStateChanged {
	return &PipelineStateChanged{
		BaseEvent: NewBaseEvent(EventPipelineStateChanged, "query", query),
		Query:     query,
	}
}
