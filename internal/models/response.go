package models

import "encoding/json"

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type JobAccepted struct {
	ID string `json:"id"`
}

const (
	JobPending  = "pending"
	JobComplete = "complete"
	JobFailed   = "error"
)

// JobStatus reports the state of an asynchronous search. Result carries the
// ranked destinations once the job is complete.
type JobStatus struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}
