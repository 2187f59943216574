package models

// ErrorResponse is the envelope the relay returns when the upstream call fails
type ErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details"`
	Message string      `json:"message"`
}
