package relay

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	anthropic "github.com/anthropics/anthropic-sdk-go"
)

// UpstreamError is a failed forward. StatusCode is zero when the upstream was
// never reached (dial, TLS, cancelled context).
type UpstreamError struct {
	StatusCode int
	Status     string
	Body       []byte
	Err        error
}

func newStatusError(apiErr *anthropic.Error) *UpstreamError {
	ue := &UpstreamError{
		StatusCode: apiErr.StatusCode,
		Status:     http.StatusText(apiErr.StatusCode),
		Err:        fmt.Errorf("request failed with status code %d", apiErr.StatusCode),
	}
	// The SDK puts the error body back on the response after decoding it
	if apiErr.Response != nil && apiErr.Response.Body != nil {
		if body, err := io.ReadAll(apiErr.Response.Body); err == nil {
			ue.Body = body
		}
	}
	return ue
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("upstream returned %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("upstream unreachable: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// ReportedStatus is the upstream status, or 500 when there was none
func (e *UpstreamError) ReportedStatus() int {
	if e.StatusCode > 0 {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}

// Details is the upstream error body when there is one, decoded as JSON if
// possible, otherwise the transport error message.
func (e *UpstreamError) Details() interface{} {
	if len(e.Body) > 0 {
		var decoded interface{}
		if err := json.Unmarshal(e.Body, &decoded); err == nil {
			return decoded
		}
		return string(e.Body)
	}
	return e.errMessage()
}

// Message is the human readable summary placed in the error envelope
func (e *UpstreamError) Message() string {
	return fmt.Sprintf("API request failed: %d - %s", e.ReportedStatus(), e.errMessage())
}

func (e *UpstreamError) errMessage() string {
	if e.Err == nil {
		return "unknown error"
	}
	return e.Err.Error()
}
