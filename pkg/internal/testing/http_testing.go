package testing

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// HTTPErrorPayload is an error response body as clients see it
type HTTPErrorPayload struct {
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message"`
	Code       string `json:"code,omitempty"`
}

// NewHTTPErrorPayload builds an expected error body for given status
func NewHTTPErrorPayload(statusCode int, code string, message string) HTTPErrorPayload {
	return HTTPErrorPayload{
		StatusCode: statusCode,
		Error:      http.StatusText(statusCode),
		Message:    message,
		Code:       code,
	}
}

// AssertHTTPErrorResponse checks status, content type and body of an error response
func AssertHTTPErrorResponse(t *testing.T, want HTTPErrorPayload, recorder *httptest.ResponseRecorder) bool {
	t.Helper()
	if !assert.Equal(t, want.StatusCode, recorder.Code, "unexpected status, body: %v", recorder.Body.String()) {
		return false
	}
	if !assert.Equal(t, "application/json", recorder.Header().Get("content-type")) {
		return false
	}
	var got HTTPErrorPayload
	if !JSONUnmarshalReader(t, recorder.Body, &got) {
		return false
	}
	return assert.Equal(t, want, got)
}
