package request

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
)

// HTTPError is a non 2xx response. If the body follows the
// {statusCode, error, message, code} shape its fields are parsed
type HTTPError struct {
	StatusCode int
	Status     string
	Message    string
	Code       string
	Body       []byte
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("[%v](%v): %v", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("[%v](%v)", e.StatusCode, e.Status)
}

// NewHTTPErrorFromResponse reads the body of a failed response.
// It does not close the body
func NewHTTPErrorFromResponse(res *http.Response) *HTTPError {
	httpErr := &HTTPError{
		StatusCode: res.StatusCode,
		Status:     http.StatusText(res.StatusCode),
	}
	body, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return httpErr
	}
	httpErr.Body = body

	var payload struct {
		Status  string `json:"error"`
		Message string `json:"message"`
		Code    string `json:"code"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Status != "" {
			httpErr.Status = payload.Status
		}
		httpErr.Message = payload.Message
		httpErr.Code = payload.Code
	}
	return httpErr
}
