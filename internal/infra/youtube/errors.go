package youtube

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	"google.golang.org/api/googleapi"
)

// RequestError reports a failed YouTube Data API call. It wraps the
// underlying transport, status or decoding error.
type RequestError struct {
	Endpoint   string
	StatusCode int // 0 when no HTTP status was received
	Err        error
}

// newRequestError classifies an SDK error. Status errors become an
// *APIError; anything else (transport, context, decoding) is kept as is.
func newRequestError(endpoint string, err error) *RequestError {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		apiErr := fromGoogleError(gerr)
		return &RequestError{Endpoint: endpoint, StatusCode: gerr.Code, Err: apiErr}
	}
	return &RequestError{Endpoint: endpoint, Err: err}
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("youtube %s request failed (status %d): %v", e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("youtube %s request failed: %v", e.Endpoint, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// APIError is the error document the API returns with non-2xx statuses.
type APIError struct {
	Code    int
	Message string
	Reason  string // first entry of errors[].reason, e.g. "playlistNotFound"
}

func (e *APIError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("youtube API error %d (%s): %s", e.Code, e.Reason, e.Message)
	}
	return fmt.Sprintf("youtube API error %d: %s", e.Code, e.Message)
}

// fromGoogleError flattens the SDK error. Bodies that are not the API
// envelope leave Message empty in the SDK; the raw body or the status text
// is used instead.
func fromGoogleError(gerr *googleapi.Error) *APIError {
	apiErr := &APIError{Code: gerr.Code, Message: gerr.Message}
	if len(gerr.Errors) > 0 {
		apiErr.Reason = gerr.Errors[0].Reason
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(gerr.Body)
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(gerr.Code)
	}
	return apiErr
}
