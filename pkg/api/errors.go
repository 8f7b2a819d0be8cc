package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	apperr "github.com/feedwatch/sourcegrid/pkg/errors"
	"github.com/feedwatch/sourcegrid/pkg/httputil"
)

// APIError is a non-2xx response of the backend.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string // from the payload, or "Request failed with status N"
	Payload any    // decoded JSON body, {"message": text} for plain bodies, or nil
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
}

// AsAPIError returns the APIError in err's chain, if any.
func AsAPIError(err error) (*APIError, bool) {
	var e *APIError
	ok := errors.As(err, &e)
	return e, ok
}

// StatusCode returns the backend status carried by err, or 0.
func StatusCode(err error) int {
	if e, ok := AsAPIError(err); ok {
		return e.Status
	}
	return 0
}

func statusError(method, path string, status int, contentType string, body []byte) error {
	payload := parsePayload(contentType, body)
	msg := payloadMessage(payload)
	if msg == "" {
		msg = fmt.Sprintf("Request failed with status %d", status)
	}
	apiErr := &APIError{
		Method:  method,
		Path:    path,
		Status:  status,
		Message: msg,
		Payload: payload,
	}

	err := apperr.Wrap(statusCode(status), apiErr, "%s", msg)
	if status >= 500 {
		return &httputil.RetryableError{Err: err}
	}
	return err
}

func statusCode(status int) apperr.Code {
	switch {
	case status == http.StatusNotFound:
		return apperr.ErrCodeNotFound
	case status == http.StatusUnauthorized:
		return apperr.ErrCodeUnauthorized
	case status == http.StatusForbidden:
		return apperr.ErrCodeForbidden
	case status == http.StatusTooManyRequests:
		return apperr.ErrCodeRateLimited
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return apperr.ErrCodeInvalidInput
	default:
		return apperr.ErrCodeUpstream
	}
}

// parsePayload decodes JSON bodies and turns any other non-empty body into
// {"message": body}. Malformed JSON yields nil.
func parsePayload(contentType string, body []byte) any {
	if strings.Contains(contentType, "application/json") {
		var v any
		if err := json.Unmarshal(body, &v); err != nil {
			return nil
		}
		return v
	}
	if len(body) == 0 {
		return nil
	}
	return map[string]any{"message": string(body)}
}

// payloadMessage returns the string "message" field, else the string
// "detail" field, else "".
func payloadMessage(payload any) string {
	m, ok := payload.(map[string]any)
	if !ok {
		return ""
	}
	if s, ok := m["message"].(string); ok {
		return s
	}
	if s, ok := m["detail"].(string); ok {
		return s
	}
	return ""
}

func transportError(ctx context.Context, method, path string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return apperr.Wrap(apperr.ErrCodeTimeout, err, "%s %s timed out", method, path)
		}
		return ctxErr
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &httputil.RetryableError{Err: apperr.Wrap(apperr.ErrCodeTimeout, err, "%s %s timed out", method, path)}
	}
	return &httputil.RetryableError{Err: apperr.Wrap(apperr.ErrCodeNetwork, err, "%s %s failed", method, path)}
}

func unwrapRetryable(err error) error {
	var re *httputil.RetryableError
	if errors.As(err, &re) {
		return re.Err
	}
	return err
}
