package kycapi

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status     int    // HTTP status code
	StatusText string // Reason phrase
	ServerMsg  string // "message" field of the JSON body, if any
	RequestID  string // X-Request-ID sent with the failed request
}

// Error returns the user facing text for the failure.
func (e *APIError) Error() string {
	return ErrorMessage(e.Status, e.ServerMsg, e.StatusText)
}

// ServerMessage returns the backend's own message, which may be empty.
func (e *APIError) ServerMessage() string {
	return e.ServerMsg
}

// ErrorMessage maps a failed response to the message shown to users.
func ErrorMessage(status int, serverMsg, statusText string) string {
	switch status {
	case http.StatusBadRequest:
		return orDefault(serverMsg, "Bad request")
	case http.StatusUnauthorized:
		return "Unauthorized. Please login again."
	case http.StatusForbidden:
		return "Access denied. You do not have permission to perform this action."
	case http.StatusNotFound:
		return "Resource not found"
	case http.StatusUnprocessableEntity:
		return orDefault(serverMsg, "Validation error")
	case http.StatusInternalServerError:
		return "Internal server error. Please try again later."
	}
	if statusText == "" {
		statusText = http.StatusText(status)
	}
	return orDefault(serverMsg, fmt.Sprintf("Error %d: %s", status, statusText))
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

type errorBody struct {
	Message string `json:"message"`
}

// newAPIError builds the error for a failed response from its body.
func newAPIError(resp *http.Response, body []byte, requestID string) *APIError {
	apiErr := &APIError{
		Status:     resp.StatusCode,
		StatusText: http.StatusText(resp.StatusCode),
		RequestID:  requestID,
	}
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		apiErr.ServerMsg = eb.Message
	}
	return apiErr
}
