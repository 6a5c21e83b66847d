package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a failed request
type Kind string

const (
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindNotFound   Kind = "not_found"
	KindBadRequest Kind = "bad_request"
	KindServer     Kind = "server"
	KindNetwork    Kind = "network"
)

// User-facing fallback messages
const (
	MessageConflict   = "A record with the same details already exists."
	MessageNotFound   = "The requested record was not found."
	MessageBadRequest = "The request could not be processed. Check the values and try again."
	MessageServer     = "Something went wrong on our side. Please try again."
	MessageNetwork    = "No response from server. Check your connection and try again."
)

// FieldError is one offending field of a validation failure
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// APIError is a request that failed on the server or never reached it
type APIError struct {
	Kind       Kind
	StatusCode int
	// Code is the server error code, e.g. ERR_INVALID_STATE
	Code      string
	Message   string
	RequestID string
	Fields    []FieldError
	cause     error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.cause
}

// IsKind reports whether err is an *APIError of the given kind
func IsKind(err error, kind Kind) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

// IllegalTransitionError is a call rejected locally, before any request
type IllegalTransitionError struct {
	Op      string
	Message string
}

func (e *IllegalTransitionError) Error() string {
	return e.Message
}

func illegal(op, format string, args ...any) *IllegalTransitionError {
	return &IllegalTransitionError{Op: op, Message: fmt.Sprintf(format, args...)}
}

func networkError(err error) *APIError {
	return &APIError{Kind: KindNetwork, Message: MessageNetwork, cause: err}
}

// newAPIError maps a failed response to the error taxonomy. The body may be
// the standard envelope or a bare {"detail": ...} / {"message": ...} object.
func newAPIError(status int, raw []byte) *APIError {
	body := parseErrorBody(raw)
	e := &APIError{
		StatusCode: status,
		Code:       body.Code,
		RequestID:  body.RequestID,
		Fields:     body.Details,
	}

	switch {
	case status == http.StatusUnprocessableEntity:
		e.Kind = KindValidation
		e.Message = validationMessage(body)
	case status == http.StatusConflict:
		e.Kind = KindConflict
		e.Message = MessageConflict
	case status == http.StatusNotFound:
		e.Kind = KindNotFound
		e.Message = orDefault(body.Message, MessageNotFound)
	case status == http.StatusBadRequest:
		e.Kind = KindBadRequest
		e.Message = orDefault(body.Message, MessageBadRequest)
	default:
		e.Kind = KindServer
		e.Message = MessageServer
	}
	return e
}

func validationMessage(body errorBody) string {
	if len(body.Details) == 0 {
		return orDefault(body.Message, MessageBadRequest)
	}
	parts := make([]string, len(body.Details))
	for i, d := range body.Details {
		parts[i] = d.Field + " is " + d.Reason
	}
	return strings.Join(parts, ", ")
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

type detailItem struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

func parseErrorBody(raw []byte) errorBody {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Error != nil {
		return *env.Error
	}

	var loose struct {
		Message string          `json:"message"`
		Detail  json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &loose); err != nil {
		return errorBody{}
	}
	out := errorBody{Message: loose.Message}
	if len(loose.Detail) == 0 {
		return out
	}

	var text string
	if err := json.Unmarshal(loose.Detail, &text); err == nil {
		out.Message = text
		return out
	}
	var items []detailItem
	if err := json.Unmarshal(loose.Detail, &items); err == nil {
		for _, it := range items {
			out.Details = append(out.Details, FieldError{Field: fieldName(it.Loc), Reason: it.Msg})
		}
	}
	return out
}

// fieldName takes the last element of a location path such as
// ["body", "items", 0, "quantity"]
func fieldName(loc []any) string {
	for i := len(loc) - 1; i >= 0; i-- {
		if s, ok := loc[i].(string); ok {
			return s
		}
	}
	return "request"
}
