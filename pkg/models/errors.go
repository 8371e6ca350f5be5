package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go/v3"
	"github.com/tidwall/gjson"
	"google.golang.org/genai"
)

// ErrorKind categorises a provider failure.
type ErrorKind string

const (
	KindQuota          ErrorKind = "quota"
	KindAuth           ErrorKind = "auth"
	KindInvalidRequest ErrorKind = "invalid_request"
	KindNotFound       ErrorKind = "not_found"
	KindServer         ErrorKind = "server"
	KindBlocked        ErrorKind = "blocked"
	KindEmptyResponse  ErrorKind = "empty_response"
	KindTransport      ErrorKind = "transport"
	KindCanceled       ErrorKind = "canceled"
	KindUnknown        ErrorKind = "unknown"
)

// statusResourceExhausted is the Google RPC status reported on quota errors.
const statusResourceExhausted = "RESOURCE_EXHAUSTED"

// ProviderError is a classified failure of one generation call.
type ProviderError struct {
	Kind       ErrorKind
	Model      string
	StatusCode int
	Status     string
	// RetryAfter is the provider's retry hint, zero when absent.
	RetryAfter time.Duration
	Err        error
}

func (e *ProviderError) Error() string {
	detail := "<nil>"
	if e.Err != nil {
		detail = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("model %s: %s error (status %d): %s", e.Model, e.Kind, e.StatusCode, detail)
	}
	return fmt.Sprintf("model %s: %s error: %s", e.Model, e.Kind, detail)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Classify wraps err in a ProviderError, inspecting the typed errors of the
// genai, OpenAI and Anthropic SDKs. An existing ProviderError is returned as is.
func Classify(model string, err error) *ProviderError {
	if err == nil {
		return nil
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe
	}

	pe = &ProviderError{Kind: KindUnknown, Model: model, Err: err}

	var genaiErr genai.APIError
	var genaiErrPtr *genai.APIError
	var openaiErr *openai.Error
	var anthropicErr *anthropic.Error
	var netErr net.Error

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		pe.Kind = KindCanceled
	case errors.As(err, &genaiErr):
		fillFromGenAI(pe, genaiErr)
	case errors.As(err, &genaiErrPtr) && genaiErrPtr != nil:
		fillFromGenAI(pe, *genaiErrPtr)
	case errors.As(err, &openaiErr):
		pe.StatusCode = openaiErr.StatusCode
		pe.Status = openaiErr.Code
		pe.Kind = kindForStatus(openaiErr.StatusCode)
	case errors.As(err, &anthropicErr):
		pe.StatusCode = anthropicErr.StatusCode
		pe.Kind = kindForStatus(anthropicErr.StatusCode)
	case errors.As(err, &netErr):
		pe.Kind = KindTransport
	}
	return pe
}

func fillFromGenAI(pe *ProviderError, apiErr genai.APIError) {
	pe.StatusCode = apiErr.Code
	pe.Status = apiErr.Status
	pe.Kind = kindForStatus(apiErr.Code)
	if apiErr.Status == statusResourceExhausted {
		pe.Kind = KindQuota
	}
	if pe.Kind == KindQuota {
		pe.RetryAfter = retryDelayFromDetails(apiErr.Details)
	}
}

func kindForStatus(code int) ErrorKind {
	switch {
	case code == http.StatusTooManyRequests:
		return KindQuota
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return KindAuth
	case code == http.StatusNotFound:
		return KindNotFound
	case code == http.StatusBadRequest, code == http.StatusUnprocessableEntity:
		return KindInvalidRequest
	case code >= 500:
		return KindServer
	default:
		return KindUnknown
	}
}

// retryDelayFromDetails reads google.rpc.RetryInfo.retryDelay (e.g. "17s")
// from the error details.
func retryDelayFromDetails(details []map[string]any) time.Duration {
	if len(details) == 0 {
		return 0
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return 0
	}
	delay := gjson.GetBytes(raw, `#(@type=="type.googleapis.com/google.rpc.RetryInfo").retryDelay`).String()
	if delay == "" {
		return 0
	}
	d, err := time.ParseDuration(delay)
	if err != nil {
		return 0
	}
	return d
}

// KindOf returns the classified kind of err.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	return Classify("", err).Kind
}

// IsQuota reports whether err signals rate or quota exhaustion.
func IsQuota(err error) bool {
	return KindOf(err) == KindQuota
}
