// Package translation holds the request and result shapes of a code
// translation, the prompt template, and the helpers that turn model output
// into a well-formed result payload.
package translation

import (
	"encoding/json"
)

// Defaults applied when a structured request omits a field.
const (
	DefaultSourceLanguage = "the source language"
	DefaultTargetLanguage = "the target language"
)

// Defaults applied when the request is not a JSON object at all.
const (
	UnknownSourceLanguage = "unknown"
	UnknownTargetLanguage = "target language"
)

// Request is a normalised translation request.
type Request struct {
	Code           string `json:"code_to_translate"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
}

// ParseRequest builds a Request from untrusted message text. It never fails:
// a JSON object has its missing fields defaulted, anything else is treated
// as raw code with unknown languages.
func ParseRequest(raw string) Request {
	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil || fields == nil {
		return Request{
			Code:           raw,
			SourceLanguage: UnknownSourceLanguage,
			TargetLanguage: UnknownTargetLanguage,
		}
	}
	return Request{
		Code:           stringField(fields, "code_to_translate", raw),
		SourceLanguage: stringField(fields, "source_language", DefaultSourceLanguage),
		TargetLanguage: stringField(fields, "target_language", DefaultTargetLanguage),
	}
}

// stringField returns fields[key] when it is a string, def otherwise.
func stringField(fields map[string]any, key, def string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return def
}
