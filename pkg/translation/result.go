package translation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// ResultKey is the only key of a translation payload.
const ResultKey = "translated_code"

// Result is the payload delivered to the caller.
type Result struct {
	TranslatedCode string `json:"translated_code"`
}

// Encode returns the JSON form of r. HTML characters are not escaped so the
// translated code stays readable.
func (r Result) Encode() string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a struct of one string cannot fail.
	_ = enc.Encode(r)
	return strings.TrimSuffix(buf.String(), "\n")
}

// objectRe spans from the first brace to the last one around the result key,
// across lines.
var objectRe = regexp.MustCompile(`(?s)\{.*"` + ResultKey + `".*\}`)

// payloadRe finds a single-line JSON object carrying the result key. Nested
// braces are not supported.
var payloadRe = regexp.MustCompile(`\{[^{}\n]*"` + ResultKey + `"[^{}\n]*\}`)

// fenceRe matches markdown code fence markers, with an optional info string.
var fenceRe = regexp.MustCompile("```[A-Za-z0-9_+#.-]*")

// ExtractPayload pulls a result payload out of free text. It tries, in order,
// the whole text with fences stripped, the widest brace span around the result
// key, then single-line objects. The first valid JSON object carrying the
// result key is returned as it appears; failing all of them, the text with
// fence markers stripped is wrapped as a Result.
func ExtractPayload(text string) string {
	stripped := StripFences(text)
	if hasResultKey(stripped) {
		return stripped
	}
	for _, src := range []string{stripped, text} {
		if candidate := objectRe.FindString(src); hasResultKey(candidate) {
			return candidate
		}
	}
	for _, candidate := range payloadRe.FindAllString(text, -1) {
		if hasResultKey(candidate) {
			return candidate
		}
	}
	return Result{TranslatedCode: stripped}.Encode()
}

func hasResultKey(candidate string) bool {
	if candidate == "" || !gjson.Valid(candidate) {
		return false
	}
	parsed := gjson.Parse(candidate)
	return parsed.IsObject() && parsed.Get(ResultKey).Exists()
}

// StripFences removes markdown code fence markers and surrounding whitespace.
func StripFences(text string) string {
	return strings.TrimSpace(fenceRe.ReplaceAllString(text, ""))
}

// NormalizePayload guarantees a JSON object with exactly one string
// ResultKey. Payloads already carrying the key are re-encoded to drop any
// extra keys; anything else is wrapped.
func NormalizePayload(payload string) string {
	trimmed := strings.TrimSpace(payload)
	if gjson.Valid(trimmed) {
		parsed := gjson.Parse(trimmed)
		if parsed.IsObject() {
			if v := parsed.Get(ResultKey); v.Exists() {
				if v.Type == gjson.String {
					return Result{TranslatedCode: v.String()}.Encode()
				}
				return Result{TranslatedCode: v.Raw}.Encode()
			}
		}
	}
	return Result{TranslatedCode: StripFences(payload)}.Encode()
}

// DecodeResult strictly decodes a normalised payload.
func DecodeResult(payload string) (Result, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &fields); err != nil {
		return Result{}, fmt.Errorf("payload is not a JSON object: %w", err)
	}
	if len(fields) != 1 {
		return Result{}, fmt.Errorf("payload has %d keys, want exactly %q", len(fields), ResultKey)
	}
	raw, ok := fields[ResultKey]
	if !ok {
		return Result{}, fmt.Errorf("payload is missing %q", ResultKey)
	}
	var r Result
	if err := json.Unmarshal(raw, &r.TranslatedCode); err != nil {
		return Result{}, fmt.Errorf("%q is not a string: %w", ResultKey, err)
	}
	return r, nil
}
