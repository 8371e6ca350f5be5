package translation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRequest(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Request
	}{
		{
			name: "all fields present",
			raw:  `{"code_to_translate": "print(1)", "source_language": "python", "target_language": "go"}`,
			want: Request{Code: "print(1)", SourceLanguage: "python", TargetLanguage: "go"},
		},
		{
			name: "missing languages",
			raw:  `{"code_to_translate": "x = 1"}`,
			want: Request{Code: "x = 1", SourceLanguage: DefaultSourceLanguage, TargetLanguage: DefaultTargetLanguage},
		},
		{
			name: "missing code falls back to raw text",
			raw:  `{"source_language": "rust"}`,
			want: Request{Code: `{"source_language": "rust"}`, SourceLanguage: "rust", TargetLanguage: DefaultTargetLanguage},
		},
		{
			name: "non-string field is treated as absent",
			raw:  `{"code_to_translate": "a", "target_language": 7}`,
			want: Request{Code: "a", SourceLanguage: DefaultSourceLanguage, TargetLanguage: DefaultTargetLanguage},
		},
		{
			name: "plain code",
			raw:  "def f():\n    return 1",
			want: Request{Code: "def f():\n    return 1", SourceLanguage: UnknownSourceLanguage, TargetLanguage: UnknownTargetLanguage},
		},
		{
			name: "json array is not a request object",
			raw:  `[1, 2]`,
			want: Request{Code: `[1, 2]`, SourceLanguage: UnknownSourceLanguage, TargetLanguage: UnknownTargetLanguage},
		},
		{
			name: "json null",
			raw:  `null`,
			want: Request{Code: `null`, SourceLanguage: UnknownSourceLanguage, TargetLanguage: UnknownTargetLanguage},
		},
		{
			name: "empty input",
			raw:  "",
			want: Request{Code: "", SourceLanguage: UnknownSourceLanguage, TargetLanguage: UnknownTargetLanguage},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRequest(tt.raw))
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	req := Request{
		Code:           "def factorial(n):\n    return 1 if n == 0 else n * factorial(n-1)",
		SourceLanguage: "python",
		TargetLanguage: "javascript",
	}

	prompt := BuildPrompt(req)

	assert.Contains(t, prompt, "python")
	assert.Contains(t, prompt, "javascript")
	assert.Contains(t, prompt, req.Code, "code must be embedded verbatim")
	assert.Contains(t, prompt, `"translated_code"`)
	assert.True(t, strings.Contains(strings.ToLower(prompt), "json"))
	assert.Equal(t, prompt, BuildPrompt(req), "prompt must be deterministic")
}
