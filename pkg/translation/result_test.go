package translation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPayload(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "bare object",
			text: `{"translated_code": "console.log(1)"}`,
			want: `{"translated_code": "console.log(1)"}`,
		},
		{
			name: "object surrounded by prose",
			text: "Sure! Here it is:\n{\"translated_code\": \"let x = 1;\"}\nHope that helps.",
			want: `{"translated_code": "let x = 1;"}`,
		},
		{
			name: "object inside a fence",
			text: "```json\n{\"translated_code\": \"fmt.Println(1)\"}\n```",
			want: `{"translated_code": "fmt.Println(1)"}`,
		},
		{
			name: "no json, fenced code",
			text: "```go\nfunc main() {}\n```",
			want: `{"translated_code":"func main() {}"}`,
		},
		{
			name: "no json, no fence",
			text: "  x := 1  ",
			want: `{"translated_code":"x := 1"}`,
		},
		{
			name: "invalid json match is skipped",
			text: `{"translated_code": oops}`,
			want: `{"translated_code":"{\"translated_code\": oops}"}`,
		},
		{
			name: "nested braces in code",
			text: `{"translated_code": "int main() { return 0; }"}`,
			want: `{"translated_code": "int main() { return 0; }"}`,
		},
		{
			name: "multi-line object inside a fence",
			text: "```json\n{\n  \"translated_code\": \"fmt.Println(1)\"\n}\n```",
			want: "{\n  \"translated_code\": \"fmt.Println(1)\"\n}",
		},
		{
			name: "multi-line object with braces after prose",
			text: "Here you go:\n{\n  \"translated_code\": \"func f() {\\n}\"\n}",
			want: "{\n  \"translated_code\": \"func f() {\\n}\"\n}",
		},
		{
			name: "two objects on separate lines",
			text: "{\"translated_code\": \"a\"}\nor\n{\"translated_code\": \"b\"}",
			want: `{"translated_code": "a"}`,
		},
		{
			name: "html characters are kept",
			text: "```\na < b && c > d\n```",
			want: `{"translated_code":"a < b && c > d"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractPayload(tt.text))
		})
	}
}

func TestExtractPayload_FenceFallbackMatchesStrippedText(t *testing.T) {
	text := "```python\nprint('hi')\n```\n"

	result, err := DecodeResult(ExtractPayload(text))
	require.NoError(t, err)
	assert.Equal(t, "print('hi')", result.TranslatedCode)
}

func TestExtractPayload_BracesSurviveNormalize(t *testing.T) {
	for _, text := range []string{
		`{"translated_code": "int main() { return 0; }"}`,
		"```json\n{\n  \"translated_code\": \"int main() { return 0; }\"\n}\n```",
	} {
		result, err := DecodeResult(NormalizePayload(ExtractPayload(text)))
		require.NoError(t, err)
		assert.Equal(t, "int main() { return 0; }", result.TranslatedCode)
	}
}

func TestNormalizePayload(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		wantCode string
	}{
		{name: "already normalised", payload: `{"translated_code":"a"}`, wantCode: "a"},
		{name: "extra keys dropped", payload: `{"translated_code":"a","notes":"b"}`, wantCode: "a"},
		{name: "surrounding whitespace", payload: "\n {\"translated_code\": \"a\"} \n", wantCode: "a"},
		{name: "non-string value kept as raw json", payload: `{"translated_code":["a","b"]}`, wantCode: `["a","b"]`},
		{name: "object without key is wrapped", payload: `{"code":"a"}`, wantCode: `{"code":"a"}`},
		{name: "free text is wrapped", payload: "```js\nlet a;\n```", wantCode: "let a;"},
		{name: "empty", payload: "", wantCode: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := DecodeResult(NormalizePayload(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, result.TranslatedCode)
		})
	}
}

func TestDecodeResult_Rejects(t *testing.T) {
	for _, payload := range []string{
		`not json`,
		`{}`,
		`{"translated_code":"a","x":1}`,
		`{"other":"a"}`,
		`{"translated_code":1}`,
	} {
		_, err := DecodeResult(payload)
		assert.Error(t, err, payload)
	}
}
