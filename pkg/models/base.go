package models

import (
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

// DefaultRequestTimeout bounds one provider HTTP call.
const DefaultRequestTimeout = 2 * time.Minute

// ClientOptions configures the HTTP clients shared by all providers.
type ClientOptions struct {
	RequestTimeout time.Duration
	Headers        map[string]string
}

func (o ClientOptions) httpClient() *http.Client {
	timeout := o.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	client := &http.Client{Timeout: timeout}
	if len(o.Headers) > 0 {
		client.Transport = &headerTransport{
			base:    http.DefaultTransport,
			headers: o.Headers,
		}
	}
	return client
}

// headerTransport wraps an http.RoundTripper and adds custom headers to all requests
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.base.RoundTrip(req)
}

// wantsJSON reports whether the request asks for a JSON response body.
func wantsJSON(config *genai.GenerateContentConfig) bool {
	return config != nil && config.ResponseMIMEType == "application/json"
}

// contentText joins the text parts of one content, skipping thoughts.
func contentText(content *genai.Content) string {
	if content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range content.Parts {
		if part == nil || part.Thought || part.Text == "" {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}

// systemInstructionText flattens the system instruction, if any.
func systemInstructionText(config *genai.GenerateContentConfig) string {
	if config == nil || config.SystemInstruction == nil {
		return ""
	}
	var parts []string
	for _, p := range config.SystemInstruction.Parts {
		if p != nil && p.Text != "" {
			parts = append(parts, p.Text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}
