package a2a

import (
	"encoding/json"
	"strings"

	a2atype "github.com/a2aproject/a2a-go/a2a"
)

// messageText flattens the request message into raw request text. Text
// parts are joined with newlines; a data part is rendered as its JSON object
// so structured requests can be sent without quoting them into text.
func messageText(msg *a2atype.Message) string {
	if msg == nil {
		return ""
	}
	texts := make([]string, 0, len(msg.Parts))
	for _, part := range msg.Parts {
		switch p := part.(type) {
		case a2atype.TextPart:
			if p.Text != "" {
				texts = append(texts, p.Text)
			}
		case a2atype.DataPart:
			if raw, ok := dataText(p.Data); ok {
				texts = append(texts, raw)
			}
		case *a2atype.DataPart:
			if p == nil {
				continue
			}
			if raw, ok := dataText(p.Data); ok {
				texts = append(texts, raw)
			}
		}
	}
	return strings.Join(texts, "\n")
}

func dataText(data map[string]any) (string, bool) {
	if len(data) == 0 {
		return "", false
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return "", false
	}
	return string(raw), true
}

// textMessage builds an agent message with a single text part.
func textMessage(text string) *a2atype.Message {
	return a2atype.NewMessage(a2atype.MessageRoleAgent, a2atype.TextPart{Text: text})
}
