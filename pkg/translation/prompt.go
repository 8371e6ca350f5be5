package translation

import (
	"fmt"
	"strings"
)

// BuildPrompt renders the instruction sent to the model. The code is embedded
// verbatim; no escaping is applied.
func BuildPrompt(req Request) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("You are a professional code translator. Translate the following %s code to %s.\n\n",
		req.SourceLanguage, req.TargetLanguage))
	sb.WriteString("Source code:\n")
	sb.WriteString(req.Code)
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("Respond with exactly one JSON object with the single key %q whose value is the complete translated code as a string. ", ResultKey))
	sb.WriteString("Do not wrap the JSON in markdown code fences and do not add any explanation before or after it.")

	return sb.String()
}
