package models

// Finish reason codes (matching Google GenAI FinishReason)
const (
	FinishReasonStop                  = "STOP"
	FinishReasonMaxTokens             = "MAX_TOKENS"
	FinishReasonSafety                = "SAFETY"
	FinishReasonRecitation            = "RECITATION"
	FinishReasonBlocklist             = "BLOCKLIST"
	FinishReasonProhibitedContent     = "PROHIBITED_CONTENT"
	FinishReasonSPII                  = "SPII"
	FinishReasonMalformedFunctionCall = "MALFORMED_FUNCTION_CALL"
	FinishReasonOther                 = "OTHER"
)

var finishReasonMessages = map[string]string{
	FinishReasonMaxTokens:             "Response was truncated due to maximum token limit. Try translating a smaller piece of code.",
	FinishReasonSafety:                "Response was blocked due to safety concerns.",
	FinishReasonRecitation:            "Response was blocked due to unauthorized citations.",
	FinishReasonBlocklist:             "Response was blocked due to restricted terminology.",
	FinishReasonProhibitedContent:     "Response was blocked due to prohibited content.",
	FinishReasonSPII:                  "Response was blocked due to sensitive personal information concerns.",
	FinishReasonMalformedFunctionCall: "The model generated an invalid function call.",
	FinishReasonOther:                 "An unexpected error occurred during generation.",
}

// DefaultFinishReasonMessage is returned for unrecognised codes.
const DefaultFinishReasonMessage = "An error occurred during generation"

// FinishReasonMessage returns a user-friendly message for a finish reason or
// response error code.
func FinishReasonMessage(code string) string {
	if msg, ok := finishReasonMessages[code]; ok {
		return msg
	}
	return DefaultFinishReasonMessage
}

// IsNormalCompletion reports whether code is a normal end of generation.
func IsNormalCompletion(code string) bool {
	return code == "" || code == FinishReasonStop
}
