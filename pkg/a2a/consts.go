package a2a

import "time"

// DefaultExecutionTimeout bounds one translation, backoff pauses included.
const DefaultExecutionTimeout = 10 * time.Minute

// Task output.
const (
	ArtifactName   = "Translation"
	WorkingMessage = "Translating code..."
)

// Failure messages reported on the task status.
const (
	MessageNoContent  = "message has no text content"
	MessageNilRequest = "A2A request message cannot be nil"
)

const metadataKeyPrefix = "translator_"

// GetMetadataKey prefixes key for A2A event metadata.
func GetMetadataKey(key string) string {
	return metadataKeyPrefix + key
}
