package utils

import "sync/atomic"

var (
	promptsHandled  int64
	repliesStreamed int64
	speechSyntheses int64
	sessionsCreated int64
)

func IncrementPromptsHandled() {
	atomic.AddInt64(&promptsHandled, 1)
}

func IncrementRepliesStreamed() {
	atomic.AddInt64(&repliesStreamed, 1)
}

func IncrementSpeechSyntheses() {
	atomic.AddInt64(&speechSyntheses, 1)
}

func IncrementSessionsCreated() {
	atomic.AddInt64(&sessionsCreated, 1)
}

// GetMetrics returns all counters for the status endpoint.
func GetMetrics() map[string]interface{} {
	return map[string]interface{}{
		"prompts_handled":  atomic.LoadInt64(&promptsHandled),
		"replies_streamed": atomic.LoadInt64(&repliesStreamed),
		"speech_syntheses": atomic.LoadInt64(&speechSyntheses),
		"sessions_created": atomic.LoadInt64(&sessionsCreated),
	}
}
