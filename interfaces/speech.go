package interfaces

import (
	"context"
	"io"
)

// SpeechToText converts a PCM audio stream into transcript fragments.
type SpeechToText interface {
	StreamingTranscribe(ctx context.Context, reader io.Reader, transcripts chan<- string, errs chan<- error)
	Close() error
}

// Synthesizer converts reply text into MP3 audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, lang string) ([]byte, error)
}
