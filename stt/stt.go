package stt

import (
	"context"
	"fmt"
	"io"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"

	logger "github.com/thaivoice/thaivoice-service/log"
)

const (
	sampleRateHertz = 16000
	readChunkBytes  = 3200 // 100ms of LINEAR16 mono at 16kHz
)

// STT is the speech-to-text client for the desktop talk loop. It relies on
// Application Default Credentials for authentication.
type STT struct {
	speechClient *speech.Client
	language     string
}

// New creates a Google Cloud Speech client configured for the given language
// ("th-TH" when empty).
func New(ctx context.Context, language string) (*STT, error) {
	if language == "" {
		language = "th-TH"
	}
	speechClient, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}
	return &STT{speechClient: speechClient, language: language}, nil
}

// Close cleans up the speech client connection.
func (s *STT) Close() error {
	if s.speechClient != nil {
		return s.speechClient.Close()
	}
	return nil
}

// StreamingTranscribe reads LINEAR16 PCM from reader and sends transcript
// fragments through transcripts until the audio ends, then closes the
// channel. Errors go to errs.
func (s *STT) StreamingTranscribe(ctx context.Context, reader io.Reader, transcripts chan<- string, errs chan<- error) {
	stream, err := s.speechClient.StreamingRecognize(ctx)
	if err != nil {
		errs <- fmt.Errorf("could not start streaming recognize: %w", err)
		return
	}

	if err := stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_StreamingConfig{
			StreamingConfig: &speechpb.StreamingRecognitionConfig{
				Config: &speechpb.RecognitionConfig{
					Encoding:        speechpb.RecognitionConfig_LINEAR16,
					SampleRateHertz: sampleRateHertz,
					LanguageCode:    s.language,
				},
			},
		},
	}); err != nil {
		errs <- fmt.Errorf("could not send streaming config: %w", err)
		return
	}

	go func() {
		buf := make([]byte, readChunkBytes)
		for {
			n, err := reader.Read(buf)
			if n > 0 {
				if err := stream.Send(&speechpb.StreamingRecognizeRequest{
					StreamingRequest: &speechpb.StreamingRecognizeRequest_AudioContent{
						AudioContent: buf[:n],
					},
				}); err != nil {
					logger.Error("sending audio content", err)
					return
				}
			}
			if err == io.EOF {
				if err := stream.CloseSend(); err != nil {
					logger.Error("closing send stream", err)
				}
				return
			}
			if err != nil {
				errs <- fmt.Errorf("error reading audio source: %w", err)
				return
			}
		}
	}()

	for {
		resp, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			errs <- fmt.Errorf("cannot stream results: %w", err)
			return
		}
		for _, result := range resp.Results {
			if len(result.Alternatives) > 0 {
				transcripts <- result.Alternatives[0].Transcript
			}
		}
	}
	close(transcripts)
}
