package tts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"
)

const (
	defaultBaseURL = "https://translate.google.com/translate_tts"

	// The endpoint rejects long inputs, so text is synthesized in chunks and
	// the MP3 segments concatenated.
	maxChunkRunes = 200
)

// Client synthesizes speech through the remote translate TTS endpoint.
type Client struct {
	httpClient *http.Client
	BaseURL    string
}

// NewClient creates a TTS client against the default endpoint.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		BaseURL:    defaultBaseURL,
	}
}

// Synthesize converts text to MP3 audio in the given language ("th" when
// empty).
func (c *Client) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("nothing to synthesize")
	}
	if lang == "" {
		lang = "th"
	}

	var out bytes.Buffer
	for _, chunk := range splitChunks(text, maxChunkRunes) {
		audio, err := c.fetch(ctx, chunk, lang)
		if err != nil {
			return nil, err
		}
		out.Write(audio)
	}
	return out.Bytes(), nil
}

func (c *Client) fetch(ctx context.Context, chunk, lang string) ([]byte, error) {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("client", "tw-ob")
	params.Set("tl", lang)
	params.Set("q", chunk)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("could not create tts request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not reach tts endpoint: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tts endpoint returned %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// splitChunks cuts text into runs of at most max runes, preferring a
// whitespace boundary in the back half of the window. Thai rarely has
// spaces, so a hard cut is acceptable when none is found.
func splitChunks(text string, max int) []string {
	runes := []rune(text)
	var chunks []string
	for len(runes) > 0 {
		if len(runes) <= max {
			chunks = append(chunks, string(runes))
			break
		}
		cut := max
		for i := max; i > max/2; i-- {
			if unicode.IsSpace(runes[i]) {
				cut = i
				break
			}
		}
		chunk := strings.TrimSpace(string(runes[:cut]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		runes = runes[cut:]
		for len(runes) > 0 && unicode.IsSpace(runes[0]) {
			runes = runes[1:]
		}
	}
	return chunks
}
