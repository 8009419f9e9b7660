package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultAPIURL  = "https://openrouter.ai/api/v1/chat/completions"
	requestTimeout = 60 * time.Second
	errorBodyLimit = 200
)

// Message is one chat-completion message on the wire.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client talks to an OpenAI-compatible chat-completion endpoint. Upstream
// failures are converted to in-band reply text so the chat surface always has
// something to show the user.
type Client struct {
	httpClient *http.Client
	APIURL     string
	APIKey     string
	Model      string
	Referer    string
	Title      string
}

// NewClient creates a completion client. An empty apiURL selects the default
// OpenRouter endpoint.
func NewClient(apiURL, apiKey, model string) *Client {
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		APIURL:     apiURL,
		APIKey:     apiKey,
		Model:      model,
		Referer:    "https://thaivoice.local",
		Title:      "Thai Voice Web",
	}
}

// BuildMessages assembles the wire message list: system preamble, prior
// history, then the new prompt. The preamble belongs to the caller, not to
// this client.
func BuildMessages(preamble string, history []Message, prompt string) []Message {
	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, Message{Role: "system", Content: preamble})
	messages = append(messages, history...)
	messages = append(messages, Message{Role: "user", Content: prompt})
	return messages
}

type completionRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

func (c *Client) post(ctx context.Context, messages []Message, stream bool) (*http.Response, error) {
	payload, err := json.Marshal(completionRequest{
		Model:    c.Model,
		Messages: messages,
		Stream:   stream,
	})
	if err != nil {
		return nil, fmt.Errorf("could not marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("could not create completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("HTTP-Referer", c.Referer)
	req.Header.Set("X-Title", c.Title)

	return c.httpClient.Do(req)
}

// Complete sends a non-streaming completion request. The second return value
// reports whether the reply is a real completion (true) or in-band error text
// that must not be persisted (false).
func (c *Client) Complete(ctx context.Context, messages []Message) (string, bool) {
	resp, err := c.post(ctx, messages, false)
	if err != nil {
		return unreachableReply(err), false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return errorReply(resp.StatusCode, body), false
	}

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return unreachableReply(fmt.Errorf("could not decode completion response: %w", err)), false
	}
	if len(out.Choices) == 0 {
		return unreachableReply(fmt.Errorf("completion response had no choices")), false
	}
	return out.Choices[0].Message.Content, true
}

// errorReply formats a non-200 upstream response as user-visible reply text.
func errorReply(status int, body []byte) string {
	return fmt.Sprintf("❌ API Error %d: %s", status, string(body))
}

// unreachableReply formats a transport-level failure as user-visible reply
// text.
func unreachableReply(err error) string {
	return fmt.Sprintf("❌ ต่อ API ไม่ได้: %v", err)
}
