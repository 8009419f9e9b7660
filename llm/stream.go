package llm

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

const (
	dataPrefix = "data: "
	doneMarker = "[DONE]"
)

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Stream opens a streaming completion and forwards content deltas to emit in
// the exact order they arrive. Malformed event lines and empty deltas are
// skipped. The stream ends on the [DONE] terminator or on EOF; a missing
// terminator is tolerated.
//
// The returned string is the accumulated reply, trimmed. The bool reports
// whether it is a real completion to persist (true) or an in-band error chunk
// already delivered through emit (false). When emit fails -- the downstream
// consumer went away -- forwarding stops and whatever was collected so far is
// returned.
func (c *Client) Stream(ctx context.Context, messages []Message, emit func(string) error) (string, bool) {
	resp, err := c.post(ctx, messages, true)
	if err != nil {
		msg := unreachableReply(err)
		_ = emit(msg)
		return msg, false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		msg := errorReply(resp.StatusCode, body)
		_ = emit(msg)
		return msg, false
	}

	var collected strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, dataPrefix) {
			continue
		}
		data := strings.TrimSpace(line[len(dataPrefix):])
		if data == doneMarker {
			break
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		piece := chunk.Choices[0].Delta.Content
		if piece == "" {
			continue
		}

		if err := emit(piece); err != nil {
			break
		}
		collected.WriteString(piece)
	}

	return strings.TrimSpace(collected.String()), true
}
