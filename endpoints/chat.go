package endpoints

import (
	"errors"
	"net/http"

	"github.com/thaivoice/thaivoice-service/cache"
	"github.com/thaivoice/thaivoice-service/llm"
	logger "github.com/thaivoice/thaivoice-service/log"
	"github.com/thaivoice/thaivoice-service/session"
	"github.com/thaivoice/thaivoice-service/utils"
)

const systemPreamble = "You are a helpful assistant. Reply in Thai."

// chatForm pulls the prompt and session id out of a request. The session id
// defaults to "default" so the single-session frontend keeps working.
func chatForm(r *http.Request) (prompt, sessionID string) {
	prompt = r.FormValue("prompt")
	sessionID = r.FormValue("session_id")
	if sessionID == "" {
		sessionID = "default"
	}
	return prompt, sessionID
}

// loadHistory reads session history, treating a corrupt document as an empty
// conversation rather than failing the request.
func loadHistory(sessionID string) []session.Message {
	history, err := store.Load(sessionID)
	if err != nil {
		if !errors.Is(err, session.ErrCorruptSession) {
			logger.Error("loading session "+sessionID, err)
		}
		return nil
	}
	return history
}

func toLLMMessages(history []session.Message) []llm.Message {
	msgs := make([]llm.Message, len(history))
	for i, m := range history {
		msgs[i] = llm.Message{Role: m.Role, Content: m.Content}
	}
	return msgs
}

func recordExchange(sessionID, prompt, reply string) {
	if err := store.Append(sessionID, prompt, reply); err != nil {
		logger.Error("persisting session "+sessionID, err)
	}
	if err := activity.AddExchange(&cache.Exchange{
		SessionID: sessionID,
		Prompt:    prompt,
		Reply:     reply,
	}); err != nil {
		logger.Error("caching exchange", err)
	}
	utils.IncrementPromptsHandled()
}

// ChatHandler answers a prompt in one shot. Upstream failures come back as a
// readable reply with status 200, matching what the frontend renders in the
// transcript.
func ChatHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	prompt, sessionID := chatForm(r)

	messages := llm.BuildMessages(systemPreamble, toLLMMessages(loadHistory(sessionID)), prompt)
	reply, ok := llmClient.Complete(r.Context(), messages)
	if ok {
		recordExchange(sessionID, prompt, reply)
	}

	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

// ChatStreamHandler relays the upstream token stream as plain text chunks.
func ChatStreamHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	prompt, sessionID := chatForm(r)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	flusher, _ := w.(http.Flusher)

	emit := func(chunk string) error {
		select {
		case <-r.Context().Done():
			return r.Context().Err()
		default:
		}
		if _, err := w.Write([]byte(chunk)); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	}

	messages := llm.BuildMessages(systemPreamble, toLLMMessages(loadHistory(sessionID)), prompt)
	full, ok := llmClient.Stream(r.Context(), messages, emit)
	if ok && full != "" {
		recordExchange(sessionID, prompt, full)
		utils.IncrementRepliesStreamed()
	}
}

// ChatAndSayHandler answers a prompt and returns the reply as MP3 audio. The
// reply text rides along in the X-Text header for the frontend transcript.
func ChatAndSayHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	prompt, sessionID := chatForm(r)

	messages := llm.BuildMessages(systemPreamble, toLLMMessages(loadHistory(sessionID)), prompt)
	reply, ok := llmClient.Complete(r.Context(), messages)
	if ok {
		recordExchange(sessionID, prompt, reply)
	}

	audio, err := synth.Synthesize(r.Context(), reply, cfg.Voice.TTSLanguage)
	if err != nil {
		logger.Error("synthesizing reply", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"error": "speech synthesis failed",
			"reply": reply,
		})
		return
	}
	utils.IncrementSpeechSyntheses()

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("X-Text", reply)
	if _, err := w.Write(audio); err != nil {
		logger.Error("writing audio response", err)
	}
}
