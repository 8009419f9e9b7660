package endpoints

import (
	"net/http"

	logger "github.com/thaivoice/thaivoice-service/log"
	"github.com/thaivoice/thaivoice-service/utils"
)

// SayHandler synthesizes arbitrary text to MP3 audio.
func SayHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	text := r.FormValue("text")
	lang := r.FormValue("lang")
	if lang == "" {
		lang = cfg.Voice.TTSLanguage
	}

	audio, err := synth.Synthesize(r.Context(), text, lang)
	if err != nil {
		logger.Error("synthesizing text", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "speech synthesis failed"})
		return
	}
	utils.IncrementSpeechSyntheses()

	w.Header().Set("Content-Type", "audio/mpeg")
	if _, err := w.Write(audio); err != nil {
		logger.Error("writing audio response", err)
	}
}
