package endpoints

import (
	"net/http"

	logger "github.com/thaivoice/thaivoice-service/log"
	"github.com/thaivoice/thaivoice-service/session"
)

// HistoryHandler returns the stored conversation for a session.
func HistoryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		sessionID = "default"
	}

	history := loadHistory(sessionID)
	if history == nil {
		history = []session.Message{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"history":    history,
	})
}

// ClearHistoryHandler empties a session without deleting it.
func ClearHistoryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	_, sessionID := chatForm(r)

	if err := store.Clear(sessionID); err != nil {
		logger.Error("clearing session "+sessionID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"ok": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}
