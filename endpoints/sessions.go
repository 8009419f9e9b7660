package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	logger "github.com/thaivoice/thaivoice-service/log"
	"github.com/thaivoice/thaivoice-service/session"
	"github.com/thaivoice/thaivoice-service/utils"
)

// SessionsHandler lists chat rooms (GET) or creates one (POST).
func SessionsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		listSessions(w)
	case http.MethodPost:
		createSession(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func listSessions(w http.ResponseWriter) {
	summaries, err := store.List()
	if err != nil {
		logger.Error("listing sessions", err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"ok": false})
		return
	}
	if summaries == nil {
		summaries = []session.Summary{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"sessions": summaries})
}

// createSession accepts the id as JSON {"session_id": "..."} or a form
// field; with neither a fresh id is generated.
func createSession(w http.ResponseWriter, r *http.Request) {
	var requested string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			SessionID string `json:"session_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			requested = body.SessionID
		}
	} else {
		requested = r.FormValue("session_id")
	}

	sessionID, err := store.Create(requested)
	if err != nil {
		if errors.Is(err, session.ErrInvalidSessionID) {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"ok":    false,
				"error": "invalid session id",
			})
			return
		}
		logger.Error("creating session", err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"ok": false})
		return
	}
	utils.IncrementSessionsCreated()
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "session_id": sessionID})
}

// SessionByIDHandler deletes the chat room named in the path. Deleting a
// session that never existed still reports ok.
func SessionByIDHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sessionID := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	if err := store.Delete(sessionID); err != nil {
		logger.Error("deleting session "+sessionID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"ok": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}
