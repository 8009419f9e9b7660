package endpoints

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/thaivoice/thaivoice-service/cache"
	"github.com/thaivoice/thaivoice-service/config"
	"github.com/thaivoice/thaivoice-service/interfaces"
	"github.com/thaivoice/thaivoice-service/llm"
	logger "github.com/thaivoice/thaivoice-service/log"
	"github.com/thaivoice/thaivoice-service/session"
)

var (
	cfg       *config.Config
	store     *session.Store
	llmClient *llm.Client
	synth     interfaces.Synthesizer
	activity  *cache.DB
	version   string
	startTime time.Time
)

// Init wires the handler dependencies. Must be called before NewMux.
func Init(c *config.Config, s *session.Store, l *llm.Client, tts interfaces.Synthesizer, db *cache.DB, v string) {
	cfg = c
	store = s
	llmClient = l
	synth = tts
	activity = db
	version = v
	startTime = time.Now()
}

// NewMux registers every route of the web surface.
func NewMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat", ChatHandler)
	mux.HandleFunc("/api/chat_stream", ChatStreamHandler)
	mux.HandleFunc("/api/chat_and_say", ChatAndSayHandler)
	mux.HandleFunc("/api/say", SayHandler)
	mux.HandleFunc("/api/history", HistoryHandler)
	mux.HandleFunc("/api/clear_history", ClearHistoryHandler)
	mux.HandleFunc("/api/sessions", SessionsHandler)
	mux.HandleFunc("/api/sessions/", SessionByIDHandler)
	mux.HandleFunc("/api/activity", ActivityHandler)
	mux.HandleFunc("/api/status", StatusHandler)
	mux.HandleFunc("/", RootHandler)
	return mux
}

// WithCORS allows the browser client to call the API from any origin.
func WithCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeJSON renders v without escaping HTML so Thai text stays readable in
// raw responses.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		logger.Error("encoding response", err)
	}
}

// RootHandler serves the static frontend when configured, otherwise a
// service banner.
func RootHandler(w http.ResponseWriter, r *http.Request) {
	if cfg.StaticDir != "" {
		path := filepath.Join(cfg.StaticDir, filepath.Clean("/"+r.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			http.ServeFile(w, r, path)
			return
		}
		if r.URL.Path == "/" {
			index := filepath.Join(cfg.StaticDir, "index.html")
			if _, err := os.Stat(index); err == nil {
				http.ServeFile(w, r, index)
				return
			}
		}
	}
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":      true,
		"message": "thaivoice service is running",
	})
}
