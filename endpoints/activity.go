package endpoints

import (
	"net/http"
	"strconv"

	"github.com/thaivoice/thaivoice-service/cache"
	logger "github.com/thaivoice/thaivoice-service/log"
)

// ActivityHandler returns the most recent prompt/reply exchanges from the
// redis feed, newest first. Empty when the cache is not configured.
func ActivityHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	limit, _ := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)

	exchanges, err := activity.RecentExchanges(limit)
	if err != nil {
		logger.Error("reading recent activity", err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"ok": false})
		return
	}
	if exchanges == nil {
		exchanges = []*cache.Exchange{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"exchanges": exchanges})
}
