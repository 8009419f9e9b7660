package endpoints

import (
	"net/http"
	"runtime"
	"time"

	"github.com/thaivoice/thaivoice-service/health"
	"github.com/thaivoice/thaivoice-service/system"
	"github.com/thaivoice/thaivoice-service/utils"
)

// StatusHandler reports service health, host stats and request counters.
func StatusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"version":        version,
		"uptime_seconds": int64(time.Since(startTime).Seconds()),
		"goroutines":     runtime.NumGoroutine(),
		"model":          cfg.Model,
		"system":         system.Snapshot(),
		"metrics":        utils.GetMetrics(),
		"upstream":       health.GetUpstreamStatus(llmClient.APIURL),
		"cache":          health.GetCacheStatus(activity, cfg.Redis.Addr),
	})
}
