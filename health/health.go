package health

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/thaivoice/thaivoice-service/cache"
)

var probeClient = &http.Client{Timeout: 5 * time.Second}

// GetUpstreamStatus reports whether the chat completion host is reachable.
func GetUpstreamStatus(apiURL string) string {
	u, err := url.Parse(apiURL)
	if err != nil || u.Host == "" {
		return fmt.Sprintf("error: bad upstream url %q", apiURL)
	}
	resp, err := probeClient.Get(u.Scheme + "://" + u.Host)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	defer resp.Body.Close()
	return "ok"
}

// GetCacheStatus reports redis connectivity.
func GetCacheStatus(db *cache.DB, addr string) string {
	if addr == "" || db == nil {
		return "not configured"
	}
	if err := db.Ping(); err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return "ok"
}
