package endpoints

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRootBannerWithoutStaticDir(t *testing.T) {
	setupTest(t, "http://127.0.0.1:1")

	rec := httptest.NewRecorder()
	RootHandler(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["ok"] != true {
		t.Errorf("body = %+v", body)
	}
}

func TestRootUnknownPath(t *testing.T) {
	setupTest(t, "http://127.0.0.1:1")

	rec := httptest.NewRecorder()
	RootHandler(rec, httptest.NewRequest(http.MethodGet, "/no-such-page", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestCORSHeadersAndPreflight(t *testing.T) {
	setupTest(t, "http://127.0.0.1:1")
	handler := WithCORS(NewMux())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/chat", nil))

	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("missing CORS header")
	}
}

func TestStatusHandler(t *testing.T) {
	upstream := completionUpstream(t, "ok")
	defer upstream.Close()
	setupTest(t, upstream.URL)

	rec := httptest.NewRecorder()
	StatusHandler(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["version"] != "test" {
		t.Errorf("version = %v", body["version"])
	}
	if body["cache"] != "not configured" {
		t.Errorf("cache = %v", body["cache"])
	}
	if _, ok := body["metrics"]; !ok {
		t.Error("metrics missing")
	}
}

func TestActivityWithoutCacheIsEmpty(t *testing.T) {
	setupTest(t, "http://127.0.0.1:1")

	rec := httptest.NewRecorder()
	ActivityHandler(rec, httptest.NewRequest(http.MethodGet, "/api/activity", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"exchanges":[]}` {
		t.Errorf("body = %q", got)
	}
}

func TestWriteJSONKeepsThaiUnescaped(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusOK, map[string]string{"reply": "สวัสดี <b>"})

	body := rec.Body.String()
	if !strings.Contains(body, "สวัสดี") || !strings.Contains(body, "<b>") {
		t.Errorf("body escaped: %q", body)
	}
}
