package forumhttp

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMountPath_JoinsBasePath(t *testing.T) {
	if got := MountPath("/community"); got != "/community/forum/" {
		t.Fatalf("unexpected mount path: %q", got)
	}
	if got := MountPath("community", WithRoutePath("boards/")); got != "/community/boards/" {
		t.Fatalf("unexpected mount path: %q", got)
	}
}

func TestRegisterRoutes_ServesScreensAndAssets(t *testing.T) {
	mux := http.NewServeMux()
	pattern, err := RegisterRoutes(mux, "/community", WithData(topicsData))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if pattern != "/community/forum/" {
		t.Fatalf("unexpected registered pattern: %q", pattern)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/community/forum/list", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `href="/community/forum/assets/forumview.css"`) {
		t.Fatalf("stylesheet must be linked below the mount path:\n%s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/community/forum/assets/forumview.css", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected stylesheet, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), ".forum-message") {
		t.Fatalf("unexpected stylesheet body %q", rec.Body.String())
	}
}

func TestRegisterRoutes_Errors(t *testing.T) {
	if _, err := RegisterRoutes(nil, "/"); err == nil {
		t.Fatalf("expected error for nil mux")
	}
	_, err := RegisterRoutes(http.NewServeMux(), "/", WithRoutePath("/forum"), WithAssetsPath("/forum/"))
	if err == nil {
		t.Fatalf("expected collision error")
	}
}
