package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/baraliresort/reserve/internal/logger"
)

func TestForceHTTPS(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	tests := []struct {
		name    string
		enabled bool
		host    string
		proto   string
		want    int
	}{
		{"disabled", false, "barali.example", "", http.StatusNoContent},
		{"redirects", true, "barali.example", "", http.StatusPermanentRedirect},
		{"proxy https", true, "barali.example", "https", http.StatusNoContent},
		{"localhost", true, "localhost:8080", "", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/register?x=1", nil)
			req.Host = tt.host
			if tt.proto != "" {
				req.Header.Set("X-Forwarded-Proto", tt.proto)
			}
			rec := httptest.NewRecorder()
			ForceHTTPS(tt.enabled, ok).ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.want == http.StatusPermanentRedirect {
				if loc := rec.Header().Get("Location"); loc != "https://barali.example/register?x=1" {
					t.Errorf("Location = %q", loc)
				}
			}
		})
	}
}

func TestSecurityKeepsHandlerValues(t *testing.T) {
	h := Security(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-Frame-Options", "SAMEORIGIN")
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := rec.Header().Get("X-Frame-Options"); got != "SAMEORIGIN" {
		t.Errorf("X-Frame-Options = %q", got)
	}
	if rec.Header().Get("Content-Security-Policy") == "" {
		t.Error("CSP missing")
	}
}

func TestLoggerStoresRequestLogger(t *testing.T) {
	var found bool
	h := Logger(zap.NewNop().Sugar())(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		_, found = logger.Lookup(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !found {
		t.Error("request logger not in context")
	}
}
