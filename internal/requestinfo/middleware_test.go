package requestinfo

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEnrich(t *testing.T) {
	var got *RequestInfo
	h := Enrich(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/register", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	req.Header.Set("Accept-Language", "th-TH;q=0.9, en;q=0.8")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatal("RequestInfo missing from context")
	}
	if got.Geo.IP.String() != "203.0.113.7" {
		t.Errorf("ip = %v", got.Geo.IP)
	}
	if got.Lang != "th-th" {
		t.Errorf("lang = %q", got.Lang)
	}
	if got.Path != "/register" || got.UA.Device != "Desktop" {
		t.Errorf("unexpected info: %+v", got)
	}
}

func TestClientIPFallsBackToRemoteAddr(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.2:5555"
	if ip := clientIP(req); ip.String() != "198.51.100.2" {
		t.Errorf("clientIP = %v", ip)
	}
}

func TestPrimaryLang(t *testing.T) {
	for in, want := range map[string]string{
		"":               "",
		"en-US,en;q=0.9": "en-us",
		"fr;q=0.7":       "fr",
		" TH , en":       "th",
	} {
		if got := primaryLang(in); got != want {
			t.Errorf("primaryLang(%q) = %q, want %q", in, got, want)
		}
	}
}
