// internal/requestinfo/middleware.go
//
// HTTP middleware that enriches each request with *RequestInfo.
//
/*
Context
--------
Sits right after request logging.  For every request it:

  1. Parses the User-Agent header and Accept-Language list.
  2. Extracts the left-most client IP from X-Forwarded-For or X-Real-IP,
     falling back to `r.RemoteAddr`.
  3. Performs a GeoLite2 country lookup when a database is loaded.
  4. Stores a `*RequestInfo` in the request context so the registration
     audit observer can record browser, device, and country.

Notes
-----
  • All look-ups are read-only, so the middleware is safe under heavy
    concurrency.
*/
package requestinfo

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/baraliresort/reserve/internal/logger"
	"github.com/baraliresort/reserve/internal/ua"
)

// Enrich wraps an http.Handler, attaches *RequestInfo, and forwards.
func Enrich(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := &RequestInfo{
			UA:        ua.Parse(r.UserAgent()),
			Lang:      primaryLang(r.Header.Get("Accept-Language")),
			Geo:       lookupGeo(clientIP(r)),
			Path:      r.URL.Path,
			Timestamp: time.Now().UTC(),
		}

		logger.FromContext(r.Context()).Debugw("request info",
			"ip", info.Geo.IP,
			"country", info.Geo.CountryISO,
			"browser", info.UA.Browser,
			"device", info.UA.Device,
			"bot", info.UA.IsBot,
		)

		next.ServeHTTP(w, r.WithContext(WithInfo(r.Context(), info)))
	})
}

// clientIP extracts the left-most address from X-Forwarded-For or
// X-Real-IP, falling back to r.RemoteAddr ("ip:port").
func clientIP(r *http.Request) net.IP {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, part := range strings.Split(xff, ",") {
			if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
				return ip
			}
		}
	}
	if xrip := r.Header.Get("X-Real-Ip"); xrip != "" {
		if ip := net.ParseIP(strings.TrimSpace(xrip)); ip != nil {
			return ip
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return net.ParseIP(host)
	}
	return nil
}
