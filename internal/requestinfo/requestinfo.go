//
//  internal/requestinfo/requestinfo.go
//
//  Per-request metadata: user-agent fingerprint, client IP, best-effort
//  country, preferred language, and timestamp.  These structs are inert.
//  They hold no handles, so they are safe to log or store with an audit
//  row.
//
//  Dependencies
//  • internal/ua                        (uasurfer wrapper)
//  • github.com/oschwald/geoip2-golang  (MaxMind lookup, optional)
//

package requestinfo

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync/atomic"
	"time"

	"github.com/oschwald/geoip2-golang"

	"github.com/baraliresort/reserve/internal/ua"
)

// Geo holds IP-based hints.  CountryISO is empty without a database or
// a match.
type Geo struct {
	IP         net.IP
	CountryISO string
}

// RequestInfo is stored in the request context by Enrich.
type RequestInfo struct {
	UA        ua.Info
	Lang      string // first Accept-Language tag, lowercased
	Geo       Geo
	Path      string
	Timestamp time.Time
}

var geoReader atomic.Pointer[geoip2.Reader]

// InitGeo opens a GeoLite2 Country or City database.  Without it, lookups
// only record the IP.
func InitGeo(dbPath string) error {
	r, err := geoip2.Open(dbPath)
	if err != nil {
		return fmt.Errorf("requestinfo: open geoip db: %w", err)
	}
	if old := geoReader.Swap(r); old != nil {
		_ = old.Close()
	}
	return nil
}

// CloseGeo releases the database, if one is open.
func CloseGeo() {
	if r := geoReader.Swap(nil); r != nil {
		_ = r.Close()
	}
}

type ctxKey struct{}

// FromContext returns the value stored by Enrich, or nil.
func FromContext(ctx context.Context) *RequestInfo {
	v, _ := ctx.Value(ctxKey{}).(*RequestInfo)
	return v
}

// WithInfo stores info in ctx.  Used by Enrich and by tests.
func WithInfo(ctx context.Context, info *RequestInfo) context.Context {
	return context.WithValue(ctx, ctxKey{}, info)
}

// primaryLang extracts the first language tag before any ";q=" weight.
func primaryLang(al string) string {
	if al == "" {
		return ""
	}
	tag, _, _ := strings.Cut(al, ",")
	tag, _, _ = strings.Cut(tag, ";")
	return strings.ToLower(strings.TrimSpace(tag))
}

func lookupGeo(ip net.IP) Geo {
	r := geoReader.Load()
	if r == nil || ip == nil {
		return Geo{IP: ip}
	}
	rec, err := r.Country(ip)
	if err != nil {
		return Geo{IP: ip}
	}
	return Geo{IP: ip, CountryISO: rec.Country.IsoCode}
}
