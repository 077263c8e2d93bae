// internal/server/timeouts.go
//
// HTTP server helper with robust timeouts.
//
//   • ReadTimeout   – abort slow-loris headers (10 s)
//   • WriteTimeout  – cap total response time (60 s).  The register POST
//                     waits on two reservation API round trips with no
//                     client deadline of their own, so this is their ceiling.
//   • IdleTimeout   – close keep-alives on idle clients (60 s)

package server

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// New constructs an *http.Server with the defaults above.  Server errors go
// to log.
func New(addr string, handler http.Handler, log *zap.SugaredLogger) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	if log != nil {
		srv.ErrorLog = zap.NewStdLog(log.Desugar())
	}
	return srv
}
