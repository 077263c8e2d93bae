// internal/component/env.go
package component

import (
	"go.uber.org/zap"

	"github.com/baraliresort/reserve/internal/api"
	"github.com/baraliresort/reserve/internal/audit"
	"github.com/baraliresort/reserve/internal/config"
)

// Env exposes process-wide resources to Components during Init.
type Env interface {
	Config() *config.Config
	API() *api.Client
	// Audit is nil when no audit database is configured.
	Audit() *audit.Store
	Logger() *zap.SugaredLogger
}

// StaticEnv is the plain Env cmd/web builds at boot.  Tests build their own.
type StaticEnv struct {
	Cfg   *config.Config
	Cli   *api.Client
	Store *audit.Store
	Log   *zap.SugaredLogger
}

func (e StaticEnv) Config() *config.Config { return e.Cfg }
func (e StaticEnv) API() *api.Client       { return e.Cli }
func (e StaticEnv) Audit() *audit.Store    { return e.Store }

// Logger falls back to the global logger.
func (e StaticEnv) Logger() *zap.SugaredLogger {
	if e.Log == nil {
		return zap.S()
	}
	return e.Log
}
