// cmd/web/main.go
//
// Barali Resort – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Load config (conf/global.yaml ← conf/.env ← BARALI_* env, vault:
//     references resolved when VAULT_ADDR is set).
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Install CSRF key and session cookie options.
//
//  4. Build the reservation API client; open the audit DB and GeoIP
//     reader when configured.
//
//  5. Load the theme and hand every component its Env.
//
//  6. Mount components, assets, /metrics, and /healthz on one chi router:
//
//     • chi RequestID + Recoverer
//     • request logger           – middleware.Logger
//     • UA / geo enrichment      – requestinfo.Enrich
//     • security headers         – middleware.Security
//     • HTTPS redirect           – middleware.ForceHTTPS (skips localhost)
//
//  7. Serve until SIGINT/SIGTERM, then drain requests and unmount forms.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/baraliresort/reserve/internal/api"
	"github.com/baraliresort/reserve/internal/audit"
	"github.com/baraliresort/reserve/internal/component"
	"github.com/baraliresort/reserve/internal/config"
	"github.com/baraliresort/reserve/internal/database"
	"github.com/baraliresort/reserve/internal/form"
	"github.com/baraliresort/reserve/internal/logger"
	"github.com/baraliresort/reserve/internal/middleware"
	"github.com/baraliresort/reserve/internal/requestinfo"
	"github.com/baraliresort/reserve/internal/server"
	"github.com/baraliresort/reserve/internal/session"
	"github.com/baraliresort/reserve/internal/theme"
	"github.com/baraliresort/reserve/internal/view"
	"github.com/baraliresort/reserve/internal/widget"

	_ "github.com/baraliresort/reserve/components/account"
	_ "github.com/baraliresort/reserve/components/auth"
	_ "github.com/baraliresort/reserve/components/booking"
	_ "github.com/baraliresort/reserve/components/home"
)

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	if err := run(context.Background()); err != nil {
		zap.S().Errorw("exit", "err", err)
		_ = zap.S().Sync()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	//
	// ── 1.  Config ──────────────────────────────────────────────────────
	//
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	//
	// ── 2.  Logger ──────────────────────────────────────────────────────
	//
	log, err := logger.New(cfg.Log.Dir, runningInTTY(), cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("start logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	ctx = logger.WithContext(ctx, log)

	//
	// ── 3.  CSRF + session cookies ──────────────────────────────────────
	//
	form.SetSecret([]byte(cfg.Session.CSRFKey))
	session.Configure(session.Options{
		CookieName: cfg.Session.CookieName,
		Secure:     cfg.Session.Secure,
		TTL:        cfg.Session.TTL,
	})

	//
	// ── 4.  Remote API, audit trail, GeoIP ──────────────────────────────
	//
	var apiOpts []api.Option
	if cfg.API.Timeout > 0 {
		apiOpts = append(apiOpts, api.WithTimeout(cfg.API.Timeout))
	}
	cli, err := api.New(cfg.API.BaseURL, apiOpts...)
	if err != nil {
		return fmt.Errorf("api client: %w", err)
	}

	var closers []server.Closer

	var auditDB *sqlx.DB
	var trail *audit.Store
	if cfg.Audit.DSN != "" {
		auditDB, err = database.Open(ctx, cfg.Audit.DSN)
		if err != nil {
			return fmt.Errorf("audit db: %w", err)
		}
		trail = audit.New(auditDB)
		log.Infow("audit trail online")
	}

	if cfg.GeoIP.DB != "" {
		if err := requestinfo.InitGeo(cfg.GeoIP.DB); err != nil {
			log.Warnw("geoip disabled", "db", cfg.GeoIP.DB, "err", err)
		} else {
			closers = append(closers, func(context.Context) error { requestinfo.CloseGeo(); return nil })
		}
	}

	//
	// ── 5.  Theme + components ──────────────────────────────────────────
	//
	th, err := (&theme.Manager{BaseDir: cfg.Theme.Dir}).Load(cfg.Theme.Name)
	if err != nil {
		return fmt.Errorf("load theme: %w", err)
	}
	view.SetTheme(th)

	env := component.StaticEnv{Cfg: cfg, Cli: cli, Store: trail, Log: log}
	comps := component.All()
	for _, c := range comps {
		if err := c.Init(env); err != nil {
			return fmt.Errorf("init component %s: %w", c.Name(), err)
		}
		if auditDB != nil {
			if err := database.Migrate(ctx, auditDB, c.Migrations()); err != nil {
				return fmt.Errorf("migrate %s: %w", c.Name(), err)
			}
		}
		if cl, ok := c.(interface{ Close() }); ok {
			closers = append(closers, func(context.Context) error { cl.Close(); return nil })
		}
	}
	if auditDB != nil {
		// Forms unmount (and may still record attempts) before the pool goes.
		closers = append(closers, func(context.Context) error { return auditDB.Close() })
	}
	log.Infow("components ready", "components", len(comps), "widgets", widget.IDs(), "theme", th.Name)

	//
	// ── 6.  Router ──────────────────────────────────────────────────────
	//
	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.Recoverer)
	r.Use(middleware.Logger(log))
	r.Use(requestinfo.Enrich)
	r.Use(middleware.Security)
	r.Use(func(next http.Handler) http.Handler { return middleware.ForceHTTPS(cfg.HTTP.ForceHTTPS, next) })

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		server.RespondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle(theme.AssetPrefix+"*", th.Assets())
	for _, c := range comps {
		if err := mount(r, c.Routes()); err != nil {
			return fmt.Errorf("mount %s: %w", c.Name(), err)
		}
	}

	//
	// ── 7.  Serve ───────────────────────────────────────────────────────
	//
	srv := server.New(cfg.HTTP.ListenAddr, r, log)
	return server.Run(ctx, srv, cfg.HTTP.ShutdownTimeout, closers...)
}

// mount copies every route of sub onto r.  Components all live at "/", and
// chi allows only one Mount per pattern.
func mount(r chi.Router, sub chi.Routes) error {
	return chi.Walk(sub, func(method, route string, h http.Handler, mws ...func(http.Handler) http.Handler) error {
		r.With(mws...).Method(method, route, h)
		return nil
	})
}
