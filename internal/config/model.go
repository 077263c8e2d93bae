// internal/config/model.go
//
// Typed configuration model for Barali.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                          – dotenv values,
//   • `conf/global.yaml`                       – primary static file,
//   • `BARALI_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with `vault:` is resolved through the Vault
// client before unmarshalling, so the model only ever holds plain strings.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`.  Durations accept Go syntax ("30m").
//   • The `Paths` block is filled at runtime; YAML must not try to set it.

package config

import "time"

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr      string        `koanf:"listen_addr"      validate:"required,hostname_port"`
	ForceHTTPS      bool          `koanf:"force_https"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gte=0"`
}

// API points at the remote reservation API.  Timeout 0 means no
// caller-side deadline.
type API struct {
	BaseURL string        `koanf:"base_url" validate:"required,url"`
	Timeout time.Duration `koanf:"timeout"  validate:"gte=0"`
}

// Session tunes the browser cookies.  CSRFKey should come from Vault in
// production; an empty key means an ephemeral one per process.
type Session struct {
	CookieName string        `koanf:"cookie_name"`
	Secure     bool          `koanf:"secure"`
	TTL        time.Duration `koanf:"ttl"      validate:"gte=0"`
	CSRFKey    string        `koanf:"csrf_key" validate:"omitempty,min=32"`
}

// Forms sizes the mounted-instance cache.
type Forms struct {
	IdleTTL       time.Duration `koanf:"idle_ttl"       validate:"gte=0"`
	MaxInstances  int           `koanf:"max_instances"  validate:"gte=0"`
	EvictInterval time.Duration `koanf:"evict_interval" validate:"gte=0"`
}

// Routes names the pages the flows hand off to.
type Routes struct {
	SignIn string `koanf:"sign_in" validate:"required,startswith=/"`
	Home   string `koanf:"home"    validate:"required,startswith=/"`
}

// Log configures internal/logger.
type Log struct {
	Dir   string `koanf:"dir"`
	Level string `koanf:"level" validate:"omitempty,oneof=debug info warn error"`
}

// Audit enables the registration-attempt table.  Empty DSN disables it.
type Audit struct {
	DSN string `koanf:"dsn"`
}

// GeoIP points at an optional GeoLite2-Country database.
type GeoIP struct {
	DB string `koanf:"db"`
}

// Theme selects the page theme.  Dir is relative to the config root.
type Theme struct {
	Name string `koanf:"name"`
	Dir  string `koanf:"dir"`
}

// Paths is resolved at runtime, never set in YAML or env.
type Paths struct {
	Root string // BARALI_ROOT or discovered parent
}

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP    HTTP    `koanf:"http"`
	API     API     `koanf:"api"`
	Session Session `koanf:"session"`
	Forms   Forms   `koanf:"forms"`
	Routes  Routes  `koanf:"routes"`
	Log     Log     `koanf:"log"`
	Audit   Audit   `koanf:"audit"`
	GeoIP   GeoIP   `koanf:"geoip"`
	Theme   Theme   `koanf:"theme"`
	Paths   Paths   `koanf:"-"`
}
