// internal/config/loader.go
//
// Configuration loader.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from three layers (highest
precedence last):

  1. Optional `<root>/conf/.env`, exported into the process environment.
  2. `conf/global.yaml`.
  3. Environment variables prefixed `BARALI_`, where `__` maps to “.”
     (e.g., `BARALI_API__BASE_URL → api.base_url`).

After merging, every string value starting with `vault:` is replaced by
the secret it names.  The tree is then unmarshalled into typed structs,
defaulted, validated, and cached in an `atomic.Pointer` for lock-free
reads.  `Reload()` calls `Load()` again and swaps the pointer.

Instrumentation
---------------
  • DEBUG  root discovery, YAML read, env overlay, vault substitutions.
  • ERROR  YAML parse, env overlay, vault, unmarshal, validation failures.
  • INFO   final “config loaded” with key highlights.
  • Logs use the global sugared logger (`zap.S()`) so early boot issues
    surface before the file logger is installed.

Notes
-----
  • `rootDir()` climbs the cwd tree until it finds `conf/global.yaml`, so
    `go run ./cmd/web` works from any sub-directory.
  • Vault is only contacted when VAULT_ADDR is set and at least one value
    carries the prefix.
*/
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/baraliresort/reserve/internal/vault"
)

// EnvPrefix marks environment overrides.
const EnvPrefix = "BARALI_"

var current atomic.Pointer[Config]

// Resolver turns a `vault:` reference into its secret.  *vault.Client
// satisfies it.
type Resolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves BARALI_ROOT or climbs directories until conf/global.yaml
// is found.  Falls back to the executable's parent for a bin/ layout.
func rootDir() string {
	if r := os.Getenv(EnvPrefix + "ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "global.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load reads .env, YAML, and env overrides from the discovered root,
// resolves vault: references when Vault is configured, validates, and
// caches the result.
func Load(ctx context.Context) (*Config, error) {
	root := rootDir()
	zap.S().Debugw("config root resolved", "root", root)

	// .env (optional, no error if missing)
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	var res Resolver
	if vault.Enabled() {
		cli, err := vault.New(ctx, zap.S())
		if err != nil {
			zap.S().Errorw("vault client init failed", "err", err)
			return nil, err
		}
		res = cli
	}
	return LoadFrom(ctx, root, res)
}

// LoadFrom is Load with an explicit root and resolver.  res may be nil, in
// which case any vault: value is an error.
func LoadFrom(ctx context.Context, root string, res Resolver) (*Config, error) {
	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "global.yaml")
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
		return nil, err
	}
	zap.S().Debugw("config yaml loaded", "file", yamlPath)

	// BARALI_API__BASE_URL → api.base_url
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(s, EnvPrefix), "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	if err := resolveSecrets(ctx, k, res); err != nil {
		zap.S().Errorw("config vault resolution failed", "err", err)
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}

	cfg.Paths.Root = root
	applyDefaults(&cfg)
	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	current.Store(&cfg)
	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"force_https", cfg.HTTP.ForceHTTPS,
		"api", cfg.API.BaseURL,
		"audit", cfg.Audit.DSN != "",
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

// resolveSecrets swaps every vault: string in k for its secret.
func resolveSecrets(ctx context.Context, k *koanf.Koanf, res Resolver) error {
	for key, val := range k.All() {
		s, ok := val.(string)
		if !ok || !strings.HasPrefix(s, vault.Prefix) {
			continue
		}
		if res == nil {
			return fmt.Errorf("%s: vault reference but VAULT_ADDR is not set", key)
		}
		plain, err := res.Resolve(ctx, s)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if err := k.Set(key, plain); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		zap.S().Debugw("config value resolved from vault", "key", key)
	}
	return nil
}

func applyDefaults(c *Config) {
	if c.HTTP.ShutdownTimeout == 0 {
		c.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if c.Routes.SignIn == "" {
		c.Routes.SignIn = "/login"
	}
	if c.Routes.Home == "" {
		c.Routes.Home = "/"
	}
	if c.Log.Dir == "" {
		c.Log.Dir = "logs"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Theme.Name == "" {
		c.Theme.Name = "default"
	}
	if c.Theme.Dir == "" {
		c.Theme.Dir = "themes"
	}
	c.Log.Dir = underRoot(c.Paths.Root, c.Log.Dir)
	c.Theme.Dir = underRoot(c.Paths.Root, c.Theme.Dir)
}

// underRoot anchors relative paths at the config root.
func underRoot(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

func Get() *Config { return current.Load() }

func Reload(ctx context.Context) error { _, err := Load(ctx); return err }
