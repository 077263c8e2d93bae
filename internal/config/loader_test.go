package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type fakeResolver map[string]string

func (f fakeResolver) Resolve(_ context.Context, ref string) (string, error) {
	return f[ref], nil
}

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "conf"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "conf", "global.yaml"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return root
}

const minimal = `
http:
  listen_addr: ":8080"
api:
  base_url: "http://api.local"
`

func TestLoadFromDefaults(t *testing.T) {
	root := writeYAML(t, minimal)

	cfg, err := LoadFrom(context.Background(), root, nil)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Routes.SignIn != "/login" || cfg.Routes.Home != "/" {
		t.Errorf("routes = %+v", cfg.Routes)
	}
	if cfg.API.Timeout != 0 {
		t.Errorf("api timeout = %v, want none", cfg.API.Timeout)
	}
	if cfg.HTTP.ShutdownTimeout != 10*time.Second {
		t.Errorf("shutdown timeout = %v", cfg.HTTP.ShutdownTimeout)
	}
	if cfg.Log.Dir != filepath.Join(root, "logs") || cfg.Theme.Dir != filepath.Join(root, "themes") || cfg.Theme.Name != "default" {
		t.Errorf("paths not anchored at root: log %q, theme %+v", cfg.Log.Dir, cfg.Theme)
	}
	if cfg.Paths.Root != root || Get() != cfg {
		t.Error("config not cached")
	}
}

func TestLoadFromEnvOverride(t *testing.T) {
	root := writeYAML(t, minimal)
	t.Setenv("BARALI_API__BASE_URL", "https://api.barali.example")
	t.Setenv("BARALI_FORMS__IDLE_TTL", "5m")

	cfg, err := LoadFrom(context.Background(), root, nil)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.API.BaseURL != "https://api.barali.example" {
		t.Errorf("base url = %q", cfg.API.BaseURL)
	}
	if cfg.Forms.IdleTTL != 5*time.Minute {
		t.Errorf("idle ttl = %v", cfg.Forms.IdleTTL)
	}
}

func TestLoadFromVaultReference(t *testing.T) {
	root := writeYAML(t, minimal+`
session:
  csrf_key: "vault:secret/web#csrf"
`)
	key := strings.Repeat("k", 32)

	cfg, err := LoadFrom(context.Background(), root, fakeResolver{"vault:secret/web#csrf": key})
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Session.CSRFKey != key {
		t.Errorf("csrf key = %q", cfg.Session.CSRFKey)
	}

	if _, err := LoadFrom(context.Background(), root, nil); err == nil {
		t.Error("vault reference accepted without a resolver")
	}
}

func TestLoadFromValidation(t *testing.T) {
	root := writeYAML(t, `
http:
  listen_addr: ":8080"
routes:
  sign_in: "login"
`)
	_, err := LoadFrom(context.Background(), root, nil)
	if err == nil {
		t.Fatal("invalid config accepted")
	}
	for _, want := range []string{"Config.API.BaseURL: required", "Config.Routes.SignIn: startswith"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q lacks %q", err, want)
		}
	}
}
