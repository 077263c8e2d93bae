package vault

import (
	"context"
	"errors"
	"testing"
)

func TestParseRef(t *testing.T) {
	tests := []struct {
		ref, path, key string
		bad            bool
	}{
		{ref: "vault:secret/web#csrf_key", path: "secret/web", key: "csrf_key"},
		{ref: "vault:kv/barali/audit#dsn", path: "kv/barali/audit", key: "dsn"},
		{ref: "vault:secret#csrf", bad: true},
		{ref: "vault:secret/web", bad: true},
		{ref: "vault:secret/web#", bad: true},
		{ref: "secret/web#csrf", bad: true},
	}
	for _, tt := range tests {
		path, key, err := ParseRef(tt.ref)
		if tt.bad {
			if !errors.Is(err, ErrBadRef) {
				t.Errorf("%q: err = %v, want ErrBadRef", tt.ref, err)
			}
			continue
		}
		if err != nil || path != tt.path || key != tt.key {
			t.Errorf("%q: got (%q, %q, %v)", tt.ref, path, key, err)
		}
	}
}

func TestResolvePassesPlainValues(t *testing.T) {
	var c Client // no API needed for plain values
	got, err := c.Resolve(context.Background(), "https://api.example.com")
	if err != nil || got != "https://api.example.com" {
		t.Fatalf("Resolve = %q, %v", got, err)
	}
}

func TestSplitMount(t *testing.T) {
	m, rel := splitMount("secret/barali/web")
	if m != "secret" || rel != "barali/web" {
		t.Errorf("splitMount = %q, %q", m, rel)
	}
}
