package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestNewRejectsRelativeURL(t *testing.T) {
	for _, u := range []string{"", "/api", "localhost:3000"} {
		if _, err := New(u); err == nil {
			t.Errorf("New(%q) accepted", u)
		}
	}
}

func TestEmailExists(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    bool
		network bool
	}{
		{"taken", 200, `{"exists":true}`, true, false},
		{"free", 200, `{"exists":false}`, false, false},
		{"missing field", 200, `{}`, false, true},
		{"not json", 200, `<html>`, false, true},
		{"server error", 500, `{"exists":false}`, false, true},
	}
	for _, tt := range tests {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != PathCheckEmail {
				t.Errorf("%s: request %s %s", tt.name, r.Method, r.URL.Path)
			}
			var in checkEmailRequest
			_ = json.NewDecoder(r.Body).Decode(&in)
			if in.Email != "a@b.co" {
				t.Errorf("%s: email %q", tt.name, in.Email)
			}
			w.WriteHeader(tt.status)
			_, _ = w.Write([]byte(tt.body))
		})

		got, err := c.EmailExists(context.Background(), "a@b.co")
		if tt.network {
			if !IsNetworkError(err) {
				t.Errorf("%s: err = %v, want NetworkError", tt.name, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("%s: got %v, %v", tt.name, got, err)
		}
	}
}

func TestRegisterStatusIsAuthoritative(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var a Account
		_ = json.NewDecoder(r.Body).Decode(&a)
		if a.FirstName != "Ann" || a.Password != "Abcdef12" {
			t.Errorf("account = %+v", a)
		}
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":"error","message":"Email already exists"}`))
	})

	res, err := c.Register(context.Background(), Account{FirstName: "Ann", LastName: "Lee", Email: "a@b.co", Password: "Abcdef12"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if diff := cmp.Diff(Result{Status: "error", Message: "Email already exists"}, res); diff != "" {
		t.Errorf("result (-want +got):\n%s", diff)
	}
	if res.OK() {
		t.Error("OK() on a rejected result")
	}
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c, err := New(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	srv.Close()

	_, err = c.Register(context.Background(), Account{})
	var ne *NetworkError
	if !errors.As(err, &ne) || ne.Op != "POST /register" || ne.Status != 0 {
		t.Errorf("err = %v", err)
	}
}

func TestLoginAndProfile(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case PathLogin:
			_, _ = w.Write([]byte(`{"status":"ok","message":"Logged in","accessToken":"tok"}`))
		case PathProfile:
			if r.Header.Get("Authorization") != "Bearer tok" {
				_, _ = w.Write([]byte(`{"status":"forbidden","message":"Token expired"}`))
				return
			}
			_, _ = w.Write([]byte(`{"status":"ok","user":{"id":7,"fname":"Ann","lname":"Lee","username":"ann","email":"a@b.co","image":""}}`))
		}
	})
	ctx := context.Background()

	lr, err := c.Login(ctx, Credentials{Email: "a@b.co", Password: "pw"})
	if err != nil || !lr.OK() || lr.AccessToken != "tok" {
		t.Fatalf("Login = %+v, %v", lr, err)
	}

	pr, err := c.Profile(ctx, lr.AccessToken)
	if err != nil || !pr.OK() {
		t.Fatalf("Profile = %+v, %v", pr, err)
	}
	want := User{ID: "7", FirstName: "Ann", LastName: "Lee", Username: "ann", Email: "a@b.co"}
	if diff := cmp.Diff(want, pr.User); diff != "" {
		t.Errorf("user (-want +got):\n%s", diff)
	}

	pr, err = c.Profile(ctx, "stale")
	if err != nil || !pr.Forbidden() || pr.Message != "Token expired" {
		t.Errorf("stale Profile = %+v, %v", pr, err)
	}
}

func TestProfileCoalescesConcurrentCalls(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		<-release
		_, _ = w.Write([]byte(`{"status":"ok","user":{"id":"1"}}`))
	})

	const n = 5
	errs := make(chan error, n)
	for range n {
		go func() {
			_, err := c.Profile(context.Background(), "tok")
			errs <- err
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	for range n {
		if err := <-errs; err != nil {
			t.Fatal(err)
		}
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("server hit %d times, want 1", got)
	}
}

func TestWithTimeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	})
	WithTimeout(20 * time.Millisecond)(c)

	if _, err := c.EmailExists(context.Background(), "a@b.co"); !IsNetworkError(err) {
		t.Errorf("err = %v, want NetworkError", err)
	}
}
