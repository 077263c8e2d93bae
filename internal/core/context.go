// internal/core/context.go
//
// Central per-request page context.
//
// Context
// -------
// Every page handler builds a *core.Context and hands it to view.Render.
// It bundles:
//
//   - Request  – the original *http.Request.
//   - Writer   – convenience http.ResponseWriter.
//   - Head     – <head> builder, seeded with charset and viewport.
//   - Info     – parsed UA, geo, and timestamp from requestinfo.Enrich.
//   - Flash    – notifications carried over a redirect, already cleared.
//   - SignedIn – whether a live access token is present.
//   - User     – the profile, on pages that fetched one (avatar).
//
// Notes
// -----
//   - NewContext consumes the flash cookie, so build exactly one Context per
//     rendered page.
//   - The session flag is read once here and never re-read during a render.
package core

import (
	"net/http"

	"github.com/baraliresort/reserve/internal/api"
	"github.com/baraliresort/reserve/internal/head"
	"github.com/baraliresort/reserve/internal/notify"
	"github.com/baraliresort/reserve/internal/requestinfo"
	"github.com/baraliresort/reserve/internal/session"
)

// SiteName prefixes every page title.
const SiteName = "Barali Beach Resort"

// Context is passed to templates and widgets.
type Context struct {
	Request  *http.Request
	Writer   http.ResponseWriter
	Head     *head.Builder
	Info     *requestinfo.RequestInfo
	Flash    []notify.Notification
	SignedIn bool
	User     *api.User
}

// NewContext builds the page context for one request.
func NewContext(w http.ResponseWriter, r *http.Request) *Context {
	h := head.New(SiteName)
	h.Meta(`<meta charset="utf-8">`)
	h.Meta(`<meta name="viewport" content="width=device-width, initial-scale=1">`)

	return &Context{
		Request:  r,
		Writer:   w,
		Head:     h,
		Info:     requestinfo.FromContext(r.Context()),
		Flash:    session.TakeFlash(w, r),
		SignedIn: session.SignedIn(r),
	}
}

// Title sets "<page> | Barali Beach Resort".
func (c *Context) Title(page string) { c.Head.SetTitle(page) }
