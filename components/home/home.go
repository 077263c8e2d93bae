// components/home/home.go
//
// Home component – the landing page.
//
//------------------------------------------------------------------------------

package home

import (
	"embed"
	"encoding/json"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baraliresort/reserve/internal/component"
	"github.com/baraliresort/reserve/internal/core"
	"github.com/baraliresort/reserve/internal/logger"
	"github.com/baraliresort/reserve/internal/view"

	_ "github.com/baraliresort/reserve/components/home/widgets" // home/visit
)

//go:embed templates/*.html
var templates embed.FS

// compile-time assertions
var (
	_ component.Component   = (*Comp)(nil)
	_ component.Initializer = (*Comp)(nil)
)

// Comp serves "/".
type Comp struct {
	jsonLD string
}

func (c *Comp) Name() string         { return "home" }
func (c *Comp) Migrations() []string { return nil }

// Init prepares the structured-data block once; it never changes.
func (c *Comp) Init(_ component.Env) error {
	b, err := json.Marshal(hotel)
	if err != nil {
		return err
	}
	c.jsonLD = string(b)
	return nil
}

func (c *Comp) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", c.getHome)
	return r
}

func (c *Comp) getHome(w http.ResponseWriter, r *http.Request) {
	ctx := core.NewContext(w, r)
	ctx.Head.Description("Barali Beach Resort, Koh Chang.  Book your room online.")
	if c.jsonLD != "" {
		ctx.Head.JSONLD(c.jsonLD)
	}
	if err := view.Render(ctx, w, http.StatusOK, "home", "home", nil, view.CacheDefault); err != nil {
		logger.FromContext(r.Context()).Errorw("render home", "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// hotel is the schema.org record embedded on the landing page.
var hotel = map[string]any{
	"@context": "https://schema.org",
	"@type":    "Hotel",
	"name":     core.SiteName,
	"email":    "rsvn@baraliresort.com",
	"url":      "https://www.baraliresort.com",
	"address": map[string]any{
		"@type":      "PostalAddress",
		"postalCode": "10240",
	},
	"sameAs": []string{
		"https://www.facebook.com/baraliresort/?locale=th_TH",
		"https://www.instagram.com/barali_beach_resort/",
	},
}

func init() {
	sub, _ := fs.Sub(templates, "templates")
	view.RegisterTemplates("home", sub)
	component.Register(&Comp{})
}
