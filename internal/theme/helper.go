//
//  internal/theme/helper.go
//
//  Template functions available to the layout and every page.  Helpers
//  that read the request take the *core.Context passed as .Ctx, so HTML
//  authors never poke through nested structs.
//
//    {{ asset "site.css" }}         {{ if signedIn .Ctx }}…{{ end }}
//    {{ browser .Ctx }}             {{ device .Ctx }}
//    {{ country .Ctx }}             {{ if isBot .Ctx }}…{{ end }}
//    {{ csrf }}                     {{ avatarSrc .User.Image }}
//

package theme

import (
	"encoding/base64"
	"html/template"

	"github.com/baraliresort/reserve/internal/core"
	"github.com/baraliresort/reserve/internal/form"
)

// FuncMap returns the theme function map.  asset resolves asset paths.
func FuncMap(asset func(string) string) template.FuncMap {
	return template.FuncMap{
		"asset": asset,
		"csrf":  form.Token,

		"signedIn": func(c *core.Context) bool { return c != nil && c.SignedIn },

		// Request info helpers
		"browser": func(c *core.Context) string {
			if c == nil || c.Info == nil {
				return ""
			}
			return c.Info.UA.Browser
		},
		"device": func(c *core.Context) string {
			if c == nil || c.Info == nil {
				return ""
			}
			return c.Info.UA.Device
		},
		"country": func(c *core.Context) string {
			if c == nil || c.Info == nil {
				return ""
			}
			return c.Info.Geo.CountryISO
		},
		"isBot": func(c *core.Context) bool {
			return c != nil && c.Info != nil && c.Info.UA.IsBot
		},

		// Profile images arrive as bare base64 JPEG.
		"avatarSrc": func(b64 string) template.URL {
			if b64 == "" {
				return template.URL(asset("avatar.svg"))
			}
			if _, err := base64.StdEncoding.DecodeString(b64); err != nil {
				return template.URL(asset("avatar.svg"))
			}
			return template.URL("data:image/jpeg;base64," + b64)
		},
	}
}
