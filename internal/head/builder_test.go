package head

import (
	"strings"
	"testing"
)

func TestBuilder(t *testing.T) {
	b := New("Barali Beach Resort")
	if got := string(b.Title()); got != "<title>Barali Beach Resort</title>" {
		t.Errorf("default Title = %q", got)
	}

	b.SetTitle("Register <Now>")
	b.Description(`Rooms "on" the beach`)
	b.Canonical("https://www.baraliresort.com/register")
	b.Canonical("https://www.baraliresort.com/register")
	b.NoIndex()
	b.JSONLD(`{"@type":"Hotel"}`)

	if got := string(b.Title()); got != "<title>Register &lt;Now&gt; | Barali Beach Resort</title>" {
		t.Errorf("Title = %q", got)
	}
	if got := string(b.Links()); strings.Count(got, "canonical") != 1 {
		t.Errorf("canonical not deduplicated: %q", got)
	}
	metas := string(b.Metas())
	if !strings.Contains(metas, "&#34;on&#34;") || !strings.Contains(metas, "noindex") {
		t.Errorf("Metas = %q", metas)
	}
	if got := string(b.JSON()); got != `<script type="application/ld+json">{"@type":"Hotel"}</script>` {
		t.Errorf("JSON = %q", got)
	}

	b.SetTitle("")
	if got := string(b.Title()); got != "<title>Barali Beach Resort</title>" {
		t.Errorf("reset Title = %q", got)
	}
}
