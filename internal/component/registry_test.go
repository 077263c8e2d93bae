package component

import (
	"testing"

	"github.com/go-chi/chi/v5"
)

type fake struct{ name string }

func (f fake) Name() string         { return f.name }
func (f fake) Routes() chi.Router   { return chi.NewRouter() }
func (f fake) Migrations() []string { return nil }
func (f fake) Init(Env) error       { return nil }

func TestAllIsSortedAndDeduplicated(t *testing.T) {
	Register(fake{"zeta"})
	Register(fake{"alpha"})
	Register(fake{"zeta"})

	all := All()
	var names []string
	for _, c := range all {
		names = append(names, c.Name())
	}
	if len(names) != 2 || names[0] != "alpha" || names[1] != "zeta" {
		t.Errorf("All = %v", names)
	}
}

func TestStaticEnvLoggerFallback(t *testing.T) {
	if (StaticEnv{}).Logger() == nil {
		t.Error("nil logger")
	}
}
