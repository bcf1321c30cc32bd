package styles

import (
	"testing"

	"github.com/tonhe/funnel/internal/render"
)

func TestLookup(t *testing.T) {
	theme, ok := Lookup("solarized-dark")
	if !ok {
		t.Fatal("Lookup('solarized-dark') not found")
	}
	if theme.Name != "Solarized Dark" || theme.Slug != "solarized-dark" {
		t.Errorf("unexpected theme %q (%q)", theme.Name, theme.Slug)
	}
	if _, ok := Lookup("nonexistent"); ok {
		t.Error("expected nonexistent theme to be missing")
	}
}

func TestResolve(t *testing.T) {
	if got := Resolve("nord").Slug; got != "nord" {
		t.Errorf("Resolve(nord) = %q", got)
	}
	if got := Resolve("nonexistent").Slug; got != DefaultSlug {
		t.Errorf("Resolve(nonexistent) = %q, want default", got)
	}
}

func TestNames(t *testing.T) {
	names := Names()
	if len(names) < 20 {
		t.Errorf("expected at least 20 themes, got %d", len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("names not sorted at %d: %q >= %q", i, names[i-1], names[i])
		}
	}
	names[0] = "changed"
	if Names()[0] == "changed" {
		t.Error("Names should return a copy")
	}
}

func TestNext(t *testing.T) {
	names := Names()
	last := names[len(names)-1]

	tests := []struct {
		slug  string
		delta int
		want  string
	}{
		{names[0], 1, names[1]},
		{last, 1, names[0]},
		{names[0], -1, last},
		{"nonexistent", 1, names[0]},
		{names[1], 0, names[1]},
	}
	for _, tt := range tests {
		if got := Next(tt.slug, tt.delta).Slug; got != tt.want {
			t.Errorf("Next(%q, %d) = %q, want %q", tt.slug, tt.delta, got, tt.want)
		}
	}
}

func TestThemesComplete(t *testing.T) {
	for slug, theme := range Themes {
		if theme.Name == "" {
			t.Errorf("theme %q has no name", slug)
		}
		if theme.Slug != slug {
			t.Errorf("theme %q has slug %q", slug, theme.Slug)
		}
		for i, c := range []string{
			string(theme.Base00), string(theme.Base05), string(theme.Base08), string(theme.Base0D),
		} {
			if len(c) != 7 || c[0] != '#' {
				t.Errorf("theme %q colour %d is %q", slug, i, c)
			}
		}
	}
}

func TestChartPalette(t *testing.T) {
	theme := Resolve("dracula")
	for _, name := range render.VariantNames() {
		v, err := render.Lookup(name)
		if err != nil {
			t.Fatal(err)
		}
		themed := theme.Chart(v)
		if themed.Palette.Background != string(theme.Base00) || themed.Palette.Text != string(theme.Base05) {
			t.Errorf("%s: background/text not themed: %+v", name, themed.Palette)
		}
		if themed.Palette.Fill != v.Palette.Fill {
			t.Errorf("%s: data fill should be kept", name)
		}
		if themed.Name != v.Name || themed.Reference != v.Reference {
			t.Errorf("%s: variant identity changed", name)
		}
	}

	bars, _ := render.Lookup("bars")
	if got := theme.Chart(bars).Palette.Guide; got != bars.Palette.Guide {
		t.Errorf("bars baseline colour changed to %q", got)
	}
	orig, _ := render.Lookup("area")
	_ = theme.Chart(orig)
	if again, _ := render.Lookup("area"); again.Palette.Background != orig.Palette.Background {
		t.Error("registered variant must not be modified")
	}
}
