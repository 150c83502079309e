package ui

import (
	"strings"
	"testing"

	"github.com/five82/shopsync/internal/orders"
)

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	want := []string{"Nightfox", "Kanagawa", "Slate"}
	if len(names) != len(want) {
		t.Fatalf("ThemeNames() returned %d names, want %d", len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("ThemeNames() = %v, want %v", names, want)
		}
	}
}

func TestNextTheme(t *testing.T) {
	cases := map[string]string{
		"Nightfox": "Kanagawa",
		"Kanagawa": "Slate",
		"Slate":    "Nightfox",
		"Unknown":  "Nightfox",
	}
	for in, want := range cases {
		if got := NextTheme(in); got != want {
			t.Fatalf("NextTheme(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGetThemeFallsBackToNightfox(t *testing.T) {
	if got := GetTheme("Kanagawa").Name; got != "Kanagawa" {
		t.Fatalf("GetTheme(Kanagawa).Name = %q", got)
	}
	if got := GetTheme("nope").Name; got != "Nightfox" {
		t.Fatalf("GetTheme(nope).Name = %q, want Nightfox", got)
	}
}

func TestEveryThemeColorsEveryOrderStatus(t *testing.T) {
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		for _, status := range orders.Statuses {
			if status == "" {
				continue
			}
			if _, ok := th.StatusColors[strings.ToLower(status)]; !ok {
				t.Fatalf("theme %s has no color for %q", name, status)
			}
		}
	}
}

func TestStatusStyleIgnoresCase(t *testing.T) {
	styles := GetTheme("Nightfox").Styles()
	a := styles.StatusStyle("Shipped").Render("x")
	b := styles.StatusStyle("  shipped ").Render("x")
	if a != b {
		t.Fatalf("StatusStyle differs by case: %q vs %q", a, b)
	}
}

func TestWithBackgroundKeepsStatusColors(t *testing.T) {
	th := GetTheme("Slate")
	base := th.Styles()
	bg := base.WithBackground(th.Surface)
	if len(bg.statusColors) != len(base.statusColors) {
		t.Fatalf("statusColors lost: %d vs %d", len(bg.statusColors), len(base.statusColors))
	}
	if bg.muted != base.muted {
		t.Fatalf("muted = %q, want %q", bg.muted, base.muted)
	}
}
