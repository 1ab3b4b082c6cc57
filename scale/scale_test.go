package scale

import (
	"strings"
	"testing"
)

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#3182bd")
	if err != nil {
		t.Fatal(err)
	}
	if c != (Color{0x31, 0x82, 0xbd}) {
		t.Fatalf("got %+v", c)
	}
	if c.Hex() != "#3182bd" {
		t.Fatalf("round trip: got %s", c.Hex())
	}

	if _, err := ParseHex("red"); err == nil {
		t.Fatal("expected error for non-hex input")
	}
	if _, err := ParseHex("#12345"); err == nil {
		t.Fatal("expected error for short input")
	}
}

func TestInterpolateEndpoints(t *testing.T) {
	if got := Interpolate(0, 0, 100, Blues); got != Blues[0] {
		t.Fatalf("min: got %s want %s", got.Hex(), Blues[0].Hex())
	}
	if got := Interpolate(100, 0, 100, Blues); got != Blues[len(Blues)-1] {
		t.Fatalf("max: got %s want %s", got.Hex(), Blues[len(Blues)-1].Hex())
	}
}

func TestInterpolateClamps(t *testing.T) {
	if got := Interpolate(-50, 0, 100, Reds); got != Reds[0] {
		t.Fatalf("below min: got %s", got.Hex())
	}
	if got := Interpolate(1e9, 0, 100, Reds); got != Reds[len(Reds)-1] {
		t.Fatalf("above max: got %s", got.Hex())
	}
}

func TestInterpolateBlend(t *testing.T) {
	stops := []Color{{0, 0, 0}, {255, 255, 255}}
	got := Interpolate(0.5, 0, 1, stops)
	if got != (Color{128, 128, 128}) {
		t.Fatalf("midpoint: got %+v", got)
	}
	// Quarter point blends only the first pair.
	got = Interpolate(25, 0, 100, []Color{{0, 0, 0}, {100, 100, 100}, {200, 200, 200}})
	if got != (Color{50, 50, 50}) {
		t.Fatalf("quarter: got %+v", got)
	}
}

func TestInterpolateDegenerate(t *testing.T) {
	if got := Interpolate(5, 5, 5, Greens); got != Greens[0] {
		t.Fatalf("value==min==max: got %s", got.Hex())
	}
	if got := Interpolate(10, 5, 5, Greens); got != Greens[len(Greens)-1] {
		t.Fatalf("value>min==max: got %s", got.Hex())
	}
	if got := Interpolate(1, 5, 5, Greens); got != Greens[0] {
		t.Fatalf("value<min==max: got %s", got.Hex())
	}
}

func TestFormatCount(t *testing.T) {
	if got := FormatCount(1234567); got != "1,234,567" {
		t.Fatalf("got %q", got)
	}
	if got := FormatCount(0); got != "0" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatChangeSign(t *testing.T) {
	if got := FormatChange(1500); got != "+1,500" {
		t.Fatalf("positive: got %q", got)
	}
	if got := FormatChange(-1500); got != "-1,500" {
		t.Fatalf("negative: got %q", got)
	}
	if got := FormatChange(0); got != "0" {
		t.Fatalf("zero: got %q", got)
	}
}

// Formatting a negative integer then stripping the sign and separators must
// recover the original magnitude.
func TestFormatChangeRoundTrip(t *testing.T) {
	formatted := FormatChange(-987654)
	stripped := strings.NewReplacer("-", "", ",", "").Replace(formatted)
	if stripped != "987654" {
		t.Fatalf("got %q from %q", stripped, formatted)
	}
}

func TestFormatPercent(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{13.04, "+13.0%"},
		{-2.55, "-2.5%"},
		{0, "0.0%"},
	}
	for _, c := range cases {
		if got := FormatPercent(c.in); got != c.want {
			t.Fatalf("FormatPercent(%v): got %q want %q", c.in, got, c.want)
		}
	}
}

func TestSortByStable(t *testing.T) {
	type kv struct {
		name  string
		value int
	}
	items := []kv{{"a", 2}, {"b", 1}, {"c", 2}, {"d", 1}}
	SortByDesc(items, func(i kv) int { return i.value })
	want := []kv{{"a", 2}, {"c", 2}, {"b", 1}, {"d", 1}}
	for i := range want {
		if items[i] != want[i] {
			t.Fatalf("position %d: got %+v want %+v", i, items[i], want[i])
		}
	}

	SortBy(items, func(i kv) int { return i.value })
	if items[0].name != "b" || items[1].name != "d" {
		t.Fatalf("ascending stable order broken: %+v", items)
	}
}
