package style

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const manifest = `[
  {"id": "full", "name": "Full", "description": "Dense full beard", "color": "#3A2A1F",
   "opacity": 0.85, "texture": "textures/full.png",
   "chin_extension_ratio": 0.35, "mouth_clearance_ratio": 0.2,
   "jaw_width_scale": 1.1, "upper_trim_ratio": 0.1},
  {"id": "goatee", "name": "Goatee", "color": [17, 34, 51], "opacity": 0.7,
   "chin_extension_ratio": 0.5, "mouth_clearance_ratio": 0.1,
   "jaw_width_scale": 0.5, "upper_trim_ratio": 0.0},
  {"id": "stubble", "name": "Stubble", "color": "aabbcc", "opacity": 0.4,
   "texture": "textures/full.png",
   "chin_extension_ratio": 0.1, "mouth_clearance_ratio": 0.0,
   "jaw_width_scale": 1.0, "upper_trim_ratio": 0.0}
]`

func TestParse(t *testing.T) {
	c, err := Parse([]byte(manifest))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Len() != 3 {
		t.Fatalf("Len = %d, want 3", c.Len())
	}

	full, err := c.ByID("full")
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if full.Color != "#3a2a1f" || full.JawWidthScale != 1.1 || full.Texture != "textures/full.png" {
		t.Fatalf("unexpected descriptor: %+v", full)
	}

	goatee, _ := c.ByID("goatee")
	if goatee.Color != "#112233" || goatee.Description != "" {
		t.Fatalf("goatee = %+v", goatee)
	}
	stubble, _ := c.ByID("stubble")
	if stubble.Color != "#aabbcc" {
		t.Fatalf("stubble color = %q", stubble.Color)
	}

	if ids := []string{c.Styles()[0].ID, c.Styles()[1].ID, c.Styles()[2].ID}; ids[0] != "full" || ids[2] != "stubble" {
		t.Fatalf("order not preserved: %v", ids)
	}
	if refs := c.TextureRefs(); len(refs) != 1 || refs[0] != "textures/full.png" {
		t.Fatalf("TextureRefs = %v", refs)
	}
}

// entry builds a one-style manifest with every required field set, then
// applies extra, which may override or add keys.
func entry(extra string) string {
	base := `"id": "a", "name": "A", "opacity": 0.5,
		"chin_extension_ratio": 0.3, "mouth_clearance_ratio": 0.2,
		"jaw_width_scale": 1, "upper_trim_ratio": 0.1`
	if extra != "" {
		base += ", " + extra
	}
	return "[{" + base + "}]"
}

func TestParseRejectsBadColor(t *testing.T) {
	bad := []string{
		entry(`"color": "#abc"`),
		entry(`"color": "zzzzzz"`),
		entry(`"color": [1, 2]`),
		entry(`"color": [1, 2, 300]`),
		entry(""),
		`[{"color": "#000000"}]`,
	}
	for _, m := range bad {
		if _, err := Parse([]byte(m)); err == nil {
			t.Errorf("Parse(%s) should fail", m)
		}
	}
}

func TestParseRejectsMissingFields(t *testing.T) {
	full := map[string]string{
		"name":                  `"A"`,
		"opacity":               `0.5`,
		"chin_extension_ratio":  `0.3`,
		"mouth_clearance_ratio": `0.2`,
		"jaw_width_scale":       `1`,
		"upper_trim_ratio":      `0.1`,
	}
	for _, drop := range []string{"name", "opacity", "chin_extension_ratio", "mouth_clearance_ratio", "jaw_width_scale", "upper_trim_ratio"} {
		t.Run(drop, func(t *testing.T) {
			m := `[{"id": "a", "color": "#112233"`
			for k, v := range full {
				if k != drop {
					m += fmt.Sprintf(", %q: %s", k, v)
				}
			}
			m += "}]"
			_, err := Parse([]byte(m))
			if err == nil || !strings.Contains(err.Error(), "missing "+drop) {
				t.Fatalf("Parse without %s: err = %v", drop, err)
			}
		})
	}

	if _, err := Parse([]byte(`[{"id": "x", "color": "#112233"}]`)); err == nil {
		t.Fatal("style with only id and color should fail")
	}
}

func TestParseRejectsOpacityOutOfRange(t *testing.T) {
	for _, op := range []string{"-0.1", "1.5"} {
		m := strings.Replace(entry(`"color": "#112233"`), `"opacity": 0.5`, `"opacity": `+op, 1)
		if _, err := Parse([]byte(m)); err == nil {
			t.Errorf("opacity %s accepted", op)
		}
	}
	for _, op := range []string{"0", "1"} {
		m := strings.Replace(entry(`"color": "#112233"`), `"opacity": 0.5`, `"opacity": `+op, 1)
		if _, err := Parse([]byte(m)); err != nil {
			t.Errorf("opacity %s rejected: %v", op, err)
		}
	}
}

func TestParseOptionalFields(t *testing.T) {
	c, err := Parse([]byte(entry(`"color": "#112233"`)))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	a, _ := c.ByID("a")
	if a.Description != "" || a.Texture != "" || a.JawWidthScale != 1 {
		t.Fatalf("descriptor = %+v", a)
	}
}

func TestParseDuplicateReplaces(t *testing.T) {
	const ratios = `"opacity": 1, "chin_extension_ratio": 0, "mouth_clearance_ratio": 0, "jaw_width_scale": 1, "upper_trim_ratio": 0`
	c, err := Parse([]byte(`[
		{"id": "a", "name": "first", "color": "#000000", ` + ratios + `},
		{"id": "b", "name": "b", "color": "#000000", ` + ratios + `},
		{"id": "a", "name": "second", "color": "#000000", ` + ratios + `}]`))
	if err != nil {
		t.Fatal(err)
	}
	if c.Len() != 2 || c.Styles()[0].Name != "second" {
		t.Fatalf("duplicate handling: %+v", c.Styles())
	}
}

func TestByIDNotFound(t *testing.T) {
	c, _ := Parse([]byte(`[]`))
	if _, err := c.ByID("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "styles.json")
	if err := os.WriteFile(path, []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Len() != 3 {
		t.Fatalf("Len = %d", c.Len())
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("Load of missing file should fail")
	}
}

func TestRGBA(t *testing.T) {
	d := Descriptor{Color: "#102030"}
	if got := d.RGBA(); got != (color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xff}) {
		t.Fatalf("RGBA = %v", got)
	}
	if got := (Descriptor{}).RGBA(); got != FallbackColor {
		t.Fatalf("empty colour = %v, want fallback", got)
	}
}
