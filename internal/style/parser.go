// Package style loads the overlay style catalog.
package style

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNotFound is returned by Catalog.ByID for an unknown style id.
var ErrNotFound = errors.New("style: not found")

// jsonStyle matches one entry of the style manifest. Pointer fields are
// required; description and texture are optional.
type jsonStyle struct {
	ID                  string          `json:"id"`
	Name                *string         `json:"name"`
	Description         string          `json:"description"`
	Color               json.RawMessage `json:"color"`
	Opacity             *float64        `json:"opacity"`
	Texture             string          `json:"texture"`
	ChinExtensionRatio  *float64        `json:"chin_extension_ratio"`
	MouthClearanceRatio *float64        `json:"mouth_clearance_ratio"`
	JawWidthScale       *float64        `json:"jaw_width_scale"`
	UpperTrimRatio      *float64        `json:"upper_trim_ratio"`
}

// missing returns the JSON name of the first required field left out.
func (e jsonStyle) missing() string {
	switch {
	case e.Name == nil:
		return "name"
	case e.Opacity == nil:
		return "opacity"
	case e.ChinExtensionRatio == nil:
		return "chin_extension_ratio"
	case e.MouthClearanceRatio == nil:
		return "mouth_clearance_ratio"
	case e.JawWidthScale == nil:
		return "jaw_width_scale"
	case e.UpperTrimRatio == nil:
		return "upper_trim_ratio"
	}
	return ""
}

// Catalog is an ordered set of descriptors indexed by id.
type Catalog struct {
	styles []Descriptor
	byID   map[string]int
}

// Load reads a JSON style manifest.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("style: read %s: %w", path, err)
	}
	c, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("style: parse %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a manifest: a JSON array of styles. A later entry with a
// duplicate id replaces the earlier one in place.
func Parse(raw []byte) (*Catalog, error) {
	var entries []jsonStyle
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}

	c := &Catalog{byID: make(map[string]int, len(entries))}
	for i, e := range entries {
		if e.ID == "" {
			return nil, fmt.Errorf("entry %d: missing id", i)
		}
		if f := e.missing(); f != "" {
			return nil, fmt.Errorf("style %s: missing %s", e.ID, f)
		}
		if op := *e.Opacity; !(op >= 0 && op <= 1) {
			return nil, fmt.Errorf("style %s: opacity %v outside [0, 1]", e.ID, op)
		}
		col, err := coerceColor(e.Color)
		if err != nil {
			return nil, fmt.Errorf("style %s: %w", e.ID, err)
		}
		d := Descriptor{
			ID:                  e.ID,
			Name:                *e.Name,
			Description:         e.Description,
			Color:               col,
			Opacity:             *e.Opacity,
			Texture:             e.Texture,
			JawWidthScale:       *e.JawWidthScale,
			ChinExtensionRatio:  *e.ChinExtensionRatio,
			MouthClearanceRatio: *e.MouthClearanceRatio,
			UpperTrimRatio:      *e.UpperTrimRatio,
		}
		if j, dup := c.byID[d.ID]; dup {
			c.styles[j] = d
			continue
		}
		c.byID[d.ID] = len(c.styles)
		c.styles = append(c.styles, d)
	}
	return c, nil
}

// coerceColor accepts "#rrggbb", "rrggbb" or [r, g, b] and returns "#rrggbb".
func coerceColor(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", errors.New("missing color")
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		hex := strings.TrimPrefix(s, "#")
		if len(hex) != 6 {
			return "", fmt.Errorf("color %q is not a 6-digit hex string", s)
		}
		if _, ok := parseHex(hex); !ok {
			return "", fmt.Errorf("color %q is not a 6-digit hex string", s)
		}
		return "#" + strings.ToLower(hex), nil
	}

	var rgb []int
	if err := json.Unmarshal(raw, &rgb); err != nil || len(rgb) != 3 {
		return "", fmt.Errorf("color %s is neither a hex string nor [r, g, b]", raw)
	}
	for _, v := range rgb {
		if v < 0 || v > 255 {
			return "", fmt.Errorf("color component %d out of range", v)
		}
	}
	return fmt.Sprintf("#%02x%02x%02x", rgb[0], rgb[1], rgb[2]), nil
}

// Styles returns the descriptors in manifest order.
func (c *Catalog) Styles() []Descriptor {
	out := make([]Descriptor, len(c.styles))
	copy(out, c.styles)
	return out
}

// Len returns the number of styles.
func (c *Catalog) Len() int {
	return len(c.styles)
}

// ByID returns the style with the given id.
func (c *Catalog) ByID(id string) (Descriptor, error) {
	i, ok := c.byID[id]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return c.styles[i], nil
}

// TextureRefs returns the distinct non-empty texture references in order.
func (c *Catalog) TextureRefs() []string {
	seen := make(map[string]bool)
	var refs []string
	for _, d := range c.styles {
		if d.Texture == "" || seen[d.Texture] {
			continue
		}
		seen[d.Texture] = true
		refs = append(refs, d.Texture)
	}
	return refs
}
