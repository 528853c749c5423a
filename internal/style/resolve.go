package style

import (
	"fmt"
	"net/url"
	"path/filepath"
)

// ResolveRef resolves a texture reference against base, which is either an
// http(s) URL or a directory. Absolute references are returned unchanged.
func ResolveRef(base, ref string) (string, error) {
	if ref == "" {
		return "", nil
	}
	if u, err := url.Parse(ref); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		return ref, nil
	}

	if b, err := url.Parse(base); err == nil && (b.Scheme == "http" || b.Scheme == "https") {
		r, err := url.Parse(ref)
		if err != nil {
			return "", fmt.Errorf("style: texture ref %q: %w", ref, err)
		}
		return b.ResolveReference(r).String(), nil
	}

	if filepath.IsAbs(ref) || base == "" {
		return ref, nil
	}
	return filepath.Join(base, filepath.FromSlash(ref)), nil
}

// ResolveTextures rewrites every texture reference in the catalog against
// base.
func (c *Catalog) ResolveTextures(base string) error {
	for i := range c.styles {
		ref, err := ResolveRef(base, c.styles[i].Texture)
		if err != nil {
			return fmt.Errorf("style %s: %w", c.styles[i].ID, err)
		}
		c.styles[i].Texture = ref
	}
	return nil
}
