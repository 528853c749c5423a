package texture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/webp"
)

// maxAssetBytes bounds a single texture download or file read.
const maxAssetBytes = 32 << 20

// Loader fetches and decodes the texture behind a reference.
type Loader interface {
	Load(ctx context.Context, ref string) (*image.NRGBA, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, ref string) (*image.NRGBA, error)

func (f LoaderFunc) Load(ctx context.Context, ref string) (*image.NRGBA, error) {
	return f(ctx, ref)
}

// FileLoader reads textures from disk. Relative references are joined to Root.
type FileLoader struct {
	Root string
}

func (l FileLoader) Load(_ context.Context, ref string) (*image.NRGBA, error) {
	p := filepath.FromSlash(ref)
	if l.Root != "" && !filepath.IsAbs(p) {
		p = filepath.Join(l.Root, p)
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("texture: read %s: %w", p, err)
	}
	defer f.Close()

	img, err := Decode(io.LimitReader(f, maxAssetBytes), filepath.Ext(p))
	if err != nil {
		return nil, fmt.Errorf("texture: decode %s: %w", p, err)
	}
	return img, nil
}

// HTTPLoader downloads textures over http(s).
type HTTPLoader struct {
	Client *http.Client
}

func (l HTTPLoader) Load(ctx context.Context, ref string) (*image.NRGBA, error) {
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("texture: request %s: %w", ref, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("texture: get %s: %w", ref, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("texture: get %s: status %d", ref, resp.StatusCode)
	}

	ext := ""
	if u, err := url.Parse(ref); err == nil {
		ext = path.Ext(u.Path)
	}
	img, err := Decode(io.LimitReader(resp.Body, maxAssetBytes), ext)
	if err != nil {
		return nil, fmt.Errorf("texture: decode %s: %w", ref, err)
	}
	return img, nil
}

// AutoLoader sends http(s) references to HTTP and everything else to File.
type AutoLoader struct {
	HTTP HTTPLoader
	File FileLoader
}

func (l AutoLoader) Load(ctx context.Context, ref string) (*image.NRGBA, error) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return l.HTTP.Load(ctx, ref)
	}
	return l.File.Load(ctx, ref)
}

// Decode decodes an image, choosing the codec from ext when it is known.
// TGA has no magic number, so it is only decoded when ext says so.
func Decode(r io.Reader, ext string) (*image.NRGBA, error) {
	var (
		img image.Image
		err error
	)
	switch strings.ToLower(ext) {
	case ".png":
		img, err = png.Decode(r)
	case ".jpg", ".jpeg":
		img, err = jpeg.Decode(r)
	case ".webp":
		img, err = webp.Decode(r)
	case ".tga":
		img, err = tga.Decode(r)
	default:
		var data []byte
		data, err = io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		img, err = sniff(data)
	}
	if err != nil {
		return nil, err
	}
	return toNRGBA(img), nil
}

func sniff(data []byte) (image.Image, error) {
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG")):
		return png.Decode(bytes.NewReader(data))
	case bytes.HasPrefix(data, []byte("\xff\xd8")):
		return jpeg.Decode(bytes.NewReader(data))
	case len(data) >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return webp.Decode(bytes.NewReader(data))
	}
	return nil, image.ErrFormat
}

// toNRGBA converts any image to NRGBA with bounds starting at the origin.
func toNRGBA(src image.Image) *image.NRGBA {
	b := src.Bounds()
	if n, ok := src.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
