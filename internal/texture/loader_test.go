package texture

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	img.SetNRGBA(0, 0, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDecodeSniffsWithoutExtension(t *testing.T) {
	img, err := Decode(bytes.NewReader(pngBytes(t, 4, 3)), "")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 3 {
		t.Fatalf("bounds = %v", b)
	}
	if got := img.NRGBAAt(0, 0); got.R != 200 || got.A != 255 {
		t.Fatalf("pixel = %v", got)
	}
}

func TestDecodeUnknownFormat(t *testing.T) {
	if _, err := Decode(strings.NewReader("not an image"), ""); err == nil {
		t.Fatal("expected error")
	}
}

func TestFileLoader(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "beards"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "beards", "full.png"), pngBytes(t, 8, 16), 0o644); err != nil {
		t.Fatal(err)
	}

	l := FileLoader{Root: dir}
	img, err := l.Load(context.Background(), "beards/full.png")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if img.Bounds().Dy() != 16 {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	if _, err := l.Load(context.Background(), "beards/missing.png"); err == nil {
		t.Fatal("missing file should fail")
	}
}

func TestHTTPLoaderAndAutoLoader(t *testing.T) {
	body := pngBytes(t, 10, 5)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/assets/full.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(body)
	}))
	defer srv.Close()

	l := AutoLoader{HTTP: HTTPLoader{Client: srv.Client()}}
	img, err := l.Load(context.Background(), srv.URL+"/assets/full.png")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if img.Bounds().Dx() != 10 {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	if _, err := l.Load(context.Background(), srv.URL+"/assets/missing.png"); err == nil {
		t.Fatal("404 should fail")
	}
}

func TestPreload(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.png", "b.png"} {
		if err := os.WriteFile(filepath.Join(dir, name), pngBytes(t, 2, 2), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	c := NewCache(FileLoader{Root: dir})

	n, err := Preload(context.Background(), c, []string{"a.png", "b.png", "missing.png"}, 2)
	if n != 2 {
		t.Fatalf("loaded = %d, want 2", n)
	}
	if err == nil || !strings.Contains(err.Error(), "missing.png") {
		t.Fatalf("err = %v, want failure for missing.png", err)
	}
	if c.State("a.png") != Resolved || c.State("missing.png") != Failed {
		t.Fatalf("states: a=%v missing=%v", c.State("a.png"), c.State("missing.png"))
	}
}
