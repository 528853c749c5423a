package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"overlay-compositor/internal/logging"
	"overlay-compositor/internal/style"
	"overlay-compositor/internal/texture"
)

func main() {
	assetBase := flag.String("assets", "", "Directory or URL that texture references resolve against")
	workers := flag.Int("workers", 4, "Concurrent loads")
	timeout := flag.Duration("timeout", 30*time.Second, "Give up after this long")
	verbose := flag.Bool("v", false, "Debug logging")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: texinspect [flags] styles.json")
		os.Exit(2)
	}
	if *verbose {
		logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	catalog, err := style.Load(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERR %v\n", err)
		os.Exit(1)
	}
	if err := catalog.ResolveTextures(*assetBase); err != nil {
		fmt.Fprintf(os.Stderr, "ERR %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	cache := texture.NewCache(texture.AutoLoader{})
	n, err := texture.Preload(ctx, cache, catalog.TextureRefs(), *workers)
	fmt.Printf("Textures: %d preloaded\n", n)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	errors := 0
	for _, s := range catalog.Styles() {
		if s.Texture == "" {
			fmt.Printf("--  %-16s colour %s\n", s.ID, s.Color)
			continue
		}
		tex, err := cache.Fetch(ctx, s.Texture)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERR %-16s %v\n", s.ID, err)
			errors++
			continue
		}
		w, h := tex.Size()
		fmt.Printf("OK  %-16s %dx%d  %s\n", s.ID, w, h, s.Texture)
	}
	if errors > 0 {
		fmt.Printf("\nDone with %d error(s).\n", errors)
		os.Exit(1)
	}
	fmt.Println("\nDone. All textures resolved.")
}
