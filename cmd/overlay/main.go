package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"overlay-compositor/internal/compositor"
	"overlay-compositor/internal/config"
	"overlay-compositor/internal/logging"
	"overlay-compositor/internal/raster"
	"overlay-compositor/internal/replay"
	"overlay-compositor/internal/snapshot"
	"overlay-compositor/internal/style"
	"overlay-compositor/internal/texture"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config JSON file")
	stylesPath := flag.String("styles", "", "Path to the style catalog JSON")
	assetBase := flag.String("assets", "", "Directory or URL that texture references resolve against")
	recording := flag.String("recording", "", "Path to a landmark recording JSON")
	frameImage := flag.String("frame", "", "Still image used as the source frame (default: flat grey)")
	outputDir := flag.String("output", "", "Snapshot output directory (default: overlay-frames)")
	styleID := flag.String("style", "", "Style id to apply (default: first in catalog)")
	fit := flag.String("fit", "", "Viewport fit: contain or cover")
	duration := flag.Duration("duration", 0, "Stop after this long (default: length of the recording)")
	workers := flag.Int("workers", 0, "Texture preload and snapshot workers (default: NumCPU)")
	preload := flag.Bool("preload", false, "Load every catalog texture before starting")
	verbose := flag.Bool("v", false, "Debug logging")

	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fatalf("Error loading config: %v", err)
		}
	}

	// CLI flags override config file
	if err := cfg.Resolve(config.Flags{
		StylesPath: *stylesPath,
		AssetBase:  *assetBase,
		Recording:  *recording,
		FrameImage: *frameImage,
		OutputDir:  *outputDir,
		Fit:        *fit,
		Duration:   *duration,
		Workers:    *workers,
	}); err != nil {
		fatalf("Error: %v", err)
	}
	if cfg.StylesPath == "" || cfg.Recording == "" {
		fatalf("Error: -styles and -recording (or their config fields) are required.")
	}

	catalog, err := style.Load(cfg.StylesPath)
	if err != nil {
		fatalf("Error loading styles: %v", err)
	}
	if err := catalog.ResolveTextures(cfg.AssetBase); err != nil {
		fatalf("Error resolving textures: %v", err)
	}
	if catalog.Len() == 0 {
		fmt.Println("No styles in catalog.")
		os.Exit(0)
	}

	selected := catalog.Styles()[0]
	if *styleID != "" {
		selected, err = catalog.ByID(*styleID)
		if err != nil {
			fatalf("Error: %v", err)
		}
	}

	rec, err := replay.LoadRecording(cfg.Recording)
	if err != nil {
		fatalf("Error loading recording: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cache := texture.NewCache(texture.AutoLoader{})
	if *preload {
		n, err := texture.Preload(ctx, cache, catalog.TextureRefs(), cfg.Workers)
		fmt.Printf("Textures: %d preloaded\n", n)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	source := replay.NewStillSource(nil, rec.FrameWidth, rec.FrameHeight, rec.FPS)
	if cfg.FrameImage != "" {
		img, err := replay.LoadFrame(cfg.FrameImage)
		if err != nil {
			fatalf("Error loading frame: %v", err)
		}
		source = replay.NewStillSource(img, rec.FrameWidth, rec.FrameHeight, rec.FPS)
	}

	writer, err := snapshot.NewWriter(cfg.OutputDir, cfg.SnapshotWidth, cfg.Workers)
	if err != nil {
		fatalf("Error: %v", err)
	}

	canvas := raster.NewCanvas(int(cfg.ContainerWidth), int(cfg.ContainerHeight))
	every := uint64(cfg.SnapshotEvery)

	comp, err := compositor.New(compositor.Options{
		Source:        source,
		Detector:      replay.Detector{Rec: rec},
		Surface:       canvas,
		Textures:      cache,
		Container:     compositor.FixedContainer(cfg.ContainerWidth, cfg.ContainerHeight),
		Fit:           cfg.FitMode(),
		StaleAfter:    cfg.StaleAfter(),
		ShowLandmarks: *cfg.ShowLandmarks,
		DrawFrame:     *cfg.DrawFrame,
		OnStatus: func(s compositor.Status) {
			fmt.Printf("[%s] %s\n", s.Variant, s.Text)
		},
		OnTick: func(st compositor.DebugState) {
			if st.Tick%every != 0 {
				return
			}
			writer.Write(st.Tick, canvas.Snapshot(), snapshot.Meta{
				Style:      st.StyleID,
				Visible:    st.Visible,
				Stale:      st.Stale,
				TextureRef: st.TextureRef,
				Opacity:    st.Opacity,
			})
		},
	})
	if err != nil {
		fatalf("Error: %v", err)
	}
	comp.Select(&selected)

	runFor := cfg.Duration()
	if runFor <= 0 {
		runFor = rec.Duration() + time.Second/time.Duration(max(1, int(rec.FPS)))
	}
	runCtx, cancel := context.WithTimeout(ctx, runFor)
	defer cancel()

	// Print summary
	fmt.Printf("Overlay compositor: style %q, %d styles\n", selected.ID, catalog.Len())
	fmt.Printf("Recording: %d samples, %dx%d @ %.0f fps, %v\n",
		len(rec.Samples), rec.FrameWidth, rec.FrameHeight, rec.FPS, rec.Duration())
	fmt.Printf("Container: %.0fx%.0f (%s), tick %d Hz\n",
		cfg.ContainerWidth, cfg.ContainerHeight, cfg.Fit, cfg.TickRate)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()
	if err := comp.Run(runCtx, cfg.TickRate); err != nil {
		fatalf("Error: %v", err)
	}
	closeErr := writer.Close()

	st := comp.Debug()
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", time.Since(start).Seconds())
	fmt.Printf("Ticks: %d, draws: %d, detections: %d, snapshots: %d (dropped %d)\n",
		st.Tick, canvas.Frames(), st.Detections, len(writer.Entries()), writer.Dropped())
	if st.HasTexture {
		fmt.Printf("Texture: %s\n", st.TextureRef)
	} else if selected.Texture != "" {
		fmt.Printf("Texture: %s (%s)\n", selected.Texture, cache.State(selected.Texture))
	}
	if closeErr != nil {
		fmt.Fprintf(os.Stderr, "Snapshot errors: %v\n", closeErr)
		os.Exit(1)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
