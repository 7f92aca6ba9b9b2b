// Package main implements the nesgo NES emulator executable.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"nesgo/internal/app"
	"nesgo/internal/debug"
	"nesgo/internal/ppu"
	"nesgo/internal/version"
)

func main() {
	var (
		romFile    = flag.String("rom", "", "Path to NES ROM file (optional for GUI mode)")
		configFile = flag.String("config", "", "Path to configuration file")
		debugFlag  = flag.Bool("debug", false, "Enable debug mode")
		nogui      = flag.Bool("nogui", false, "Run without GUI (headless mode)")
		help       = flag.Bool("help", false, "Show help message")
		showVer    = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *help {
		printUsage()
		os.Exit(0)
	}

	if *showVer {
		printVersion()
		os.Exit(0)
	}

	setupGracefulShutdown()

	fmt.Println("nesgo - NES emulator starting...")

	configPath := *configFile
	if configPath == "" {
		configPath = app.GetDefaultConfigPath()
	}

	application, err := app.NewApplicationWithMode(configPath, *nogui)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	if *nogui {
		config := application.GetConfig()
		config.Video.Backend = "headless"
		fmt.Println("Headless mode requested")
	}
	defer func() {
		if err := application.Cleanup(); err != nil {
			log.Printf("Application cleanup error: %v", err)
		}
	}()

	if *debugFlag {
		config := application.GetConfig()
		config.UpdateDebug(true, true, true)
		application.ApplyDebugSettings()
		fmt.Println("Debug mode enabled")
	}

	if *romFile != "" {
		fmt.Printf("Loading ROM: %s\n", *romFile)
		if err := application.LoadROM(*romFile); err != nil {
			log.Fatalf("Failed to load ROM: %v", err)
		}
		fmt.Println("ROM loaded successfully")

		if *debugFlag {
			application.ApplyDebugSettings()
		}
	}

	if *nogui {
		fmt.Println("Running in headless mode...")
		if *romFile == "" {
			log.Fatal("ROM file required for headless mode")
		}
		runHeadlessMode(application)
	} else {
		fmt.Println("Starting GUI mode...")
		if err := runGUIMode(application); err != nil {
			log.Fatalf("GUI mode failed: %v", err)
		}
	}

	fmt.Println("Emulator shutting down...")
}

// runGUIMode runs the full GUI application
func runGUIMode(application *app.Application) error {
	fmt.Println("Initializing GUI application...")

	config := application.GetConfig()
	windowWidth, windowHeight := config.GetWindowResolution()
	fmt.Printf("   Window: %dx%d (Scale: %dx)\n", windowWidth, windowHeight, config.Window.Scale)
	fmt.Printf("   Audio: %s (%d Hz, %.0f%% volume)\n",
		enabledString(config.Audio.Enabled),
		config.Audio.SampleRate,
		config.Audio.Volume*100)
	fmt.Printf("   Video: %s, %s, VSync: %s\n",
		config.Video.Filter,
		config.Video.AspectRatio,
		enabledString(config.Video.VSync))

	fmt.Println("Starting main application loop...")
	if err := application.Run(); err != nil {
		return fmt.Errorf("application run failed: %v", err)
	}

	fmt.Printf("Session statistics:\n")
	fmt.Printf("   Frames rendered: %d\n", application.GetFrameCount())
	fmt.Printf("   Session time: %v\n", application.GetUptime())
	fmt.Printf("   Average FPS: %.1f\n", application.GetFPS())

	return nil
}

// runHeadlessMode drives the bus directly for a fixed number of frames,
// dumping frame buffers and an off-palette audit at a few checkpoints. This
// is the automation path used for scripted ROM smoke-testing.
func runHeadlessMode(application *app.Application) {
	fmt.Println("Running emulator in headless mode (120 frames, ~2 seconds NES time)...")

	bus := application.GetBus()
	if bus == nil {
		fmt.Println("bus not initialized")
		return
	}

	dumper := debug.NewFrameDumper("./dumps")
	dumper.Enable()
	palette := ppu.Palette()

	const targetFrames = 120
	const cyclesPerFrame = 29780
	checkpoints := map[int]bool{30: true, 60: true, 119: true}

	for frame := 0; frame < targetFrames; frame++ {
		for cycles := uint64(0); cycles < cyclesPerFrame; {
			cycles += bus.Step()
		}

		if checkpoints[frame] {
			fmt.Printf("Dumping frame %d...\n", frame+1)
			fb := bus.FrameBuffer()
			if err := saveFrameBufferAsPPM(fb, fmt.Sprintf("frame_%03d.ppm", frame+1)); err != nil {
				fmt.Printf("failed to save frame %d: %v\n", frame+1, err)
			}
			analyzeFrameBuffer(fb, frame+1)
			if err := dumper.DumpUnexpectedColors(fb, uint64(frame+1), palette); err != nil {
				fmt.Printf("failed to audit frame %d: %v\n", frame+1, err)
			}
		}

		if frame%30 == 29 {
			fmt.Printf("%d/%d frames complete\n", frame+1, targetFrames)
		}
	}

	fmt.Println("Headless mode complete")
	fmt.Println("Generated files:")
	fmt.Println("   - frame_031.ppm, frame_061.ppm, frame_120.ppm (screenshots)")
	fmt.Println("   - ./dumps/unexpected_colors_*.txt (off-palette pixel audit)")
}

// saveFrameBufferAsPPM saves the frame buffer as a PPM image file
func saveFrameBufferAsPPM(frameBuffer [256 * 240]uint32, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create %s: %v", filename, err)
	}
	defer file.Close()

	fmt.Fprintf(file, "P3\n256 240\n255\n")

	for y := 0; y < 240; y++ {
		for x := 0; x < 256; x++ {
			pixel := frameBuffer[y*256+x]
			r := (pixel >> 16) & 0xFF
			g := (pixel >> 8) & 0xFF
			b := pixel & 0xFF
			fmt.Fprintf(file, "%d %d %d ", r, g, b)
		}
		fmt.Fprintf(file, "\n")
	}

	fmt.Printf("%s written\n", filename)
	return nil
}

// analyzeFrameBuffer prints a quick color-frequency summary for a frame
func analyzeFrameBuffer(frameBuffer [256 * 240]uint32, frame int) {
	colorCounts := make(map[uint32]int)
	for _, pixel := range frameBuffer {
		colorCounts[pixel]++
	}

	nonBlackPixels := 0
	for color, count := range colorCounts {
		if color != 0x000000 {
			nonBlackPixels += count
		}
	}

	fmt.Printf("   frame %d: %d distinct colors, %d non-black pixels (%.1f%%)\n",
		frame, len(colorCounts), nonBlackPixels,
		float64(nonBlackPixels)/float64(256*240)*100)
}

// setupGracefulShutdown sets up signal handling for graceful shutdown
func setupGracefulShutdown() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Println("\nInterrupt received, shutting down gracefully...")
		os.Exit(0)
	}()
}

// enabledString returns "enabled" or "disabled" based on boolean value
func enabledString(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

func printVersion() {
	version.PrintBuildInfo()
}

func printUsage() {
	fmt.Println("nesgo - NES emulator")
	fmt.Println()
	fmt.Println("DESCRIPTION:")
	fmt.Println("  A cycle-accurate NES (Nintendo Entertainment System) emulator written in Go.")
	fmt.Println("  Emulates the 2A03 CPU, 2C02 PPU, and 2A03 APU over an Ebitengine-backed")
	fmt.Println("  display, with a headless mode for scripted ROM testing.")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  nesgo [options]                    # Start GUI mode without ROM")
	fmt.Println("  nesgo -rom <file> [options]        # Start with ROM loaded")
	fmt.Println("  nesgo -nogui -rom <file> [options] # Run headless mode")
	fmt.Println()
	fmt.Println("OPTIONS:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  nesgo                              # Start GUI with no ROM (ROMs load only via -rom)")
	fmt.Println("  nesgo -rom game.nes                # Start with ROM loaded")
	fmt.Println("  nesgo -rom game.nes -debug         # Start with debug info enabled")
	fmt.Println("  nesgo -config custom.json          # Use custom configuration")
	fmt.Println("  nesgo -nogui -rom test.nes         # Run headless for testing")
	fmt.Println()
	fmt.Println("CONTROLS (Default):")
	fmt.Println("  Player 1:")
	fmt.Println("    Arrow Keys / WASD - D-Pad")
	fmt.Println("    J                 - A Button")
	fmt.Println("    K                 - B Button")
	fmt.Println("    Enter             - Start")
	fmt.Println("    Space             - Select")
	fmt.Println()
	fmt.Println("  Special Keys:")
	fmt.Println("    Escape (2x)       - Quit (double-tap within 3 seconds)")
	fmt.Println()
	fmt.Println("CONFIGURATION:")
	fmt.Println("  Config file: ./config/gones.json")
	fmt.Println("  ROMs:        ./roms/")
	fmt.Println("  Save data:   ./saves/ (battery-backed cartridge RAM)")
	fmt.Println("  Screenshots: ./screenshots/")
	fmt.Println()
	fmt.Println("SUPPORTED FORMATS:")
	fmt.Println("  - iNES (.nes)")
	fmt.Println("  - NROM (Mapper 0)")
	fmt.Println()
	fmt.Println("For more information, visit the project documentation.")
}
