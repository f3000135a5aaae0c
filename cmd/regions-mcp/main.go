package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/ironsheep/motion-regions-mcp/internal/config"
	"github.com/ironsheep/motion-regions-mcp/internal/imaging"
	"github.com/ironsheep/motion-regions-mcp/internal/sequence"
	"github.com/ironsheep/motion-regions-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version, --help and the scan subcommand
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("motion-regions-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		case "scan":
			configureLogging()
			if err := runScan(os.Args[2:]); err != nil {
				log.Fatalf("scan: %v", err)
			}
			return
		}
	}

	configureLogging()

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	if cfg.Debug() {
		log.Printf("Motion Regions MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
		log.Printf("Presets: %v, workers: %d", cfg.PresetNames(), cfg.Workers)
	}

	if Version != "dev" {
		server.Version = Version
	}
	srv := server.New(cfg)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// configureLogging sends logs to stderr; stdout is for MCP protocol and
// scan output.
func configureLogging() {
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
}

func printHelp() {
	fmt.Println("motion-regions-mcp - MCP server for motion-gated region detection")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  motion-regions-mcp [options]          Run the MCP server on stdin/stdout")
	fmt.Println("  motion-regions-mcp scan [flags] FRAME...  Analyze frames in order, print JSON")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Scan flags:")
	fmt.Println("  -config PATH     YAML config file")
	fmt.Println("  -preset NAME     Threshold preset (objects, center, motion)")
	fmt.Println("  -scale N         Analysis downscale factor")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Printf("  %s=debug    Enable debug logging\n", config.EnvLogLevel)
	fmt.Printf("  %s=PATH        YAML config file\n", config.EnvConfig)
	fmt.Printf("  %s=N          Parallel sequence workers\n", config.EnvWorkers)
	fmt.Println()
	fmt.Println("The server communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
}

// runScan analyzes the given frames as one sequence and writes the per-frame
// results to stdout.
func runScan(args []string) error {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML config file")
	preset := fs.String("preset", "", "threshold preset")
	scale := fs.Float64("scale", -1, "analysis downscale factor (default from config)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("no frames given")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	opts := sequence.Options{
		Analysis: cfg.Analysis,
		Config:   cfg.Detection,
		Resolve:  cfg.Resolve,
	}
	if *preset != "" {
		p, err := cfg.Preset(*preset)
		if err != nil {
			return err
		}
		opts.Config = p.Detection
	}
	if *scale >= 0 {
		opts.Analysis.Scale = *scale
	}
	if cfg.Debug() {
		opts.Logger = log.Default()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := sequence.Run(ctx, fs.Args(), imaging.NewImageCache(), opts)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
