package main

import (
	"fmt"
	"os"

	"github.com/ironsheep/canvas-history-mcp/internal/config"
	"github.com/ironsheep/canvas-history-mcp/internal/document"
	"github.com/ironsheep/canvas-history-mcp/internal/logger"
	"github.com/ironsheep/canvas-history-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const defaultConfigPath = "canvas-mcp.yaml"

func main() {
	configPath := os.Getenv("CANVAS_MCP_CONFIG")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version", "-v", "version":
			fmt.Printf("canvas-history-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		case "--config", "-c":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "--config requires a file path")
				os.Exit(2)
			}
			i++
			configPath = args[i]
		default:
			fmt.Fprintf(os.Stderr, "unknown argument: %s\n", args[i])
			os.Exit(2)
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the MCP protocol, so the logger must never write there.
	if cfg.Logger.Output == "stdout" {
		cfg.Logger.Output = "stderr"
	}
	log, closeLog, err := logger.New(cfg.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	opts, err := document.OptionsFromConfig(cfg, log)
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log.Info("canvas MCP server starting",
		"version", Version,
		"built", BuildTime,
		"commit", GitCommit,
		"config", configPath,
	)

	srv := server.New(opts, log)
	if err := srv.Run(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("canvas-history-mcp - MCP server for editing images with undo history")
	fmt.Println()
	fmt.Println("Usage: canvas-mcp [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --config, -c PATH  YAML configuration file (default: canvas-mcp.yaml)")
	fmt.Println("  --version, -v      Print version information")
	fmt.Println("  --help, -h         Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  CANVAS_MCP_CONFIG=PATH              Configuration file")
	fmt.Println("  CANVAS_MCP_LOG_LEVEL=debug          Log level (debug, info, warn, error)")
	fmt.Println("  CANVAS_MCP_LOG_FORMAT=json          Log format (text, json)")
	fmt.Println("  CANVAS_MCP_LOG_OUTPUT=PATH          Log destination (stderr or a file)")
	fmt.Println("  CANVAS_MCP_CHECKPOINT_INTERVAL=N    Operations between replay checkpoints")
	fmt.Println("  CANVAS_MCP_MAX_CHECKPOINTS=N        Checkpoints kept per document")
	fmt.Println("  CANVAS_MCP_MAX_SNAPSHOTS=N          Snapshots kept per document")
	fmt.Println("  CANVAS_MCP_BACKGROUND=#RRGGBB       Background color of new canvases")
	fmt.Println("  CANVAS_MCP_SELECTION_POLICY=NAME    Fill left behind by cut selections")
	fmt.Println()
	fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
}
