package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/ironsheep/answer-sheet-roi/internal/config"
	"github.com/ironsheep/answer-sheet-roi/internal/ocr"
	"github.com/ironsheep/answer-sheet-roi/internal/pipeline"
	"github.com/ironsheep/answer-sheet-roi/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func printUsage(flags *pflag.FlagSet) {
	fmt.Println("sheet-roi - locate roll-number and name boxes on scanned answer sheets")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  sheet-roi [run] [options]   Process every image in the input directory")
	fmt.Println("  sheet-roi serve [options]   Serve the pipeline as MCP tools over stdin/stdout")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Print(flags.FlagUsages())
	fmt.Println("  --version, -v             Print version information")
	fmt.Println("  --help, -h                Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  SHEET_ROI_<KEY>=value      Override any config key (SHEET_ROI_OUTPUT_CSV for output.csv)")
	fmt.Println("  SHEET_ROI_LOG_LEVEL=debug  Enable debug logging")
	fmt.Println()
	fmt.Println("A .env file in the working directory is loaded first if present.")
}

func run(args []string) int {
	flags := pflag.NewFlagSet("sheet-roi", pflag.ContinueOnError)
	flags.SortFlags = false
	config.RegisterFlags(flags)

	if len(args) > 0 {
		switch args[0] {
		case "--version", "-v", "version":
			fmt.Printf("sheet-roi %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return 0
		case "--help", "-h", "help":
			printUsage(flags)
			return 0
		}
	}

	mode := "run"
	if len(args) > 0 && (args[0] == "run" || args[0] == "serve") {
		mode = args[0]
		args = args[1:]
	}

	// Configure logging to stderr (stdout is for results and the MCP protocol)
	logger := log.New(os.Stderr, "", log.Ldate|log.Ltime|log.Lshortfile)

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Printf("Warning: failed to load .env: %v", err)
	}

	flags.Usage = func() { printUsage(flags) }
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration: %v\n", err)
		return 1
	}
	opts, err := cfg.PipelineOptions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration: %v\n", err)
		return 1
	}

	if cfg.Debug {
		logger.Printf("sheet-roi v%s (built %s, commit %s) mode=%s", Version, BuildTime, GitCommit, mode)
		if cfg.File != "" {
			logger.Printf("config file: %s", cfg.File)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var engine ocr.Engine
	tess, err := ocr.NewTesseract(cfg.OCROptions())
	if err != nil {
		if mode == "run" {
			fmt.Fprintf(os.Stderr, "Error: failed to start OCR engine: %v\n", err)
			fmt.Fprintln(os.Stderr, "Check that tesseract is installed and that --lang/--tessdata point at an installed language.")
			return 1
		}
		logger.Printf("Warning: OCR engine unavailable, only geometry tools will work: %v", err)
	} else {
		engine = tess
		defer tess.Close()
		if cfg.Debug {
			logger.Printf("OCR engine: tesseract %s", tess.Version())
		}
	}

	if mode == "serve" {
		srv := server.New(opts, engine, cfg.OCROptions(), logger)
		srv.SetVersion(Version)
		if err := srv.Run(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			logger.Printf("Server error: %v", err)
			return 1
		}
		return 0
	}

	p := pipeline.New(opts, engine, logger)
	p.SetDebug(cfg.Debug)

	summary, err := p.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, pipeline.ErrInputNotFound) {
			fmt.Fprintf(os.Stderr, "Input directory %q could not be read; set --input or input.dir.\n", opts.InputDir)
		}
		return 1
	}

	if len(summary.Skipped) > 0 {
		logger.Printf("%d of %d images were skipped", len(summary.Skipped), summary.ImagesFound)
	}
	fmt.Printf("Processed images saved in '%s' and coordinates saved in '%s'.\n", summary.OutputDir, summary.CSVPath)
	return 0
}
