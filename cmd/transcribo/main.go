package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/transcribo/internal/common"
	"github.com/ternarybob/transcribo/internal/services/conversion"
	"github.com/ternarybob/transcribo/internal/services/images"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	// Command-line flags
	configFiles  configPaths // Multiple -config flags supported
	pdfPath      = flag.String("pdf", "", "Path to the PDF document to convert (required)")
	reportDir    = flag.String("out", "", "Report output directory (default: {reports_dir}/{pdf name})")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")

	// Global state
	config *common.Config
	logger arbor.ILogger
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("Transcribo version %s\n", common.GetVersion())
		os.Exit(0)
	}

	if *pdfPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: transcribo -pdf <document.pdf> [-out <report dir>] [-config <transcribo.toml>]")
		os.Exit(2)
	}

	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, err := os.Stat("transcribo.toml"); err == nil {
			configFiles = append(configFiles, "transcribo.toml")
		}
	}

	// Startup sequence: load config, initialize logger, print banner
	var err error
	config, err = common.LoadFromFiles(configFiles...)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	logger = common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	if err := config.EnsureDirectories(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize data directories")
	}

	logger.Info().
		Strs("config_files", configFiles).
		Str("model", config.Gemini.Model).
		Str("reports_dir", config.Storage.ReportsDir).
		Msg("Application configuration loaded")

	// Default report directory: {reports_dir}/{pdf stem}
	outDir := *reportDir
	if outDir == "" {
		stem := strings.TrimSuffix(filepath.Base(*pdfPath), filepath.Ext(*pdfPath))
		outDir = filepath.Join(config.Storage.ReportsDir, stem)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := conversion.NewGeminiBackend(ctx, &config.Gemini, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize conversion backend")
	}

	client := conversion.NewClient(backend, conversion.NewRetryConfig(&config.Conversion), logger)
	extractor := images.NewExtractor(logger)
	reconciler := images.NewReconciler(logger)
	service := conversion.NewService(client, extractor, reconciler, logger)

	result, err := service.Process(ctx, *pdfPath, outDir)
	if err != nil {
		logger.Fatal().Err(err).Str("pdf", *pdfPath).Msg("Conversion pipeline failed")
	}

	fmt.Printf("Report:  %s\n", filepath.Join(outDir, "report.md"))
	fmt.Printf("Figures: %d reported, %d images extracted\n", len(result.Manifest.Figures), len(result.ExtractedImages))
	for _, asset := range result.ExtractedImages {
		caption := asset.Caption
		if caption == "" {
			caption = "(no caption)"
		}
		fmt.Printf("  page %d image %d: %s  %s\n", asset.PageNumber, asset.Index, filepath.Base(asset.StoredPath), caption)
	}
}
