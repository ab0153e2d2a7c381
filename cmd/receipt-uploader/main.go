package main

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/zombor/receipt-uploader/internal/extraction"
	"github.com/zombor/receipt-uploader/internal/intake"
	"github.com/zombor/receipt-uploader/internal/risk"
	"github.com/zombor/receipt-uploader/internal/web"
	"github.com/zombor/receipt-uploader/internal/workflow"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	// A missing .env is fine, flags and the environment still apply
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	flags := ff.NewFlagSet("receipt-uploader")
	var (
		port          = flags.IntLong("port", 8080, "HTTP server port")
		dbPath        = flags.StringLong("db", "receipt-uploader.db", "Risk report database file path")
		extractorType = flags.StringLong("extractor", "remote", "Extractor type: 'remote', 'gemini' or 'ollama'")
		apiURL        = flags.StringLong("api-url", extraction.DefaultEndpoint, "Extraction API endpoint (or set APP_API_URL env var)")
		apiTimeout    = flags.DurationLong("api-timeout", 0, "Extraction API request timeout (0 for none)")
		geminiKey     = flags.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel   = flags.StringLong("gemini-model", "gemini-2.5-pro", "Google Gemini model name")
		ollamaURL     = flags.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel   = flags.StringLong("ollama-model", "llava", "Ollama model name (e.g., llava, llava-phi3, bakllava, qwen2-vl)")
		maxFileSize   = flags.IntLong("max-file-size", intake.DefaultMaxFileSize, "Maximum receipt file size in bytes")
		allowedExt    = flags.StringLong("allowed-ext", strings.Join(intake.DefaultAllowedExtensions, ","), "Comma separated list of accepted file extensions")
		authUser      = flags.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass      = flags.StringLong("auth-pass", "", "Basic auth password (optional)")
		showVersion   = flags.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(flags, os.Args[1:],
		ff.WithEnvVarPrefix("RECEIPT_UPLOADER"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(flags))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Initialize database
	slog.Info("Initializing database...")
	db, err := risk.NewBoltDB(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize extractor based on type
	var extractor extraction.Extractor
	switch *extractorType {
	case "remote":
		endpoint := *apiURL
		if endpoint == extraction.DefaultEndpoint {
			if legacy := os.Getenv("APP_API_URL"); legacy != "" {
				endpoint = legacy
			}
		}
		slog.Info("Using extraction API", "url", endpoint, "timeout", *apiTimeout)
		extractor = extraction.NewClient(endpoint, *apiTimeout)
	case "gemini":
		// Get Gemini API key from flag or environment
		apiKey := *geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			slog.Error("Gemini API key is required. Set --gemini-key flag or GEMINI_API_KEY environment variable")
			os.Exit(1)
		}
		slog.Info("Initializing Gemini extractor...", "model", *geminiModel)
		extractor, err = extraction.NewGemini(apiKey, *geminiModel)
		if err != nil {
			slog.Error("Failed to initialize Gemini", "error", err)
			os.Exit(1)
		}
	case "ollama":
		slog.Info("Initializing Ollama extractor...", "url", *ollamaURL, "model", *ollamaModel)
		extractor = extraction.NewOllama(*ollamaURL, *ollamaModel)
	default:
		slog.Error("Invalid extractor type", "type", *extractorType, "valid", "remote, gemini or ollama")
		os.Exit(1)
	}
	defer extractor.Close()

	validator := intake.NewValidator(strings.Split(*allowedExt, ","), int64(*maxFileSize))
	recorder := risk.NewRecorder(db)

	// Each browser session gets its own workflow
	sessions := web.NewSessions(func() *workflow.Controller {
		return workflow.New(extractor, recorder, validator)
	})

	// Initialize server
	basicAuth := web.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	}
	server := web.NewServer(sessions, recorder, basicAuth)

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr), "version", version)
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}
