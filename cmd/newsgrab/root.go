package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/use-agent/newsgrab/config"
)

var (
	cfg *config.Config

	// Global flags; each overrides its environment variable when set.
	outputDir   string
	cookieFile  string
	titlePolicy string
	headless    bool
	controlURL  string
	logLevel    string
	logFormat   string
)

var rootCmd = &cobra.Command{
	Use:   "newsgrab",
	Short: "Capture authenticated news articles with their photos",
	Long: `newsgrab drives a headless browser through a logged-in news site session,
saves each article's content container, source URL, publication date and
embedded photo under output/<title>/, and codes the saved articles with an LLM.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		applyFlags(cmd, cfg)
		initLogger(cfg.Log)
		return nil
	},
}

// Execute runs the root command. SIGINT and SIGTERM cancel its context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&outputDir, "output", "o", "output", "directory holding one folder per article")
	pf.StringVar(&cookieFile, "cookie-file", "cookie", "file containing the raw Cookie header")
	pf.StringVar(&titlePolicy, "title-policy", "sanitize", `how unsafe titles are handled: "sanitize" or "reject"`)
	pf.BoolVar(&headless, "headless", true, "run the browser headless")
	pf.StringVar(&controlURL, "control-url", "", "attach to a running browser instead of launching one")
	pf.StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	pf.StringVar(&logFormat, "log-format", "text", "text or json")
}

// applyFlags copies explicitly set flags over the environment config.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Store.OutputDir = outputDir
	}
	if flags.Changed("cookie-file") {
		cfg.Input.CookieFile = cookieFile
	}
	if flags.Changed("title-policy") {
		cfg.Store.TitlePolicy = titlePolicy
	}
	if flags.Changed("headless") {
		cfg.Browser.Headless = headless
	}
	if flags.Changed("control-url") {
		cfg.Browser.ControlURL = controlURL
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = logFormat
	}
}

// initLogger configures slog based on the LogConfig. Logs go to stderr so
// command output on stdout stays clean.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}
