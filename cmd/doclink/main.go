// cmd/doclink/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/julianshen/doclink/internal/cache"
	"github.com/julianshen/doclink/internal/config"
	"github.com/julianshen/doclink/internal/linker"
	"github.com/julianshen/doclink/internal/logging"
	"github.com/julianshen/doclink/internal/output"
	"github.com/julianshen/doclink/internal/parser"
	"github.com/julianshen/doclink/internal/pipeline"
	"github.com/julianshen/doclink/internal/provider"
	"github.com/julianshen/doclink/internal/source"
	"github.com/julianshen/doclink/internal/usage"

	// Register providers via init() side effects.
	_ "github.com/julianshen/doclink/internal/provider/anthropic"
	_ "github.com/julianshen/doclink/internal/provider/ollama"
	_ "github.com/julianshen/doclink/internal/provider/openai"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"

	configPath      string
	modelFlag       string
	providerFlag    string
	outputFlag      string
	formatFlag      string
	concurrencyFlag int
	noCacheFlag     bool
	logLevelFlag    string
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func versionString() string {
	return fmt.Sprintf("doclink %s (commit: %s, built: %s)", version, commit, date)
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "doclink <repository-url-or-path>",
		Short: "Link documentation prose to the code it describes",
		Long: "doclink parses a repository's documentation into section trees and uses an\n" +
			"LLM to produce semantic links between explanatory text and code examples.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), args[0])
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&modelFlag, "model", "", "override model name")
	rootCmd.PersistentFlags().StringVar(&providerFlag, "provider", "", "override provider name")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "", "write the report to a file instead of stdout")
	rootCmd.PersistentFlags().StringVar(&formatFlag, "format", "json", "report format: json, markdown")
	rootCmd.PersistentFlags().IntVar(&concurrencyFlag, "concurrency", 0, "documents processed in parallel (0 = config batch size)")
	rootCmd.PersistentFlags().BoolVar(&noCacheFlag, "no-cache", false, "bypass the response cache")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level: debug, info, warn, error")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println(versionString())
		},
	}
	rootCmd.AddCommand(versionCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, input string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if modelFlag != "" {
		cfg.Provider.Model = modelFlag
	}
	if providerFlag != "" {
		cfg.Provider.Default = providerFlag
	}
	if logLevelFlag != "" {
		cfg.Log.Level = logLevelFlag
	}
	logging.Setup(cfg.Log.Level, true)

	// Fetch and discover documentation.
	workDir, err := os.MkdirTemp("", "doclink-*")
	if err != nil {
		return fmt.Errorf("creating temp directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	src := source.NewProvider(cfg.Source.Extensions)
	root, err := src.Fetch(ctx, input, workDir)
	if err != nil {
		return err
	}
	paths, err := src.Discover(root)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no documentation files found under %s", root)
	}

	docs := parser.New().ParseAll(paths)
	if len(docs) == 0 {
		return fmt.Errorf("none of the %d discovered files could be parsed", len(paths))
	}

	// Assemble the linking stack.
	svc, err := provider.New(cfg)
	if err != nil {
		return err
	}
	if cfg.Linking.RetryAttempts > 1 {
		svc = provider.WithRetry(svc, cfg.Linking.RetryAttempts)
	}

	ledger := usage.NewLedger()
	opts := []linker.Option{linker.WithUsageRecorder(ledger)}

	if cfg.Cache.Enabled && !noCacheFlag {
		cachePath, err := resolveCachePath(cfg.Cache.Path)
		if err != nil {
			return err
		}
		c, err := cache.Open(cachePath, time.Duration(cfg.Cache.TTLHours)*time.Hour)
		if err != nil {
			return fmt.Errorf("opening response cache: %w", err)
		}
		defer c.Close()
		opts = append(opts, linker.WithCache(c))
	}

	lk := linker.New(svc, linker.Config{
		Model:             cfg.Provider.Model,
		Temperature:       cfg.Linking.Temperature,
		MaxTokens:         cfg.Linking.MaxTokens,
		CallTimeout:       time.Duration(cfg.Linking.CallTimeoutSeconds) * time.Second,
		RequestsPerSecond: cfg.Linking.RequestsPerSecond,
	}, opts...)

	concurrency := concurrencyFlag
	if concurrency <= 0 {
		concurrency = cfg.Linking.BatchSize
	}

	orch := pipeline.New(lk, pipeline.Config{
		Model:       cfg.Provider.Model,
		Temperature: cfg.Linking.Temperature,
		Concurrency: concurrency,
	})
	result, err := orch.Run(ctx, docs)
	if err != nil {
		return err
	}

	report := &output.Report{Result: result, Usage: ledger.Snapshot()}
	if err := writeReport(report); err != nil {
		return err
	}

	printSummary(report)
	// Linking failures are recorded in the report, not surfaced as a
	// process error. Only infrastructure failures exit non-zero.
	return nil
}

// resolveCachePath falls back to the user cache directory when no cache
// path is configured.
func resolveCachePath(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolving cache directory: %w", err)
	}
	path := filepath.Join(dir, "doclink", "responses.db")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating cache directory: %w", err)
	}
	return path, nil
}

func writeReport(report *output.Report) error {
	formatter, err := output.NewFormatter(formatFlag)
	if err != nil {
		return err
	}
	out, err := formatter.Format(report)
	if err != nil {
		return fmt.Errorf("formatting report: %w", err)
	}

	if outputFlag != "" {
		if err := os.WriteFile(outputFlag, out, 0o644); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		return nil
	}

	text := string(out)
	if formatFlag == "markdown" || formatFlag == "md" {
		if rendered, err := output.RenderMarkdown(text); err == nil {
			text = rendered
		}
	}
	fmt.Print(text)
	return nil
}

func printSummary(report *output.Report) {
	stats := report.Result.Stats
	okLine := successStyle.Render(fmt.Sprintf("%d succeeded", stats.SuccessfulDocuments))
	failLine := fmt.Sprintf("%d failed", stats.FailedDocuments)
	if stats.FailedDocuments > 0 {
		failLine = errorStyle.Render(failLine)
	}

	fmt.Fprintf(os.Stderr, "\n%s %s\n%s %d documents, %s, %s\n%s %d in / %d out tokens, $%.4f estimated\n",
		titleStyle.Render("doclink"), dimStyle.Render("run "+report.Result.RunID),
		dimStyle.Render("Linked:"), stats.TotalDocuments, okLine, failLine,
		dimStyle.Render("Usage:"), report.Usage.TotalInputTokens,
		report.Usage.TotalOutputTokens, report.Usage.TotalCost)
}
