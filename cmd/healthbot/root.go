package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/healthbot/server/internal/agent/model"
	"github.com/healthbot/server/internal/agent/repo"
	"github.com/healthbot/server/internal/agent/workflow"
	"github.com/healthbot/server/internal/agent/workflow/nodes"
	logx "github.com/healthbot/server/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "healthbot",
	Short: "Patient education chatbot backed by trusted medical sources",
	Long: `HealthBot asks for a health topic, searches trusted medical sites,
summarizes what it found, and checks understanding with a short quiz.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		envFile, _ := cmd.Flags().GetString("env-file")
		plain, _ := cmd.Flags().GetBool("plain")
		verbose, _ := cmd.Flags().GetBool("verbose")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return run(ctx, envFile, plain, verbose)
	},
}

func init() {
	rootCmd.Flags().String("env-file", "config.env", "Env file with API keys and settings")
	rootCmd.Flags().Bool("plain", false, "Print summaries as plain text instead of rendered markdown")
	rootCmd.Flags().BoolP("verbose", "v", false, "Show debug logs on stderr")
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, envFile string, plain, verbose bool) error {
	logx.Init(logx.LoggerOpts{Quiet: !verbose})

	cfg, err := loadConfig(envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize HealthBot: %v\n", err)
		fmt.Fprintf(os.Stderr, "Please check your %s file and API keys.\n", envFile)
		return err
	}
	logx.Init(logx.LoggerOpts{Environment: cfg.Environment, Quiet: !verbose})

	var cache model.SearchCache
	if cfg.Redis.Enabled() {
		rdb, err := cfg.Redis.New(ctx)
		if err != nil {
			logx.Warn().Err(err).Msg("Redis unavailable - search cache disabled")
		} else {
			defer rdb.Close()
			cache = repo.NewRedisSearchCache(rdb, cfg.Cache.TTL)
			logx.Debug().Dur("ttl", cfg.Cache.TTL).Msg("Search cache enabled")
		}
	}

	var consoleOpts []nodes.ConsoleOption
	if plain {
		consoleOpts = append(consoleOpts, nodes.WithPlainOutput())
	}

	engine, err := workflow.Build(ctx, workflow.Config{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Chat:        cfg.Chat,
		Search:      cfg.Search,
		SearchCache: cache,
		Console:     nodes.NewTerminalConsole(os.Stdin, os.Stdout, consoleOpts...),
		Output:      os.Stdout,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Failed to build workflow")
		fmt.Fprintf(os.Stderr, "Failed to initialize HealthBot: %v\n", err)
		return err
	}

	_, err = engine.Run(ctx)
	return err
}
