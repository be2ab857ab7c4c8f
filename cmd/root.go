// Package cmd wires the command-line interface: an interactive chat REPL and
// a websocket gateway server, both driven by the shared configuration loader.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentchat/agentchat/config"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "agentchat",
	Short: "Tool-augmented LLM chat agent",
	Long: `agentchat drives a reasoning loop against an LLM provider, letting the
model call tools (web search, AI pipelines, sandboxed JavaScript) to answer
questions. Run "agentchat chat" for an interactive session or
"agentchat serve" to expose sessions over a websocket gateway.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		setupLogging()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func setupLogging() {
	level := slog.LevelInfo
	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}
