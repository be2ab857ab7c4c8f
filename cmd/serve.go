package cmd

import (
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/agentchat/agentchat/chatloop"
	"github.com/agentchat/agentchat/gateway"
	"github.com/agentchat/agentchat/tools"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve chat sessions over a websocket gateway",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "listen", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Gateway.Listen = serveAddr
	}

	registry := tools.NewDefaultRegistry(tools.SearchCredentials{
		APIKey:   cfg.Search.APIKey,
		EngineID: cfg.Search.EngineID,
	})

	sessionCfg := chatloop.DefaultSessionConfig()
	sessionCfg.MaxIterations = cfg.Loop.MaxIterations

	server := gateway.NewServer(registry, gateway.Options{
		Addr:            cfg.Gateway.Listen,
		Provider:        cfg.ProviderWire(),
		Session:         sessionCfg,
		ShutdownTimeout: cfg.Gateway.ShutdownTimeout,
		Logger:          slog.Default(),
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(ctx)
	})

	return g.Wait()
}
