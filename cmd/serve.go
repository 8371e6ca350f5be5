package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/Samir-atra/code-translator-purple-agent/pkg/a2a"
	"github.com/Samir-atra/code-translator-purple-agent/pkg/a2a/server"
	"github.com/Samir-atra/code-translator-purple-agent/pkg/config"
	"github.com/spf13/cobra"
)

const defaultPort = "8080"

type serveFlags struct {
	Host    string
	Port    string
	CardURL string
}

func addServeFlags(cmd *cobra.Command, flags *serveFlags) {
	cmd.Flags().StringVar(&flags.Host, "host", "", "Set the host address to bind to (default: empty, binds to all interfaces)")
	cmd.Flags().StringVar(&flags.Port, "port", "", "Set the port to listen on (overrides PORT environment variable)")
	cmd.Flags().StringVar(&flags.CardURL, "card-url", "", "URL advertised in the default agent card")
}

func newServeCmd(global *globalFlags) *cobra.Command {
	flags := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the A2A server",
		Long:  `Start the A2A server. This is the default when no subcommand is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), global, flags)
		},
	}
	addServeFlags(cmd, flags)
	return cmd
}

func resolvePort(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return defaultPort
}

// agentCardURL is the URL advertised in the default card.
func agentCardURL(flags *serveFlags, port string) string {
	if flags.CardURL != "" {
		return flags.CardURL
	}
	host := flags.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s/", net.JoinHostPort(host, port))
}

func runServe(ctx context.Context, global *globalFlags, flags *serveFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	app, err := newApp(ctx, global)
	if err != nil {
		return err
	}
	defer app.close()
	logger := app.logger

	port := resolvePort(flags.Port)
	card := app.card
	if card == nil {
		card = config.DefaultAgentCard(agentCardURL(flags, port))
		logger.Info("No agent card file, using the default card", "url", card.URL)
	}

	executor := a2a.NewTranslatorExecutor(app.invoker, app.candidates, a2a.TranslatorExecutorConfig{
		ExecutionTimeout: app.cfg.ExecutionTimeout,
		AppName:          card.Name,
	})

	a2aServer, err := server.NewA2AServer(*card, executor, logger.WithName("server"), server.ServerConfig{
		Host:            flags.Host,
		Port:            port,
		ShutdownTimeout: 5 * time.Second,
		Gatherer:        app.registry,
	})
	if err != nil {
		logger.Error(err, "Failed to create A2A server")
		return err
	}

	if err := a2aServer.Run(); err != nil {
		logger.Error(err, "Server error")
		return err
	}
	logger.Info("Server stopped")
	return nil
}
