package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Samir-atra/code-translator-purple-agent/pkg/metrics"
	a2atype "github.com/a2aproject/a2a-go/a2a"
	"github.com/a2aproject/a2a-go/a2asrv"
	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
)

// MetricsPath serves the Prometheus metrics.
const MetricsPath = "/metrics"

// ServerConfig holds configuration for the A2A server.
type ServerConfig struct {
	Host            string
	Port            string
	ShutdownTimeout time.Duration
	// Gatherer backs MetricsPath. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
}

// A2AServer wraps the A2A server with health and metrics endpoints and
// graceful shutdown.
type A2AServer struct {
	httpServer *http.Server
	logger     logr.Logger
	config     ServerConfig
}

// NewA2AServer creates a new A2A server using a2asrv.
func NewA2AServer(agentCard a2atype.AgentCard, executor a2asrv.AgentExecutor, logger logr.Logger, config ServerConfig, handlerOpts ...a2asrv.RequestHandlerOption) (*A2AServer, error) {
	if agentCard.Name == "" {
		return nil, errors.New("agent card name is required")
	}
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = 5 * time.Second
	}

	requestHandler := a2asrv.NewHandler(executor, handlerOpts...)
	jsonrpcHandler := a2asrv.NewJSONRPCHandler(requestHandler)

	mux := http.NewServeMux()
	RegisterHealthEndpoints(mux)
	if config.Gatherer != nil {
		mux.Handle(MetricsPath, metrics.Handler(config.Gatherer))
	}
	mux.Handle(a2asrv.WellKnownAgentCardPath, a2asrv.NewStaticAgentCardHandler(&agentCard))
	// All other routes go to the A2A JSONRPC handler
	mux.Handle("/", jsonrpcHandler)

	return &A2AServer{
		httpServer: &http.Server{
			Addr:              net.JoinHostPort(config.Host, config.Port),
			Handler:           withLogger(mux, logger),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
		config: config,
	}, nil
}

// withLogger makes logger available to handlers through the request context.
func withLogger(next http.Handler, logger logr.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(logr.NewContext(r.Context(), logger)))
	})
}

// Handler returns the server's root handler.
func (s *A2AServer) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr returns the listen address.
func (s *A2AServer) Addr() string {
	return s.httpServer.Addr
}

// Start initializes and starts the HTTP server.
func (s *A2AServer) Start() error {
	s.logger.Info("Starting translator A2A server", "addr", s.httpServer.Addr)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error(err, "Server failed")
			os.Exit(1)
		}
	}()

	return nil
}

// WaitForShutdown blocks until a shutdown signal is received, then gracefully shuts down.
func (s *A2AServer) WaitForShutdown() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	return s.Shutdown()
}

// Shutdown stops the server, waiting up to ShutdownTimeout for open requests.
func (s *A2AServer) Shutdown() error {
	s.logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	return nil
}

// Run starts the server and waits for shutdown.
func (s *A2AServer) Run() error {
	if err := s.Start(); err != nil {
		return err
	}
	return s.WaitForShutdown()
}
