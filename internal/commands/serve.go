package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/splitpay/internal/auth"
	"github.com/mmynk/splitpay/internal/config"
	"github.com/mmynk/splitpay/internal/metrics"
	"github.com/mmynk/splitpay/internal/payments"
	"github.com/mmynk/splitpay/internal/service"
	"github.com/mmynk/splitpay/internal/settlement"
	"github.com/mmynk/splitpay/internal/wallet"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(flags *globalFlags) *cobra.Command {
	var addr string
	var sandbox bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Connect API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("sandbox") {
				cfg.Sandbox = sandbox
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address (overrides SPLITPAY_ADDR)")
	cmd.Flags().BoolVar(&sandbox, "sandbox", false, "settle through the in-process sandbox instead of the signer")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	var executor settlement.PaymentExecutor
	if cfg.Sandbox {
		slog.Warn("Using sandbox payments - no funds will move")
		executor = payments.NewSandbox(cfg.TokenDecimals)
	} else {
		executor = payments.NewHTTPExecutor(cfg.SignerURL, cfg.SignerToken, cfg.TokenDecimals)
		slog.Info("Using payment signer", "url", cfg.SignerURL)
	}

	mux := http.NewServeMux()
	service.Mount(mux, service.Deps{
		Store:         store,
		Authenticator: auth.NewPasswordAuthenticator(store),
		JWT:           auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL),
		Executor:      settlement.NewExecutor(store, wallet.NewResolver(store), executor),
		Logger:        slog.Default(),
	})
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	handler := h2c.NewHandler(loggingMiddleware(corsMiddleware(mux)), &http2.Server{})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Connect server starting", "address", cfg.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		slog.Debug("Request received",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		)

		next.ServeHTTP(w, r)

		slog.Info("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
