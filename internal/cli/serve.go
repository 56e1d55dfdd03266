package cli

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"usercontext/internal/config"
	"usercontext/internal/handler"
	"usercontext/internal/hub"
	"usercontext/internal/logging"
	"usercontext/internal/service"
	"usercontext/internal/tools"
	"usercontext/internal/watcher"
)

func (a *app) serveCmd() *cobra.Command {
	var httpAddr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the context tools over MCP on stdio",
		Long: `Run an MCP server on stdin/stdout exposing the manage_* tools plus
query_user_context and export_user_context. Logs go to stderr.

With --http (or server.http_addr in the config) a read-only HTTP API and
a Server-Sent Events stream of changes are served alongside.

When a config file was loaded, changes to its log level take effect
without a restart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s := tools.NewServer(a.cfg.Server.Name, a.svc)
			go tools.ForwardEvents(ctx, s, a.svc.Events(), a.log)

			if a.cfgFile != "" {
				w := watcher.New(a.cfgFile, func(c *config.Config) {
					if err := logging.SetLevel(c.Log.Level); err != nil {
						a.log.Warn("config reload: bad log level", "level", c.Log.Level, "error", err)
						return
					}
					a.log.Info("config reloaded", "log_level", c.Log.Level)
				}, a.log)
				go func() {
					if err := w.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
						a.log.Warn("config watch stopped", "error", err)
					}
				}()
			}

			if httpAddr == "" {
				httpAddr = a.cfg.Server.HTTPAddr
			}
			if httpAddr != "" {
				stopHTTP := a.serveHTTP(ctx, httpAddr)
				defer stopHTTP()
			}

			a.log.Info("serving MCP on stdio",
				"name", a.cfg.Server.Name,
				"version", tools.Version,
				"db", a.cfg.Database.Path)

			stdio := server.NewStdioServer(s)
			stdio.SetErrorLogger(slog.NewLogLogger(a.log.Handler(), slog.LevelError))
			err := stdio.Listen(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			a.log.Info("server stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&httpAddr, "http", "", "also serve the HTTP API on this address (e.g. 127.0.0.1:7070)")
	return cmd
}

// serveHTTP starts the HTTP API and event stream. The returned function
// shuts both down.
func (a *app) serveHTTP(ctx context.Context, addr string) func() {
	done := make(chan struct{})
	events := hub.New(a.log)
	go events.Run(done)

	changes := make(chan service.Event, 100)
	a.svc.Events().Subscribe(changes)
	go func() {
		defer a.svc.Events().Unsubscribe(changes)
		for {
			select {
			case <-done:
				return
			case ev := <-changes:
				events.Broadcast(ev.UserID, hub.Message{Name: string(ev.Type), Data: ev})
			}
		}
	}()

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler.NewRouter(handler.NewContextHandler(a.svc, a.log), events),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	go func() {
		a.log.Info("http api listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server failed", "error", err)
		}
	}()

	return func() {
		close(done)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.log.Warn("http shutdown", "error", err)
		}
	}
}
