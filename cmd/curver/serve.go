package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/being-motion/spline/internal/api"
	"github.com/being-motion/spline/internal/config"
	"github.com/being-motion/spline/internal/content"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the motion library over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			return a.withContent(func(c *content.Content) error {
				return a.serve(cmd.Context(), c, addr)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

func (a *app) serve(ctx context.Context, c *content.Content, addr string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.NewRouter(api.NewHandlers(c, a.cfg.Fit.Options(), a.logger)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("listening", slog.String("addr", addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	if a.cfg.Content.Backend == config.BackendFiles {
		g.Go(func() error {
			return c.Watch(ctx, a.cfg.Content.Dir)
		})
	}
	g.Go(func() error {
		for ev := range c.Subscribe(ctx) {
			a.logger.Info("content changed",
				slog.String("kind", ev.Kind.String()),
				slog.String("name", ev.Name),
				slog.String("from", ev.From))
		}
		return nil
	})
	return g.Wait()
}
