package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geange/automata/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long:  `Serve the automaton operations and the automaton log as a JSON API, with Prometheus metrics on /metrics.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = a.cfg.Server.Addr
			}
			log, err := a.store()
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr: addr,
				Handler: server.New(log,
					server.WithLogger(a.logger),
					server.WithStepLimit(a.cfg.Turing.StepLimit),
					server.WithWorkLimit(a.cfg.Determinize.WorkLimit),
					server.WithEquivalenceDefaults(a.cfg.Equivalence.Samples, a.cfg.Equivalence.MaxLength),
					server.WithEquivalenceLimits(a.cfg.Equivalence.SampleLimit, a.cfg.Equivalence.LengthLimit),
				).Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			serverErrors := make(chan error, 1)
			go func() {
				a.logger.Info("starting server",
					zap.String("addr", srv.Addr),
					zap.String("store", a.cfg.Store.Backend),
				)
				serverErrors <- srv.ListenAndServe()
			}()

			shutdown := make(chan os.Signal, 1)
			signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(shutdown)

			select {
			case err := <-serverErrors:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err

			case sig := <-shutdown:
				a.logger.Info("shutting down", zap.Stringer("signal", sig))

				ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()

				if err := srv.Shutdown(ctx); err != nil {
					a.logger.Error("graceful shutdown did not complete", zap.Duration("timeout", shutdownTimeout), zap.Error(err))
					return srv.Close()
				}
				a.logger.Info("server stopped")
				return nil
			}
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from configuration)")
	return cmd
}
