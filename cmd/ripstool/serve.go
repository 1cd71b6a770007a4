package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ripstool/internal/server"
	"ripstool/store"
)

func serveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var ds server.DocumentStore
			if a.cfg.HasDatabase() {
				pool, err := store.NewPool(ctx, a.cfg.Database.URL, a.cfg.Database.MaxConns, a.cfg.Database.MinConns)
				if err != nil {
					return err
				}
				defer pool.Close()
				st := store.New(pool, a.log)
				if err := st.Migrate(ctx); err != nil {
					return err
				}
				a.log.Info().Msg("connected to database")
				ds = st
			} else {
				a.log.Warn().Msg("no database configured; persistence routes disabled")
			}

			return server.New(a.cfg, a.log, ds).Run(ctx)
		},
	}
}

