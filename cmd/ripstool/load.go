package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ripstool/consolidate"
	"ripstool/internal/batch"
	"ripstool/invoice"
	"ripstool/store"
)

func loadCmd(a *app) *cobra.Command {
	var (
		ripsPaths    []string
		invoicePaths []string
		migrate      bool
	)

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Store RIPS documents and invoice lines in PostgreSQL",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(ripsPaths) == 0 && len(invoicePaths) == 0 {
				return fmt.Errorf("nothing to load: pass --rips and/or --invoices")
			}
			if err := a.cfg.RequireDatabase(); err != nil {
				return err
			}

			ctx := cmd.Context()
			pool, err := store.NewPool(ctx, a.cfg.Database.URL, a.cfg.Database.MaxConns, a.cfg.Database.MinConns)
			if err != nil {
				return err
			}
			defer pool.Close()
			a.log.Info().Msg("connected to database")

			st := store.New(pool, a.log)
			if migrate {
				if err := st.Migrate(ctx); err != nil {
					return err
				}
			}

			if len(ripsPaths) > 0 {
				sources, err := expandSources(ripsPaths, ".json")
				if err != nil {
					return err
				}
				outcomes := batch.Run(a.log, sources, func(name string, data []byte) error {
					doc, err := consolidate.Decode(name, data)
					if err != nil {
						return err
					}
					_, err = st.SaveDocument(ctx, doc)
					return err
				})
				if failed := countFailed(outcomes); failed > 0 {
					a.log.Warn().Int("failed", failed).Msg("some RIPS documents were not stored")
				}
			}

			if len(invoicePaths) > 0 {
				sources, err := expandSources(invoicePaths, ".xml")
				if err != nil {
					return err
				}
				res := invoice.NewParser(a.log).ParseBatch(sources)
				if len(res.Invoices) == 0 {
					return fmt.Errorf("no invoices found in %d files", len(sources))
				}
				if _, _, err := st.SaveInvoices(ctx, res.Invoices); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&ripsPaths, "rips", nil, "RIPS JSON files or directories")
	cmd.Flags().StringSliceVar(&invoicePaths, "invoices", nil, "invoice XML files or directories")
	cmd.Flags().BoolVar(&migrate, "migrate", true, "create tables before loading")
	return cmd
}

func countFailed(outcomes []batch.Outcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Err != nil {
			n++
		}
	}
	return n
}
