package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"ripstool/export"
	"ripstool/invoice"
)

func invoicesCmd(a *app) *cobra.Command {
	var (
		outDir  string
		parquet bool
	)

	cmd := &cobra.Command{
		Use:   "invoices FILE.xml|DIR...",
		Short: "Extract electronic-invoice lines from UBL XML into a semicolon CSV",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sources, err := expandSources(args, ".xml")
			if err != nil {
				return err
			}

			res := invoice.NewParser(a.log).ParseBatch(sources)
			for _, f := range res.Files {
				if f.Err != nil {
					a.log.Warn().Str("file", f.FileName).Msg(f.Error)
				}
			}
			a.log.Info().
				Int("succeeded", res.Succeeded()).
				Int("failed", res.Failed()).
				Int("records", len(res.Invoices)).
				Msg("extraction finished")

			if len(res.Invoices) == 0 {
				return fmt.Errorf("no invoices found in %d files", len(sources))
			}

			dir, err := a.outputDir(outDir)
			if err != nil {
				return err
			}
			path := filepath.Join(dir, invoice.DefaultFileName)
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("create %s: %w", path, err)
			}
			if err := invoice.WriteCSV(f, res.Invoices); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close %s: %w", path, err)
			}
			a.log.Info().Str("file", path).Msg("wrote invoice CSV")

			if parquet {
				pq := filepath.Join(dir, "facturas_electronicas.parquet")
				n, err := export.WriteFile(pq, res.Invoices, 0)
				if err != nil {
					return err
				}
				a.log.Info().Str("file", pq).Int("rows", n).Msg("wrote invoice Parquet")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "", "output directory (default output.dir)")
	cmd.Flags().BoolVar(&parquet, "parquet", false, "also write the records as Parquet")
	return cmd
}
