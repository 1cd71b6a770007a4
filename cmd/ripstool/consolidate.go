package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"ripstool/consolidate"
	"ripstool/export"
)

func consolidateCmd(a *app) *cobra.Command {
	var (
		outDir  string
		format  string
		parquet bool
	)

	cmd := &cobra.Command{
		Use:   "consolidate FILE.json|DIR...",
		Short: "Merge many RIPS JSON documents into one data set",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "csv" && format != "both" {
				return fmt.Errorf("--format must be json, csv or both, got %q", format)
			}
			sources, err := expandSources(args, ".json")
			if err != nil {
				return err
			}

			res := consolidate.New(a.log).Run(sources)
			for _, f := range res.Files {
				if f.Status == consolidate.StatusError {
					a.log.Warn().Str("file", f.FileName).Msg(f.Message)
				}
			}
			a.log.Info().
				Int("succeeded", res.Succeeded()).
				Int("failed", res.Failed()).
				Int("facturas", res.Data.TotalFacturas).
				Int("usuarios", res.Data.TotalUsuarios).
				Int("servicios", res.Data.TotalServicios).
				Msg("consolidation finished")

			if len(res.Data.ConsolidatedData) == 0 {
				return fmt.Errorf("no valid RIPS documents among %d files", len(sources))
			}

			dir, err := a.outputDir(outDir)
			if err != nil {
				return err
			}
			now := time.Now()

			if format == "json" || format == "both" {
				path := filepath.Join(dir, consolidate.JSONFileName(now))
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("create %s: %w", path, err)
				}
				if err := consolidate.WriteJSON(f, res.Data); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return fmt.Errorf("close %s: %w", path, err)
				}
				a.log.Info().Str("file", path).Msg("wrote consolidated JSON")
			}
			if format == "csv" || format == "both" {
				written, err := consolidate.BuildTables(res.Data.ConsolidatedData).WriteFiles(dir, now)
				if err != nil {
					return err
				}
				a.log.Info().Strs("written", written).Msg("wrote consolidated CSV")
			}
			if parquet {
				var rows []export.ServiceRow
				for _, doc := range res.Data.ConsolidatedData {
					rows = append(rows, export.ServiceRows(doc)...)
				}
				path := filepath.Join(dir, "rips-servicios-"+now.Format("2006-01-02")+".parquet")
				n, err := export.WriteFile(path, rows, 0)
				if err != nil {
					return err
				}
				a.log.Info().Str("file", path).Int("rows", n).Msg("wrote service lines")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "", "output directory (default output.dir)")
	cmd.Flags().StringVar(&format, "format", "both", "json, csv or both")
	cmd.Flags().BoolVar(&parquet, "parquet", false, "also write all service lines as Parquet")
	return cmd
}
