package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"ripstool/export"
	"ripstool/rips"
)

func generateCmd(a *app) *cobra.Command {
	var (
		files    = map[string]*string{}
		obligado string
		factura  string
		mode     string
		outDir   string
		parquet  bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Build a RIPS JSON document from comma-delimited entity files",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := rips.ParseMode(mode)
			if err != nil {
				return err
			}

			var in rips.Inputs
			targets := map[string]*io.Reader{
				"usuarios":        &in.Usuarios,
				"consultas":       &in.Consultas,
				"procedimientos":  &in.Procedimientos,
				"urgencias":       &in.Urgencias,
				"hospitalizacion": &in.Hospitalizacion,
				"medicamentos":    &in.Medicamentos,
				"otros":           &in.OtrosServicios,
			}
			for name, path := range files {
				if *path == "" {
					continue
				}
				f, err := os.Open(*path)
				if err != nil {
					return fmt.Errorf("open %s file: %w", name, err)
				}
				defer f.Close()
				*targets[name] = f
			}

			doc, err := rips.NewParser(a.log).Generate(m, in, obligado, factura)
			if err != nil {
				return err
			}

			dir, err := a.outputDir(outDir)
			if err != nil {
				return err
			}
			path := filepath.Join(dir, m.FileName(doc.NumFactura, time.Now()))
			out, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			if err := doc.WriteJSON(out); err != nil {
				out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return fmt.Errorf("close output: %w", err)
			}
			a.log.Info().Str("file", path).Msg("wrote RIPS document")

			if parquet {
				pq := filepath.Join(dir, doc.NumFactura+"-servicios.parquet")
				n, err := export.WriteFile(pq, export.ServiceRows(doc), 0)
				if err != nil {
					return err
				}
				a.log.Info().Str("file", pq).Int("rows", n).Msg("wrote service lines")
			}
			return nil
		},
	}

	for _, name := range []string{"usuarios", "consultas", "procedimientos", "urgencias", "hospitalizacion", "medicamentos", "otros"} {
		files[name] = cmd.Flags().String(name, "", name+" file")
	}
	cmd.Flags().StringVar(&obligado, "obligado", "", "numDocumentoIdObligado (provider NIT)")
	cmd.Flags().StringVar(&factura, "factura", "", "invoice number")
	cmd.Flags().StringVar(&mode, "mode", "full", "full, data (consultas+procedimientos) or med (medicamentos+otros)")
	cmd.Flags().StringVar(&outDir, "out", "", "output directory (default output.dir)")
	cmd.Flags().BoolVar(&parquet, "parquet", false, "also write the service lines as Parquet")
	cmd.MarkFlagRequired("usuarios")
	return cmd
}
