package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"ripstool/consolidate"
	"ripstool/rips"
)

func flattenCmd(a *app) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "flatten FILE.json...",
		Short: "Split RIPS JSON documents back into CSV tables",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := a.outputDir(outDir)
			if err != nil {
				return err
			}
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}
				doc, err := consolidate.Decode(path, data)
				if err != nil {
					return err
				}

				base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
				target := filepath.Join(dir, base)
				if err := os.MkdirAll(target, 0o755); err != nil {
					return fmt.Errorf("create %s: %w", target, err)
				}
				written, err := rips.Flatten(doc).WriteFiles(target)
				if err != nil {
					return err
				}
				a.log.Info().Str("file", path).Strs("written", written).Msg("flattened document")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "", "output directory (default output.dir)")
	return cmd
}
