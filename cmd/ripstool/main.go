package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"ripstool/internal/batch"
	"ripstool/internal/config"
)

// app carries what every subcommand needs once the root has run.
type app struct {
	configPath string
	cfg        *config.Config
	log        zerolog.Logger
	stdout     io.Writer
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	a := &app{stdout: stdout}

	rootCmd := &cobra.Command{
		Use:           "ripstool",
		Short:         "RIPS generation, consolidation and electronic-invoice extraction",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			a.cfg = cfg
			a.log = newLogger(cfg.Log, stdout)
			return nil
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ./ripstool.yaml if present)")

	rootCmd.AddCommand(generateCmd(a))
	rootCmd.AddCommand(flattenCmd(a))
	rootCmd.AddCommand(consolidateCmd(a))
	rootCmd.AddCommand(invoicesCmd(a))
	rootCmd.AddCommand(loadCmd(a))
	rootCmd.AddCommand(serveCmd(a))
	return rootCmd
}

func newLogger(cfg config.LogConfig, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(out).With().Timestamp().Logger()
	if cfg.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: out}).With().Timestamp().Logger()
	}
	return logger.Level(level)
}

// outputDir returns flag if set, else the configured output directory,
// creating it when missing.
func (a *app) outputDir(flag string) (string, error) {
	dir := flag
	if dir == "" {
		dir = a.cfg.Output.Dir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	return dir, nil
}

// expandSources turns file and directory arguments into batch sources.
// Directories contribute their files with the given extension, sorted by name.
func expandSources(args []string, ext string) ([]batch.Source, error) {
	var sources []batch.Source
	for _, arg := range args {
		fi, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}
		if !fi.IsDir() {
			sources = append(sources, batch.File(arg))
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("read dir %s: %w", arg, err)
		}
		var names []string
		for _, e := range entries {
			if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ext) {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)
		for _, n := range names {
			sources = append(sources, batch.File(filepath.Join(arg, n)))
		}
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no %s files given", ext)
	}
	return sources, nil
}
