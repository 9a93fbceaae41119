// Package cli implements the sawt command line interface.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hupe1980/sawt"
	"github.com/hupe1980/sawt/config"
	"github.com/hupe1980/sawt/embedding"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:           "sawt",
	Short:         "Download, transcribe, search and export YouTube audio",
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		return err
	}

	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(transcribeCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(pipelineCmd)
	rootCmd.AddCommand(videosCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(statsCmd)
}

func logLevel() slog.Level {
	if verbose {
		return slog.LevelDebug
	}

	return slog.LevelWarn
}

func openStore(cfg *config.Config) (*sawt.Store, error) {
	return sawt.Open(cfg.DataDir, cfg.EmbeddingDimension,
		sawt.WithLogger(sawt.NewTextLogger(logLevel())),
		sawt.WithM(cfg.M),
		sawt.WithEFConstruction(cfg.EFConstruction),
		sawt.WithEFSearch(cfg.EFSearch),
	)
}

func newEmbedder(cfg *config.Config) *embedding.OllamaEmbedder {
	return embedding.NewOllama(func(o *embedding.Options) {
		o.BaseURL = cfg.OllamaBaseURL
		o.Model = cfg.EmbeddingModel
		o.Dimension = cfg.EmbeddingDimension
	})
}

func step(n, total int, format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", color.CyanString("[%d/%d]", n, total), fmt.Sprintf(format, args...))
}

func stepNote(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "      %s\n", fmt.Sprintf(format, args...))
}
