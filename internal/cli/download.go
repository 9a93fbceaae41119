package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/sawt/config"
	"github.com/hupe1980/sawt/download"
)

var downloadOutput string

var downloadCmd = &cobra.Command{
	Use:   "download <url>",
	Short: "Download audio from YouTube",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		outputDir := downloadOutput
		if outputDir == "" {
			outputDir = cfg.DownloadDir
		}

		path, err := download.Download(cmd.Context(), args[0], outputDir)
		if err != nil {
			return err
		}

		fmt.Printf("downloaded: %s\n", path)

		return nil
	},
}

func init() {
	downloadCmd.Flags().StringVarP(&downloadOutput, "output", "o", "", "output directory")
}
