package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/sawt/config"
	"github.com/hupe1980/sawt/export"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <video-id>",
	Short: "Export a stored transcript as table or CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		store, err := openStore(cfg)
		if err != nil {
			return err
		}

		videoID := args[0]

		segments := store.GetSegments(videoID)
		if len(segments) == 0 {
			return fmt.Errorf("no segments stored for video: %s", videoID)
		}

		if err := export.WriteTable(os.Stdout, videoID, segments); err != nil {
			return err
		}

		fmt.Printf("%d segment(s)\n", len(segments))

		if exportOutput != "" {
			if err := export.WriteCSVFile(exportOutput, segments); err != nil {
				return err
			}

			fmt.Printf("written to %s\n", exportOutput)
		}

		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output CSV file path")
}
