package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hupe1980/sawt/config"
	"github.com/hupe1980/sawt/export"
	"github.com/hupe1980/sawt/transcribe"
)

var transcribeLanguage string

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <file>",
	Short: "Transcribe a WAV file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		tr := transcribe.New(func(o *transcribe.Options) {
			o.Bin = cfg.WhisperBin
			o.ModelPath = cfg.WhisperModel
			o.Language = transcribeLanguage
		})

		segments, err := tr.Transcribe(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "#\tStart\tEnd\tText")

		for i, seg := range segments {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n",
				i+1,
				export.FormatTimestamp(seg.Start),
				export.FormatTimestamp(seg.End),
				seg.Text,
			)
		}

		if err := tw.Flush(); err != nil {
			return err
		}

		fmt.Printf("%d segment(s)\n", len(segments))

		return nil
	},
}

func init() {
	transcribeCmd.Flags().StringVar(&transcribeLanguage, "language", "", "language code (e.g. en, it, ar), omit for auto-detection")
}
