package cli

import (
	"github.com/spf13/cobra"

	"github.com/hupe1980/sawt"
	"github.com/hupe1980/sawt/config"
	"github.com/hupe1980/sawt/download"
	"github.com/hupe1980/sawt/embedding"
	"github.com/hupe1980/sawt/transcribe"
)

var pipelineLanguage string

var pipelineCmd = &cobra.Command{
	Use:   "pipeline <url>",
	Short: "Full pipeline: download, transcribe, embed, store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		url := args[0]

		videoID, err := download.ExtractVideoID(url)
		if err != nil {
			return err
		}

		step(1, 4, "downloading audio...")

		wavPath, err := download.Download(ctx, url, cfg.DownloadDir)
		if err != nil {
			return err
		}

		stepNote("saved to %s", wavPath)

		step(2, 4, "transcribing...")

		tr := transcribe.New(func(o *transcribe.Options) {
			o.Bin = cfg.WhisperBin
			o.ModelPath = cfg.WhisperModel
			o.Language = pipelineLanguage
		})

		segments, err := tr.Transcribe(ctx, wavPath)
		if err != nil {
			return err
		}

		stepNote("%d segment(s)", len(segments))

		step(3, 4, "embedding...")

		texts := make([]string, len(segments))
		for i, seg := range segments {
			texts[i] = seg.Text
		}

		vectors, err := embedding.EmbedAll(ctx, newEmbedder(cfg), texts, cfg.EmbeddingBatchSize, cfg.EmbeddingConcurrency)
		if err != nil {
			return err
		}

		step(4, 4, "storing in vector database...")

		store, err := openStore(cfg)
		if err != nil {
			return err
		}

		pairs := make([]sawt.SegmentEmbedding, len(segments))
		for i, seg := range segments {
			pairs[i] = sawt.SegmentEmbedding{Segment: seg, Embedding: vectors[i]}
		}

		n, err := store.StoreTranscript(videoID, pairs)
		if err != nil {
			return err
		}

		stepNote("stored %d segment(s) for %s", n, videoID)

		return nil
	},
}

func init() {
	pipelineCmd.Flags().StringVar(&pipelineLanguage, "language", "", "language code (e.g. en, it, ar), omit for auto-detection")
}
