package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/sawt/config"
	"github.com/hupe1980/sawt/export"
)

var (
	searchLimit   int
	searchVideoID string
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Semantic search over stored transcripts",
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

		embedder := newEmbedder(cfg)

		query, err := embedder.Embed(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		results, err := store.Search(query, searchLimit, searchVideoID)
		if err != nil {
			return err
		}

		if len(results) == 0 {
			fmt.Println("no results found")
			return nil
		}

		if err := export.WriteSearchResults(os.Stdout, results); err != nil {
			return err
		}

		fmt.Printf("%d result(s)\n", len(results))

		return nil
	},
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "n", "n", 5, "number of results")
	searchCmd.Flags().StringVar(&searchVideoID, "video-id", "", "filter by video ID")
}
