package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/sawt/config"
)

var videosCmd = &cobra.Command{
	Use:   "videos",
	Short: "List stored video IDs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		store, err := openStore(cfg)
		if err != nil {
			return err
		}

		videoIDs := store.VideoIDs()
		if len(videoIDs) == 0 {
			fmt.Println("no videos stored")
			return nil
		}

		for _, id := range videoIDs {
			fmt.Printf("%s\t%d segment(s)\n", id, len(store.GetSegments(id)))
		}

		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <video-id>",
	Short: "Delete all segments of a video",
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

		n, err := store.DeleteVideo(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("deleted %d segment(s) for %s\n", n, args[0])

		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		store, err := openStore(cfg)
		if err != nil {
			return err
		}

		stats := store.Stats()

		fmt.Printf("videos:     %d\n", len(store.VideoIDs()))
		fmt.Printf("segments:   %d\n", stats.Live)
		fmt.Printf("tombstones: %d\n", stats.Tombstones)
		fmt.Printf("dimension:  %d\n", stats.Dimension)
		fmt.Printf("max level:  %d\n", stats.MaxLevel)
		fmt.Printf("M:          %d\n", stats.M)
		fmt.Printf("ef:         %d\n", stats.EF)

		return nil
	},
}
