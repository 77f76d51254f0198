package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brogergvhs/mangascout/internal/config"
	"github.com/brogergvhs/mangascout/internal/scraper"
)

var flagPrev bool

func init() {
	nextCmd := &cobra.Command{
		Use:   "next <chapter-url>",
		Short: "Print the URL of the next (or previous) chapter",
		Args:  cobra.ExactArgs(1),
		RunE:  runNext,
	}

	nextCmd.Flags().BoolVar(&flagPrev, "prev", false, "look for the previous chapter instead")

	rootCmd.AddCommand(nextCmd)
}

func runNext(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(config.Options{})
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := signalContext()
	defer cancel()

	dir := scraper.Next
	if flagPrev {
		dir = scraper.Prev
	}

	chapterURL := args[0]
	p := rt.profileFor(chapterURL, "")

	u, ok := rt.scraperFor(p).AdjacentChapter(ctx, chapterURL, dir, p)
	if !ok {
		return fmt.Errorf("no %s chapter link found on %s", dir, chapterURL)
	}

	fmt.Fprintln(cmd.OutOrStdout(), u)

	return nil
}
