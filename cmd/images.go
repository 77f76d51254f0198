package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brogergvhs/mangascout/internal/config"
)

func init() {
	imagesCmd := &cobra.Command{
		Use:   "images <chapter-url>",
		Short: "List the page images of a chapter in reading order",
		Args:  cobra.ExactArgs(1),
		RunE:  runImages,
	}

	imagesCmd.Flags().StringVar(&flagProfileFile, "profile", "", "profile document to use instead of the stored one (file or -)")
	imagesCmd.Flags().BoolVar(&flagJSON, "json", false, "print a JSON array")

	rootCmd.AddCommand(imagesCmd)
}

func runImages(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(config.Options{})
	if err != nil {
		return err
	}
	defer rt.Close()

	doc, err := readDoc(flagProfileFile)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	chapterURL := args[0]
	p := rt.profileFor(chapterURL, doc)

	pages := rt.scraperFor(p).FetchImages(ctx, chapterURL, p)
	if len(pages) == 0 {
		return fmt.Errorf("no images found on %s", chapterURL)
	}

	out := cmd.OutOrStdout()
	if flagJSON {
		return writeJSON(out, pages)
	}

	for _, u := range pages {
		fmt.Fprintln(out, u)
	}

	return nil
}
