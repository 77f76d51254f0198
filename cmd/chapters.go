package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/brogergvhs/mangascout/internal/chapters"
	"github.com/brogergvhs/mangascout/internal/config"
	"github.com/brogergvhs/mangascout/internal/profile"
	"github.com/brogergvhs/mangascout/internal/scraper"
)

var (
	// selection
	flagChapter string
	flagRange   string
	flagList    string
	flagSort    bool

	flagProfileFile string
	flagJSON        bool
	flagSaveDerived bool
)

func init() {
	chaptersCmd := &cobra.Command{
		Use:   "chapters [manga-url]",
		Short: "List the chapters linked from a manga page",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runChapters,
	}

	addSelectionFlags(chaptersCmd)
	chaptersCmd.Flags().StringVar(&flagProfileFile, "profile", "", "profile document to use instead of the stored one (file or -)")
	chaptersCmd.Flags().BoolVar(&flagJSON, "json", false, "print JSON instead of a table")
	chaptersCmd.Flags().BoolVar(&flagSaveDerived, "save-derived", false, "derive and store a chapter-list profile when the site has none")

	rootCmd.AddCommand(chaptersCmd)
}

func addSelectionFlags(c *cobra.Command) {
	c.Flags().StringVar(&flagChapter, "chapter", "", "single chapter by label or index (e.g. 5 or 28.5)")
	c.Flags().StringVar(&flagRange, "range", "", "range of chapters by index (e.g. 5-12)")
	c.Flags().StringVar(&flagList, "list", "", "specific chapter indices (e.g. 1,3,5)")
	c.Flags().BoolVar(&flagSort, "sort", false, "order chapters by number instead of page order")
}

func mangaURLArg(args []string, cfg *config.Config) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.DefaultURL != "" {
		return cfg.DefaultURL, nil
	}

	return "", fmt.Errorf("missing manga URL and no default_url in config")
}

// selectChapters numbers links and applies the selection flags.
func selectChapters(links []scraper.ChapterLink) []chapters.Chapter {
	all := chapters.Number(links)
	if flagSort {
		chapters.SortByNumber(all)
	}

	return chapters.Selection{Chapter: flagChapter, Range: flagRange, List: flagList}.Apply(all)
}

func runChapters(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(config.Options{})
	if err != nil {
		return err
	}
	defer rt.Close()

	mangaURL, err := mangaURLArg(args, rt.cfg)
	if err != nil {
		return err
	}

	doc, err := readDoc(flagProfileFile)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	p := rt.profileFor(mangaURL, doc)
	scr := rt.scraperFor(p)

	links := scr.FetchChapters(ctx, mangaURL, p)
	if len(links) == 0 {
		return fmt.Errorf("no chapters found on %s", mangaURL)
	}

	if flagSaveDerived {
		saveDerived(ctx, rt, scr, mangaURL, links[0].URL)
	}

	selected := selectChapters(links)
	if len(selected) == 0 {
		return fmt.Errorf("no chapters selected")
	}

	out := cmd.OutOrStdout()
	if flagJSON {
		return writeJSON(out, selected)
	}

	fmt.Fprintf(out, "Found %d chapters, %d selected.\n\n", len(links), len(selected))
	for i, ch := range selected {
		fmt.Fprintf(out, "%3d) %s  [%s]\n    %s\n", i+1, ch.Title, ch.Label, ch.URL)
	}

	return nil
}

// saveDerived stores a chapter-list profile derived from one found chapter,
// unless the origin already has a profile.
func saveDerived(ctx context.Context, rt *runtime, scr *scraper.Scraper, mangaURL, example string) {
	origin := profile.Origin(mangaURL)
	if _, ok := rt.store.Get(origin); ok {
		rt.log.Debugf("Profile for %s exists, not saving a derived one", origin)
		return
	}

	sel, ok := scr.DeriveSelector(ctx, mangaURL, example)
	if !ok {
		rt.log.Infof("Could not derive a selector for %s", origin)
		return
	}

	doc, err := scraper.DerivedProfile(sel).Marshal()
	if err != nil {
		rt.log.Errorf("Derived profile: %v", err)
		return
	}
	if err := rt.store.Put(origin, doc); err != nil {
		rt.log.Errorf("Saving derived profile: %v", err)
		return
	}

	rt.log.Infof("Saved derived profile for %s (selector %q)", origin, sel)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
