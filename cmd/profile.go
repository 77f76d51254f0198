package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/brogergvhs/mangascout/internal/config"
	"github.com/brogergvhs/mangascout/internal/fetch"
	"github.com/brogergvhs/mangascout/internal/profile"
)

// profile test prints at most this many results per extractor
const testPreview = 50

var (
	flagTestManga   string
	flagTestChapter string
	flagTestHTML    string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage site profiles",
}

var profileShowCmd = &cobra.Command{
	Use:   "show <url>",
	Short: "Show the profile stored for a site",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(config.Options{})
		if err != nil {
			return err
		}

		origin := profile.Origin(args[0])
		doc, ok := rt.store.Get(origin)
		if !ok {
			return fmt.Errorf("no profile stored for %s", origin)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s\n%s\n", origin, doc)

		p := profile.Parse(doc)
		if p.IsEmpty() {
			fmt.Fprintln(out, "\nwarning: no usable rule, heuristics will be used")
		}
		if p.RequiresScriptExecution() {
			fmt.Fprintln(out, "\nrequires script execution (rendered in Chrome)")
		}

		return nil
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set <url> <file|->",
	Short: "Store a profile document for a site",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(config.Options{})
		if err != nil {
			return err
		}

		raw, err := readDoc(args[1])
		if err != nil {
			return err
		}

		p := profile.Parse(raw)
		if p.IsEmpty() {
			return fmt.Errorf("profile has no usable rule (check the JSON and the selectors)")
		}

		doc, err := p.Marshal()
		if err != nil {
			return err
		}

		return storeProfile(rt, profile.Origin(args[0]), doc)
	},
}

var profileRemoveCmd = &cobra.Command{
	Use:     "rm <url>",
	Aliases: []string{"remove"},
	Short:   "Remove the profile stored for a site",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(config.Options{})
		if err != nil {
			return err
		}

		origin := profile.Origin(args[0])
		if err := rt.store.Delete(origin); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Removed profile for %s\n", origin)
		return nil
	},
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(config.Options{})
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 4, ' ', 0)
		_, _ = fmt.Fprintln(w, "ORIGIN\tCHAPTERS\tIMAGES\tSCRIPT")

		for _, origin := range rt.store.Origins() {
			doc, _ := rt.store.Get(origin)
			p := profile.Parse(doc)

			chapterSel, imageSel := "-", "-"
			if p.ChapterList != nil {
				chapterSel = p.ChapterList.Selector
			}
			if p.Images != nil {
				imageSel = p.Images.Selector
			}

			script := ""
			if p.RequiresScriptExecution() {
				script = "yes"
			}

			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", origin, chapterSel, imageSel, script)
		}

		if err := w.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to flush table output: %v\n", err)
		}
		return nil
	},
}

var profileSuggestCmd = &cobra.Command{
	Use:   "suggest <chapter-url>",
	Short: "Draft a profile from the images on a chapter page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(config.Options{})
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx, cancel := signalContext()
		defer cancel()

		p, ok := rt.scraperFor(profile.SiteProfile{}).SuggestProfile(ctx, args[0])
		if !ok {
			return fmt.Errorf("no images found on %s", args[0])
		}

		doc, err := p.Marshal()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), doc)

		if !flagSave {
			return nil
		}

		return storeProfile(rt, profile.Origin(args[0]), doc)
	},
}

var profileTestCmd = &cobra.Command{
	Use:   "test <file|->",
	Short: "Run both extractors with a profile document without storing it",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileTest,
}

func init() {
	profileSuggestCmd.Flags().BoolVar(&flagSave, "save", false, "store the suggested profile for the site")
	profileSuggestCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "do not ask before replacing a stored profile")
	profileSetCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "do not ask before replacing a stored profile")

	profileTestCmd.Flags().StringVar(&flagTestManga, "manga", "", "manga page to list chapters from")
	profileTestCmd.Flags().StringVar(&flagTestChapter, "chapter", "", "chapter page to list images from")
	profileTestCmd.Flags().StringVar(&flagTestHTML, "html", "", "saved page to test against instead of fetching (needs exactly one of --manga/--chapter as its URL)")

	profileCmd.AddCommand(profileShowCmd, profileSetCmd, profileRemoveCmd, profileListCmd, profileSuggestCmd, profileTestCmd)
	rootCmd.AddCommand(profileCmd)
}

func runProfileTest(cmd *cobra.Command, args []string) error {
	if flagTestManga == "" && flagTestChapter == "" {
		return fmt.Errorf("give --manga, --chapter or both")
	}

	rt, err := newRuntime(config.Options{})
	if err != nil {
		return err
	}
	defer rt.Close()

	raw, err := readDoc(args[0])
	if err != nil {
		return err
	}

	if flagTestHTML != "" {
		if (flagTestManga == "") == (flagTestChapter == "") {
			return fmt.Errorf("--html needs exactly one of --manga or --chapter")
		}

		page, err := os.ReadFile(flagTestHTML)
		if err != nil {
			return err
		}
		rt.fetcher = fetch.Static{flagTestManga + flagTestChapter: string(page)}
	}

	ctx, cancel := signalContext()
	defer cancel()

	p := profile.Parse(raw)
	out := cmd.OutOrStdout()

	if p.IsEmpty() {
		fmt.Fprintln(out, "warning: no usable rule, results come from heuristics")
	}

	scr := rt.scraperFor(p)

	if flagTestManga != "" {
		links := scr.FetchChapters(ctx, flagTestManga, p)
		fmt.Fprintf(out, "Chapters: %d\n", len(links))
		for i, l := range links {
			if i == testPreview {
				fmt.Fprintf(out, "  ... %d more\n", len(links)-testPreview)
				break
			}
			fmt.Fprintf(out, "  %s  %s\n", l.Title, l.URL)
		}
	}

	if flagTestChapter != "" {
		pages := scr.FetchImages(ctx, flagTestChapter, p)
		fmt.Fprintf(out, "Images: %d\n", len(pages))
		for i, u := range pages {
			if i == testPreview {
				fmt.Fprintf(out, "  ... %d more\n", len(pages)-testPreview)
				break
			}
			fmt.Fprintf(out, "  %s\n", u)
		}
	}

	return nil
}
