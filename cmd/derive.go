package cmd

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/brogergvhs/mangascout/internal/config"
	"github.com/brogergvhs/mangascout/internal/profile"
	"github.com/brogergvhs/mangascout/internal/scraper"
)

var (
	flagSave bool
	flagYes  bool
)

func init() {
	deriveCmd := &cobra.Command{
		Use:   "derive <manga-url> <example-chapter-url>",
		Short: "Guess a chapter-list selector from one known chapter link",
		Args:  cobra.ExactArgs(2),
		RunE:  runDerive,
	}

	deriveCmd.Flags().BoolVar(&flagSave, "save", false, "store the derived profile for the site")
	deriveCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "do not ask before replacing a stored profile")

	rootCmd.AddCommand(deriveCmd)
}

func runDerive(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(config.Options{})
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := signalContext()
	defer cancel()

	mangaURL, example := args[0], args[1]

	sel, ok := rt.scraperFor(profile.SiteProfile{}).DeriveSelector(ctx, mangaURL, example)
	if !ok {
		return fmt.Errorf("could not derive a selector from %s", mangaURL)
	}

	doc, err := scraper.DerivedProfile(sel).Marshal()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Selector: %s\n\n%s\n", sel, doc)

	if !flagSave {
		return nil
	}

	return storeProfile(rt, profile.Origin(mangaURL), doc)
}

// storeProfile writes doc for origin, asking first when it would replace an
// existing profile.
func storeProfile(rt *runtime, origin, doc string) error {
	if _, exists := rt.store.Get(origin); exists && !flagYes {
		prompt := promptui.Prompt{
			Label:     fmt.Sprintf("Replace the stored profile for %s", origin),
			IsConfirm: true,
		}
		if _, err := prompt.Run(); err != nil {
			if errors.Is(err, promptui.ErrAbort) {
				rt.log.Infof("Kept the existing profile")
				return nil
			}
			return fmt.Errorf("confirmation cancelled: %w", err)
		}
	}

	if err := rt.store.Put(origin, doc); err != nil {
		return err
	}

	rt.log.Infof("Saved profile for %s", origin)

	return nil
}
