package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/brogergvhs/mangascout/internal/config"
	"github.com/brogergvhs/mangascout/internal/manifest"
	"github.com/brogergvhs/mangascout/internal/ui"
)

var (
	flagWorkers int
	flagOutput  string
	flagDryRun  bool
)

func init() {
	scanCmd := &cobra.Command{
		Use:   "scan [manga-url]",
		Short: "Build ordered page manifests for the selected chapters of a manga",
		Long: `scan lists the chapters of a manga, extracts the page images of every
selected chapter concurrently and writes one JSON manifest per chapter.
Uses the defaults from the selected config, overwritten by CLI flags.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runScan,
	}

	addSelectionFlags(scanCmd)
	scanCmd.Flags().IntVar(&flagWorkers, "workers", 0, "chapters scanned in parallel (default 4)")
	scanCmd.Flags().StringVar(&flagOutput, "output", "", "output folder for manifests")
	scanCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "show the selected chapters, don't scan them")

	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(config.Options{
		Workers: flagWorkers,
		Output:  flagOutput,
	})
	if err != nil {
		return err
	}
	defer rt.Close()

	mangaURL, err := mangaURLArg(args, rt.cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config file: %s\n", rt.cfgPath)
	fmt.Fprintln(out, "Full config:")
	rt.cfg.Print(out)
	fmt.Fprintln(out)

	ctx, cancel := signalContext()
	defer cancel()

	p := rt.profileFor(mangaURL, "")
	scr := rt.scraperFor(p)

	links := scr.FetchChapters(ctx, mangaURL, p)
	if len(links) == 0 {
		return fmt.Errorf("no chapters found on %s", mangaURL)
	}

	selected := selectChapters(links)
	if len(selected) == 0 {
		return fmt.Errorf("no chapters selected")
	}

	if flagDryRun {
		fmt.Fprintf(out, "Dry-run: %d chapters selected.\n\n", len(selected))
		for i, ch := range selected {
			fmt.Fprintf(out, "%3d) %s  [%s]\n    %s\n", i+1, ch.Title, ch.Label, ch.URL)
		}
		return nil
	}

	start := time.Now()
	stats := &ui.Stats{}

	pm := ui.NewProgressManager(os.Stderr)
	bar := pm.Register("Scanning", len(selected))

	builder := manifest.NewBuilder(scr, p, rt.cfg.Workers, rt.log, stats)
	manifests, buildErr := builder.Build(ctx, selected, bar)

	bar.MarkDone()
	pm.Close()

	paths, err := manifest.WriteDir(rt.cfg.Output, manifests)
	if err != nil {
		return err
	}
	if buildErr != nil {
		return fmt.Errorf("scan interrupted after %d chapters: %w", len(paths), buildErr)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Scan Summary:")
	fmt.Fprintf(out, "Chapters: %d\n", stats.TotalChapters.Load())
	fmt.Fprintf(out, "Pages:    %d\n", stats.TotalPages.Load())
	if n := stats.EmptyChapters.Load(); n > 0 {
		fmt.Fprintf(out, "Empty:    %d\n", n)
	}
	fmt.Fprintf(out, "Output:   %s\n", rt.cfg.Output)
	fmt.Fprintf(out, "Time:     %s\n", time.Since(start).Round(time.Second))

	return nil
}
