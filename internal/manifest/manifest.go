// Package manifest turns a chapter selection into ordered page manifests by
// running image extraction for many chapters concurrently.
package manifest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/brogergvhs/mangascout/internal/chapters"
	"github.com/brogergvhs/mangascout/internal/profile"
	"github.com/brogergvhs/mangascout/internal/ui"
)

// ImageSource is the image extractor as seen by the builder.
type ImageSource interface {
	FetchImages(ctx context.Context, chapterURL string, p profile.SiteProfile) []string
}

// Progress is told about every finished chapter.
type Progress interface {
	Done(pages int)
}

type Manifest struct {
	Chapter chapters.Chapter `json:"chapter"`
	// Pages are in reading order.
	Pages []string `json:"pages"`
}

type Builder struct {
	src     ImageSource
	profile profile.SiteProfile
	workers int
	log     *ui.Logger
	stats   *ui.Stats
}

func NewBuilder(src ImageSource, p profile.SiteProfile, workers int, log *ui.Logger, stats *ui.Stats) *Builder {
	if workers < 1 {
		workers = 1
	}
	if stats == nil {
		stats = &ui.Stats{}
	}

	return &Builder{src: src, profile: p, workers: workers, log: log, stats: stats}
}

// Build extracts the pages of every chapter. Results keep the order of chs;
// a chapter without pages is kept with an empty page list. On cancellation
// only the chapters whose extraction finished are returned, still in order,
// together with ctx.Err().
func (b *Builder) Build(ctx context.Context, chs []chapters.Chapter, progress Progress) ([]Manifest, error) {
	out := make([]Manifest, len(chs))
	for i, ch := range chs {
		out[i].Chapter = ch
	}

	workers := b.workers
	if workers > len(chs) && len(chs) > 0 {
		workers = len(chs)
	}

	// each index is written by one worker only and read after wg.Wait
	done := make([]bool, len(chs))

	jobs := make(chan int)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for i := range jobs {
			ch := chs[i]

			pages := b.src.FetchImages(ctx, ch.URL, b.profile)
			if ctx.Err() != nil {
				continue
			}
			if pages == nil {
				pages = []string{}
			}
			out[i].Pages = pages
			done[i] = true

			if len(pages) == 0 {
				b.stats.EmptyChapters.Add(1)
				b.log.Errorf("No images for %s (%s)", ch.Title, ch.Label)
			} else {
				b.log.Debugf("Chapter %s: %d pages", ch.Label, len(pages))
			}
			b.stats.TotalChapters.Add(1)
			b.stats.TotalPages.Add(int64(len(pages)))

			if progress != nil {
				progress.Done(len(pages))
			}
		}
	}

	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go worker()
	}

dispatch:
	for i := range chs {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- i:
		}
		if ctx.Err() != nil {
			break
		}
	}

	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return completed(out, done), err
	}

	return out, nil
}

func completed(out []Manifest, done []bool) []Manifest {
	kept := make([]Manifest, 0, len(out))
	for i, m := range out {
		if done[i] {
			kept = append(kept, m)
		}
	}

	return kept
}

// WriteDir writes one JSON file per manifest into dir and returns the paths
// in manifest order.
func WriteDir(dir string, manifests []Manifest) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("cannot create output folder: %w", err)
	}

	paths := make([]string, 0, len(manifests))
	for _, m := range manifests {
		path := m.Chapter.ManifestPath(dir)

		b, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return paths, fmt.Errorf("manifest %s: %w", m.Chapter.Label, err)
		}
		if err := os.WriteFile(path, b, 0644); err != nil {
			return paths, fmt.Errorf("manifest %s: %w", m.Chapter.Label, err)
		}

		paths = append(paths, filepath.Clean(path))
	}

	return paths, nil
}
