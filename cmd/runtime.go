package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/brogergvhs/mangascout/internal/config"
	"github.com/brogergvhs/mangascout/internal/fetch"
	"github.com/brogergvhs/mangascout/internal/profile"
	"github.com/brogergvhs/mangascout/internal/render"
	"github.com/brogergvhs/mangascout/internal/scraper"
	"github.com/brogergvhs/mangascout/internal/ui"
	"github.com/brogergvhs/mangascout/internal/util"
)

// runtime is what every extraction command needs: merged config, logger,
// profile store and a fetcher. The browser is only started for profiles
// that ask for script execution.
type runtime struct {
	cfg      *config.Config
	cfgPath  string
	log      *ui.Logger
	store    *profile.FileStore
	fetcher  fetch.Fetcher
	renderer *render.Renderer
}

func loadConfig(extra config.Options) (*config.Config, string, error) {
	opts := extra
	opts.IgnoreConfig = flagIgnoreConfig
	opts.Debug = flagDebug
	opts.FetchTimeout = flagFetchTimeout
	opts.FetchAttempts = flagFetchAttempts
	opts.RenderTimeout = flagRenderTimeout
	opts.UserAgent = flagUserAgent
	opts.Cookie = flagCookie
	opts.CookieFile = flagCookieFile
	opts.CloudflareBypass = flagCloudflare
	opts.ChromePath = flagChromePath
	opts.Headful = flagHeadful
	opts.ProfilesDir = flagProfilesDir

	return config.LoadMerged(opts)
}

func newRuntime(extra config.Options) (*runtime, error) {
	cfg, used, err := loadConfig(extra)
	if err != nil {
		return nil, err
	}

	log := ui.NewLogger(cfg.Debug)
	log.Debugf("Config file: %s", used)

	store, err := profile.OpenFileStore(config.ProfilesPath(cfg))
	if err != nil {
		return nil, err
	}

	client := util.NewHTTPClient(util.HTTPClientOptions{
		Timeout:          cfg.FetchTimeout,
		UserAgent:        cfg.UserAgent,
		Cookie:           cfg.Cookie,
		CookieFile:       cfg.CookieFile,
		CloudflareBypass: cfg.CloudflareBypass,
		DebugLogger:      log,
	})

	return &runtime{
		cfg:     cfg,
		cfgPath: used,
		log:     log,
		store:   store,
		fetcher: fetch.NewHTTPFetcher(client,
			fetch.WithTimeout(cfg.FetchTimeout),
			fetch.WithAttempts(cfg.FetchAttempts),
		),
	}, nil
}

// profileFor resolves the profile used for pageURL: an explicit document
// when given, the stored one otherwise.
func (r *runtime) profileFor(pageURL, explicit string) profile.SiteProfile {
	if explicit != "" {
		return profile.Parse(explicit)
	}

	return profile.Lookup(r.store, pageURL)
}

// scraperFor builds a scraper able to serve p, starting the browser when p
// requires it.
func (r *runtime) scraperFor(p profile.SiteProfile) *scraper.Scraper {
	opts := []scraper.Option{scraper.WithLogger(r.log)}

	if p.RequiresScriptExecution() {
		if r.renderer == nil {
			r.log.Debugf("Profile requires script execution, starting browser")
			r.renderer = render.New(render.Options{
				ExecPath:  r.cfg.ChromePath,
				Headless:  r.cfg.Headless,
				UserAgent: util.PickUserAgent(r.cfg.UserAgent),
				Cookie:    util.CookieHeader(r.cfg.Cookie, r.cfg.CookieFile),
				Timeout:   r.cfg.RenderTimeout,
				Logger:    r.log,
			})
		}
		opts = append(opts, scraper.WithRenderer(r.renderer))
	}

	return scraper.New(r.fetcher, opts...)
}

func (r *runtime) Close() {
	if r.renderer != nil {
		r.renderer.Close()
	}
}

// signalContext is cancelled on Ctrl-C so pending fetches and browser tabs
// are abandoned cleanly.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// readDoc reads a profile document from a file, or stdin for "-".
func readDoc(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	var (
		b   []byte
		err error
	)
	if path == "-" {
		b, err = io.ReadAll(os.Stdin)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read profile %s: %w", path, err)
	}

	return string(b), nil
}
