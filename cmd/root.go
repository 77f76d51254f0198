package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	flagIgnoreConfig bool
	flagDebug        bool

	// network
	flagFetchTimeout  time.Duration
	flagFetchAttempts int
	flagUserAgent     string
	flagCookie        string
	flagCookieFile    string
	flagCloudflare    bool

	// browser
	flagChromePath    string
	flagHeadful       bool
	flagRenderTimeout time.Duration

	flagProfilesDir string
)

var rootCmd = &cobra.Command{
	Use:   "mangascout",
	Short: "Find chapter lists and page images on manga sites, guided by per-site profiles",
	Long: `mangascout extracts ordered chapter links and page image URLs from manga
sites it has never seen before. A site profile (a small JSON ruleset stored
per origin) tells it where to look; without one it falls back to heuristics.`,
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()

	pf.BoolVar(&flagDebug, "debug", false, "enable debug logging")
	pf.BoolVar(&flagIgnoreConfig, "ignore-config", false, "ignore config and use only CLI flags")

	pf.DurationVar(&flagFetchTimeout, "fetch-timeout", 0, "timeout per page fetch (default 15s)")
	pf.IntVar(&flagFetchAttempts, "fetch-attempts", 0, "attempts per page fetch on server errors (default 1)")
	pf.StringVar(&flagUserAgent, "user-agent", "", "override User-Agent")
	pf.StringVar(&flagCookie, "cookie", "", "cookie string, e.g. \"key=value; other=123\"")
	pf.StringVar(&flagCookieFile, "cookie-file", "", "path to a text file with cookies (one header line)")
	pf.BoolVar(&flagCloudflare, "cloudflare", false, "use a browser-like TLS fingerprint for static fetches")

	pf.StringVar(&flagChromePath, "chrome-path", "", "Chrome/Chromium binary for rendered extraction")
	pf.BoolVar(&flagHeadful, "headful", false, "show the browser window during rendered extraction")
	pf.DurationVar(&flagRenderTimeout, "render-timeout", 0, "timeout per rendered page (default 60s)")

	pf.StringVar(&flagProfilesDir, "profiles-dir", "", "directory holding profiles.yaml")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
