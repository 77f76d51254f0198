package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	FetchTimeout  time.Duration `yaml:"fetch_timeout"`
	FetchAttempts int           `yaml:"fetch_attempts"`
	RenderTimeout time.Duration `yaml:"render_timeout"`
	Workers       int           `yaml:"workers"`
	Debug         bool          `yaml:"debug"`

	UserAgent        string `yaml:"user_agent"`
	Cookie           string `yaml:"cookie"`
	CookieFile       string `yaml:"cookie_file"`
	CloudflareBypass bool   `yaml:"cloudflare_bypass"`

	// ChromePath empty means chromedp looks Chrome up itself.
	ChromePath string `yaml:"chrome_path"`
	Headless   bool   `yaml:"headless"`

	ProfilesDir string `yaml:"profiles_dir"`
	Output      string `yaml:"output"`
	DefaultURL  string `yaml:"default_url"`
}

// Options carries command line overrides. Zero values leave the config
// untouched.
type Options struct {
	IgnoreConfig     bool
	Debug            bool
	FetchTimeout     time.Duration
	FetchAttempts    int
	RenderTimeout    time.Duration
	Workers          int
	UserAgent        string
	Cookie           string
	CookieFile       string
	CloudflareBypass bool
	ChromePath       string
	Headful          bool
	ProfilesDir      string
	Output           string
	DefaultURL       string
}

const (
	DefaultFetchTimeout  = 15 * time.Second
	DefaultRenderTimeout = 60 * time.Second
	DefaultWorkers       = 4
)

func DefaultConfig() *Config {
	return &Config{
		FetchTimeout:  DefaultFetchTimeout,
		FetchAttempts: 1,
		RenderTimeout: DefaultRenderTimeout,
		Workers:       DefaultWorkers,
		Headless:      true,
		Output:        ".",
	}
}

func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// loadYAML reads path over the defaults, so keys missing from older files
// keep their default values.
func loadYAML(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c := DefaultConfig()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}

	return c, nil
}

func LoadMerged(opts Options) (*Config, string, error) {
	if opts.IgnoreConfig {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(ignored config)", nil
	}

	activePath, err := ActiveConfigPath()
	if err == ErrNoConfig || activePath == "" {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(default config in memory)\nRun `mangascout config init` to create an actual config\n", nil
	}
	if err != nil {
		return nil, "", err
	}

	cfg, err := loadYAML(activePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config %s: %w", activePath, err)
	}

	mergeConfig(cfg, opts)
	normalizeDefaults(cfg)

	return cfg, activePath, nil
}

func mergeConfig(c *Config, o Options) {
	if o.Debug {
		c.Debug = true
	}
	if o.FetchTimeout > 0 {
		c.FetchTimeout = o.FetchTimeout
	}
	if o.FetchAttempts > 0 {
		c.FetchAttempts = o.FetchAttempts
	}
	if o.RenderTimeout > 0 {
		c.RenderTimeout = o.RenderTimeout
	}
	if o.Workers > 0 {
		c.Workers = o.Workers
	}
	if o.UserAgent != "" {
		c.UserAgent = o.UserAgent
	}
	if o.Cookie != "" {
		c.Cookie = o.Cookie
	}
	if o.CookieFile != "" {
		c.CookieFile = o.CookieFile
	}
	if o.CloudflareBypass {
		c.CloudflareBypass = true
	}
	if o.ChromePath != "" {
		c.ChromePath = o.ChromePath
	}
	if o.Headful {
		c.Headless = false
	}
	if o.ProfilesDir != "" {
		c.ProfilesDir = o.ProfilesDir
	}
	if o.Output != "" {
		c.Output = o.Output
	}
	if o.DefaultURL != "" {
		c.DefaultURL = o.DefaultURL
	}
}

func normalizeDefaults(c *Config) {
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = DefaultFetchTimeout
	}
	if c.FetchAttempts < 1 {
		c.FetchAttempts = 1
	}
	if c.RenderTimeout <= 0 {
		c.RenderTimeout = DefaultRenderTimeout
	}
	if c.Workers < 1 {
		c.Workers = DefaultWorkers
	}
	if c.Output == "" {
		c.Output = "."
	}
}

func (c *Config) Print(w io.Writer) {
	fmt.Fprintf(w, " -fetch_timeout: %s\n", c.FetchTimeout)
	fmt.Fprintf(w, " -fetch_attempts: %d\n", c.FetchAttempts)
	fmt.Fprintf(w, " -render_timeout: %s\n", c.RenderTimeout)
	fmt.Fprintf(w, " -workers: %d\n", c.Workers)
	fmt.Fprintf(w, " -headless: %t\n", c.Headless)
	if c.Debug {
		fmt.Fprintf(w, " -debug: %t\n", c.Debug)
	}
	if c.CloudflareBypass {
		fmt.Fprintf(w, " -cloudflare_bypass: %t\n", c.CloudflareBypass)
	}
	if c.UserAgent != "" {
		fmt.Fprintf(w, " -user_agent: %s\n", c.UserAgent)
	}
	if c.CookieFile != "" {
		fmt.Fprintf(w, " -cookie_file: %s\n", c.CookieFile)
	}
	if c.ChromePath != "" {
		fmt.Fprintf(w, " -chrome_path: %s\n", c.ChromePath)
	}
	fmt.Fprintf(w, " -profiles: %s\n", ProfilesPath(c))
	if c.Output != "" {
		fmt.Fprintf(w, " -output: %s\n", c.Output)
	}
	if c.DefaultURL != "" {
		fmt.Fprintf(w, " -url: %s\n", c.DefaultURL)
	}
}
