// Package render evaluates extraction scripts against pages loaded in a
// headless Chrome.
package render

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/brogergvhs/mangascout/internal/ui"
)

var (
	ErrClosed        = errors.New("renderer closed")
	ErrNotConfigured = errors.New("rendered extraction not configured")
)

// Evaluator loads pageURL, waits for it to settle, evaluates script once
// and returns the string the script produced.
type Evaluator interface {
	Evaluate(ctx context.Context, pageURL, script string) (string, error)
}

// Unavailable is the Evaluator used when no browser is configured.
var Unavailable Evaluator = unavailable{}

type unavailable struct{}

func (unavailable) Evaluate(context.Context, string, string) (string, error) {
	return "", ErrNotConfigured
}

type Options struct {
	ExecPath  string
	Headless  bool
	UserAgent string
	// Cookie is a raw Cookie header value set on every page before
	// navigation.
	Cookie  string
	Timeout time.Duration
	Logger  *ui.Logger
}

const DefaultTimeout = 60 * time.Second

type request struct {
	ctx    context.Context
	url    string
	script string
	reply  chan result
}

type result struct {
	value string
	err   error
}

// Renderer owns one browser. A single goroutine serves all requests, each in
// a fresh tab that is closed once the script has run or the caller gave up.
type Renderer struct {
	reqs chan request
	quit chan struct{}
	done chan struct{}
	once sync.Once

	timeout time.Duration
	log     *ui.Logger

	// tab opens a page context; run drives one request inside it.
	tab func() (context.Context, context.CancelFunc, error)
	run func(ctx context.Context, pageURL, script string) (string, error)

	release func()
}

// New starts the actor. The browser process itself is launched on the
// first request.
func New(opts Options) *Renderer {
	execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-gpu", true),
	)
	if opts.ExecPath != "" {
		execOpts = append(execOpts, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.UserAgent != "" {
		execOpts = append(execOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), execOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	var (
		startOnce sync.Once
		startErr  error
	)
	tab := func() (context.Context, context.CancelFunc, error) {
		startOnce.Do(func() {
			startErr = chromedp.Run(browserCtx)
		})
		if startErr != nil {
			return nil, nil, fmt.Errorf("start browser: %w", startErr)
		}

		ctx, cancel := chromedp.NewContext(browserCtx)

		return ctx, cancel, nil
	}

	cookie := opts.Cookie
	run := func(ctx context.Context, pageURL, script string) (string, error) {
		return navigateAndEvaluate(ctx, pageURL, script, cookie)
	}

	r := newRenderer(tab, run, opts.Timeout, opts.Logger)
	r.release = func() {
		cancelBrowser()
		cancelAlloc()
	}

	return r
}

func newRenderer(
	tab func() (context.Context, context.CancelFunc, error),
	run func(context.Context, string, string) (string, error),
	timeout time.Duration,
	log *ui.Logger,
) *Renderer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	r := &Renderer{
		reqs:    make(chan request),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
		timeout: timeout,
		log:     log,
		tab:     tab,
		run:     run,
	}

	go r.loop()

	return r
}

func (r *Renderer) Evaluate(ctx context.Context, pageURL, script string) (string, error) {
	req := request{
		ctx:    ctx,
		url:    pageURL,
		script: script,
		reply:  make(chan result, 1),
	}

	select {
	case r.reqs <- req:
	case <-ctx.Done():
		return "", ctx.Err()
	case <-r.quit:
		return "", ErrClosed
	}

	select {
	case res := <-req.reply:
		return res.value, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	case <-r.done:
		return "", ErrClosed
	}
}

// Close stops the actor and the browser. Pending callers get ErrClosed.
func (r *Renderer) Close() {
	r.once.Do(func() {
		close(r.quit)
		<-r.done

		if r.release != nil {
			r.release()
		}
	})
}

func (r *Renderer) loop() {
	defer close(r.done)

	for {
		select {
		case <-r.quit:
			return
		case req := <-r.reqs:
			req.reply <- r.serve(req)
		}
	}
}

func (r *Renderer) serve(req request) result {
	if err := req.ctx.Err(); err != nil {
		return result{err: err}
	}
	select {
	case <-r.quit:
		return result{err: ErrClosed}
	default:
	}

	tabCtx, closeTab, err := r.tab()
	if err != nil {
		return result{err: err}
	}
	defer closeTab()

	// the tab dies with the caller's context, taking any pending
	// evaluation with it
	stop := context.AfterFunc(req.ctx, closeTab)
	defer stop()

	go func() {
		select {
		case <-r.quit:
			closeTab()
		case <-tabCtx.Done():
		}
	}()

	runCtx, cancel := context.WithTimeout(tabCtx, r.timeout)
	defer cancel()

	r.log.Debugf("render: evaluating script on %s", req.url)

	value, err := r.run(runCtx, req.url, req.script)
	if err != nil {
		r.log.Debugf("render: %s: %v", req.url, err)
		return result{err: fmt.Errorf("render %s: %w", req.url, err)}
	}

	return result{value: value}
}

func navigateAndEvaluate(ctx context.Context, pageURL, script, cookie string) (string, error) {
	var tasks chromedp.Tasks

	if cookies := cookieParams(cookie, pageURL); len(cookies) > 0 {
		tasks = append(tasks, chromedp.ActionFunc(func(ctx context.Context) error {
			return network.SetCookies(cookies).Do(ctx)
		}))
	}

	var out string
	tasks = append(tasks,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body"),
		chromedp.Evaluate(script, &out),
	)

	if err := chromedp.Run(ctx, tasks); err != nil {
		return "", err
	}

	return out, nil
}

// cookieParams turns a Cookie header value into CDP cookies scoped to
// pageURL.
func cookieParams(header, pageURL string) []*network.CookieParam {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil
	}

	parsed, err := http.ParseCookie(header)
	if err != nil {
		return nil
	}

	out := make([]*network.CookieParam, 0, len(parsed))
	for _, c := range parsed {
		out = append(out, &network.CookieParam{
			Name:  c.Name,
			Value: c.Value,
			URL:   pageURL,
		})
	}

	return out
}
