// Package loader resolves a collected-data document from a local file, a
// remote URL, or a folder of per-collector JSON fragments, materializing a
// collected.Document regardless of source.
package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/alevsk/iamgraph/internal/collected"
	"github.com/alevsk/iamgraph/internal/logger"
)

// Options configures a Loader, sourced from config.Config.Loader (§6.4).
type Options struct {
	MaxConcurrency int
	HTTPTimeout    time.Duration
}

// DefaultOptions mirrors the config package's defaults.
func DefaultOptions() *Options {
	return &Options{MaxConcurrency: 4, HTTPTimeout: 30 * time.Second}
}

// Loader fetches and assembles a collected.Document from one source. It is
// safe for concurrent use: each remote host gets its own circuit breaker,
// guarded by a mutex, and fragment fetches are bounded by a worker pool
// sized from opts.MaxConcurrency.
type Loader struct {
	opts     *Options
	client   *http.Client
	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

// New constructs a Loader. A nil opts substitutes DefaultOptions.
func New(opts *Options) *Loader {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Loader{
		opts:     opts,
		client:   &http.Client{Timeout: opts.HTTPTimeout},
		breakers: map[string]*gobreaker.CircuitBreaker{},
	}
}

// Load resolves source into a collected.Document. source is one of:
//   - a path to a local JSON file holding a whole document
//   - an http(s) URL serving a whole document
//   - a path to a local directory containing a manifest.json that names
//     per-collector fragments (§5's "folder of per-collector JSON fragments")
func (l *Loader) Load(ctx context.Context, source string) (*collected.Document, error) {
	if source == "" {
		return nil, fmt.Errorf("loader: empty source")
	}

	if isRemoteURL(source) {
		body, err := l.fetch(ctx, source)
		if err != nil {
			return nil, err
		}
		return decodeDocument(body)
	}

	info, err := os.Stat(source)
	if err != nil {
		return nil, fmt.Errorf("loader: cannot stat source: %w", err)
	}
	if info.IsDir() {
		return l.loadFolder(ctx, source)
	}

	body, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("loader: cannot read %s: %w", source, err)
	}
	return decodeDocument(body)
}

func decodeDocument(body []byte) (*collected.Document, error) {
	var doc collected.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("loader: malformed collected-data document: %w", err)
	}
	return &doc, nil
}

func isRemoteURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// fragmentManifest names each per-collector fragment by section key, each
// pointing at either a relative local path or a remote URL.
type fragmentManifest struct {
	Fragments map[string]string `json:"fragments"`
}

func (l *Loader) loadFolder(ctx context.Context, dir string) (*collected.Document, error) {
	manifestPath := filepath.Join(dir, "manifest.json")
	manifestBytes, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("loader: folder source requires a manifest.json: %w", err)
	}
	var manifest fragmentManifest
	if err := json.Unmarshal(manifestBytes, &manifest); err != nil {
		return nil, fmt.Errorf("loader: malformed manifest.json: %w", err)
	}

	type fragmentResult struct {
		name    string
		content []byte
		err     error
	}

	names := make([]string, 0, len(manifest.Fragments))
	for name := range manifest.Fragments {
		names = append(names, name)
	}

	sem := make(chan struct{}, l.maxConcurrency())
	results := make(chan fragmentResult, len(names))
	var wg sync.WaitGroup

	for _, name := range names {
		location := manifest.Fragments[name]
		if !filepath.IsAbs(location) && !isRemoteURL(location) {
			location = filepath.Join(dir, location)
		}

		wg.Add(1)
		go func(name, location string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			var content []byte
			var err error
			if isRemoteURL(location) {
				content, err = l.fetch(ctx, location)
			} else {
				content, err = os.ReadFile(location)
			}
			results <- fragmentResult{name: name, content: content, err: err}
		}(name, location)
	}

	wg.Wait()
	close(results)

	raw := map[string]json.RawMessage{}
	for r := range results {
		if r.err != nil {
			logger.Warn().Err(r.err).Str("fragment", r.name).Msg("loader: skipping unreadable fragment")
			continue
		}
		raw[r.name] = r.content
	}

	combined, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("loader: failed to merge fragments: %w", err)
	}

	var sections collected.Sections
	if err := json.Unmarshal(combined, &sections); err != nil {
		return nil, fmt.Errorf("loader: failed to decode merged fragments: %w", err)
	}

	return &collected.Document{Data: sections}, nil
}

func (l *Loader) maxConcurrency() int {
	if l.opts.MaxConcurrency <= 0 {
		return 1
	}
	return l.opts.MaxConcurrency
}

// fetch performs a single HTTP GET wrapped in a per-host circuit breaker, so
// repeated failures against one collector endpoint fail fast instead of
// retry-storming the rest of the fragment fan-out.
func (l *Loader) fetch(ctx context.Context, source string) ([]byte, error) {
	cb := l.breakerFor(source)

	result, err := cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, fmt.Errorf("loader: failed to build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "iamgraph/1.0")

		resp, err := l.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("loader: fetch failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("loader: fetch %s returned status %s", source, resp.Status)
		}

		buf := make([]byte, 0, 4096)
		chunk := make([]byte, 4096)
		for {
			n, rerr := resp.Body.Read(chunk)
			if n > 0 {
				buf = append(buf, chunk[:n]...)
			}
			if rerr != nil {
				break
			}
		}
		return buf, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

func (l *Loader) breakerFor(source string) *gobreaker.CircuitBreaker {
	host := source
	if u, err := url.Parse(source); err == nil && u.Host != "" {
		host = u.Host
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if cb, ok := l.breakers[host]; ok {
		return cb
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "loader:" + host,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("loader: circuit breaker state change")
		},
	})
	l.breakers[host] = cb
	return cb
}
