package tiles

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"sync"
	"time"

	"midnightscout/internal/logging"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
)

const (
	defaultSampleSize  = 64
	defaultConcurrency = 4
	maxTileBytes       = 2 << 20
)

// Fetcher downloads tiles for a Layer and keeps decoded, downscaled copies.
// It is safe for concurrent use: fetches run in bubbletea commands while the
// view reads the cache.
type Fetcher struct {
	layer       Layer
	client      *http.Client
	userAgent   string
	sampleSize  int
	concurrency int

	mu      sync.RWMutex
	cache   map[Coord]image.Image
	failed  map[Coord]error
	pending map[Coord]bool
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient sets the HTTP client used for tile requests.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) { f.client = c }
}

// WithUserAgent sets the User-Agent header; tile CDNs reject anonymous clients.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) { f.userAgent = ua }
}

// WithSampleSize sets the edge length tiles are downscaled to after decoding.
func WithSampleSize(n int) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.sampleSize = n
		}
	}
}

// WithConcurrency bounds the number of parallel downloads.
func WithConcurrency(n int) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.concurrency = n
		}
	}
}

// NewFetcher creates a fetcher for layer.
func NewFetcher(layer Layer, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		layer:       layer,
		client:      &http.Client{Timeout: 20 * time.Second},
		sampleSize:  defaultSampleSize,
		concurrency: defaultConcurrency,
		cache:       make(map[Coord]image.Image),
		failed:      make(map[Coord]error),
		pending:     make(map[Coord]bool),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Layer returns the layer this fetcher serves.
func (f *Fetcher) Layer() Layer { return f.layer }

// Tile returns the cached image for c, if it has been fetched.
func (f *Fetcher) Tile(c Coord) (image.Image, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	img, ok := f.cache[c.Wrap()]
	return img, ok
}

// Claim returns the coords that are neither cached, failed nor already being
// fetched, and marks them pending. Callers must pass the result to Fetch.
func (f *Fetcher) Claim(coords []Coord) []Coord {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []Coord
	seen := make(map[Coord]bool, len(coords))
	for _, c := range coords {
		c = c.Wrap()
		if !c.Valid() || seen[c] {
			continue
		}
		seen[c] = true
		if _, ok := f.cache[c]; ok {
			continue
		}
		if _, ok := f.failed[c]; ok {
			continue
		}
		if f.pending[c] {
			continue
		}
		f.pending[c] = true
		out = append(out, c)
	}
	return out
}

// Result summarizes one Fetch call.
type Result struct {
	Loaded int
	Failed int
}

// Fetch downloads coords in parallel. Individual failures are remembered for
// the session and logged; they never fail the batch.
func (f *Fetcher) Fetch(ctx context.Context, coords []Coord) Result {
	var (
		res   Result
		resMu sync.Mutex
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for _, c := range coords {
		c := c
		g.Go(func() error {
			img, err := f.fetchOne(ctx, c)

			f.mu.Lock()
			delete(f.pending, c)
			if err != nil {
				f.failed[c] = err
			} else {
				f.cache[c] = img
			}
			f.mu.Unlock()

			resMu.Lock()
			if err != nil {
				res.Failed++
				logging.TilesWarn("tile %s failed: %v", c, err)
			} else {
				res.Loaded++
			}
			resMu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	logging.TilesDebug("fetched %d tiles, %d failed", res.Loaded, res.Failed)
	return res
}

func (f *Fetcher) fetchOne(ctx context.Context, c Coord) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.layer.URL(c), nil)
	if err != nil {
		return nil, err
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	src, _, err := image.Decode(io.LimitReader(resp.Body, maxTileBytes))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return f.downscale(src), nil
}

func (f *Fetcher) downscale(src image.Image) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, f.sampleSize, f.sampleSize))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// Stats reports cache occupancy.
func (f *Fetcher) Stats() (cached, failed, pending int) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.cache), len(f.failed), len(f.pending)
}
