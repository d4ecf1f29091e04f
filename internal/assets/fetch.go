package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/skinforge/internal/config"
)

// Fetch errors.
var (
	ErrNotFound = errors.New("asset not found")
	ErrFetch    = errors.New("asset fetch failed")
	ErrTooLarge = errors.New("asset too large")
)

// sourceKind is the cache namespace for raw skin bytes.
const sourceKind = "src"

// Fetcher loads skin bytes from local paths or http(s) URLs.
type Fetcher struct {
	client   *http.Client
	cache    Cache
	ttl      time.Duration
	maxBytes int64
	log      *zap.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithCache stores fetched bytes in c for ttl.
func WithCache(c Cache, ttl time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.cache = c
		f.ttl = ttl
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) { f.client = c }
}

// WithMaxBytes limits the size of one asset. Zero disables the limit.
func WithMaxBytes(n int64) FetcherOption {
	return func(f *Fetcher) { f.maxBytes = n }
}

// WithLogger sets the logger used for cache failures.
func WithLogger(l *zap.Logger) FetcherOption {
	return func(f *Fetcher) { f.log = l }
}

// NewFetcher creates a fetcher with the given request timeout.
func NewFetcher(timeout time.Duration, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client: &http.Client{Timeout: timeout},
		cache:  NullCache{},
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewFetcherFromConfig builds a fetcher and its cache from the assets section.
// The caller owns the returned cache and must close it.
func NewFetcherFromConfig(ctx context.Context, cfg config.AssetsConfig, log *zap.Logger) (*Fetcher, Cache, error) {
	cache, err := OpenCache(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	f := NewFetcher(cfg.FetchTimeout,
		WithCache(cache, cfg.CacheTTL),
		WithMaxBytes(cfg.MaxBytes),
		WithLogger(log),
	)
	return f, cache, nil
}

// OpenCache creates the cache backend named in cfg.
func OpenCache(ctx context.Context, cfg config.AssetsConfig) (Cache, error) {
	switch cfg.Cache {
	case config.CacheRedis:
		return NewRedisCache(ctx, RedisConfig{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	case config.CacheNone:
		return NewNullCache(), nil
	case config.CacheMemory, "":
		return NewMemoryCache(cfg.CacheEntries), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache)
	}
}

// Cache returns the cache backing the fetcher.
func (f *Fetcher) Cache() Cache {
	return f.cache
}

// IsRemote reports whether ref is fetched over http.
func IsRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// Fetch returns the bytes behind ref, consulting the cache first.
// Cache failures are logged and never fail the fetch.
func (f *Fetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	key := Key(sourceKind, ref)
	if data, ok, err := f.cache.Get(ctx, key); err != nil {
		f.log.Warn("cache get failed", zap.String("ref", ref), zap.Error(err))
	} else if ok {
		return data, nil
	}

	var (
		data []byte
		err  error
	)
	if IsRemote(ref) {
		data, err = f.fetchHTTP(ctx, ref)
	} else {
		data, err = f.fetchFile(ctx, ref)
	}
	if err != nil {
		return nil, err
	}

	if err := f.cache.Set(ctx, key, data, f.ttl); err != nil {
		f.log.Warn("cache set failed", zap.String("ref", ref), zap.Error(err))
	}
	return data, nil
}

// Invalidate drops the cached bytes of ref so the next Fetch reads it again.
func (f *Fetcher) Invalidate(ctx context.Context, ref string) error {
	return f.cache.Delete(ctx, Key(sourceKind, ref))
}

func (f *Fetcher) fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, url, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: %s: status %d", ErrFetch, url, resp.StatusCode)
	}
	return f.readAll(resp.Body, url)
}

func (f *Fetcher) fetchFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer file.Close()
	return f.readAll(file, path)
}

func (f *Fetcher) readAll(r io.Reader, ref string) ([]byte, error) {
	if f.maxBytes <= 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrFetch, ref, err)
		}
		return data, nil
	}
	data, err := io.ReadAll(io.LimitReader(r, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, ref, err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, ref, f.maxBytes)
	}
	return data, nil
}
