package files

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Fetcher delivers the raw bytes of a catalog file.
type Fetcher interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
	// Stat reports whether name is reachable without downloading it.
	Stat(ctx context.Context, name string) error
	// Source describes where files come from, for logs and health output.
	Source() string
}

// DirFetcher reads catalog files from a local directory.
type DirFetcher struct {
	dir string
}

// NewDirFetcher creates a fetcher rooted at dir.
func NewDirFetcher(dir string) *DirFetcher {
	return &DirFetcher{dir: dir}
}

// Fetch reads name from the directory. Only the base name is used so a
// request can never escape the source directory.
func (f *DirFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path(name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetchFailed, name, err)
	}
	return data, nil
}

// Stat checks that name exists and is a regular file.
func (f *DirFetcher) Stat(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := os.Stat(f.path(name))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrFetchFailed, name, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrFetchFailed, name)
	}
	return nil
}

// Source returns the directory path.
func (f *DirFetcher) Source() string {
	return f.dir
}

func (f *DirFetcher) path(name string) string {
	return filepath.Join(f.dir, filepath.Base(name))
}

// HTTPFetcher downloads catalog files from a static base URL with one GET per
// load. There is no retry; the request context bounds the call.
type HTTPFetcher struct {
	baseURL string
	client  *http.Client
}

// NewHTTPFetcher creates a fetcher for files served under baseURL.
func NewHTTPFetcher(baseURL string, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// WithClient replaces the HTTP client.
func (f *HTTPFetcher) WithClient(c *http.Client) *HTTPFetcher {
	f.client = c
	return f
}

// Fetch downloads name. Any non-2xx status is a fetch failure.
func (f *HTTPFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	resp, err := f.do(ctx, http.MethodGet, name)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read body: %v", ErrFetchFailed, name, err)
	}
	return data, nil
}

// Stat issues a HEAD request for name.
func (f *HTTPFetcher) Stat(ctx context.Context, name string) error {
	resp, err := f.do(ctx, http.MethodHead, name)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// Source returns the base URL.
func (f *HTTPFetcher) Source() string {
	return f.baseURL
}

func (f *HTTPFetcher) do(ctx context.Context, method, name string) (*http.Response, error) {
	target := f.baseURL + "/" + url.PathEscape(name)
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetchFailed, name, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrFetchFailed, name, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s: status %d", ErrFetchFailed, name, resp.StatusCode)
	}
	return resp, nil
}
