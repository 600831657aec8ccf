package registry

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/schollz/progressbar/v3"
	"github.com/teamcutter/midna/internal/config"
	"github.com/teamcutter/midna/internal/domain"
	"golang.org/x/sync/errgroup"
)

const userAgent = "midna"

var _ domain.Registry = (*AURRegistry)(nil)

type AURRegistry struct {
	client      *http.Client
	indexURL    string
	searchURL   string
	indexPath   string
	maxParallel int
	progress    io.Writer
}

func New(cfg *config.Config, store domain.Store) *AURRegistry {
	return &AURRegistry{
		client:      &http.Client{Timeout: cfg.HTTPTimeout},
		indexURL:    cfg.IndexURL,
		searchURL:   cfg.SearchURL,
		indexPath:   store.IndexPath(),
		maxParallel: max(cfg.MaxParallel, 1),
	}
}

// WithProgress makes DownloadIndex draw a progress bar on w.
func (r *AURRegistry) WithProgress(w io.Writer) *AURRegistry {
	r.progress = w
	return r
}

func (r *AURRegistry) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", domain.ErrNetwork, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: unexpected status: %d", domain.ErrNetwork, resp.StatusCode)
	}

	return resp, nil
}

// DownloadIndex fetches the package index and replaces the cached copy with
// the response body as received.
func (r *AURRegistry) DownloadIndex(ctx context.Context) ([]byte, error) {
	resp, err := r.get(ctx, r.indexURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	var w io.Writer = &buf
	if r.progress != nil {
		bar := progressbar.NewOptions64(resp.ContentLength,
			progressbar.OptionSetWriter(r.progress),
			progressbar.OptionSetDescription("Downloading package index"),
			progressbar.OptionShowBytes(true),
			progressbar.OptionClearOnFinish(),
		)
		defer bar.Finish()
		w = io.MultiWriter(&buf, bar)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return nil, fmt.Errorf("%w: reading index: %v", domain.ErrNetwork, err)
	}

	if err := os.MkdirAll(filepath.Dir(r.indexPath), 0755); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	if err := os.WriteFile(r.indexPath, buf.Bytes(), 0644); err != nil {
		return nil, fmt.Errorf("%w: writing index: %v", domain.ErrStorage, err)
	}

	return buf.Bytes(), nil
}

func (r *AURRegistry) Search(ctx context.Context, query string) (*domain.SearchResult, error) {
	resp, err := r.get(ctx, r.searchURL+url.QueryEscape(query))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result domain.SearchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decoding search response: %v", domain.ErrParse, err)
	}

	if result.Type == "error" {
		return nil, fmt.Errorf("%w: %s", domain.ErrNetwork, result.Error)
	}

	return &result, nil
}

// SearchAll runs one search per query and returns the results in query order.
func (r *AURRegistry) SearchAll(ctx context.Context, queries []string) ([]*domain.SearchResult, error) {
	results := make([]*domain.SearchResult, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(len(queries), r.maxParallel))

	for i, q := range queries {
		g.Go(func() error {
			res, err := r.Search(gctx, q)
			if err != nil {
				return fmt.Errorf("searching %q: %w", q, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// FindLocal reports whether name is a line of the cached index. A gzipped
// index is decompressed on the fly.
func (r *AURRegistry) FindLocal(name string) (bool, error) {
	f, err := os.Open(r.indexPath)
	if os.IsNotExist(err) {
		return false, fmt.Errorf("%w: no package index at %s, run update first", domain.ErrStorage, r.indexPath)
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	var src io.Reader = br

	if magic, _ := br.Peek(2); len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		gzr, err := gzip.NewReader(br)
		if err != nil {
			return false, fmt.Errorf("%w: gzip: %v", domain.ErrParse, err)
		}
		defer gzr.Close()
		src = gzr
	}

	scanner := bufio.NewScanner(src)
	for scanner.Scan() {
		if strings.TrimRight(scanner.Text(), "\r") == name {
			return true, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return false, fmt.Errorf("%w: reading index: %v", domain.ErrParse, err)
	}

	return false, nil
}
