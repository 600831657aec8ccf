package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/teamcutter/midna/internal/domain"
)

// markerFile is written into .git once a clone has completed.
const markerFile = "midna-fetched"

var _ domain.Fetcher = (*GitFetcher)(nil)

type Cloner interface {
	Clone(ctx context.Context, url, dir string, progress io.Writer) error
}

type GitCloner struct{}

func (GitCloner) Clone(ctx context.Context, url, dir string, progress io.Writer) error {
	opts := &git.CloneOptions{URL: url}
	if progress != nil {
		opts.Progress = progress
	}

	_, err := git.PlainCloneContext(ctx, dir, false, opts)
	if errors.Is(err, transport.ErrRepositoryNotFound) {
		return fmt.Errorf("repository %s not found", url)
	}
	return err
}

type GitFetcher struct {
	store    domain.Store
	cloner   Cloner
	baseURL  string
	logger   *log.Logger
	progress io.Writer
}

func New(store domain.Store, baseURL string, logger *log.Logger) *GitFetcher {
	return &GitFetcher{
		store:   store,
		cloner:  GitCloner{},
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

func (f *GitFetcher) WithCloner(c Cloner) *GitFetcher {
	f.cloner = c
	return f
}

// WithProgress streams clone progress to w.
func (f *GitFetcher) WithProgress(w io.Writer) *GitFetcher {
	f.progress = w
	return f
}

func (f *GitFetcher) URL(name string) string {
	return fmt.Sprintf("%s/%s.git", f.baseURL, name)
}

// Fetch clones the build recipe for name unless its directory already
// exists. It reports whether a clone took place.
func (f *GitFetcher) Fetch(ctx context.Context, name string) (bool, error) {
	if err := domain.ValidateName(name); err != nil {
		return false, fmt.Errorf("%w: %w", domain.ErrClone, err)
	}
	if f.store.IsReserved(name) {
		return false, fmt.Errorf("%w: %q is reserved by the local store", domain.ErrClone, name)
	}

	dir := f.store.PackagePath(name)

	info, err := os.Lstat(dir)
	switch {
	case err == nil && info.IsDir():
		f.logger.Warn("source already fetched, skipping clone", "package", name, "path", dir)
		if _, err := os.Stat(filepath.Join(dir, ".git", markerFile)); err != nil {
			f.logger.Warn("source directory has no completion marker and may be a partial clone", "package", name)
		}
		return false, nil
	case err == nil:
		return false, fmt.Errorf("%w: %s exists and is not a directory", domain.ErrClone, dir)
	case !os.IsNotExist(err):
		return false, fmt.Errorf("%w: %v", domain.ErrClone, err)
	}

	url := f.URL(name)
	f.logger.Debug("cloning", "url", url, "dir", dir)

	if err := f.cloner.Clone(ctx, url, dir, f.progress); err != nil {
		// dir did not exist before this call, so whatever is there now is ours
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			f.logger.Warn("failed to remove partial clone", "package", name, "path", dir, "err", rmErr)
		}
		return false, fmt.Errorf("%w: %s: %v", domain.ErrClone, name, err)
	}

	if err := writeMarker(dir, url); err != nil {
		f.logger.Warn("failed to write completion marker", "package", name, "err", err)
	}

	return true, nil
}

func writeMarker(dir, url string) error {
	gitDir := filepath.Join(dir, ".git")
	if err := os.MkdirAll(gitDir, 0755); err != nil {
		return err
	}
	content := fmt.Sprintf("%s\n%s\n", url, time.Now().UTC().Format(time.RFC3339))
	return os.WriteFile(filepath.Join(gitDir, markerFile), []byte(content), 0644)
}
