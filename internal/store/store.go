package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/teamcutter/midna/internal/config"
	"github.com/teamcutter/midna/internal/domain"
)

const (
	historyFile = "history.db"
	configFile  = "config.toml"
)

var _ domain.Store = (*Store)(nil)

// Store is the on-disk directory holding the package index and one clone
// directory per package.
type Store struct {
	sync.RWMutex
	root      string
	indexFile string
}

func New(dataDir, name, indexFile string) *Store {
	return &Store{
		root:      filepath.Join(dataDir, name),
		indexFile: indexFile,
	}
}

// Open resolves the data directory for cfg and returns a store rooted in it.
func Open(cfg *config.Config) (*Store, error) {
	dataDir := cfg.DataDir
	if dataDir == "" {
		dir, err := config.DataDir()
		if err != nil {
			return nil, err
		}
		dataDir = dir
	}

	return New(dataDir, cfg.StoreName, cfg.IndexFile), nil
}

func (s *Store) EnsureRoot() error {
	s.Lock()
	defer s.Unlock()

	if err := os.MkdirAll(s.root, 0755); err != nil {
		return fmt.Errorf("%w: creating %s: %v", domain.ErrStorage, s.root, err)
	}
	return nil
}

func (s *Store) Root() string {
	return s.root
}

func (s *Store) PackagePath(name string) string {
	return filepath.Join(s.root, name)
}

func (s *Store) IndexPath() string {
	return filepath.Join(s.root, s.indexFile)
}

func (s *Store) HistoryPath() string {
	return filepath.Join(s.root, historyFile)
}

// IsReserved reports whether name is one of the store's own files and so can
// never be a package directory.
func (s *Store) IsReserved(name string) bool {
	return name == s.indexFile || name == historyFile || name == configFile
}

func (s *Store) Has(name string) bool {
	s.RLock()
	defer s.RUnlock()
	info, err := os.Stat(s.PackagePath(name))
	return err == nil && info.IsDir()
}

// Packages lists the names of all cloned source directories.
func (s *Store) Packages() ([]string, error) {
	s.RLock()
	defer s.RUnlock()

	entries, err := os.ReadDir(s.root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Remove deletes the clone directory of name. Anything that is not a plain
// directory directly under the root is left alone.
func (s *Store) Remove(name string) error {
	if err := domain.ValidateName(name); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	if s.IsReserved(name) {
		return fmt.Errorf("%w: %s is not a package directory", domain.ErrStorage, name)
	}

	s.Lock()
	defer s.Unlock()

	path := s.PackagePath(name)
	info, err := os.Lstat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s has not been fetched", domain.ErrStorage, name)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a package directory", domain.ErrStorage, name)
	}

	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	return nil
}

// Clean removes every cloned source directory, keeping the index, history
// and config.
func (s *Store) Clean() ([]string, error) {
	names, err := s.Packages()
	if err != nil {
		return nil, err
	}

	for _, name := range names {
		if err := s.Remove(name); err != nil {
			return nil, err
		}
	}
	return names, nil
}

func (s *Store) Size() (int64, error) {
	s.RLock()
	defer s.RUnlock()

	var size int64

	err := filepath.Walk(s.root, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	if os.IsNotExist(err) {
		return 0, nil
	}

	return size, err
}
