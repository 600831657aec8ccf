package domain

import (
	"context"
)

type Store interface {
	EnsureRoot() error
	Root() string
	PackagePath(name string) string
	IndexPath() string
	Has(name string) bool
	IsReserved(name string) bool
}

type Registry interface {
	DownloadIndex(ctx context.Context) ([]byte, error)
	Search(ctx context.Context, query string) (*SearchResult, error)
	SearchAll(ctx context.Context, queries []string) ([]*SearchResult, error)
	FindLocal(name string) (bool, error)
}

type Fetcher interface {
	Fetch(ctx context.Context, name string) (bool, error)
}

type History interface {
	Add(rec *InstallRecord) error
	Get(name string) (*InstallRecord, error)
	List() ([]*InstallRecord, error)
	Remove(name string) error
}
