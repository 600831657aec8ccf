package domain

import "time"

type SearchEntry struct {
	ID             int     `json:"ID"`
	Name           string  `json:"Name"`
	PackageBase    string  `json:"PackageBase"`
	Version        string  `json:"Version"`
	Description    string  `json:"Description"`
	URL            string  `json:"URL"`
	Maintainer     string  `json:"Maintainer"`
	NumVotes       int     `json:"NumVotes"`
	Popularity     float64 `json:"Popularity"`
	OutOfDate      *int64  `json:"OutOfDate"`
	FirstSubmitted int64   `json:"FirstSubmitted"`
	LastModified   int64   `json:"LastModified"`
}

type SearchResult struct {
	Version     int           `json:"version"`
	Type        string        `json:"type"`
	ResultCount int           `json:"resultcount"`
	Results     []SearchEntry `json:"results"`
	Error       string        `json:"error,omitempty"`
}

// PackageInfo holds the fields of a built package's .PKGINFO that midna cares about.
type PackageInfo struct {
	Name        string
	Base        string
	Version     string
	Description string
	Arch        string
	URL         string
	Size        int64
}

type InstallRecord struct {
	Name        string    `json:"name"`
	Version     string    `json:"version"`
	Artifact    string    `json:"artifact"`
	Path        string    `json:"path"`
	InstalledAt time.Time `json:"installed_at"`

	// Info is the built package's metadata when its .PKGINFO could be read.
	Info *PackageInfo `json:"-"`
	// Previous is the history row this install replaced, if any.
	Previous *InstallRecord `json:"-"`
}
