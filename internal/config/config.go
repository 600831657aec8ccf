package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/teamcutter/midna/internal/domain"
)

const (
	DefaultStoreName = "midna"
	configFile       = "config.toml"
)

type Config struct {
	DataDir        string        `toml:"data_dir,omitempty"`
	StoreName      string        `toml:"store_name"`
	IndexFile      string        `toml:"index_file"`
	IndexURL       string        `toml:"index_url"`
	SearchURL      string        `toml:"search_url"`
	CloneURL       string        `toml:"clone_url"`
	BuildCommand   string        `toml:"build_command"`
	BuildArgs      []string      `toml:"build_args"`
	InstallCommand string        `toml:"install_command"`
	InstallArgs    []string      `toml:"install_args"`
	ElevateCommand string        `toml:"elevate_command"`
	NoConfirmFlag  string        `toml:"noconfirm_flag"`
	ArtifactExts   []string      `toml:"artifact_exts"`
	HTTPTimeout    time.Duration `toml:"http_timeout"`
	MaxParallel    int           `toml:"max_parallel"`
}

func DefaultConfig() *Config {
	return &Config{
		StoreName:      DefaultStoreName,
		IndexFile:      "packages_list",
		IndexURL:       "https://aur.archlinux.org/packages.gz",
		SearchURL:      "https://aur.archlinux.org/rpc/?v=5&type=search&arg=",
		CloneURL:       "https://aur.archlinux.org",
		BuildCommand:   "makepkg",
		BuildArgs:      []string{"-s", "--noconfirm"},
		InstallCommand: "pacman",
		InstallArgs:    []string{"-U"},
		ElevateCommand: "sudo",
		NoConfirmFlag:  "--noconfirm",
		ArtifactExts:   []string{".pkg.tar.zst", ".pkg.tar.xz", ".pkg.tar.gz"},
		HTTPTimeout:    60 * time.Second,
		MaxParallel:    4,
	}
}

// DataDir resolves the user's local data directory.
func DataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" && filepath.IsAbs(xdg) {
		return xdg, nil
	}

	if runtime.GOOS == "windows" {
		if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
			return dir, nil
		}
		return "", fmt.Errorf("%w: %%LOCALAPPDATA%% is not set", domain.ErrEnvironmentUnavailable)
	}

	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "", fmt.Errorf("%w: no home directory", domain.ErrEnvironmentUnavailable)
	}

	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Application Support"), nil
	}
	return filepath.Join(home, ".local", "share"), nil
}

// DefaultPath is where Load looks when no explicit path is given.
func DefaultPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultStoreName, configFile), nil
}

// Load reads the config at path. An empty path means DefaultPath; a missing
// default file is created with the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return nil, fmt.Errorf("config file %s does not exist", path)
		}
		if err := Save(path, cfg); err != nil {
			return nil, fmt.Errorf("%w: writing default config: %v", domain.ErrStorage, err)
		}
		return cfg, nil
	}

	loaded := &Config{}
	md, err := toml.DecodeFile(path, loaded)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrParse, path, err)
	}

	cfg = merge(cfg, loaded, md)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrParse, path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// merge copies every key the file actually sets onto base, so an explicit
// empty value (elevate_command = "") is kept rather than replaced by the
// default.
func merge(base, over *Config, md toml.MetaData) *Config {
	set := func(key string, apply func()) {
		if md.IsDefined(key) {
			apply()
		}
	}

	set("data_dir", func() { base.DataDir = over.DataDir })
	set("store_name", func() { base.StoreName = over.StoreName })
	set("index_file", func() { base.IndexFile = over.IndexFile })
	set("index_url", func() { base.IndexURL = over.IndexURL })
	set("search_url", func() { base.SearchURL = over.SearchURL })
	set("clone_url", func() { base.CloneURL = over.CloneURL })
	set("build_command", func() { base.BuildCommand = over.BuildCommand })
	set("build_args", func() { base.BuildArgs = over.BuildArgs })
	set("install_command", func() { base.InstallCommand = over.InstallCommand })
	set("install_args", func() { base.InstallArgs = over.InstallArgs })
	set("elevate_command", func() { base.ElevateCommand = over.ElevateCommand })
	set("noconfirm_flag", func() { base.NoConfirmFlag = over.NoConfirmFlag })
	set("artifact_exts", func() { base.ArtifactExts = over.ArtifactExts })
	set("http_timeout", func() { base.HTTPTimeout = over.HTTPTimeout })
	set("max_parallel", func() { base.MaxParallel = over.MaxParallel })
	return base
}

func (c *Config) validate() error {
	switch {
	case c.StoreName == "":
		return fmt.Errorf("store_name must not be empty")
	case c.IndexFile == "":
		return fmt.Errorf("index_file must not be empty")
	case c.BuildCommand == "":
		return fmt.Errorf("build_command must not be empty")
	case c.InstallCommand == "":
		return fmt.Errorf("install_command must not be empty")
	case len(c.ArtifactExts) == 0:
		return fmt.Errorf("artifact_exts must list at least one extension")
	case c.MaxParallel < 1:
		return fmt.Errorf("max_parallel must be at least 1, got %d", c.MaxParallel)
	}
	return nil
}
