package manager

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/teamcutter/midna/internal/config"
	"github.com/teamcutter/midna/internal/domain"
	"github.com/teamcutter/midna/internal/extractor"
	"github.com/teamcutter/midna/internal/runner"
)

type Options struct {
	BuildCommand   string
	BuildArgs      []string
	InstallCommand string
	InstallArgs    []string
	NoConfirmFlag  string
	ArtifactExts   []string
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		BuildCommand:   cfg.BuildCommand,
		BuildArgs:      cfg.BuildArgs,
		InstallCommand: cfg.InstallCommand,
		InstallArgs:    cfg.InstallArgs,
		NoConfirmFlag:  cfg.NoConfirmFlag,
		ArtifactExts:   cfg.ArtifactExts,
	}
}

type Manager struct {
	store   domain.Store
	fetcher domain.Fetcher
	runner  runner.Runner
	history domain.History
	opts    Options
	logger  *log.Logger

	// OnStage, when set, is called as the pipeline enters each stage.
	OnStage func(name string, stage domain.Stage)
}

func New(
	store domain.Store,
	fetcher domain.Fetcher,
	r runner.Runner,
	history domain.History,
	opts Options,
	logger *log.Logger,
) *Manager {

	return &Manager{
		store:   store,
		fetcher: fetcher,
		runner:  r,
		history: history,
		opts:    opts,
		logger:  logger,
	}
}

func (m *Manager) enter(name string, stage domain.Stage) {
	m.logger.Debug("pipeline stage", "package", name, "stage", stage.String())
	if m.OnStage != nil {
		m.OnStage(name, stage)
	}
}

func fail(name string, stage domain.Stage, err error) error {
	return &domain.StageError{Package: name, Stage: stage, Err: err}
}

// Install fetches, builds and installs name. Each stage only runs when the
// previous one succeeded; a failure is returned as *domain.StageError.
func (m *Manager) Install(ctx context.Context, name string, verbose bool) (*domain.InstallRecord, error) {
	m.enter(name, domain.StageFetching)
	if _, err := m.fetcher.Fetch(ctx, name); err != nil {
		return nil, fail(name, domain.StageFetching, err)
	}

	srcDir := m.store.PackagePath(name)

	m.enter(name, domain.StageBuilding)
	build := runner.Command{
		Name: m.opts.BuildCommand,
		Args: m.opts.BuildArgs,
		Dir:  srcDir,
	}
	if err := m.runner.Run(ctx, build, verbose); err != nil {
		return nil, fail(name, domain.StageBuilding, fmt.Errorf("%w: %v", domain.ErrBuild, err))
	}

	m.enter(name, domain.StageLocatingArtifact)
	artifact, err := extractor.Locate(srcDir, name, m.opts.ArtifactExts)
	if err != nil {
		return nil, fail(name, domain.StageLocatingArtifact, err)
	}

	m.enter(name, domain.StageInstalling)
	args := append([]string{}, m.opts.InstallArgs...)
	if m.opts.NoConfirmFlag != "" {
		args = append(args, m.opts.NoConfirmFlag)
	}
	install := runner.Command{
		Name: m.opts.InstallCommand,
		Args: append(args, artifact),
		Dir:  srcDir,
	}
	if err := m.runner.RunElevated(ctx, install, verbose); err != nil {
		return nil, fail(name, domain.StageInstalling, fmt.Errorf("%w: %v", domain.ErrInstall, err))
	}

	rec := &domain.InstallRecord{
		Name:        name,
		Artifact:    artifact,
		Path:        srcDir,
		InstalledAt: time.Now(),
	}

	if info, err := extractor.ReadPKGINFO(artifact); err != nil {
		m.logger.Warn("could not read package metadata", "artifact", artifact, "err", err)
	} else {
		rec.Version = info.Version
		rec.Info = info
	}

	if m.history != nil {
		prev, err := m.history.Get(name)
		if err != nil {
			m.logger.Warn("failed to read install history", "package", name, "err", err)
		}
		rec.Previous = prev

		if err := m.history.Add(rec); err != nil {
			m.logger.Warn("failed to record install", "package", name, "err", err)
		}
	}

	m.enter(name, domain.StageDone)
	return rec, nil
}

// Installed returns the recorded installs sorted by name. Without a history
// it returns nothing.
func (m *Manager) Installed() ([]*domain.InstallRecord, error) {
	if m.history == nil {
		return nil, nil
	}
	return m.history.List()
}
