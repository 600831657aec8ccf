package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEnvironmentUnavailable = errors.New("environment unavailable")
	ErrNetwork                = errors.New("network error")
	ErrParse                  = errors.New("parse error")
	ErrStorage                = errors.New("storage error")
	ErrClone                  = errors.New("clone failed")
	ErrBuild                  = errors.New("build failed")
	ErrArtifactNotFound       = errors.New("build artifact not found")
	ErrInstall                = errors.New("install failed")
	ErrInvalidName            = errors.New("invalid package name")
)

// StageError is the terminal Failed(stage, reason) state of an install.
type StageError struct {
	Package string
	Stage   Stage
	Err     error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Package, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
