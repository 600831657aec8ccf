package domain

import (
	"fmt"
	"strings"
)

// Stage is one step of the install pipeline.
type Stage int

const (
	StageFetching Stage = iota
	StageBuilding
	StageLocatingArtifact
	StageInstalling
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageFetching:
		return "fetching"
	case StageBuilding:
		return "building"
	case StageLocatingArtifact:
		return "locating artifact"
	case StageInstalling:
		return "installing"
	case StageDone:
		return "done"
	default:
		return "unknown"
	}
}

// ValidateName rejects names that would escape or alias a directory when
// joined onto a path.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, "-") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
