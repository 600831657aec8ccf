package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageError(t *testing.T) {
	cause := fmt.Errorf("%w: makepkg exited with status 1", ErrBuild)
	err := error(&StageError{Package: "foo", Stage: StageBuilding, Err: cause})

	assert.Equal(t, "foo: building: build failed: makepkg exited with status 1", err.Error())
	assert.ErrorIs(t, err, ErrBuild)
	assert.NotErrorIs(t, err, ErrInstall)

	var se *StageError
	require.True(t, errors.As(fmt.Errorf("install: %w", err), &se))
	assert.Equal(t, StageBuilding, se.Stage)
}

func TestStageString(t *testing.T) {
	tests := []struct {
		stage Stage
		want  string
	}{
		{StageFetching, "fetching"},
		{StageBuilding, "building"},
		{StageLocatingArtifact, "locating artifact"},
		{StageInstalling, "installing"},
		{StageDone, "done"},
		{Stage(42), "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.stage.String())
	}
}

func TestValidateName(t *testing.T) {
	for _, name := range []string{"foo", "foo-git", "python-foo.bar", "lib32-glibc", "foo+bar"} {
		assert.NoError(t, ValidateName(name), name)
	}
	for _, name := range []string{"", ".", "..", "../etc", "a/b", `a\b`, "-rf"} {
		assert.ErrorIs(t, ValidateName(name), ErrInvalidName, name)
	}
}
