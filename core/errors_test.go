package core

import (
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestKindStringMatchesEachCase(t *testing.T) {
	require.Equal(t, "invalid-scene", InvalidScene.String())
	require.Equal(t, "asset-io", AssetIO.String())
	require.Equal(t, "geometry-degenerate", GeometryDegenerate.String())
	require.Equal(t, "numeric-anomaly", NumericAnomaly.String())
	require.Equal(t, "arena-exhausted", ArenaExhausted.String())
}

func TestKindFatalClassifiesAbortVsWarn(t *testing.T) {
	require.True(t, InvalidScene.Fatal())
	require.True(t, AssetIO.Fatal())
	require.True(t, ArenaExhausted.Fatal())
	require.False(t, GeometryDegenerate.Fatal())
	require.False(t, NumericAnomaly.Fatal())
}

func TestNewErrorFormatsMessage(t *testing.T) {
	err := NewError(InvalidScene, "missing field %q", "camera")
	require.Contains(t, err.Error(), "invalid-scene")
	require.Contains(t, err.Error(), `missing field "camera"`)
}

func TestWrapErrorPreservesCauseForUnwrap(t *testing.T) {
	cause := pkgerrors.New("file not found")
	err := WrapError(AssetIO, cause, "loading mesh")
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "asset-io")
}

func TestExitCodeMapsNilInvalidSceneAndOther(t *testing.T) {
	require.Equal(t, 0, ExitCode(nil))
	require.Equal(t, 1, ExitCode(NewError(InvalidScene, "bad scene")))
	require.Equal(t, 2, ExitCode(NewError(AssetIO, "bad asset")))
}
