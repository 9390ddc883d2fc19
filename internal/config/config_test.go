package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
[engine]
max_frames = 120

[physics]
gravity = [0.0, -1.62, 0.0]
solver_iterations = 4

[logging]
format = "json"
`), "test")
	require.NoError(t, err)

	assert.Equal(t, "oylsim", cfg.Engine.Name)
	assert.Equal(t, 60.0, cfg.Engine.FrameRate)
	assert.Equal(t, 120, cfg.Engine.MaxFrames)
	assert.Equal(t, [3]float32{0, -1.62, 0}, cfg.Physics.Gravity)
	assert.Equal(t, 4, cfg.Physics.SolverIterations)
	assert.Equal(t, DefaultPhysics().MaxSubSteps, cfg.Physics.MaxSubSteps)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "data/yaml", cfg.Data.YAMLDir)
}

func TestParseRejectsBadValues(t *testing.T) {
	_, err := Parse([]byte("[physics]\nfixed_step = 0.0\n"), "zero")
	assert.ErrorContains(t, err, "fixed_step")

	_, err = Parse([]byte("[physics]\nmax_sub_steps = 0\n"), "variable")
	assert.ErrorContains(t, err, "max_sub_steps")

	_, err = Parse([]byte("[engine]\nframe_rate = -1.0\n"), "neg")
	assert.ErrorContains(t, err, "frame_rate")

	_, err = Parse([]byte("[engine\n"), "broken")
	assert.ErrorContains(t, err, "parse config broken")
}

func TestLoadAndPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.toml")
	require.NoError(t, os.WriteFile(path, []byte("[engine]\nname = \"bench\"\n"), 0o644))

	t.Setenv(EnvPath, path)
	assert.Equal(t, path, Path())
	cfg, err := Load(Path())
	require.NoError(t, err)
	assert.Equal(t, "bench", cfg.Engine.Name)

	t.Setenv(EnvPath, "")
	assert.Equal(t, DefaultPath, Path())

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
