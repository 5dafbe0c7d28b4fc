package kernel

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordstat/prosjekt/internal/testutil"
)

func installKernel(t *testing.T, dataDir, name string, argv []string) string {
	t.Helper()

	resourceDir := filepath.Join(dataDir, "kernels", name)
	require.NoError(t, os.MkdirAll(resourceDir, 0o755))

	d := map[string]interface{}{
		"argv":         argv,
		"display_name": name,
		"language":     "python",
	}
	data, err := json.Marshal(d)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(resourceDir, descriptorFileName), data, 0o644))

	return resourceDir
}

func TestAllListsInstalledKernels(t *testing.T) {
	dataDir := t.TempDir()
	installKernel(t, dataDir, "demo", []string{"/venv/bin/python3", "-m", "ipykernel_launcher"})
	installKernel(t, dataDir, "other", []string{"/other/bin/python3"})

	// Stray files in the kernels directory are not kernels.
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "kernels", "README"), []byte("x"), 0o644))

	r := newRegistryAt(dataDir, &testutil.FakeRunner{})
	kernels, err := r.All()
	require.NoError(t, err)

	require.Len(t, kernels, 2)
	assert.Equal(t, []string{"/venv/bin/python3", "-m", "ipykernel_launcher"}, kernels["demo"].Argv)
	assert.Equal(t, filepath.Join(dataDir, "kernels", "demo"), kernels["demo"].ResourceDir)
}

func TestAllWithoutKernelsDirectory(t *testing.T) {
	r := newRegistryAt(t.TempDir(), &testutil.FakeRunner{})
	kernels, err := r.All()
	require.NoError(t, err)
	assert.Empty(t, kernels)
}

func TestAllToleratesMissingDescriptor(t *testing.T) {
	dataDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dataDir, "kernels", "broken"), 0o755))

	r := newRegistryAt(dataDir, &testutil.FakeRunner{})
	kernels, err := r.All()
	require.NoError(t, err)

	require.Contains(t, kernels, "broken")
	assert.Nil(t, kernels["broken"].Argv)
}

func TestRemoveInvokesKernelspec(t *testing.T) {
	runner := &testutil.FakeRunner{}
	r := newRegistryAt(t.TempDir(), runner)

	require.NoError(t, r.Remove(context.Background(), "demo"))

	require.Len(t, runner.Calls, 1)
	assert.Equal(t, []string{"jupyter", "kernelspec", "remove", "-f", "demo"}, runner.Calls[0].Argv)
}

func TestNewRegistryHonorsDataDirOverride(t *testing.T) {
	override := t.TempDir()
	t.Setenv("JUPYTER_DATA_DIR", override)

	r, err := NewRegistry(&testutil.FakeRunner{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(override, "kernels"), r.kernelsDir())
}
