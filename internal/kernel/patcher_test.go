package kernel

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordstat/prosjekt/internal/errs"
	"github.com/nordstat/prosjekt/internal/testutil"
)

func readDescriptorMap(t *testing.T, path string) map[string]interface{} {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var d map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &d))
	return d
}

func TestAttachLoginShell(t *testing.T) {
	dataDir := t.TempDir()
	resourceDir := installKernel(t, dataDir, "demo",
		[]string{"/venv/bin/python3", "-m", "ipykernel_launcher", "-f", "{connection_file}"})

	r := newRegistryAt(dataDir, &testutil.FakeRunner{})
	out := &bytes.Buffer{}

	require.NoError(t, r.AttachLoginShell("demo", out))

	wrapperPath := filepath.Join(resourceDir, WrapperScriptName)

	// The descriptor now launches through the wrapper, other fields intact.
	d := readDescriptorMap(t, filepath.Join(resourceDir, descriptorFileName))
	assert.Equal(t, []interface{}{
		wrapperPath, "-m", "ipykernel_launcher", "-f", "{connection_file}",
	}, d["argv"])
	assert.Equal(t, "demo", d["display_name"])
	assert.Equal(t, "python", d["language"])

	// The wrapper sources .bashrc before handing over to the interpreter.
	script, err := os.ReadFile(wrapperPath)
	require.NoError(t, err)
	assert.Equal(t, "#!/usr/bin/env bash\nsource $HOME/.bashrc\nexec /venv/bin/python3 $@\n", string(script))

	info, err := os.Stat(wrapperPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o555), info.Mode().Perm())
}

func TestAttachLoginShellIsIdempotent(t *testing.T) {
	dataDir := t.TempDir()
	installKernel(t, dataDir, "demo",
		[]string{"/venv/bin/python3", "-m", "ipykernel_launcher", "-f", "{connection_file}"})

	r := newRegistryAt(dataDir, &testutil.FakeRunner{})
	require.NoError(t, r.AttachLoginShell("demo", &bytes.Buffer{}))

	out := &bytes.Buffer{}
	require.NoError(t, r.AttachLoginShell("demo", out))
	assert.Contains(t, out.String(), "already be mounted")
}

func TestAttachLoginShellPreconditions(t *testing.T) {
	t.Run("kernel missing", func(t *testing.T) {
		r := newRegistryAt(t.TempDir(), &testutil.FakeRunner{})

		err := r.AttachLoginShell("absent", &bytes.Buffer{})
		require.Error(t, err)
		assert.ErrorIs(t, err, errs.NewPrecondition("kernel-missing", ""))
	})

	t.Run("descriptor missing", func(t *testing.T) {
		dataDir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dataDir, "kernels", "demo"), 0o755))

		r := newRegistryAt(dataDir, &testutil.FakeRunner{})
		err := r.AttachLoginShell("demo", &bytes.Buffer{})
		require.Error(t, err)
		assert.ErrorIs(t, err, errs.NewPrecondition("kernel-descriptor-missing", ""))
	})

	t.Run("interpreter missing", func(t *testing.T) {
		dataDir := t.TempDir()
		installKernel(t, dataDir, "demo", []string{"/usr/bin/env", "something-else"})

		r := newRegistryAt(dataDir, &testutil.FakeRunner{})
		err := r.AttachLoginShell("demo", &bytes.Buffer{})
		require.Error(t, err)
		assert.ErrorIs(t, err, errs.NewPrecondition("kernel-interpreter-missing", ""))
	})
}

func TestInterpreterEntry(t *testing.T) {
	cases := []struct {
		argv []string
		want string
	}{
		{[]string{"/venv/bin/python3", "-m", "ipykernel_launcher"}, "/venv/bin/python3"},
		{[]string{"/venv/bin/python", "-m", "ipykernel_launcher"}, "/venv/bin/python"},
		{[]string{"/kernels/demo/python.sh", "-m", "ipykernel_launcher"}, "/kernels/demo/python.sh"},
		{[]string{"-m", "ipykernel_launcher"}, ""},
		{nil, ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, interpreterEntry(tc.argv))
	}
}
