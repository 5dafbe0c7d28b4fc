package templates

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordstat/prosjekt/internal/executor"
	"github.com/nordstat/prosjekt/internal/testutil"
)

const templateURL = "https://github.com/nordstat/prosjekt-template-stat"

// decodeExtraContext finds and parses the --extra-context payload of a
// recorded cruft invocation.
func decodeExtraContext(t *testing.T, argv []string) Context {
	t.Helper()
	for i, arg := range argv {
		if arg == "--extra-context" {
			require.Less(t, i+1, len(argv))
			var ctx Context
			require.NoError(t, json.Unmarshal([]byte(argv[i+1]), &ctx))
			return ctx
		}
	}
	t.Fatalf("no --extra-context in %v", argv)
	return Context{}
}

func gitIdentityResponder(name, email string) func(executor.Command) (executor.Result, error) {
	return func(cmd executor.Command) (executor.Result, error) {
		if cmd.Label == "git-config-get" {
			switch cmd.Argv[len(cmd.Argv)-1] {
			case "user.name":
				if name == "" {
					return executor.Result{ExitCode: 1}, nil
				}
				return executor.Result{Stdout: name + "\n"}, nil
			case "user.email":
				if email == "" {
					return executor.Result{ExitCode: 1}, nil
				}
				return executor.Result{Stdout: email + "\n"}, nil
			}
		}
		return executor.Result{}, nil
	}
}

func TestMaterializeBuildsEngineInvocation(t *testing.T) {
	runner := &testutil.FakeRunner{Respond: gitIdentityResponder("Kari Nordmann", "kari@example.com")}
	m := NewMaterializer(runner, &testutil.FakePrompter{})

	workDir := t.TempDir()
	projectDir, err := m.Materialize(context.Background(), Options{
		ProjectName: "demo",
		Description: "A demo project",
		TemplateURL: templateURL,
		Ref:         "1.0.0",
		WorkingDir:  workDir,
		NoInput:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(workDir, "demo"), projectDir)

	var cruft *executor.Command
	for i := range runner.Calls {
		if runner.Calls[i].Label == "cruft-create" {
			cruft = &runner.Calls[i]
		}
	}
	require.NotNil(t, cruft, "no cruft invocation recorded")

	assert.Equal(t, []string{"cruft", "create", templateURL}, cruft.Argv[:3])
	assert.Contains(t, cruft.Argv, "--no-input")
	assert.Contains(t, cruft.Argv, "--checkout")
	assert.Equal(t, workDir, cruft.Dir)

	ctx := decodeExtraContext(t, cruft.Argv)
	assert.Equal(t, "demo", ctx.ProjectName)
	assert.Equal(t, "A demo project", ctx.Description)
	assert.Equal(t, "Kari Nordmann", ctx.FullName)
	assert.Equal(t, "kari@example.com", ctx.Email)
	assert.Equal(t, strconv.Itoa(time.Now().Year()), ctx.LicenseYear)
}

func TestMaterializeKeepsEnginePromptsForCustomTemplates(t *testing.T) {
	runner := &testutil.FakeRunner{Respond: gitIdentityResponder("Kari Nordmann", "kari@example.com")}
	m := NewMaterializer(runner, &testutil.FakePrompter{})

	_, err := m.Materialize(context.Background(), Options{
		ProjectName: "demo",
		TemplateURL: "https://example.com/custom-template",
		Ref:         "main",
		WorkingDir:  t.TempDir(),
		NoInput:     false,
	})
	require.NoError(t, err)

	for _, call := range runner.Calls {
		if call.Label == "cruft-create" {
			assert.NotContains(t, call.Argv, "--no-input")
		}
	}
}

func TestMaterializeRefusesExistingDirectory(t *testing.T) {
	workDir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(workDir, "demo"), 0o755))

	runner := &testutil.FakeRunner{}
	m := NewMaterializer(runner, &testutil.FakePrompter{})

	_, err := m.Materialize(context.Background(), Options{
		ProjectName: "demo",
		TemplateURL: templateURL,
		Ref:         "1.0.0",
		WorkingDir:  workDir,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	assert.Empty(t, runner.Calls, "the engine must not run for an existing directory")
}

func TestMaterializePromptsWhenGitIdentityUnset(t *testing.T) {
	runner := &testutil.FakeRunner{Respond: gitIdentityResponder("", "")}
	prompter := &testutil.FakePrompter{InputAnswers: []string{"Ola Nordmann", "ola@example.com"}}
	m := NewMaterializer(runner, prompter)

	_, err := m.Materialize(context.Background(), Options{
		ProjectName: "demo",
		TemplateURL: templateURL,
		Ref:         "1.0.0",
		WorkingDir:  t.TempDir(),
		NoInput:     true,
	})
	require.NoError(t, err)

	var cruft *executor.Command
	for i := range runner.Calls {
		if runner.Calls[i].Label == "cruft-create" {
			cruft = &runner.Calls[i]
		}
	}
	require.NotNil(t, cruft)

	ctx := decodeExtraContext(t, cruft.Argv)
	assert.Equal(t, "Ola Nordmann", ctx.FullName)
	assert.Equal(t, "ola@example.com", ctx.Email)
}

func TestIdentityFromGitConfig(t *testing.T) {
	t.Run("both set", func(t *testing.T) {
		runner := &testutil.FakeRunner{Respond: gitIdentityResponder("Kari", "kari@example.com")}
		name, email := IdentityFromGitConfig(context.Background(), runner)
		assert.Equal(t, "Kari", name)
		assert.Equal(t, "kari@example.com", email)
	})

	t.Run("unset keys come back empty", func(t *testing.T) {
		runner := &testutil.FakeRunner{Respond: gitIdentityResponder("", "")}
		name, email := IdentityFromGitConfig(context.Background(), runner)
		assert.Empty(t, name)
		assert.Empty(t, email)
	})
}
